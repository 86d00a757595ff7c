// Package groq is a focused client for Groq's OpenAI-compatible chat
// completions endpoint, including function-calling tool declarations.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"handycan-agent/internal/domain"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"

	// Completion parameters are fixed for every request.
	chatTemperature = 0.7
	chatMaxTokens   = 1000
	chatToolChoice  = "auto"
)

// chatRequest is the minimal request shape for the Chat Completions
// endpoint with tools attached.
type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []wireMessage       `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
	Tools       []domain.ToolSchema `json:"tools,omitempty"`
	ToolChoice  string              `json:"tool_choice,omitempty"`
}

// wireMessage is the on-the-wire message shape. Tool call arguments
// travel as a JSON-encoded string per the OpenAI contract, unlike the
// decoded mapping the rest of the pipeline works with.
type wireMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// chatResponse is the minimal response shape returned by the Chat
// Completions endpoint.
type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Choices []struct {
		Index   int         `json:"index"`
		Message wireMessage `json:"message"`
	} `json:"choices"`
}

// tokenPayload is the expected JSON shape stored in SSM for the API token.
type tokenPayload struct {
	Token string `json:"token"`
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("groq: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused Groq client for tool-augmented chat completions.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	getter      Getter
	paramPrefix string

	keyOnce sync.Once
	apiKey  string
	keyErr  error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Client backed by the given paramstore.Getter
// for API key retrieval. The key is fetched from SSM on the first call
// to ChatCompletion and reused for the lifetime of the process.
func NewClient(ps Getter, paramPrefix string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("groq: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("groq: parameter prefix must not be empty")
	}
	c := &Client{
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		getter:      ps,
		paramPrefix: paramPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// resolveAPIKey fetches the API key from SSM on the first call and
// returns the cached result on every subsequent call within the same
// process lifetime.
func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	c.keyOnce.Do(func() {
		c.apiKey, c.keyErr = fetchAPIKeyFromParamStore(ctx, c.getter, c.tokenParameterName())
	})
	return c.apiKey, c.keyErr
}

func (c *Client) tokenParameterName() string {
	return c.paramPrefix + "/groq-api-token"
}

// resolvedHTTPClient returns the configured HTTP client, or a default
// with a 10s timeout if none was set (e.g. in tests that nil out the field).
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

// ChatCompletion issues one completion call with the tool schemas
// attached and returns the assistant message, including any tool call
// requests the model emitted.
func (c *Client) ChatCompletion(ctx context.Context, model string, messages []domain.ChatMessage, tools []domain.ToolSchema) (domain.ChatMessage, error) {
	if model == "" {
		return domain.ChatMessage{}, errors.New("groq: model must not be empty")
	}

	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	wired, err := toWireMessages(messages)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    wired,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
		Tools:       tools,
		ToolChoice:  chatToolChoice,
	})
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("groq: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return domain.ChatMessage{}, fmt.Errorf("groq: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("groq: request failed: %w", err)
	}

	var payload chatResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return domain.ChatMessage{}, fmt.Errorf("groq: decode response: %w", decErr)
	}
	if len(payload.Choices) == 0 {
		return domain.ChatMessage{}, errors.New("groq: no choices in response")
	}
	return fromWireMessage(payload.Choices[0].Message)
}

// toWireMessages converts pipeline messages to the wire shape,
// re-encoding replayed assistant tool calls into the function-calling
// contract with synthetic call ids.
func toWireMessages(messages []domain.ChatMessage) ([]wireMessage, error) {
	out := make([]wireMessage, 0, len(messages))
	for i, m := range messages {
		wm := wireMessage{Role: m.Role, Content: m.Content}
		for j, call := range m.ToolCalls {
			args, err := json.Marshal(call.Arguments)
			if err != nil {
				return nil, fmt.Errorf("groq: marshal tool call arguments for %s: %w", call.Name, err)
			}
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:       fmt.Sprintf("call_%d_%d", i, j),
				Type:     "function",
				Function: wireFunction{Name: call.Name, Arguments: string(args)},
			})
		}
		out = append(out, wm)
	}
	return out, nil
}

func fromWireMessage(m wireMessage) (domain.ChatMessage, error) {
	msg := domain.ChatMessage{Role: m.Role, Content: m.Content}
	for _, call := range m.ToolCalls {
		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return domain.ChatMessage{}, fmt.Errorf("groq: decode tool call arguments for %s: %w", call.Function.Name, err)
			}
		}
		msg.ToolCalls = append(msg.ToolCalls, domain.ToolCallRequest{
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	return msg, nil
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

func fetchAPIKeyFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("groq: paramstore getter is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("groq: token parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("groq: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("groq: unmarshal paramstore token value as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", fmt.Errorf("groq: API token is empty")
	}
	return tp.Token, nil
}
