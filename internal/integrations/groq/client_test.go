package groq

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"handycan-agent/internal/domain"
)

// ---------------------------------------------------------------------------
// chatURL helper
// ---------------------------------------------------------------------------

func TestChatURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"https://api.groq.com/openai/v1", "https://api.groq.com/openai/v1/chat/completions"},
		{"https://api.groq.com/openai/v1/", "https://api.groq.com/openai/v1/chat/completions"},
		{"http://localhost:8080", "http://localhost:8080/v1/chat/completions"},
		{"", "https://api.groq.com/openai/v1/chat/completions"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, chatURL(tc.base), "base=%q", tc.base)
	}
}

// ---------------------------------------------------------------------------
// NewClient
// ---------------------------------------------------------------------------

// fakeGetter is a minimal paramstore.Getter stub for use within this package.
type fakeGetter struct {
	val    string
	err    error
	onCall func() // optional; called on each GetParameter invocation
}

func (f *fakeGetter) GetParameter(_ context.Context, _ string) (string, error) {
	if f.onCall != nil {
		f.onCall()
	}
	return f.val, f.err
}

func TestNewClient_NilGetter(t *testing.T) {
	_, err := NewClient(nil, "/handycan")
	require.Error(t, err)
	require.Contains(t, err.Error(), "nil")
}

func TestNewClient_EmptyPrefix(t *testing.T) {
	_, err := NewClient(&fakeGetter{}, "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty")
}

func TestNewClient_Valid(t *testing.T) {
	c, err := NewClient(&fakeGetter{}, "/handycan")
	require.NoError(t, err)
	require.Equal(t, "https://api.groq.com/openai/v1", c.baseURL)
	require.NotNil(t, c.getter)
}

// ---------------------------------------------------------------------------
// resolveAPIKey — SSM caching behaviour
// ---------------------------------------------------------------------------

func TestResolveAPIKey_FetchedOnFirstCall(t *testing.T) {
	calls := 0
	g := &fakeGetter{val: `{"token":"gsk-from-ssm"}`}
	g.onCall = func() { calls++ }
	c, err := NewClient(g, "/handycan")
	require.NoError(t, err)

	key, err := c.resolveAPIKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, "gsk-from-ssm", key)
	require.Equal(t, 1, calls)

	// subsequent calls must never hit SSM again
	_, _ = c.resolveAPIKey(context.Background())
	_, _ = c.resolveAPIKey(context.Background())
	require.Equal(t, 1, calls, "SSM must only be called once per process lifetime")
}

func TestFetchAPIKey_JSONMissingTokenField(t *testing.T) {
	g := &fakeGetter{val: `{"other":"value"}`}
	_, err := fetchAPIKeyFromParamStore(context.Background(), g, "/handycan/groq-api-token")
	require.Error(t, err)
	require.Contains(t, err.Error(), "API token is empty")
}

func TestFetchAPIKey_MalformedJSON(t *testing.T) {
	g := &fakeGetter{val: `{"broken`}
	_, err := fetchAPIKeyFromParamStore(context.Background(), g, "/handycan/groq-api-token")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unmarshal")
}

func TestFetchAPIKey_GetterError(t *testing.T) {
	g := &fakeGetter{err: errors.New("ssm unavailable")}
	_, err := fetchAPIKeyFromParamStore(context.Background(), g, "/handycan/groq-api-token")
	require.Error(t, err)
	require.Contains(t, err.Error(), "ssm unavailable")
}

// ---------------------------------------------------------------------------
// Client.ChatCompletion
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(
		&fakeGetter{val: `{"token":"gsk-test"}`},
		"/handycan",
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	)
	require.NoError(t, err)
	return c
}

func testTools() []domain.ToolSchema {
	return []domain.ToolSchema{{
		Type: "function",
		Function: domain.FunctionSchema{
			Name:        domain.ToolSearchProducts,
			Description: "Search for products in the store inventory",
			Parameters:  []byte(`{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}`),
		},
	}}
}

func TestChatCompletion_HappyPath_TextOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		reqBody, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Contains(t, string(reqBody), `"temperature":0.7`)
		require.Contains(t, string(reqBody), `"max_tokens":1000`)
		require.Contains(t, string(reqBody), `"tool_choice":"auto"`)
		require.Contains(t, string(reqBody), `"name":"search_products"`)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-123",
			"object": "chat.completion",
			"created": 1670000000,
			"choices": [{
				"index": 0,
				"message": { "role": "assistant", "content": "Happy to help with your project!" }
			}]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	msg, err := c.ChatCompletion(context.Background(), "llama3-70b-8192", []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}, testTools())
	require.NoError(t, err)
	require.Equal(t, "Happy to help with your project!", msg.Content)
	require.Empty(t, msg.ToolCalls)
}

func TestChatCompletion_DecodesToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"content": "Let me look that up.",
					"tool_calls": [{
						"id": "call_abc",
						"type": "function",
						"function": {
							"name": "search_products",
							"arguments": "{\"query\":\"kitchen faucet\",\"category\":\"plumbing\"}"
						}
					}]
				}
			}]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	msg, err := c.ChatCompletion(context.Background(), "llama3-70b-8192", nil, nil)
	require.NoError(t, err)
	require.Len(t, msg.ToolCalls, 1)
	require.Equal(t, domain.ToolSearchProducts, msg.ToolCalls[0].Name)
	require.Equal(t, "kitchen faucet", msg.ToolCalls[0].Arguments["query"])
	require.Equal(t, "plumbing", msg.ToolCalls[0].Arguments["category"])
}

func TestChatCompletion_MalformedToolCallArguments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_abc",
						"type": "function",
						"function": { "name": "search_products", "arguments": "{broken" }
					}]
				}
			}]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.ChatCompletion(context.Background(), "llama3-70b-8192", nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode tool call arguments")
}

func TestChatCompletion_ReplaysAssistantToolCallsOnWire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqBody, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Contains(t, string(reqBody), `"type":"function"`)
		require.Contains(t, string(reqBody), `"arguments":"{\"query\":\"kitchen faucet\"}"`)
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	history := []domain.ChatMessage{{
		Role:    domain.RoleAssistant,
		Content: "Let me check.",
		ToolCalls: []domain.ToolCallRequest{{
			Name:      domain.ToolSearchProducts,
			Arguments: map[string]any{"query": "kitchen faucet"},
		}},
	}}
	_, err := c.ChatCompletion(context.Background(), "llama3-70b-8192", history, nil)
	require.NoError(t, err)
}

func TestChatCompletion_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.ChatCompletion(context.Background(), "llama3-70b-8192", nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status")
	require.Contains(t, err.Error(), "400")

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 400, statusErr.HTTPStatusCode())
}

func TestChatCompletion_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`not-a-json`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.ChatCompletion(context.Background(), "llama3-70b-8192", nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestChatCompletion_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.ChatCompletion(context.Background(), "llama3-70b-8192", nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no choices")
}

func TestChatCompletion_EmptyModel(t *testing.T) {
	c, err := NewClient(&fakeGetter{val: `{"token":"gsk-test"}`}, "/handycan")
	require.NoError(t, err)
	_, err = c.ChatCompletion(context.Background(), "", nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "model")
}

func TestChatCompletion_KeyResolutionError(t *testing.T) {
	c, err := NewClient(&fakeGetter{err: errors.New("ssm unavailable")}, "/handycan")
	require.NoError(t, err)
	_, err = c.ChatCompletion(context.Background(), "llama3-70b-8192", nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ssm unavailable")
}

func TestChatCompletion_NetworkError(t *testing.T) {
	c, err := NewClient(&fakeGetter{val: `{"token":"gsk-test"}`}, "/handycan")
	require.NoError(t, err)
	c.baseURL = "http://127.0.0.1:1"
	c.httpClient = &http.Client{Timeout: 100 * time.Millisecond}

	_, err = c.ChatCompletion(context.Background(), "llama3-70b-8192", nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "request failed")
}

func TestChatCompletion_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}
	_, err := c.ChatCompletion(context.Background(), "llama3-70b-8192", nil, nil)
	require.Error(t, err)
}
