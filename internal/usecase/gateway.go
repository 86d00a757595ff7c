package usecase

import (
	"context"
	"log/slog"
	"strings"

	"handycan-agent/internal/domain"
)

// LLMClient is the external completion capability consumed by the
// Gateway. *groq.Client satisfies this interface.
type LLMClient interface {
	ChatCompletion(ctx context.Context, model string, messages []domain.ChatMessage, tools []domain.ToolSchema) (domain.ChatMessage, error)
}

// CompletionSource tags which branch produced a completion so callers
// and tests can assert on the degradation path taken.
type CompletionSource string

const (
	SourceModel    CompletionSource = "model"
	SourceFallback CompletionSource = "fallback"
)

// Completion is the Gateway outcome: assistant text plus zero or more
// tool call requests.
type Completion struct {
	Text      string
	ToolCalls []domain.ToolCallRequest
	Source    CompletionSource
}

// Gateway invokes the external completion capability and degrades to a
// deterministic canned completion whenever the model is unreachable or
// no client is configured. Failures never escape this layer: the user
// gets an answer either way.
type Gateway struct {
	llm   LLMClient
	model string
}

// NewGateway creates a Gateway calling llm with the given model name.
// A nil llm puts the gateway in fallback-only mode.
func NewGateway(llm LLMClient, model string) *Gateway {
	return &Gateway{llm: llm, model: strings.TrimSpace(model)}
}

// Complete returns the model completion for the prompt, or the
// deterministic fallback when no client is configured or the call fails
// in any way.
func (g *Gateway) Complete(ctx context.Context, messages []domain.ChatMessage, tools []domain.ToolSchema) Completion {
	latest := latestUserContent(messages)
	if g.llm == nil {
		return fallbackCompletion(latest)
	}

	assistant, err := g.llm.ChatCompletion(ctx, g.model, messages, tools)
	if err != nil {
		slog.WarnContext(ctx, "model call failed, serving fallback completion", "err", err)
		return fallbackCompletion(latest)
	}
	return Completion{
		Text:      assistant.Content,
		ToolCalls: assistant.ToolCalls,
		Source:    SourceModel,
	}
}

func latestUserContent(messages []domain.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

const (
	fallbackFaucetText   = "I'd love to help you with your faucet installation! Let me gather some information about products that might work for your project."
	fallbackGreetingText = "I'm here to help with your hardware store needs! What project are you working on today?"
)

// fallbackCompletion is the deterministic stand-in used whenever the
// live model path is unavailable. The faucet keyword yields a fixed
// two-call tool plan; everything else gets a plain greeting.
func fallbackCompletion(userMessage string) Completion {
	if strings.Contains(strings.ToLower(userMessage), "faucet") {
		return Completion{
			Text:   fallbackFaucetText,
			Source: SourceFallback,
			ToolCalls: []domain.ToolCallRequest{
				{
					Name:      domain.ToolSearchProducts,
					Arguments: map[string]any{"query": "kitchen faucet", "category": "plumbing"},
				},
				{
					Name:      domain.ToolGetProjectGuide,
					Arguments: map[string]any{"projectType": "faucet_installation", "difficulty": "BEGINNER"},
				},
			},
		}
	}
	return Completion{Text: fallbackGreetingText, Source: SourceFallback}
}
