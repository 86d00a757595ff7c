package domain

import "time"

// Message roles used across the prompt builder, the conversation store,
// and the LLM integration.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape shared by the
// prompt builder, the conversation store, and the LLM integration.
// Assistant turns may carry the tool calls the model emitted so that a
// replayed history matches what the model previously produced.
type ChatMessage struct {
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	ToolCalls []ToolCallRequest `json:"tool_calls,omitempty"`
}

// Reply is the user-facing chat message produced once per orchestrated
// request. It is immutable after creation and owned by the consumer.
type Reply struct {
	Content    string         `json:"content"`
	IsFromUser bool           `json:"isFromUser"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
