package domain

import (
	"encoding/json"
	"fmt"
)

// Tool names the model may request. Anything else is rejected per call
// by the dispatcher without aborting its siblings.
const (
	ToolSearchProducts     = "search_products"
	ToolGetProjectGuide    = "get_project_guide"
	ToolCheckCompatibility = "check_compatibility"
)

// ToolCallRequest is one tool invocation emitted by the model: a tool
// name plus a mapping of argument name to argument value.
type ToolCallRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Key returns the deduplication identity of the request: the tool name
// joined with the canonical JSON serialization of its arguments
// (encoding/json emits map keys in sorted order).
func (c ToolCallRequest) Key() string {
	args, err := json.Marshal(c.Arguments)
	if err != nil {
		// Argument maps come from JSON decoding or literals, so this
		// path should not trigger; fall back to the raw representation.
		return fmt.Sprintf("%s-%v", c.Name, c.Arguments)
	}
	return c.Name + "-" + string(args)
}

// ToolSchema declares one callable tool to the model, following the
// OpenAI function-calling wire shape.
type ToolSchema struct {
	Type     string         `json:"type"`
	Function FunctionSchema `json:"function"`
}

// FunctionSchema describes a tool's name, purpose, and parameter shape.
type FunctionSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolPayload is the tagged success payload of one tool execution.
type ToolPayload interface{ toolPayload() }

func (ProductSearchResult) toolPayload() {}
func (GuideResult) toolPayload()         {}
func (CompatibilityResult) toolPayload() {}

// ToolResult is the outcome of executing one ToolCallRequest: either a
// typed payload or an error, always tagged with the originating call.
type ToolResult struct {
	Call    ToolCallRequest
	Payload ToolPayload
	Err     error
}
