package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"handycan-agent/internal/domain"
)

// ToolRunner is the domain tool service consumed by the Dispatcher.
// *coreapi.Client satisfies this interface.
type ToolRunner interface {
	SearchProducts(ctx context.Context, query, category, storeID string) (domain.ProductSearchResult, error)
	GetProjectGuide(ctx context.Context, projectType, difficulty string) (domain.GuideResult, error)
	CheckCompatibility(ctx context.Context, productA, productB string) (domain.CompatibilityResult, error)
}

// Dispatcher executes the tool calls a completion requested. Each call
// is attempted exactly once, with no retries; one failing call never
// blocks its siblings.
type Dispatcher struct {
	tools ToolRunner
}

func NewDispatcher(tools ToolRunner) (*Dispatcher, error) {
	if tools == nil {
		return nil, errors.New("usecase: tool runner must not be nil")
	}
	return &Dispatcher{tools: tools}, nil
}

type toolHandler func(ctx context.Context, args map[string]any, storeID string) (domain.ToolPayload, error)

// handlers maps each recognized tool name to its typed handler.
func (d *Dispatcher) handlers() map[string]toolHandler {
	return map[string]toolHandler{
		domain.ToolSearchProducts: func(ctx context.Context, args map[string]any, storeID string) (domain.ToolPayload, error) {
			res, err := d.tools.SearchProducts(ctx, stringArg(args, "query"), stringArg(args, "category"), storeID)
			if err != nil {
				return nil, err
			}
			return res, nil
		},
		domain.ToolGetProjectGuide: func(ctx context.Context, args map[string]any, _ string) (domain.ToolPayload, error) {
			res, err := d.tools.GetProjectGuide(ctx, stringArg(args, "projectType"), stringArg(args, "difficulty"))
			if err != nil {
				return nil, err
			}
			return res, nil
		},
		domain.ToolCheckCompatibility: func(ctx context.Context, args map[string]any, _ string) (domain.ToolPayload, error) {
			res, err := d.tools.CheckCompatibility(ctx, stringArg(args, "productA"), stringArg(args, "productB"))
			if err != nil {
				return nil, err
			}
			return res, nil
		},
	}
}

// Dispatch runs the requested calls in order and returns one result per
// request. Unknown tool names and individual call failures are recorded
// on the corresponding result; dispatch always continues.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []domain.ToolCallRequest, storeID string) []domain.ToolResult {
	if len(calls) == 0 {
		return nil
	}

	handlers := d.handlers()
	results := make([]domain.ToolResult, 0, len(calls))
	for _, call := range calls {
		handle, ok := handlers[call.Name]
		if !ok {
			slog.WarnContext(ctx, "unknown tool requested", "tool", call.Name)
			results = append(results, domain.ToolResult{
				Call: call,
				Err:  fmt.Errorf("unknown tool: %s", call.Name),
			})
			continue
		}

		payload, err := handle(ctx, call.Arguments, storeID)
		if err != nil {
			slog.WarnContext(ctx, "tool call failed", "tool", call.Name, "err", err)
			results = append(results, domain.ToolResult{Call: call, Err: err})
			continue
		}
		results = append(results, domain.ToolResult{Call: call, Payload: payload})
	}
	return results
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
