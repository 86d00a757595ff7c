package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"handycan-agent/internal/domain"
)

const apologyMessage = "I apologize, but I encountered an error. Please try again."

// ConversationStore is the bounded history store consumed by
// ChatService. *conversation.Store satisfies this interface.
type ConversationStore interface {
	Get(conversationID string) []domain.ChatMessage
	Append(conversationID string, newTurns ...domain.ChatMessage)
}

// Completer produces the completion for a prompt. *Gateway satisfies
// this interface and never fails: degradation happens inside it.
type Completer interface {
	Complete(ctx context.Context, messages []domain.ChatMessage, tools []domain.ToolSchema) Completion
}

// ToolDispatcher executes the tool calls a completion requested.
// *Dispatcher satisfies this interface.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, calls []domain.ToolCallRequest, storeID string) []domain.ToolResult
}

// Status reports which terminal branch a request ended on.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
)

type ChatInput struct {
	Message        string
	ConversationID string
	StoreID        string
}

type ChatOutput struct {
	Reply          domain.Reply
	ConversationID string
	Status         Status
}

// ChatService sequences one inbound message through the pipeline:
// history fetch, prompt assembly, completion, tool dispatch, synthesis,
// history persistence. Instances share no implicit state; the store is
// injected at construction.
type ChatService struct {
	store      ConversationStore
	completer  Completer
	dispatcher ToolDispatcher
}

func NewChatService(store ConversationStore, completer Completer, dispatcher ToolDispatcher) (*ChatService, error) {
	if store == nil {
		return nil, errors.New("usecase: conversation store must not be nil")
	}
	if completer == nil {
		return nil, errors.New("usecase: completer must not be nil")
	}
	if dispatcher == nil {
		return nil, errors.New("usecase: tool dispatcher must not be nil")
	}
	return &ChatService{
		store:      store,
		completer:  completer,
		dispatcher: dispatcher,
	}, nil
}

// Respond handles one user message. Only input validation surfaces an
// error; any failure past that point degrades to a fixed apology reply
// so the caller always receives some answer.
func (s *ChatService) Respond(ctx context.Context, in ChatInput) (out ChatOutput, err error) {
	started := time.Now()

	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "chat pipeline failure",
				"cause", r,
				"conversationId", in.ConversationID,
			)
			out = degradedOutput(in.ConversationID, started)
			err = nil
		}
	}()

	convID := strings.TrimSpace(in.ConversationID)
	if convID == "" {
		convID = newConversationID()
	}

	history := s.store.Get(convID)
	messages := buildPromptMessages(in.StoreID, history, message)
	completion := s.completer.Complete(ctx, messages, toolSchemas())

	var results []domain.ToolResult
	if len(completion.ToolCalls) > 0 {
		results = s.dispatcher.Dispatch(ctx, completion.ToolCalls, in.StoreID)
	}
	content := synthesizeResponse(completion.Text, results)

	// Persist the user turn and the assistant's raw turn (not the
	// synthesized content) so history replay matches what the model
	// actually emitted.
	s.store.Append(convID,
		domain.ChatMessage{Role: domain.RoleUser, Content: message},
		domain.ChatMessage{Role: domain.RoleAssistant, Content: completion.Text, ToolCalls: completion.ToolCalls},
	)

	return ChatOutput{
		Reply: domain.Reply{
			Content:    content,
			IsFromUser: false,
			Timestamp:  time.Now().UTC(),
			Metadata: map[string]any{
				"toolsUsed":        len(results) > 0,
				"processingTimeMs": time.Since(started).Milliseconds(),
			},
		},
		ConversationID: convID,
		Status:         StatusOK,
	}, nil
}

// degradedOutput is the terminal Degraded branch: a fixed apology, the
// inbound conversation id unchanged, and the cause kept server-side.
func degradedOutput(conversationID string, started time.Time) ChatOutput {
	return ChatOutput{
		Reply: domain.Reply{
			Content:   apologyMessage,
			Timestamp: time.Now().UTC(),
			Metadata: map[string]any{
				"toolsUsed":        false,
				"processingTimeMs": time.Since(started).Milliseconds(),
				"error":            true,
			},
		},
		ConversationID: strings.TrimSpace(conversationID),
		Status:         StatusDegraded,
	}
}

var newConversationID = func() string {
	return uuid.NewString()
}
