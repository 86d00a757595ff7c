// Package handler adapts API Gateway proxy events to the chat use case.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"handycan-agent/internal/usecase"
)

// ChatUseCase is the orchestration entry point consumed by Handler.
// *usecase.ChatService satisfies this interface.
type ChatUseCase interface {
	Respond(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type Handler struct {
	chat ChatUseCase
}

func NewHandler(chat ChatUseCase) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	return &Handler{chat: chat}, nil
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	StoreID        string `json:"storeId"`
}

type chatResponse struct {
	Response       string           `json:"response"`
	ConversationID string           `json:"conversationId"`
	Timestamp      string           `json:"timestamp"`
	Metadata       responseMetadata `json:"metadata"`
}

type responseMetadata struct {
	ToolsUsed        bool  `json:"toolsUsed"`
	ProcessingTimeMs int64 `json:"processingTime"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := correlationIDFrom(event.Headers)
	log := slog.With("correlationId", correlationID)

	var req chatRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		log.Warn("rejecting malformed request body", "err", err)
		return respond(http.StatusBadRequest, errorResponse{
			Error:  string(usecase.ErrorInvalidInput),
			Reason: "malformed_body",
		}, correlationID), nil
	}

	out, err := h.chat.Respond(ctx, usecase.ChatInput{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		StoreID:        req.StoreID,
	})
	if err != nil {
		return errorFor(err, log, correlationID), nil
	}

	toolsUsed, _ := out.Reply.Metadata["toolsUsed"].(bool)
	processingMs, _ := out.Reply.Metadata["processingTimeMs"].(int64)
	if out.Status == usecase.StatusDegraded {
		log.Error("served degraded response", "conversationId", out.ConversationID)
	} else {
		log.Info("served chat response",
			"conversationId", out.ConversationID,
			"toolsUsed", toolsUsed,
			"processingTimeMs", processingMs,
		)
	}

	return respond(http.StatusOK, chatResponse{
		Response:       out.Reply.Content,
		ConversationID: out.ConversationID,
		Timestamp:      out.Reply.Timestamp.UTC().Format(time.RFC3339),
		Metadata: responseMetadata{
			ToolsUsed:        toolsUsed,
			ProcessingTimeMs: processingMs,
		},
	}, correlationID), nil
}

func errorFor(err error, log *slog.Logger, correlationID string) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorInvalidInput {
		log.Warn("rejecting invalid input", "reason", ucErr.Reason)
		return respond(http.StatusBadRequest, errorResponse{
			Error:  string(ucErr.Code),
			Reason: ucErr.Reason,
		}, correlationID)
	}
	log.Error("chat use case failed", "err", err)
	return respond(http.StatusInternalServerError, errorResponse{
		Error: string(usecase.ErrorInternal),
	}, correlationID)
}

func respond(status int, body any, correlationID string) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		payload = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":     "application/json",
			"X-Correlation-Id": correlationID,
		},
		Body: string(payload),
	}
}

func correlationIDFrom(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "X-Correlation-Id") && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return uuid.NewString()
}
