package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"handycan-agent/handler"
	"handycan-agent/internal/conversation"
	"handycan-agent/internal/integrations/coreapi"
	"handycan-agent/internal/integrations/groq"
	"handycan-agent/internal/integrations/paramstore"
	"handycan-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	coreServiceURL := os.Getenv("CORE_SERVICE_URL")
	paramPrefix := os.Getenv("PARAM_PREFIX")
	model := envOr("GROQ_MODEL", "llama3-70b-8192")
	maxHistoryTurns := envInt("MAX_HISTORY_TURNS", conversation.DefaultMaxTurns)

	// ---- Clients ----
	var llm usecase.LLMClient
	if paramPrefix == "" {
		// Without a parameter prefix there is no API token to fetch,
		// so the gateway serves canned fallback completions only.
		slog.Warn("PARAM_PREFIX is not set, running without a model backend")
	} else {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		groqClient, err := groq.NewClient(ssmClient, paramPrefix)
		if err != nil {
			slog.Error("failed to create Groq client", "err", err)
			os.Exit(1)
		}
		llm = groqClient
	}

	coreClient, err := coreapi.NewClient(coreServiceURL)
	if err != nil {
		slog.Error("failed to create core service client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	dispatcher, err := usecase.NewDispatcher(coreClient)
	if err != nil {
		slog.Error("failed to create tool dispatcher", "err", err)
		os.Exit(1)
	}

	chatService, err := usecase.NewChatService(
		conversation.NewStore(maxHistoryTurns),
		usecase.NewGateway(llm, model),
		dispatcher,
	)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
