// cmd/api-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stock-ai-service/internal/common/config"
	"stock-ai-service/internal/common/database"
	"stock-ai-service/internal/common/logger"
	"stock-ai-service/internal/common/observability"
	"stock-ai-service/internal/llm"
	"stock-ai-service/internal/pipeline"
	"stock-ai-service/internal/query"
	"stock-ai-service/internal/render"
	"stock-ai-service/internal/server"
	"stock-ai-service/internal/trend"
	"stock-ai-service/pkg/semantics"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting API server...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Init Postgres with retry ---
	var pgClient *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pgClient, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return pgClient.Ping(pingCtx)
	}, 10, 2*time.Second, zapLog, "Postgres initialization")
	if err != nil {
		zapLog.Fatal("postgres init failed", zap.Error(err))
	}
	defer pgClient.Close()

	// --- Wire the query pipeline ---
	registry := semantics.NewRegistry()
	executor := query.NewExecutor(pgClient, config.GetDuration(cfg.Query.Timeout), log)
	renderer := render.NewRenderer(registry)
	llmClient := llm.NewOpenAIClient(cfg, registry, executor, log)
	if !llmClient.Available() {
		zapLog.Warn("OPENAI_API_KEY not configured, LLM fallback disabled")
	}
	processor := pipeline.NewProcessor(executor, renderer, llmClient, obs, log)
	trends := trend.NewService(pgClient, registry, log)

	handlers := server.NewHandlers(cfg, processor, executor, trends, llmClient, registry, log)
	srv := server.New(cfg, handlers, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			zapLog.Error("server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("API server stopped")
}
