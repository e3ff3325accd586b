package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/liliang-cn/chatrelay/internal/api"
	"github.com/liliang-cn/chatrelay/internal/client"
	"github.com/liliang-cn/chatrelay/internal/config"
	"github.com/liliang-cn/chatrelay/internal/service"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Collaborator clients. Search is optional: without a credential the
	// pipeline skips live-data retrieval entirely.
	timeClient := client.NewTimeClient(cfg.Time)
	var searchSource service.SearchSource
	if cfg.Search.APIKey != "" {
		searchSource = client.NewSearchClient(cfg.Search)
	} else {
		logger.Info("no search credential configured, live-data retrieval disabled")
	}
	llmClient := client.NewLLMClient(cfg.LLM)

	// Initialize services
	enricher := service.NewEnricher(timeClient, searchSource, logger)
	chatService := service.NewChatService(enricher, llmClient, logger)

	// Setup router
	router := api.SetupRouter(chatService, api.RouterConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		RateLimit:    cfg.RateLimit,
	}, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting ChatRelay server",
			zap.String("address", cfg.Address()),
			zap.String("model", cfg.LLM.Model),
			zap.Bool("search_enabled", searchSource != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
