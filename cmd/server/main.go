package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizgen/internal/api"
	"quizgen/internal/api/handlers"
	"quizgen/internal/config"
	"quizgen/internal/db"
	"quizgen/internal/llm"
	"quizgen/internal/notify"
	"quizgen/internal/quiz"
	"quizgen/internal/r2"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Set up context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the document store (migrations run on open)
	store, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to %s store: %v", cfg.StoreDriver, err)
	}
	defer store.Close()
	log.Printf("INFO: Using %s store", cfg.StoreDriver)

	// Initialize the text-generation provider
	provider, err := llm.NewProvider(ctx, llm.Options{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey(),
		Model:    cfg.LLMModel(),
		BaseURL:  cfg.OpenAIBaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize %s provider: %v", cfg.LLMProvider, err)
	}
	defer provider.Close()

	generator := quiz.NewGenerator(store, provider)
	verifier := quiz.NewVerifier(store)

	// Optional archive of generated sets
	archive, err := r2.NewClient(ctx, cfg.R2)
	if err != nil {
		log.Fatalf("Failed to initialize R2 client: %v", err)
	}
	if archive != nil {
		generator.Archiver = archive
	}

	notifier := notify.NewDiscord(cfg.DiscordWebhookURL, cfg.Env)
	defer notifier.Wait()

	// --- Session Configuration ---
	sessionStore, closeSessions, err := api.NewSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	defer closeSessions()

	// Set up Gin router
	router := gin.Default()
	handler := handlers.NewHandler(store, generator, verifier, notifier, cfg.IsProduction())
	api.SetupRoutes(router, handler, sessionStore, cfg.CORSOrigins)

	// Create HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give server 5 seconds to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
