package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"recycling-helper/config"
	"recycling-helper/gemini"
	"recycling-helper/metrics"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using system environment variables")
	}

	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Invalid LOG_LEVEL %q, keeping default", cfg.LogLevel)
	}

	if !cfg.HasAPIKey() {
		log.Warn("GEMINI_API_KEY is not set, /analyze-image requests will fail")
	}

	metrics.Register()

	router := setupRouter(cfg, gemini.NewClient(cfg))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Starting %s on port %s", ServiceName, cfg.Port)
		log.Infof("Gemini model: %s, timeout: %s", cfg.GeminiModel, cfg.GeminiTimeout)
		log.Infof("Allowed origins: %s", strings.Join(cfg.AllowedOrigins, ","))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GeminiTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Info("Server exited")
}
