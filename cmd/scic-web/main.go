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

	"github.com/existflow/scic/internal/api"
	"github.com/existflow/scic/internal/config"
	"github.com/existflow/scic/internal/content"
	"github.com/existflow/scic/internal/logger"
	"github.com/existflow/scic/server"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	cfg, err := config.Load(os.Getenv("SCIC_CONFIG"))
	if err != nil {
		log.Printf("Warning: failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Init(logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		FilePath:   cfg.LogFile,
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     7,
		MaxBackups: 5,
		Console:    true,
	}); err != nil {
		log.Printf("Warning: failed to initialize logger: %v", err)
	}
	defer logger.Close()

	site, err := content.Load()
	if err != nil {
		log.Fatalf("Failed to load site content: %v", err)
	}

	// Only public endpoints are used, so no session guard is attached
	backend := api.New(cfg.API, nil, nil)
	srv := server.New(backend, site)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("SCIC site starting", logger.F("addr", cfg.Web.Addr), logger.F("backend", cfg.API.BaseURL))
		if err := srv.Start(cfg.Web.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", logger.F("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", logger.F("error", err))
	}
	logger.Info("SCIC site stopped")
}
