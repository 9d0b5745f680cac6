// Command server runs the vidtube HTTP API.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/middleware"
	"vidtube/internal/observability"
	"vidtube/internal/server"
)

// @title vidtube API
// @version 1.0
// @description Video sharing API with channels, comments, likes, playlists and tweets.

// @contact.name API Support
// @contact.email support@vidtube.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "vidtube-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampler,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		middleware.Logger.Info("shutting down server", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			middleware.Logger.Error("server stopped", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		middleware.Logger.Error("server shutdown error", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		middleware.Logger.Error("tracing shutdown error", "error", err)
	}
}
