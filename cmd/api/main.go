package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vijay-1103/transmittal-craft/internal/app"
	"github.com/vijay-1103/transmittal-craft/internal/buildinfo"
	"github.com/vijay-1103/transmittal-craft/internal/config"
	"github.com/vijay-1103/transmittal-craft/internal/handlers"
	"github.com/vijay-1103/transmittal-craft/internal/logging"
	"github.com/vijay-1103/transmittal-craft/internal/observability"
	"github.com/vijay-1103/transmittal-craft/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	observability.RegisterMetrics()

	// 2. Event hub for dashboards
	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := websocket.NewHub(sugar)
	go hub.Run(hubCtx)

	// 3. Database, archive and lifecycle manager
	a, err := app.Open(context.Background(), cfg, sugar, app.Options{Publisher: hub})
	if err != nil {
		sugar.Fatalf("Failed to start: %v", err)
	}

	router := handlers.NewRouter(handlers.Deps{
		Manager:          a.Manager,
		StatusChecks:     a.StatusChecks,
		Hub:              hub,
		Logger:           sugar,
		PathPrefix:       cfg.PathPrefix,
		CORSOrigins:      cfg.CORSOrigins,
		DefaultListLimit: cfg.Transmittal.DefaultListLimit,
		MaxUploadBytes:   cfg.MaxUploadBytes,
	})

	// 4. Start server with graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		sugar.Infof("🚀 Transmittal service %s starting on port %s [Prefix: '%s', strict: %t]",
			buildinfo.Version, cfg.Port, cfg.PathPrefix, cfg.Transmittal.StrictTransitions)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	sugar.Infof("⚠️ Received signal: %v. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		sugar.Errorf("HTTP server shutdown error: %v", err)
	}
	stopHub()

	if err := a.Close(); err != nil {
		sugar.Errorf("Database close error: %v", err)
	}
	sugar.Info("✅ Shutdown complete")
}
