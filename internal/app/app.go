// Package app wires configuration, storage and the lifecycle manager together
// for the server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vijay-1103/transmittal-craft/internal/config"
	"github.com/vijay-1103/transmittal-craft/internal/database"
	"github.com/vijay-1103/transmittal-craft/internal/handlers"
	"github.com/vijay-1103/transmittal-craft/internal/repository"
	"github.com/vijay-1103/transmittal-craft/internal/services/archive"
	"github.com/vijay-1103/transmittal-craft/internal/storage"
	"github.com/vijay-1103/transmittal-craft/internal/transmittal"
)

// App holds the long-lived services of one process
type App struct {
	Config       *config.Config
	Log          *zap.SugaredLogger
	DB           *database.DB
	StatusChecks handlers.StatusCheckStore
	Manager      *transmittal.Manager
}

// Options select the backing store and event sink
type Options struct {
	// InMemory skips PostgreSQL entirely
	InMemory  bool
	Publisher transmittal.Publisher
}

// Open connects storage and builds the manager. Close must be called.
func Open(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, opts Options) (*App, error) {
	a := &App{Config: cfg, Log: log}

	var store transmittal.Store
	if opts.InMemory {
		log.Info("🧪 Using in-memory store")
		store = storage.NewMemoryStore()
		a.StatusChecks = storage.NewMemoryStatusChecks()
	} else {
		db, err := database.Connect(cfg.Database, database.Options{Logger: log})
		if err != nil {
			return nil, err
		}
		log.Info("🚀 Synchronizing database schema...")
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("✅ Schema synchronized successfully")
		a.DB = db
		store = repository.NewTransmittalRepository(db.DB)
		a.StatusChecks = repository.NewStatusCheckRepository(db.DB)
	}

	var archiver transmittal.Archiver
	if cfg.Archive.Enabled() {
		s, err := archive.New(cfg.Archive)
		if err != nil {
			a.Close()
			return nil, err
		}
		bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = s.EnsureBucket(bucketCtx)
		cancel()
		if err != nil {
			// The service works without an archive; generate only logs upload failures
			log.Warnf("⚠️ Archive: bucket %s unavailable: %v", cfg.Archive.Bucket, err)
		} else {
			log.Infof("🗄️ Archive: storing generated PDFs in %s/%s", cfg.Archive.Endpoint, cfg.Archive.Bucket)
		}
		archiver = s
	}

	a.Manager = transmittal.NewManager(store, transmittal.Options{
		StrictTransitions: cfg.Transmittal.StrictTransitions,
		MaxListLimit:      cfg.Transmittal.MaxListLimit,
		Publisher:         opts.Publisher,
		Archiver:          archiver,
		Logger:            log,
	})
	return a, nil
}

// Close releases the database (stopping embedded PostgreSQL)
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	a.Log.Info("🛑 Closing database connection...")
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
