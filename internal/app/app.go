// Package app holds the long-lived services shared by the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/dinodash/internal/config"
	"github.com/JakeFAU/dinodash/internal/dataset"
	"github.com/JakeFAU/dinodash/internal/storage/gcs"
	"github.com/JakeFAU/dinodash/internal/storage/local"
	"github.com/JakeFAU/dinodash/internal/storage/memory"
	"github.com/JakeFAU/dinodash/internal/storage/postgres"
)

// App carries configuration, the logger and lazily opened stores. Stores are
// opened on first use so commands that never export never dial out.
type App struct {
	cfg    config.Config
	logger *zap.Logger

	mu      sync.Mutex
	blobs   dataset.BlobStore
	records *postgres.RecordStore
	closers []func() error
}

// New builds an App.
func New(cfg config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{cfg: cfg, logger: logger}
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// BlobStore opens the export backend selected by storage.backend.
func (a *App) BlobStore(ctx context.Context) (dataset.BlobStore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.blobs != nil {
		return a.blobs, nil
	}

	sc := a.cfg.Storage
	switch sc.Backend {
	case config.StorageMemory:
		a.logger.Info("using in-memory export store; artifacts are discarded on exit")
		a.blobs = memory.NewBlobStore()
	case config.StorageLocal:
		store, err := local.New(local.Config{BaseDir: sc.BaseDir})
		if err != nil {
			return nil, fmt.Errorf("init local store: %w", err)
		}
		a.logger.Info("using local export store", zap.String("base_dir", sc.BaseDir))
		a.blobs = store
	case config.StorageGCS:
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		store, err := gcs.New(client, gcsConfig(sc))
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("init gcs store: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.logger.Info("using gcs export store", zap.String("bucket", sc.GCSBucket))
		a.blobs = store
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", sc.Backend)
	}
	return a.blobs, nil
}

func gcsConfig(sc config.StorageConfig) gcs.Config {
	return gcs.Config{Bucket: sc.GCSBucket, CacheControl: sc.CacheControl}
}

// RecordStore connects to the Postgres mirror and ensures its tables exist.
// It returns nil without error when no DSN is configured.
func (a *App) RecordStore(ctx context.Context) (*postgres.RecordStore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.records != nil || a.cfg.DB.DSN == "" {
		return a.records, nil
	}

	store, err := postgres.NewRecordStore(ctx, postgres.RecordStoreConfig{
		DSN:      a.cfg.DB.DSN,
		Table:    a.cfg.DB.Table,
		MaxConns: int32(a.cfg.DB.MaxConns), //nolint:gosec // validated small value
	})
	if err != nil {
		return nil, fmt.Errorf("init record store: %w", err)
	}
	if err := errors.Join(store.EnsureSchema(ctx), store.EnsureRunSchema(ctx)); err != nil {
		store.Close()
		return nil, err
	}
	a.logger.Info("connected to record store", zap.String("table", a.cfg.DB.Table))
	a.records = store
	a.closers = append(a.closers, func() error {
		store.Close()
		return nil
	})
	return a.records, nil
}

// Close releases every opened store and flushes the logger.
func (a *App) Close() {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			a.logger.Warn("error closing service", zap.Error(err))
		}
	}
	a.logger.Debug("application services closed", zap.Int("closed", len(closers)))
	if err := a.logger.Sync(); err != nil {
		// stderr/stdout sinks cannot be synced on some platforms.
		fmt.Fprintf(os.Stderr, "logger sync: %v\n", err)
	}
}
