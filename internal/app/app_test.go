package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/dinodash/internal/app"
	"github.com/JakeFAU/dinodash/internal/config"
	"github.com/JakeFAU/dinodash/internal/storage/local"
	"github.com/JakeFAU/dinodash/internal/storage/memory"
)

func TestBlobStoreMemory(t *testing.T) {
	t.Parallel()

	a := app.New(config.Config{Storage: config.StorageConfig{Backend: config.StorageMemory}}, zap.NewNop())
	defer a.Close()

	store, err := a.BlobStore(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &memory.BlobStore{}, store)

	again, err := a.BlobStore(context.Background())
	require.NoError(t, err)
	assert.Same(t, store, again)
}

func TestBlobStoreLocal(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "exports")
	a := app.New(config.Config{Storage: config.StorageConfig{Backend: config.StorageLocal, BaseDir: dir}}, nil)
	defer a.Close()

	store, err := a.BlobStore(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &local.BlobStore{}, store)
	assert.DirExists(t, dir)
}

func TestBlobStoreUnknownBackend(t *testing.T) {
	t.Parallel()

	a := app.New(config.Config{Storage: config.StorageConfig{Backend: "ftp"}}, zap.NewNop())
	defer a.Close()

	_, err := a.BlobStore(context.Background())
	require.ErrorContains(t, err, "unknown storage backend")
}

func TestRecordStoreDisabledWithoutDSN(t *testing.T) {
	t.Parallel()

	a := app.New(config.Config{}, zap.NewNop())
	defer a.Close()

	store, err := a.RecordStore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestAccessors(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Server: config.ServerConfig{Port: 9090}}
	logger := zap.NewNop()
	a := app.New(cfg, logger)
	defer a.Close()

	assert.Equal(t, 9090, a.Config().Server.Port)
	assert.Same(t, logger, a.Logger())
}
