package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/dinodash/internal/api"
	"github.com/JakeFAU/dinodash/internal/hash/sha256"
)

func newServeCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the cleaned dataset and dashboard views over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.Config()
			logger := appInstance.Logger()
			if path == "" {
				path = cfg.Dataset.EnrichedPath
			}

			_, table, _, err := loadTable(path, logger)
			if err != nil {
				return err
			}
			srv := api.NewServer(table, sha256.New(), cfg, logger)
			httpServer := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			return runHTTPServer(cmd.Context(), httpServer, cfg.ShutdownTimeout(), logger)
		},
	}
	cmd.Flags().StringVar(&path, "data", "", "enriched CSV (defaults to dataset.enriched_path)")
	return cmd
}

// runHTTPServer serves until ctx is done, then drains within shutdownTimeout.
func runHTTPServer(ctx context.Context, httpServer *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting dinodash api", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down dinodash api")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
