// Package cmd defines the dinodash CLI: enrich the scraped table, serve the
// dashboard data, export snapshots and describe the dataset.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/dinodash/internal/app"
	"github.com/JakeFAU/dinodash/internal/config"
	"github.com/JakeFAU/dinodash/internal/logging"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// newApp builds the application from a config file path. Tests replace it.
var newApp = func(configPath string) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return app.New(cfg, logger), nil
}

// session owns the App built for one command invocation. Cobra skips
// PersistentPostRun when RunE fails, so the App is closed by execute instead.
type session struct {
	app *app.App
}

func (s *session) close() {
	if s.app != nil {
		s.app.Close()
		s.app = nil
	}
}

func newRootCmd(s *session) *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "dinodash",
		Short: "Dinosaur dataset enrichment, cleaning and dashboard service.",
		Long: `dinodash turns the scraped dinosaur directory table into a cleaned,
ordered dataset. It can enrich rows with detail-page images, serve the
dashboard views over HTTP and export CSV/HTML snapshots.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			s.app = appInstance
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (defaults plus DINODASH_* environment when empty)")

	cmd.AddCommand(newEnrichCmd(), newServeCmd(), newExportCmd(), newDescribeCmd())
	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// execute runs the CLI with args and closes the App whether or not the
// command succeeded.
func execute(ctx context.Context, args []string, out io.Writer) error {
	s := &session{}
	defer s.close()

	root := newRootCmd(s)
	root.SetArgs(args)
	if out != nil {
		root.SetOut(out)
		root.SetErr(out)
	}
	return root.ExecuteContext(ctx)
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:], nil); err != nil {
		stop()
		os.Exit(1)
	}
}
