package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/dinodash/internal/dataset"
	"github.com/JakeFAU/dinodash/internal/enrich"
	collyfetcher "github.com/JakeFAU/dinodash/internal/fetcher/colly"
	"github.com/JakeFAU/dinodash/internal/policy/ratelimit"
)

func newEnrichCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Adds an image column to the raw table by scraping detail pages",
		Long: `Reads the raw directory table, fetches every row's detail page one at a
time and writes the table back out with an image column. Pages that cannot
be fetched or carry no image leave the cell empty.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.Config()
			logger := appInstance.Logger()
			if in == "" {
				in = cfg.Dataset.RawPath
			}
			if out == "" {
				out = cfg.Dataset.EnrichedPath
			}

			raw, err := readRaw(in)
			if err != nil {
				return err
			}
			fetcher, err := collyfetcher.New(collyfetcher.Config{
				UserAgent:     cfg.Enrich.UserAgent,
				RespectRobots: cfg.Enrich.RespectRobots,
				Timeout:       cfg.EnrichTimeout(),
				Delay:         cfg.EnrichDelay(),
			})
			if err != nil {
				return fmt.Errorf("init fetcher: %w", err)
			}
			enricher := enrich.New(
				fetcher,
				enrich.NewImageExtractor(cfg.Enrich.Selector, cfg.Enrich.Attribute),
				logger,
				enrich.WithLimiter(ratelimit.New(ratelimit.Config{
					RPS:   cfg.Enrich.RequestsPerSecond,
					Burst: cfg.Enrich.Burst,
				})),
			)

			enriched, summary, err := enricher.EnrichTable(cmd.Context(), raw)
			if err != nil {
				return fmt.Errorf("enrich: %w", err)
			}
			if err := writeRaw(out, enriched); err != nil {
				return err
			}
			logger.Info("enriched table written",
				zap.String("path", out),
				zap.Int("rows", summary.Total),
				zap.Any("outcomes", summary.Outcomes),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "raw CSV (defaults to dataset.raw_path)")
	cmd.Flags().StringVar(&out, "out", "", "enriched CSV (defaults to dataset.enriched_path)")
	return cmd
}

// writeRaw writes through a temp file so a failed run never truncates out.
func writeRaw(out string, t *dataset.RawTable) error {
	tmp, err := os.CreateTemp(filepath.Dir(out), ".enrich-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := dataset.WriteRawCSV(tmp, t); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return fmt.Errorf("rename to %s: %w", out, err)
	}
	return nil
}
