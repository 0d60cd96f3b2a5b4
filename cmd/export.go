package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/dinodash/internal/clock/system"
	"github.com/JakeFAU/dinodash/internal/dataset"
	"github.com/JakeFAU/dinodash/internal/export"
	uuidgen "github.com/JakeFAU/dinodash/internal/id/uuid"
)

func newExportCmd() *cobra.Command {
	var (
		path    string
		formats []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Writes CSV/HTML snapshots of the cleaned dataset to the configured store",
		Long: `Normalizes the enriched table and stores it as dino_df.csv and dino_df.html
under <storage.prefix>/<run-id>/. When db.dsn is set the records are also
mirrored into Postgres and the run is logged in export_runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			appInstance, err := resolveApp(ctx)
			if err != nil {
				return err
			}
			cfg := appInstance.Config()
			logger := appInstance.Logger()
			if path == "" {
				path = cfg.Dataset.EnrichedPath
			}

			parsed := make([]dataset.Format, 0, len(formats))
			for _, f := range formats {
				format, err := dataset.ParseFormat(f)
				if err != nil {
					return err
				}
				parsed = append(parsed, format)
			}

			_, table, _, err := loadTable(path, logger)
			if err != nil {
				return err
			}
			blobs, err := appInstance.BlobStore(ctx)
			if err != nil {
				return err
			}
			exporter := &export.Exporter{
				Blobs:  blobs,
				IDs:    uuidgen.New(),
				Clock:  system.New(),
				Config: export.Config{Prefix: cfg.Storage.Prefix, Formats: parsed},
				Logger: logger,
			}
			records, err := appInstance.RecordStore(ctx)
			if err != nil {
				return err
			}
			if records != nil {
				exporter.Records = records
				exporter.Runs = records
			}

			res, err := exporter.Run(ctx, table)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s: %d rows\n", res.RunID, res.Rows)
			for _, f := range dataset.Formats {
				if uri, ok := res.Objects[f]; ok {
					fmt.Fprintf(out, "  %s\t%s\n", f, uri)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "data", "", "enriched CSV (defaults to dataset.enriched_path)")
	cmd.Flags().StringSliceVar(&formats, "format", nil, "formats to write (csv, html); all when empty")
	cmd.AddCommand(newExportStatusCmd())
	return cmd
}
