package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/dinodash/internal/storage/postgres"
)

type runReader interface {
	GetRun(ctx context.Context, runID string) (postgres.ExportRun, error)
}

func newExportStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <run-id>",
		Short: "Prints the export_runs entry of one export run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			appInstance, err := resolveApp(ctx)
			if err != nil {
				return err
			}
			records, err := appInstance.RecordStore(ctx)
			if err != nil {
				return err
			}
			if records == nil {
				return errors.New("export status requires db.dsn")
			}
			return printRun(ctx, cmd.OutOrStdout(), records, args[0])
		},
	}
}

func printRun(ctx context.Context, w io.Writer, runs runReader, runID string) error {
	run, err := runs.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	fmt.Fprintf(w, "run:      %s\n", run.ID)
	fmt.Fprintf(w, "status:   %s\n", run.Status)
	fmt.Fprintf(w, "rows:     %d\n", run.Rows)
	fmt.Fprintf(w, "started:  %s\n", run.StartedAt.UTC().Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Fprintf(w, "finished: %s\n", run.FinishedAt.UTC().Format(time.RFC3339))
	}
	if run.ErrorMessage != nil {
		fmt.Fprintf(w, "error:    %s\n", *run.ErrorMessage)
	}
	return nil
}
