package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/dinodash/internal/dataset"
	"github.com/JakeFAU/dinodash/internal/insights"
)

func newDescribeCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Prints the table shape before and after cleaning plus numeric statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if path == "" {
				path = appInstance.Config().Dataset.EnrichedPath
			}
			raw, table, report, err := loadTable(path, appInstance.Logger())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "raw:")
			fmt.Fprint(out, dataset.DescribeRaw(raw).String())
			fmt.Fprintln(out)
			fmt.Fprintln(out, "cleaned:")
			fmt.Fprint(out, dataset.DescribeTable(table).String())
			fmt.Fprintln(out)
			for _, d := range report.Dropped {
				fmt.Fprintf(out, "dropped %d rows at %s\n", d.Rows, d.Rule)
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, insights.Describe(table).String())
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "data", "", "enriched CSV (defaults to dataset.enriched_path)")
	return cmd
}
