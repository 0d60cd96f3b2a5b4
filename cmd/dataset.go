package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

func readRaw(path string) (*dataset.RawTable, error) {
	f, err := os.Open(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	raw, err := dataset.ReadRawCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

// loadTable reads the enriched CSV at path and normalizes it.
func loadTable(path string, logger *zap.Logger) (*dataset.RawTable, *dataset.Table, dataset.Report, error) {
	raw, err := readRaw(path)
	if err != nil {
		return nil, nil, dataset.Report{}, err
	}
	table, report, err := dataset.NewPipeline(logger).Normalize(raw)
	if err != nil {
		return nil, nil, dataset.Report{}, fmt.Errorf("normalize %s: %w", path, err)
	}
	return raw, table, report, nil
}
