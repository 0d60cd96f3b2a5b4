// Package export writes the normalized table to a blob store and, when
// configured, mirrors it into a record store.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/dinodash/internal/dataset"
	"github.com/JakeFAU/dinodash/internal/metrics"
	"github.com/JakeFAU/dinodash/internal/storage/postgres"
)

// RunLog records the lifecycle of an export run.
type RunLog interface {
	StartRun(ctx context.Context, runID string, startedAt time.Time) error
	CompleteRun(ctx context.Context, runID string, finishedAt time.Time, status postgres.RunStatus, rows int, errMsg *string) error
}

// Config controls object naming.
type Config struct {
	Prefix  string
	Formats []dataset.Format
}

// Result describes a finished export run.
type Result struct {
	RunID    string                    `json:"run_id"`
	Rows     int                       `json:"rows"`
	Objects  map[dataset.Format]string `json:"objects"`
	Mirrored bool                      `json:"mirrored"`
	Started  time.Time                 `json:"started"`
	Finished time.Time                 `json:"finished"`
}

// Exporter runs exports. Records and Runs are optional.
type Exporter struct {
	Blobs   dataset.BlobStore
	Records dataset.RecordStore
	Runs    RunLog
	IDs     dataset.IDGenerator
	Clock   dataset.Clock
	Config  Config
	Logger  *zap.Logger
}

// ObjectPath is where format f of run runID is stored.
func ObjectPath(prefix, runID string, f dataset.Format) string {
	return path.Join(prefix, runID, f.FileName())
}

// Run writes every configured format under <prefix>/<run-id>/ and mirrors the
// records. A failure in any step fails the run.
func (e *Exporter) Run(ctx context.Context, table *dataset.Table) (Result, error) {
	if e.Blobs == nil || e.IDs == nil || e.Clock == nil {
		return Result{}, errors.New("exporter requires a blob store, id generator and clock")
	}
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID, err := e.IDs.NewID()
	if err != nil {
		return Result{}, fmt.Errorf("new run id: %w", err)
	}
	logger = logger.With(zap.String("run_id", runID))
	res := Result{RunID: runID, Rows: table.Len(), Objects: map[dataset.Format]string{}, Started: e.Clock.Now()}

	if e.Runs != nil {
		if err := e.Runs.StartRun(ctx, runID, res.Started); err != nil {
			return res, fmt.Errorf("start run: %w", err)
		}
	}

	runErr := e.write(ctx, table, &res, logger)
	res.Finished = e.Clock.Now()

	if e.Runs != nil {
		status, msg := postgres.RunSucceeded, (*string)(nil)
		if runErr != nil {
			status = postgres.RunFailed
			m := runErr.Error()
			msg = &m
		}
		if err := e.Runs.CompleteRun(ctx, runID, res.Finished, status, res.Rows, msg); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("complete run: %w", err))
		}
	}
	if runErr != nil {
		logger.Error("export failed", zap.Error(runErr))
		return res, runErr
	}
	logger.Info("export finished",
		zap.Int("rows", res.Rows),
		zap.Int("objects", len(res.Objects)),
		zap.Bool("mirrored", res.Mirrored),
		zap.Duration("took", res.Finished.Sub(res.Started)),
	)
	return res, nil
}

func (e *Exporter) write(ctx context.Context, table *dataset.Table, res *Result, logger *zap.Logger) error {
	formats := e.Config.Formats
	if len(formats) == 0 {
		formats = dataset.Formats
	}
	for _, f := range formats {
		body, err := dataset.Render(table, f)
		if err != nil {
			metrics.ObserveExport(string(f), "error", 0)
			return fmt.Errorf("render %s: %w", f, err)
		}
		uri, err := e.Blobs.PutObject(ctx, ObjectPath(e.Config.Prefix, res.RunID, f), f.ContentType(), bytes.NewReader(body))
		if err != nil {
			metrics.ObserveExport(string(f), "error", 0)
			return fmt.Errorf("store %s: %w", f, err)
		}
		metrics.ObserveExport(string(f), "stored", len(body))
		res.Objects[f] = uri
		logger.Debug("export object stored", zap.String("format", string(f)), zap.String("uri", uri))
	}
	if e.Records != nil {
		if err := e.Records.ReplaceRecords(ctx, table.Records()); err != nil {
			return fmt.Errorf("mirror records: %w", err)
		}
		res.Mirrored = true
	}
	return nil
}
