// Package postgres mirrors the normalized dinosaur table into Postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/dinodash/internal/dataset"
)

const defaultTable = "dinosaurs"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// columns lists the mirrored columns in insert order. source_index carries
// the row index of the raw dataset.
var columns = []string{
	"source_index",
	"name",
	"species",
	"type",
	"length",
	"diet",
	"period",
	"period_from",
	"period_to",
	"lived_in",
	"discovered",
	"major_group",
	"taxonomy",
	"named_by",
	"link",
	"image",
}

// RecordStoreConfig controls the Postgres connection pool.
type RecordStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// RecordStore replaces the mirrored table with a fresh snapshot.
type RecordStore struct {
	pool  pgxPool
	table string
}

// NewRecordStore creates a Postgres-backed RecordStore using the provided config.
func NewRecordStore(ctx context.Context, cfg RecordStoreConfig) (*RecordStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &RecordStore{pool: pool, table: table}, nil
}

// NewRecordStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewRecordStoreWithPool(p pgxPool, table string) (*RecordStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &RecordStore{pool: p, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = defaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *RecordStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the mirror table when it does not exist.
func (s *RecordStore) EnsureSchema(ctx context.Context) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	source_index integer NOT NULL,
	name text NOT NULL,
	species text NOT NULL,
	type text NOT NULL,
	length double precision NOT NULL,
	diet text NOT NULL,
	period text NOT NULL,
	period_from integer NOT NULL,
	period_to integer NOT NULL,
	lived_in text NOT NULL,
	discovered integer NOT NULL,
	major_group text NOT NULL,
	taxonomy text NOT NULL,
	named_by text NOT NULL,
	link text NOT NULL,
	image text NOT NULL
)`, s.table)); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
		return nil
	})
}

// ReplaceRecords deletes every mirrored row and copies records in, inside a
// single transaction. Readers never observe a partial snapshot.
func (s *RecordStore) ReplaceRecords(ctx context.Context, records []dataset.Record) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("record store is not configured")
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", s.table)); err != nil {
			return fmt.Errorf("clear records: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		rows := make([][]any, len(records))
		for i, r := range records {
			rows[i] = []any{
				r.Index, r.Name, r.Species, r.Type, r.Length, r.Diet, r.Period,
				r.PeriodFrom, r.PeriodTo, r.LivedIn, r.Discovered, r.MajorGroup,
				r.Taxonomy, r.NamedBy, r.Link, r.Image,
			}
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{s.table}, columns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy records: %w", err)
		}
		if int(n) != len(records) {
			return fmt.Errorf("copy records: wrote %d of %d rows", n, len(records))
		}
		return nil
	})
}

func (s *RecordStore) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
