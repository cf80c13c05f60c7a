package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"trailview/pkg/db"
	"trailview/pkg/model"
)

// ErrInvalidTable is returned when a table name is not a plain SQL identifier.
var ErrInvalidTable = errors.New("invalid table name")

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validTable(table string) (string, error) {
	if table == "" {
		return db.DefaultTable, nil
	}
	if !identRe.MatchString(table) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return table, nil
}

// SQLiteSource loads a recording from a table with time, x, y and z columns.
type SQLiteSource struct {
	db    *db.DB
	table string
}

// NewSQLiteSource creates a source reading from table (DefaultTable when empty).
func NewSQLiteSource(d *db.DB, table string) (*SQLiteSource, error) {
	t, err := validTable(table)
	if err != nil {
		return nil, err
	}
	return &SQLiteSource{db: d, table: t}, nil
}

// Name implements Source.
func (s *SQLiteSource) Name() string {
	return "sqlite:" + s.table
}

// Load implements Source. Rows with NULL or non-finite values are dropped.
func (s *SQLiteSource) Load(ctx context.Context) ([]model.Sample, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT time, x, y, z FROM %s ORDER BY rowid", s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	defer rows.Close()

	samples := make([]model.Sample, 0)
	dropped := 0
	for rows.Next() {
		var t, x, y, z sql.NullFloat64
		if err := rows.Scan(&t, &x, &y, &z); err != nil {
			dropped++
			continue
		}
		if !validRow(t, x, y, z) {
			dropped++
			continue
		}
		samples = append(samples, model.NewSample(t.Float64, x.Float64, y.Float64, z.Float64))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.table, err)
	}

	slog.Debug("Recording loaded", "table", s.table, "samples", len(samples), "dropped", dropped)
	return samples, nil
}

func validRow(vals ...sql.NullFloat64) bool {
	for _, v := range vals {
		if !v.Valid || !isFinite(v.Float64) {
			return false
		}
	}
	return true
}

// Import writes samples into table (DefaultTable when empty), creating it if needed.
// Samples are appended in order inside a single transaction.
func Import(ctx context.Context, d *db.DB, table string, samples []model.Sample) error {
	t, err := validTable(table)
	if err != nil {
		return err
	}
	if err := d.EnsureSampleTable(t); err != nil {
		return err
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (time, x, y, z) VALUES (?, ?, ?, ?)", t))
	if err != nil {
		return fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx, s.Time, s.X, s.Y, s.Z); err != nil {
			return fmt.Errorf("failed to insert sample at t=%v: %w", s.Time, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}
