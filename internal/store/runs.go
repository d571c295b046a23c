package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/born-ml/tailor/internal/graph"
	"github.com/born-ml/tailor/internal/tailor"
	"github.com/born-ml/tailor/internal/tensor"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("store: run not found")

// Run is one saved interpretation of a model.
type Run struct {
	ID         int64
	Model      string
	Source     string
	InputShape []int
	CreatedAt  time.Time
	Records    []tailor.Record // nil in listings
}

// SaveRun stores run with its records and returns the new run id.
// A zero CreatedAt is set to the current time.
func (db *DB) SaveRun(ctx context.Context, run *Run) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	shape, err := json.Marshal(run.InputShape)
	if err != nil {
		return 0, err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (model, source, input_shape, created_at) VALUES (?, ?, ?, ?)`,
		run.Model, run.Source, string(shape), run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, seq, name, num_params, trainable, dtype, shape) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, r := range run.Records {
		var recShape sql.NullString
		if s, ok := r.Shape(); ok {
			b, err := json.Marshal([]int(s))
			if err != nil {
				return 0, err
			}
			recShape = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, i, r.Name, r.NumParams, r.Trainable, r.DType(), recShape); err != nil {
			return 0, fmt.Errorf("insert record %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	run.ID = id
	return id, nil
}

// ListRuns returns saved runs, newest first, without their records. An empty
// model lists runs of every model.
func (db *DB) ListRuns(ctx context.Context, model string) ([]*Run, error) {
	query := `SELECT id, model, source, input_shape, created_at FROM runs`
	var args []any
	if model != "" {
		query += ` WHERE model = ?`
		args = append(args, model)
	}
	query += ` ORDER BY id DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadRun returns the run with the given id and its records.
func (db *DB) LoadRun(ctx context.Context, id int64) (*Run, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, model, source, input_shape, created_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT name, num_params, trainable, dtype, shape FROM records WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Records = []tailor.Record{}
	for rows.Next() {
		var (
			r     tailor.Record
			dtype string
			shape sql.NullString
		)
		if err := rows.Scan(&r.Name, &r.NumParams, &r.Trainable, &dtype, &shape); err != nil {
			return nil, err
		}
		r.Tensor = tensorInfo(dtype, shape)
		run.Records = append(run.Records, r)
	}
	return run, rows.Err()
}

// DeleteRun removes a run and its records.
func (db *DB) DeleteRun(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run       Run
		shape     string
		createdAt string
	)
	if err := s.Scan(&run.ID, &run.Model, &run.Source, &shape, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(shape), &run.InputShape); err != nil {
		return nil, fmt.Errorf("run %d: input shape: %w", run.ID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("run %d: created_at: %w", run.ID, err)
	}
	run.CreatedAt = t
	return &run, nil
}

func tensorInfo(dtype string, shape sql.NullString) graph.TensorInfo {
	if !shape.Valid {
		return graph.Unresolved{}
	}
	dt, ok := tensor.ParseDType(dtype)
	if !ok {
		return graph.Unresolved{}
	}
	var dims []int
	if err := json.Unmarshal([]byte(shape.String), &dims); err != nil {
		return graph.Unresolved{}
	}
	return graph.Resolved{Shape: tensor.Shape(dims), DType: dt}
}
