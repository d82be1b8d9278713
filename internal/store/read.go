package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// ListRuns returns the most recent runs, newest first, with their outputs.
// limit <= 0 returns every run.
//
// Returns an empty slice (not nil) when the ledger is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, seq, api_hash, generator_version, ir_version, out_dir, check_only
		FROM runs
		ORDER BY seq DESC, id COLLATE BINARY ASC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		runs[i].Outputs, err = s.readOutputs(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// ReadRun returns the run with the given id and its outputs.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, api_hash, generator_version, ir_version, out_dir, check_only
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}

	run.Outputs, err = s.readOutputs(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// readOutputs returns a run's outputs ordered by namespace.
func (s *Store) readOutputs(ctx context.Context, runID string) ([]Output, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT namespace, path, content_hash, written, stale
		FROM outputs
		WHERE run_id = ?
		ORDER BY namespace COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()

	outputs := []Output{}
	for rows.Next() {
		var out Output
		var written, stale int
		if err := rows.Scan(&out.Namespace, &out.Path, &out.ContentHash, &written, &stale); err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		out.Written = written != 0
		out.Stale = stale != 0
		outputs = append(outputs, out)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outputs: %w", err)
	}
	return outputs, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var check int
	err := row.Scan(&run.ID, &run.Seq, &run.APIHash, &run.GeneratorVersion, &run.IRVersion, &run.OutDir, &check)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Check = check != 0
	return run, nil
}
