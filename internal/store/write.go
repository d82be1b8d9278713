package store

import (
	"context"
	"fmt"
)

// Run is one recorded generate invocation.
type Run struct {
	ID               string   `json:"id"`
	Seq              int64    `json:"seq"`
	APIHash          string   `json:"api_hash"`
	GeneratorVersion string   `json:"generator_version"`
	IRVersion        string   `json:"ir_version"`
	OutDir           string   `json:"out_dir"`
	Check            bool     `json:"check"`
	Outputs          []Output `json:"outputs"`
}

// Output is one namespace file produced by a run.
type Output struct {
	Namespace   string `json:"namespace"`
	Path        string `json:"path"`
	ContentHash string `json:"content_hash"`
	Written     bool   `json:"written"`
	Stale       bool   `json:"stale,omitempty"`
}

// RecordRun appends a run and its outputs in one transaction. The run is
// given the next sequence number and, when run.ID is empty, a fresh id.
// The stored run is returned.
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("record run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, api_hash, generator_version, ir_version, out_dir, check_only)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.APIHash,
		run.GeneratorVersion,
		run.IRVersion,
		run.OutDir,
		boolToInt(run.Check),
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run %s: %w", run.ID, err)
	}

	for _, out := range run.Outputs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO outputs
			(run_id, namespace, path, content_hash, written, stale)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			out.Namespace,
			out.Path,
			out.ContentHash,
			boolToInt(out.Written),
			boolToInt(out.Stale),
		)
		if err != nil {
			return Run{}, fmt.Errorf("record output %s/%s: %w", run.ID, out.Namespace, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	if run.Outputs == nil {
		run.Outputs = []Output{}
	}
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
