package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/sdbind/internal/ir"
)

// UpdateFilter narrows ReadUpdates. Empty fields match everything.
type UpdateFilter struct {
	RunID string
	Key   string
}

// ReadRuns returns every run in insertion order.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ReadRuns(ctx context.Context) ([]ir.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root, prefix, keys, engine_version
		FROM runs
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.RunRecord{}
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
	return runs, nil
}

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, root, prefix, keys, engine_version
		FROM runs
		WHERE id = ?
	`, id)
	return scanRun(row)
}

// LatestRun returns the most recently written run.
// Returns sql.ErrNoRows if the journal is empty.
func (s *Store) LatestRun(ctx context.Context) (ir.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, root, prefix, keys, engine_version
		FROM runs
		ORDER BY rowid DESC
		LIMIT 1
	`)
	return scanRun(row)
}

// ReadUpdates returns the updates matching f.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadUpdates(ctx context.Context, f UpdateFilter) ([]ir.UpdateRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, key, directive, argument, element, raw, value, error
		FROM updates
		WHERE (? = '' OR run_id = ?)
		  AND (? = '' OR key = ?)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, f.RunID, f.RunID, f.Key, f.Key)
	if err != nil {
		return nil, fmt.Errorf("query updates: %w", err)
	}
	defer rows.Close()

	updates := []ir.UpdateRecord{}
	for rows.Next() {
		upd, err := scanUpdate(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, upd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate updates: %w", err)
	}
	return updates, nil
}

// CountUpdates returns the number of updates journaled for runID.
func (s *Store) CountUpdates(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM updates WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count updates: %w", err)
	}
	return n, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (ir.RunRecord, error) {
	var run ir.RunRecord
	var keysJSON string
	if err := row.Scan(&run.ID, &run.Root, &run.Prefix, &keysJSON, &run.EngineVersion); err != nil {
		if err == sql.ErrNoRows {
			return ir.RunRecord{}, err
		}
		return ir.RunRecord{}, fmt.Errorf("scan run: %w", err)
	}

	keys, err := unmarshalKeys(keysJSON)
	if err != nil {
		return ir.RunRecord{}, fmt.Errorf("scan run %s: %w", run.ID, err)
	}
	run.Keys = keys
	return run, nil
}

func scanUpdate(row scanner) (ir.UpdateRecord, error) {
	var upd ir.UpdateRecord
	var rawJSON, valueJSON string
	err := row.Scan(
		&upd.ID,
		&upd.RunID,
		&upd.Seq,
		&upd.Key,
		&upd.Directive,
		&upd.Argument,
		&upd.Element,
		&rawJSON,
		&valueJSON,
		&upd.Error,
	)
	if err != nil {
		return ir.UpdateRecord{}, fmt.Errorf("scan update: %w", err)
	}

	if upd.Raw, err = unmarshalValue(rawJSON); err != nil {
		return ir.UpdateRecord{}, fmt.Errorf("scan update %s: %w", upd.ID, err)
	}
	if upd.Value, err = unmarshalValue(valueJSON); err != nil {
		return ir.UpdateRecord{}, fmt.Errorf("scan update %s: %w", upd.ID, err)
	}
	return upd, nil
}
