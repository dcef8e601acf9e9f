package store

import (
	"context"
	"fmt"

	"github.com/roach88/sdbind/internal/ir"
)

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run ir.RunRecord) error {
	keysJSON, err := marshalKeys(run.Keys)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, root, prefix, keys, engine_version, journal_version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Root,
		run.Prefix,
		keysJSON,
		run.EngineVersion,
		ir.JournalVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	return nil
}

// WriteUpdate inserts an update record.
// Uses ON CONFLICT DO NOTHING for idempotency: rewriting the same update ID
// or the same (run_id, seq) is silently ignored.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteUpdate(ctx context.Context, upd ir.UpdateRecord) error {
	rawJSON, err := marshalValue(upd.Raw)
	if err != nil {
		return fmt.Errorf("write update: %w", err)
	}

	valueJSON, err := marshalValue(upd.Value)
	if err != nil {
		return fmt.Errorf("write update: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO updates
		(id, run_id, seq, key, directive, argument, element, raw, value, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		upd.ID,
		upd.RunID,
		upd.Seq,
		upd.Key,
		upd.Directive,
		upd.Argument,
		upd.Element,
		rawJSON,
		valueJSON,
		upd.Error,
	)
	if err != nil {
		return fmt.Errorf("write update: %w", err)
	}

	return nil
}
