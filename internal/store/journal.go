package store

import (
	"context"
	"log/slog"

	"github.com/roach88/sdbind/internal/engine"
	"github.com/roach88/sdbind/internal/ir"
)

// Journal is an engine.Observer that writes every run and update to a
// Store.
//
// Observers cannot fail an update, so the first write error is kept and
// reported by Err; later writes are still attempted.
type Journal struct {
	store  *Store
	ctx    context.Context
	logger *slog.Logger
	err    error
	writes int
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithJournalLogger sets the logger write failures are reported to
// (default slog.Default()).
func WithJournalLogger(l *slog.Logger) JournalOption {
	return func(j *Journal) {
		if l != nil {
			j.logger = l
		}
	}
}

// NewJournal creates a journal writing to s. ctx bounds every write.
func NewJournal(ctx context.Context, s *Store, opts ...JournalOption) *Journal {
	j := &Journal{store: s, ctx: ctx, logger: slog.Default()}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// BeginRun writes the run record.
func (j *Journal) BeginRun(info engine.RunInfo) {
	run := ir.RunRecord{
		ID:            info.RunID,
		Prefix:        info.Prefix,
		Keys:          info.Keys,
		EngineVersion: ir.EngineVersion,
	}
	if info.Root != nil {
		run.Root = info.Root.Path()
	}
	j.record(j.store.WriteRun(j.ctx, run))
}

// ObserveUpdate writes the update record.
func (j *Journal) ObserveUpdate(ev engine.UpdateEvent) {
	d := ev.Directive
	id, err := ir.UpdateID(ev.RunID, ev.Seq, ev.Key, d.Name, d.Argument)
	if err != nil {
		j.record(err)
		return
	}

	upd := ir.UpdateRecord{
		ID:        id,
		RunID:     ev.RunID,
		Seq:       ev.Seq,
		Key:       ev.Key,
		Directive: d.Name,
		Argument:  d.Argument,
		Element:   d.Element.Path(),
		Raw:       ev.Raw,
		Value:     ev.Value,
	}
	if ev.Err != nil {
		upd.Error = ev.Err.Error()
	}
	j.record(j.store.WriteUpdate(j.ctx, upd))
}

// Err returns the first write error, if any.
func (j *Journal) Err() error {
	return j.err
}

// Writes returns the number of successful writes.
func (j *Journal) Writes() int {
	return j.writes
}

func (j *Journal) record(err error) {
	if err == nil {
		j.writes++
		return
	}
	j.logger.Error("journal write failed", "error", err)
	if j.err == nil {
		j.err = err
	}
}
