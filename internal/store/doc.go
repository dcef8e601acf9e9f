// Package store provides the SQLite update journal for sdbind.
//
// The journal is append-only:
//   - runs: one row per engine instance (root, prefix, bound keys)
//   - updates: one row per directive update, stamped with the engine's
//     logical clock
//
// # Ordering
//
// Updates are ordered by seq, the engine's logical clock, never by wall
// time. Every query that returns updates uses
// ORDER BY seq ASC, id COLLATE BINARY ASC so results are identical
// across reads.
//
// # Idempotency
//
// Update IDs are content-addressed (ir.UpdateID), and writes use
// ON CONFLICT DO NOTHING, so journaling the same update twice is harmless.
//
// # Values
//
// raw and value columns hold canonical JSON (ir.MarshalCanonical).
// Handlers are stored as ir.FunctionPlaceholder.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
