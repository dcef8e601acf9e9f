package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a journal from version-1 to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations run in order on every writable Open; each one is idempotent.
var migrations = []migration{
	{
		version: 1,
		name:    "per-key update index",
		stmt:    `CREATE INDEX IF NOT EXISTS idx_updates_run_key ON updates(run_id, key, seq)`,
	},
}

// currentSchemaVersion is the user_version of a fully migrated journal.
var currentSchemaVersion = migrations[len(migrations)-1].version

// Store is the SQLite update journal. Writable stores use WAL mode so a
// trace can read while a render writes.
type Store struct {
	db       *sql.DB
	readOnly bool
}

type openConfig struct {
	readOnly    bool
	busyTimeout time.Duration
	logger      *slog.Logger
}

// OpenOption configures Open.
type OpenOption func(*openConfig)

// WithReadOnly opens an existing journal without creating, migrating or
// writing to it. Open fails if the file is missing or was written by a
// newer schema.
func WithReadOnly() OpenOption {
	return func(c *openConfig) {
		c.readOnly = true
	}
}

// WithBusyTimeout sets how long a statement waits on a locked database
// (default 5s).
func WithBusyTimeout(d time.Duration) OpenOption {
	return func(c *openConfig) {
		if d > 0 {
			c.busyTimeout = d
		}
	}
}

// WithStoreLogger sets the logger migrations are reported to (default
// slog.Default()).
func WithStoreLogger(l *slog.Logger) OpenOption {
	return func(c *openConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Open creates or opens the journal at path. ":memory:" gives a private
// in-memory journal.
//
// A writable journal gets WAL journaling, NORMAL synchronous mode, foreign
// keys and any pending migrations. Opening the same file repeatedly is
// safe.
func Open(path string, opts ...OpenOption) (*Store, error) {
	cfg := openConfig{busyTimeout: 5 * time.Second, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	dsn := path
	if cfg.readOnly {
		dsn = "file:" + path + "?mode=ro"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection: SQLite has a single writer, and ":memory:" is per
	// connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, readOnly: cfg.readOnly}
	if err := s.configure(cfg); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) configure(cfg openConfig) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}
	if !cfg.readOnly {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragmas: %q: %w", pragma, err)
		}
	}

	if cfg.readOnly {
		return s.checkVersion()
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return s.migrate(cfg.logger)
}

// migrate applies every migration newer than the stored user_version.
func (s *Store) migrate(logger *slog.Logger) error {
	version, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("journal schema version %d is newer than supported %d", version, currentSchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := s.db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
		logger.Debug("journal migrated", "version", m.version, "migration", m.name)
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// checkVersion rejects read-only journals this build cannot read.
func (s *Store) checkVersion() error {
	version, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("journal schema version %d is newer than supported %d", version, currentSchemaVersion)
	}
	return nil
}

// SchemaVersion returns the journal's user_version.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// ReadOnly reports whether the store was opened with WithReadOnly.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
