package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store on a SQLite file using the pure Go driver.
// Options and run history live in the same database. A background loop
// prunes runs older than the retention period.
type SQLiteStore struct {
	db            *sql.DB
	path          string
	retention     time.Duration
	pruneInterval time.Duration
	done          chan struct{}
	closeOnce     sync.Once
	logger        *slog.Logger

	getStmt    *sql.Stmt
	putStmt    *sql.Stmt
	deleteStmt *sql.Stmt
	recordStmt *sql.Stmt
	pruneStmt  *sql.Stmt
}

// SQLiteConfig configures the SQLite settings store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// RunRetention is how long run history is kept. Zero keeps everything.
	RunRetention time.Duration

	// PruneInterval is how often old runs are pruned.
	// Default: 1 hour
	PruneInterval time.Duration
}

// NewSQLiteStore opens (or creates) the settings database.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.PruneInterval == 0 {
		cfg.PruneInterval = time.Hour
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:            db,
		path:          cfg.Path,
		retention:     cfg.RunRetention,
		pruneInterval: cfg.PruneInterval,
		done:          make(chan struct{}),
		logger:        slog.Default().With("component", "settings.sqlite"),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	if s.retention > 0 {
		go s.pruneLoop()
	}

	s.logger.Info("settings store opened", "path", cfg.Path, "run_retention", cfg.RunRetention)
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS options (
		name TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS export_runs (
		id TEXT PRIMARY KEY,
		run_trigger TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL DEFAULT '',
		bytes INTEGER NOT NULL DEFAULT 0,
		sections INTEGER NOT NULL DEFAULT 0,
		items INTEGER NOT NULL DEFAULT 0,
		started_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_export_runs_started_at ON export_runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getStmt, err = s.db.Prepare(`SELECT value FROM options WHERE name = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.putStmt, err = s.db.Prepare(`
		INSERT INTO options (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare put statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM options WHERE name = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	s.recordStmt, err = s.db.Prepare(`
		INSERT INTO export_runs (id, run_trigger, status, error, path, bytes, sections, items, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			bytes = excluded.bytes,
			sections = excluded.sections,
			items = excluded.items,
			duration_ns = excluded.duration_ns
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`DELETE FROM export_runs WHERE started_at < ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// GetOption returns the value stored under key.
func (s *SQLiteStore) GetOption(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.getStmt.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load option: %w", err)
	}
	return value, nil
}

// PutOption creates or replaces the value stored under key.
func (s *SQLiteStore) PutOption(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if _, err := s.putStmt.ExecContext(ctx, key, value, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save option: %w", err)
	}
	return nil
}

// DeleteOption removes key.
func (s *SQLiteStore) DeleteOption(ctx context.Context, key string) error {
	if _, err := s.deleteStmt.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("failed to delete option: %w", err)
	}
	return nil
}

// RecordRun stores run. Recording the same ID twice updates the outcome.
func (s *SQLiteStore) RecordRun(ctx context.Context, run *RunRecord) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}
	if run.ID == "" {
		return fmt.Errorf("run id cannot be empty")
	}

	_, err := s.recordStmt.ExecContext(ctx,
		run.ID,
		run.Trigger,
		run.Status,
		run.Error,
		run.Path,
		run.Bytes,
		run.Sections,
		run.Items,
		run.StartedAt.UnixNano(),
		int64(run.Duration),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, run_trigger, status, error, path, bytes, sections, items, started_at, duration_ns
		FROM export_runs
		ORDER BY started_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		var (
			run       RunRecord
			startedAt int64
			duration  int64
		)
		if err := rows.Scan(&run.ID, &run.Trigger, &run.Status, &run.Error, &run.Path,
			&run.Bytes, &run.Sections, &run.Items, &startedAt, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		run.StartedAt = time.Unix(0, startedAt).UTC()
		run.Duration = time.Duration(duration)
		run.FinishedAt = run.StartedAt.Add(run.Duration)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return runs, nil
}

// PruneRuns deletes runs started before olderThan.
func (s *SQLiteStore) PruneRuns(ctx context.Context, olderThan time.Time) (int, error) {
	result, err := s.pruneStmt.ExecContext(ctx, olderThan.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(deleted), nil
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// pruneLoop removes expired runs until Close is called.
func (s *SQLiteStore) pruneLoop() {
	ticker := time.NewTicker(s.pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := s.PruneRuns(ctx, time.Now().Add(-s.retention))
			cancel()
			if err != nil {
				s.logger.Error("failed to prune run history", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Debug("pruned run history", "deleted", n)
			}
		case <-s.done:
			return
		}
	}
}

// Close stops the prune loop and closes the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)

		for _, stmt := range []*sql.Stmt{s.getStmt, s.putStmt, s.deleteStmt, s.recordStmt, s.pruneStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		err = s.db.Close()
	})
	return err
}
