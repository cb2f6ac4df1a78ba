package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// StateStore persists per-(genome, datatype, phase) completion so re-runs
// skip finished work. Completion is keyed on the entry's resolved-content
// fingerprint: editing an entry in the spec invalidates its completions
// without touching anything else.
//
// The store is a single SQLite file in WAL mode with a background
// checkpoint loop, sized for one builder process per database.
type StateStore struct {
	db        *sql.DB
	path      string
	done      chan struct{}
	mu        sync.RWMutex
	closeOnce sync.Once

	markStmt  *sql.Stmt
	checkStmt *sql.Stmt
}

// StateConfig configures the completion state store.
type StateConfig struct {
	// Path is the SQLite database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration
}

// NewStateStore opens the completion store at path with default settings,
// creating the file and its parent directory as needed.
func NewStateStore(path string) (*StateStore, error) {
	return NewStateStoreWithConfig(StateConfig{
		Path:               path,
		BusyTimeout:        5 * time.Second,
		CheckpointInterval: 5 * time.Minute,
	})
}

// NewStateStoreWithConfig opens the completion store with custom settings.
func NewStateStoreWithConfig(cfg StateConfig) (*StateStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("state db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}

	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	// Open with WAL mode and a busy timeout
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &StateStore{
		db:   db,
		path: cfg.Path,
		done: make(chan struct{}),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare state statements: %w", err)
	}

	go store.checkpointLoop(cfg.CheckpointInterval)

	return store, nil
}

func (s *StateStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS task_state (
		genome TEXT NOT NULL,
		datatype TEXT NOT NULL,
		phase TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		run_id TEXT NOT NULL,
		completed_at INTEGER NOT NULL,
		PRIMARY KEY (genome, datatype, phase)
	);

	CREATE INDEX IF NOT EXISTS idx_task_state_completed ON task_state(completed_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *StateStore) prepareStatements() error {
	var err error

	s.markStmt, err = s.db.Prepare(`
		INSERT INTO task_state (genome, datatype, phase, fingerprint, run_id, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (genome, datatype, phase) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			run_id = excluded.run_id,
			completed_at = excluded.completed_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare mark statement: %w", err)
	}

	s.checkStmt, err = s.db.Prepare(`
		SELECT fingerprint FROM task_state
		WHERE genome = ? AND datatype = ? AND phase = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare check statement: %w", err)
	}

	return nil
}

// MarkComplete records the task as complete under its fingerprint,
// replacing any previous completion for the same (genome, datatype,
// phase).
func (s *StateStore) MarkComplete(ctx context.Context, task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.markStmt.ExecContext(ctx,
		task.Genome,
		task.Datatype,
		task.Phase,
		task.Fingerprint,
		task.RunID,
		time.Now().Unix(),
	)
	if err != nil {
		return NewStateError("mark", err)
	}

	return nil
}

// IsComplete reports whether the task's (genome, datatype, phase) is
// recorded complete under the task's current fingerprint. A completion
// recorded under a different fingerprint does not count; the entry
// changed, so the work must re-run.
func (s *StateStore) IsComplete(ctx context.Context, task *Task) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fingerprint string
	err := s.checkStmt.QueryRowContext(ctx,
		task.Genome, task.Datatype, task.Phase,
	).Scan(&fingerprint)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, NewStateError("check", err)
	}

	return fingerprint == task.Fingerprint, nil
}

// Close checkpoints and closes the store. Close is idempotent.
func (s *StateStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.markStmt != nil {
			s.markStmt.Close()
		}
		if s.checkStmt != nil {
			s.checkStmt.Close()
		}

		if s.db != nil {
			// Final checkpoint
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// checkpointLoop runs periodic WAL checkpoints until Close.
func (s *StateStore) checkpointLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
