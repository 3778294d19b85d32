// File path: internal/jobs/store.go
package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jbrewton2/contract-security-studio/internal/common"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("analysis run not found")

// Run is one persisted analysis run record.
type Run struct {
	ID               string    `db:"id" json:"id"`
	ReviewID         string    `db:"review_id" json:"review_id"`
	Intent           string    `db:"intent" json:"intent"`
	Profile          string    `db:"profile" json:"profile"`
	Status           string    `db:"status" json:"status"`
	RetrievedTotal   int       `db:"retrieved_total" json:"retrieved_total"`
	RiskTotal        int       `db:"risk_total" json:"risk_total"`
	ContextUsedChars int       `db:"context_used_chars" json:"context_used_chars"`
	DurationMS       int64     `db:"duration_ms" json:"duration_ms"`
	Error            string    `db:"error" json:"error,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Store persists analysis runs in a SQLite database.
type Store struct {
	db *sqlx.DB
}

// Open constructs a Store backed by the SQLite database at the provided
// path (SQLITE_PATH when empty). The schema is migrated on first use.
func Open(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	}
	if trimmed == "" {
		trimmed = filepath.Join("data", "runs.db")
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	// journal_mode must be set per-connection via the DSN: it cannot be
	// changed inside a transaction, so it has no place in the migration.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(wal)", abs)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(8)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	common.Logger().Info("jobs: run store ready", "path", abs)
	return store, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("run store not initialised")
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
                id TEXT PRIMARY KEY,
                review_id TEXT NOT NULL,
                intent TEXT NOT NULL,
                profile TEXT NOT NULL,
                status TEXT NOT NULL,
                retrieved_total INTEGER NOT NULL DEFAULT 0,
                risk_total INTEGER NOT NULL DEFAULT 0,
                context_used_chars INTEGER NOT NULL DEFAULT 0,
                duration_ms INTEGER NOT NULL DEFAULT 0,
                error TEXT NOT NULL DEFAULT '',
                created_at TIMESTAMP NOT NULL
        );`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_runs_review ON analysis_runs(review_id, created_at);`,
}

// Record inserts a run row and returns it with its generated ID.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if s == nil || s.db == nil {
		return Run{}, errors.New("run store not initialised")
	}
	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO analysis_runs
                (id, review_id, intent, profile, status, retrieved_total, risk_total, context_used_chars, duration_ms, error, created_at)
                VALUES (:id, :review_id, :intent, :profile, :status, :retrieved_total, :risk_total, :context_used_chars, :duration_ms, :error, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, run); err != nil {
		return Run{}, fmt.Errorf("insert analysis run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, optionally filtered to one review.
func (s *Store) List(ctx context.Context, reviewID string, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("run store not initialised")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var runs []Run
	if trimmed := strings.TrimSpace(reviewID); trimmed != "" {
		err := s.db.SelectContext(ctx, &runs,
			`SELECT * FROM analysis_runs WHERE review_id = ? ORDER BY created_at DESC LIMIT ?`, trimmed, limit)
		return runs, err
	}
	err := s.db.SelectContext(ctx, &runs,
		`SELECT * FROM analysis_runs ORDER BY created_at DESC LIMIT ?`, limit)
	return runs, err
}

// Get returns one run by ID.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	if s == nil || s.db == nil {
		return Run{}, errors.New("run store not initialised")
	}
	var run Run
	err := s.db.GetContext(ctx, &run, `SELECT * FROM analysis_runs WHERE id = ?`, strings.TrimSpace(id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("load analysis run: %w", err)
	}
	return run, nil
}
