// File: store.go
// Title: Run Report Store
// Description: Persists batch runs and their findings to a local SQLite
//              database so a run's skips and violations can be inspected
//              after the console output is gone.

package report

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/softusing/rollcall/pkg/errorx"
)

// Run is one recorded invocation of a batch command.
type Run struct {
	ID         string
	Command    string
	Seed       int64
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Records    int
	Findings   int
}

// Finding is one violation or skip attributed to a run.
type Finding struct {
	ID       string
	RunID    string
	File     string
	UserID   string
	Position int
	Kind     string
	Detail   string
}

// Store is the SQLite-backed report store.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and if needed creates) the report database at the given
// path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errorx.Wrap(err, "cannot create report directory").
				WithCode(errorx.CodeStoreError).
				WithOperation("report.Open").
				WithDetail("path", path)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, errorx.Wrap(err, "cannot open report database").
			WithCode(errorx.CodeStoreError).
			WithOperation("report.Open").
			WithDetail("path", path)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, errorx.Wrap(err, "cannot initialize report schema").
			WithCode(errorx.CodeStoreError).
			WithOperation("report.Open").
			WithDetail("path", path)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		command TEXT NOT NULL,
		seed INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		files INTEGER NOT NULL DEFAULT 0,
		records INTEGER NOT NULL DEFAULT 0,
		findings INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS findings (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES runs(id),
		file TEXT NOT NULL,
		user_id TEXT,
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		detail TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
	CREATE INDEX IF NOT EXISTS idx_findings_kind ON findings(kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

// BeginRun records the start of a batch command and returns the run.
func (s *Store) BeginRun(ctx context.Context, command string, seed int64) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Command:   command,
		Seed:      seed,
		StartedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, seed, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Command, run.Seed, run.StartedAt)
	if err != nil {
		return nil, errorx.Wrap(err, "cannot record run").
			WithCode(errorx.CodeStoreError).
			WithOperation("report.BeginRun")
	}
	return run, nil
}

// AddFinding attributes one finding to the run.
func (s *Store) AddFinding(ctx context.Context, f *Finding) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO findings (id, run_id, file, user_id, position, kind, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.RunID, f.File, f.UserID, f.Position, f.Kind, f.Detail)
	if err != nil {
		return errorx.Wrap(err, "cannot record finding").
			WithCode(errorx.CodeStoreError).
			WithOperation("report.AddFinding")
	}
	return nil
}

// FinishRun closes out the run with its final counters.
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	run.FinishedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, files = ?, records = ?, findings = ? WHERE id = ?`,
		run.FinishedAt, run.Files, run.Records, run.Findings, run.ID)
	if err != nil {
		return errorx.Wrap(err, "cannot finish run").
			WithCode(errorx.CodeStoreError).
			WithOperation("report.FinishRun")
	}
	return nil
}

// Findings returns the findings of one run in insertion order.
func (s *Store) Findings(ctx context.Context, runID string) ([]*Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, file, user_id, position, kind, detail
		 FROM findings WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, errorx.Wrap(err, "cannot query findings").
			WithCode(errorx.CodeStoreError).
			WithOperation("report.Findings")
	}
	defer rows.Close()

	var findings []*Finding
	for rows.Next() {
		f := &Finding{}
		if err := rows.Scan(&f.ID, &f.RunID, &f.File, &f.UserID, &f.Position, &f.Kind, &f.Detail); err != nil {
			return nil, errorx.Wrap(err, "cannot scan finding").
				WithCode(errorx.CodeStoreError).
				WithOperation("report.Findings")
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
