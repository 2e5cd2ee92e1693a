// Package store persists verification runs so regressions can be compared
// across invocations.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"modguard/internal/logging"
)

// Run is one recorded verification run
type Run struct {
	ID             string   `json:"id"`
	CreatedAt      string   `json:"createdAt"`
	RootPackages   []string `json:"rootPackages"`
	ModuleCount    int      `json:"moduleCount"`
	ViolationCount int      `json:"violationCount"`
	Messages       []string `json:"messages,omitempty"`
}

// Store provides persistence for verification runs in a SQLite database
type Store struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// OpenStore opens or creates the history database at <dir>/history.db
func OpenStore(dir string, logger *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	dbPath := filepath.Join(dir, "history.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{conn: conn, logger: logger, dbPath: dbPath}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return store, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			root_packages TEXT NOT NULL,
			module_count INTEGER NOT NULL,
			violation_count INTEGER NOT NULL,
			messages TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveRun records one verification run and returns it with ID and timestamp
// filled in
func (s *Store) SaveRun(rootPackages []string, moduleCount int, messages []string) (*Run, error) {
	run := &Run{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		RootPackages:   rootPackages,
		ModuleCount:    moduleCount,
		ViolationCount: len(messages),
		Messages:       messages,
	}

	encoded, err := json.Marshal(run.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode violation messages: %w", err)
	}

	_, err = s.conn.Exec(
		`INSERT INTO runs (id, created_at, root_packages, module_count, violation_count, messages)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, strings.Join(run.RootPackages, ","),
		run.ModuleCount, run.ViolationCount, string(encoded),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	s.logger.Debug("Saved verification run", map[string]interface{}{
		"id":         run.ID,
		"violations": run.ViolationCount,
	})
	return run, nil
}

// RecentRuns returns up to limit runs, newest first
func (s *Store) RecentRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.conn.Query(
		`SELECT id, created_at, root_packages, module_count, violation_count, messages
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var roots, messages string
		if err := rows.Scan(&run.ID, &run.CreatedAt, &roots, &run.ModuleCount, &run.ViolationCount, &messages); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if roots != "" {
			run.RootPackages = strings.Split(roots, ",")
		}
		if messages != "" {
			if err := json.Unmarshal([]byte(messages), &run.Messages); err != nil {
				return nil, fmt.Errorf("failed to decode violation messages: %w", err)
			}
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.conn.Close()
}
