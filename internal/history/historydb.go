package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/trafficlens/trafficlens/internal/model"
)

// HistoryDB provides SQLite-based storage for analysis runs.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file shared by all backends
// rather than one file per backend URL. This keeps the history listing a
// single query and simplifies backup/restore operations.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "trafficlens.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Run records store one row per analysis run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		base_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_seconds REAL NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL,
		error TEXT,
		statistics_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_base_url ON runs(base_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	-- Artifacts saved for a run, one row per downloaded file
	CREATE TABLE IF NOT EXISTS artifacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, name)
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun inserts or updates a run record.
// Uses UPSERT so saving the same run after a later stats fetch just
// refreshes the row.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.Run) error {
	var statsJSON sql.NullString
	if run.Statistics != nil {
		data, err := json.Marshal(run.Statistics)
		if err != nil {
			return fmt.Errorf("failed to serialize statistics: %w", err)
		}
		statsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
	INSERT INTO runs (run_id, base_url, started_at, duration_seconds, outcome, error, statistics_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		duration_seconds = excluded.duration_seconds,
		outcome = excluded.outcome,
		error = excluded.error,
		statistics_json = excluded.statistics_json
	`

	_, err := hdb.db.ExecContext(ctx, query,
		run.ID,
		run.BaseURL,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.Duration.Seconds(),
		run.Outcome(),
		run.Error,
		statsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by its ID. Returns nil when the run is unknown.
func (hdb *HistoryDB) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	query := `
	SELECT run_id, base_url, started_at, duration_seconds, outcome, error, statistics_json
	FROM runs
	WHERE run_id = ?
	`

	run, err := scanRun(hdb.db.QueryRowContext(ctx, query, runID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// LatestRun retrieves the most recent run, or nil when the history is empty.
func (hdb *HistoryDB) LatestRun(ctx context.Context) (*model.Run, error) {
	query := `
	SELECT run_id, base_url, started_at, duration_seconds, outcome, error, statistics_json
	FROM runs
	ORDER BY started_at DESC, id DESC
	LIMIT 1
	`

	run, err := scanRun(hdb.db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return run, nil
}

// ListRuns retrieves the most recent runs, newest first.
// limit <= 0 returns all runs.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	query := `
	SELECT run_id, base_url, started_at, duration_seconds, outcome, error, statistics_json
	FROM runs
	ORDER BY started_at DESC, id DESC
	`
	args := make([]interface{}, 0, 1)

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// SaveArtifact records a saved artifact path for a run.
func (hdb *HistoryDB) SaveArtifact(ctx context.Context, runID string, artifact model.Artifact, path string) error {
	query := `
	INSERT INTO artifacts (run_id, name, path)
	VALUES (?, ?, ?)
	ON CONFLICT(run_id, name) DO UPDATE SET
		path = excluded.path,
		saved_at = CURRENT_TIMESTAMP
	`

	_, err := hdb.db.ExecContext(ctx, query, runID, artifact.Name, path)
	if err != nil {
		return fmt.Errorf("failed to save artifact: %w", err)
	}

	return nil
}

// RunArtifacts returns the saved artifact paths for a run, keyed by
// artifact name.
func (hdb *HistoryDB) RunArtifacts(ctx context.Context, runID string) (map[string]string, error) {
	query := `
	SELECT name, path FROM artifacts
	WHERE run_id = ?
	ORDER BY name
	`

	rows, err := hdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]string)
	for rows.Next() {
		var name, path string
		if err := rows.Scan(&name, &path); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		paths[name] = path
	}

	return paths, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanRun.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads one run row in column order
// (run_id, base_url, started_at, duration_seconds, outcome, error, statistics_json).
func scanRun(row rowScanner) (*model.Run, error) {
	var run model.Run
	var startedAt string
	var durationSeconds float64
	var outcome string
	var errMsg sql.NullString
	var statsJSON sql.NullString

	if err := row.Scan(
		&run.ID,
		&run.BaseURL,
		&startedAt,
		&durationSeconds,
		&outcome,
		&errMsg,
		&statsJSON,
	); err != nil {
		return nil, err
	}

	run.StartedAt = parseTimestamp(startedAt)
	run.Duration = time.Duration(durationSeconds * float64(time.Second))
	run.Error = errMsg.String
	run.Done = outcome == "completed"

	if statsJSON.Valid && statsJSON.String != "" {
		var stats model.Statistics
		if err := json.Unmarshal([]byte(statsJSON.String), &stats); err != nil {
			return nil, fmt.Errorf("failed to parse statistics: %w", err)
		}
		run.Statistics = &stats
	}

	return &run, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,              // our own insert format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
