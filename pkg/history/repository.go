// Package history records terminal outcomes of retrieval runs in a local
// SQLite database, powering the history command.
package history

import (
	"database/sql"
	"log/slog"

	"github.com/markasset/markasset/pkg/errors"
	_ "modernc.org/sqlite"
)

// Repository provides database operations for retrieval runs.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the history database at dbPath.
func NewRepository(dbPath string) (*Repository, error) {
	slog.Info("history_db_init", "db_path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		slog.Error("history_db_open_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to open database")
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		slog.Error("history_db_schema_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to create schema")
	}

	return &Repository{db: db}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create appends a run record.
func (r *Repository) Create(run *Run) error {
	query := `
		INSERT INTO runs (code, outcome, file_count, destination)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.Exec(query, run.Code, run.Outcome, run.FileCount, run.Destination)
	if err != nil {
		slog.Error("history_insert_failed", "code", run.Code, "error", err)
		return errors.Wrap(err, "failed to insert run")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "failed to get last insert id")
	}
	run.ID = id

	slog.Info("history_run_recorded", "code", run.Code, "outcome", run.Outcome, "run_id", run.ID)
	return nil
}

// List retrieves all recorded runs, newest first.
func (r *Repository) List() ([]*Run, error) {
	query := `
		SELECT id, code, outcome, file_count, destination, created_at
		FROM runs ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		slog.Error("history_list_query_failed", "error", err)
		return nil, errors.Wrap(err, "failed to list runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var destination sql.NullString

		if err := rows.Scan(&run.ID, &run.Code, &run.Outcome, &run.FileCount, &destination, &run.CreatedAt); err != nil {
			slog.Error("history_scan_row_failed", "error", err)
			return nil, errors.Wrap(err, "failed to scan row")
		}
		run.Destination = destination.String
		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}

	slog.Info("history_list_complete", "run_count", len(runs))
	return runs, nil
}
