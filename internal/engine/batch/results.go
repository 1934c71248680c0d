package batch

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// The results log is append-only: every attempt lands here regardless of
// outcome, so the history survives process restarts.

var (
	resultsDB   *sql.DB
	resultsOnce sync.Once
	resultsErr  error
	resultsDir  = defaultResultsDir
)

func defaultResultsDir() string {
	return filepath.Join(os.Getenv("HOME"), ".go_apply")
}

func openResultsDB() (*sql.DB, error) {
	resultsOnce.Do(func() {
		dir := resultsDir()
		if err := os.MkdirAll(dir, 0750); err != nil {
			resultsErr = fmt.Errorf("results: mkdir %s: %w", dir, err)
			return
		}
		db, err := sql.Open("sqlite", filepath.Join(dir, "applications.db"))
		if err != nil {
			resultsErr = fmt.Errorf("results: open db: %w", err)
			return
		}
		db.SetMaxOpenConns(1) // SQLite: single writer
		if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS applications (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id   TEXT,
			job_id     TEXT NOT NULL,
			company    TEXT,
			title      TEXT,
			url        TEXT,
			success    INTEGER NOT NULL,
			error      TEXT,
			applied_at TEXT NOT NULL
		)`); err != nil {
			resultsErr = fmt.Errorf("results: init schema: %w", err)
			return
		}
		resultsDB = db
	})
	return resultsDB, resultsErr
}

// RecordApplication appends one attempt to the log. Failures to persist are
// logged and swallowed: the result already lives in the batch state, and a
// broken log must not fail the batch.
func RecordApplication(ctx context.Context, batchID string, r engine.ApplicationResult) {
	db, err := openResultsDB()
	if err != nil {
		slog.Warn("results: log unavailable", slog.Any("error", err))
		return
	}
	success := 0
	if r.Success {
		success = 1
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO applications (batch_id, job_id, company, title, url, success, error, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		batchID, r.JobID, r.Company, r.Title, r.ApplicationURL,
		success, r.Error, r.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		slog.Warn("results: insert failed", slog.String("job_id", r.JobID), slog.Any("error", err))
	}
}

// LoggedApplication is one row of the applications log.
type LoggedApplication struct {
	ID        int64  `json:"id"`
	BatchID   string `json:"batch_id,omitempty"`
	JobID     string `json:"job_id"`
	Company   string `json:"company,omitempty"`
	Title     string `json:"title,omitempty"`
	URL       string `json:"url,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	AppliedAt string `json:"applied_at"`
}

// ListApplications returns the most recent attempts, newest first.
func ListApplications(ctx context.Context, limit int) ([]LoggedApplication, error) {
	db, err := openResultsDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, batch_id, job_id, company, title, url, success, error, applied_at
		 FROM applications ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("results: query: %w", err)
	}
	defer rows.Close()

	apps := []LoggedApplication{}
	for rows.Next() {
		var a LoggedApplication
		var batchID, company, title, url, errMsg sql.NullString
		var success int
		if err := rows.Scan(&a.ID, &batchID, &a.JobID, &company, &title, &url,
			&success, &errMsg, &a.AppliedAt); err != nil {
			slog.Warn("results: row skipped", slog.Any("error", err))
			continue
		}
		a.BatchID = batchID.String
		a.Company = company.String
		a.Title = title.String
		a.URL = url.String
		a.Error = errMsg.String
		a.Success = success == 1
		apps = append(apps, a)
	}
	return apps, rows.Err()
}
