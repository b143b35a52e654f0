// Package history keeps a local record of submitted jobs and their files.
//
// The store is a convenience cache: the server remains the source of truth
// and every write here is best-effort. Commands consult it to show what was
// submitted from this machine without a round-trip.
package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nijta-api/harbor-cli/internal/harbor"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id       TEXT NOT NULL UNIQUE,
    agents       TEXT NOT NULL DEFAULT '',
    prefix       TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL,
    file_count   INTEGER NOT NULL DEFAULT 0,
    submitted_at TEXT NOT NULL,
    updated_at   TEXT NOT NULL,
    created_at   TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE TABLE IF NOT EXISTS job_files (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id         TEXT NOT NULL,
    file_name      TEXT NOT NULL,
    audio_duration REAL NOT NULL DEFAULT 0,
    local_result   TEXT NOT NULL DEFAULT '',
    UNIQUE(job_id, file_name)
);
CREATE INDEX IF NOT EXISTS idx_job_files_job_id ON job_files(job_id);
`

// JobRecord is one row of the local job history.
type JobRecord struct {
	JobID       string
	Agents      []string
	Prefix      string
	Status      harbor.JobStatus
	FileCount   int
	SubmittedAt time.Time
	UpdatedAt   time.Time
}

// FileRecord is one file tracked for a job.
type FileRecord struct {
	JobID         string
	FileName      string
	AudioDuration float64
	LocalResult   string
}

// Store provides SQLite-backed storage for the job history.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the history database at dbPath and runs
// migrations.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	// Enable WAL mode so reads do not block a concurrent submission
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSubmission stores a newly submitted job. Re-recording the same
// job_id updates its status and file count.
func (s *Store) RecordSubmission(rec JobRecord) error {
	now := time.Now().UTC().Format(time.RFC3339)
	submitted := rec.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO jobs (job_id, agents, prefix, status, file_count, submitted_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			status = excluded.status,
			file_count = excluded.file_count,
			updated_at = excluded.updated_at`,
		rec.JobID, strings.Join(rec.Agents, ","), rec.Prefix, string(rec.Status),
		rec.FileCount, submitted.UTC().Format(time.RFC3339), now,
	)
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}

// RecordFiles stores the file names uploaded for a job. Duplicates are
// silently ignored.
func (s *Store) RecordFiles(jobID string, fileNames []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("record files: %w", err)
	}
	defer tx.Rollback()

	for _, name := range fileNames {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO job_files (job_id, file_name) VALUES (?, ?)`,
			jobID, name); err != nil {
			return fmt.Errorf("record file %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// UpdateStatus moves a job to a new lifecycle status.
func (s *Store) UpdateStatus(jobID string, status harbor.JobStatus) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.Exec(`
		UPDATE jobs SET status = ?, updated_at = ? WHERE job_id = ?`,
		string(status), now, jobID); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// SyncContent copies audio durations reported by the server into the
// local file records.
func (s *Store) SyncContent(jobID string, records []harbor.AudioRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sync content: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		if _, err := tx.Exec(`
			INSERT INTO job_files (job_id, file_name, audio_duration)
			VALUES (?, ?, ?)
			ON CONFLICT(job_id, file_name) DO UPDATE SET
				audio_duration = excluded.audio_duration`,
			jobID, rec.FileName, rec.AudioDuration); err != nil {
			return fmt.Errorf("sync content for %s: %w", rec.FileName, err)
		}
	}
	return tx.Commit()
}

// MarkDownloaded records where a result file landed locally.
func (s *Store) MarkDownloaded(jobID, fileName, localPath string) error {
	if _, err := s.db.Exec(`
		UPDATE job_files SET local_result = ? WHERE job_id = ? AND file_name = ?`,
		localPath, jobID, fileName); err != nil {
		return fmt.Errorf("mark downloaded: %w", err)
	}
	return nil
}

// List returns up to limit jobs, newest first.
func (s *Store) List(limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT job_id, agents, prefix, status, file_count, submitted_at, updated_at
		FROM jobs ORDER BY submitted_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var records []JobRecord
	for rows.Next() {
		var rec JobRecord
		var agents, status, submittedAt, updatedAt string
		if err := rows.Scan(&rec.JobID, &agents, &rec.Prefix, &status, &rec.FileCount, &submittedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		if agents != "" {
			rec.Agents = strings.Split(agents, ",")
		}
		rec.Status = harbor.JobStatus(status)
		rec.SubmittedAt, _ = time.Parse(time.RFC3339, submittedAt)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Files returns the file records for a job.
func (s *Store) Files(jobID string) ([]FileRecord, error) {
	rows, err := s.db.Query(`
		SELECT job_id, file_name, audio_duration, local_result
		FROM job_files WHERE job_id = ? ORDER BY file_name`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list job files: %w", err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(&rec.JobID, &rec.FileName, &rec.AudioDuration, &rec.LocalResult); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
