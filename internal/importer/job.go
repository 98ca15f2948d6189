package importer

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job lifecycle statuses. A job is created running and finalized exactly
// once, independent of individual listing outcomes.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ErrJobNotFound is returned when no import job matches a lookup.
var ErrJobNotFound = errors.New("import job not found")

// Job is one pipeline invocation's persistent record.
type Job struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	Error      string      `json:"error,omitempty"`
	Stats      *Statistics `json:"stats,omitempty"`
}

// JobRepository provides access to the import_jobs table.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates an import-job repository.
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new running job and returns it. This happens before
// any processing so a job ID exists even when the run fails outright.
func (r *JobRepository) Create() (*Job, error) {
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := r.db.Exec(
		"INSERT INTO import_jobs (id, status, started_at) VALUES (?, ?, ?)",
		job.ID, job.Status, job.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating import job: %w", err)
	}
	return job, nil
}

// Finish records the job's terminal status, error message, and
// statistics snapshot. Called exactly once per run.
func (r *JobRepository) Finish(id, status, jobErr string, stats *Statistics) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling statistics: %w", err)
	}

	_, err = r.db.Exec(
		"UPDATE import_jobs SET status = ?, finished_at = ?, error = ?, stats_json = ? WHERE id = ?",
		status, time.Now().UTC(), jobErr, string(statsJSON), id,
	)
	if err != nil {
		return fmt.Errorf("finalizing import job %s: %w", id, err)
	}
	return nil
}

// Get returns one job by ID.
func (r *JobRepository) Get(id string) (*Job, error) {
	row := r.db.QueryRow(
		"SELECT id, status, started_at, finished_at, error, stats_json FROM import_jobs WHERE id = ?",
		id,
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying import job %s: %w", id, err)
	}
	return job, nil
}

// List returns all jobs, most recent first.
func (r *JobRepository) List() ([]*Job, error) {
	rows, err := r.db.Query(
		"SELECT id, status, started_at, finished_at, error, stats_json FROM import_jobs ORDER BY started_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("listing import jobs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning import job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating import jobs: %w", err)
	}
	return jobs, nil
}

// scanJob scans a job from a database row.
func scanJob(row interface{ Scan(...interface{}) error }) (*Job, error) {
	var j Job
	var finishedAt sql.NullTime
	var statsJSON string

	if err := row.Scan(&j.ID, &j.Status, &j.StartedAt, &finishedAt, &j.Error, &statsJSON); err != nil {
		return nil, err
	}

	if finishedAt.Valid {
		j.FinishedAt = &finishedAt.Time
	}
	if statsJSON != "" && statsJSON != "{}" {
		var stats Statistics
		if err := json.Unmarshal([]byte(statsJSON), &stats); err == nil {
			j.Stats = &stats
		}
	}
	return &j, nil
}
