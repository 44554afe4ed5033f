// Copyright 2026 The TidyForge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tidyforge/tidyforge/internal/job"
)

// JobRepository implements job.Repository
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `
	id, company_id, property_id, assigned_to, job_type, status,
	to_char(scheduled_date, 'YYYY-MM-DD'), scheduled_time,
	started_at, completed_at, created_at, updated_at
`

func scanJob(row pgx.Row) (*job.Job, error) {
	var j job.Job
	var assignedTo sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&j.ID, &j.CompanyID, &j.PropertyID, &assignedTo, &j.JobType, &j.Status,
		&j.ScheduledDate, &j.ScheduledTime,
		&startedAt, &completedAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	j.AssignedTo = assignedTo.String
	if startedAt.Valid {
		j.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		j.CompletedAt = &completedAt.Time
	}

	return &j, nil
}

// nullable maps the empty string to SQL NULL for optional reference columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create persists a new job
func (r *JobRepository) Create(ctx context.Context, j *job.Job) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO jobs (
			id, company_id, property_id, assigned_to, job_type, status,
			scheduled_date, scheduled_time, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, j.ID, j.CompanyID, j.PropertyID, nullable(j.AssignedTo), j.JobType, j.Status,
		j.ScheduledDate, j.ScheduledTime, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

// GetByID retrieves a job within the company scope
func (r *JobRepository) GetByID(ctx context.Context, companyID, id string) (*job.Job, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE company_id = $1 AND id = $2
	`, companyID, id)

	j, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, job.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return j, nil
}

// ListByCompany retrieves all jobs for a company in schedule order
func (r *JobRepository) ListByCompany(ctx context.Context, companyID string) ([]*job.Job, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE company_id = $1
		ORDER BY scheduled_date, scheduled_time
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// ListByAssignee retrieves a cleaner's jobs in schedule order
func (r *JobRepository) ListByAssignee(ctx context.Context, companyID, profileID string) ([]*job.Job, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE company_id = $1 AND assigned_to = $2
		ORDER BY scheduled_date, scheduled_time
	`, companyID, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned jobs: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

func collectJobs(rows pgx.Rows) ([]*job.Job, error) {
	var jobs []*job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// UpdateStatus persists a status transition with its timestamps. The WHERE
// clause pins the previous status, so two racing transitions cannot both
// land: the loser matches zero rows and the terminal state stays put.
func (r *JobRepository) UpdateStatus(ctx context.Context, j *job.Job, prev job.Status) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE jobs SET
			status = $4, started_at = $5, completed_at = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2 AND status = $3
	`, j.CompanyID, j.ID, prev, j.Status, j.StartedAt, j.CompletedAt, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Zero rows means the job is gone or a concurrent transition moved
		// it first; re-read to tell the two apart.
		current, err := r.GetByID(ctx, j.CompanyID, j.ID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s -> %s", job.ErrInvalidTransition, current.Status, j.Status)
	}

	return nil
}

// UpdateAssignee sets or clears the assigned cleaner
func (r *JobRepository) UpdateAssignee(ctx context.Context, companyID, id, assigneeID string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE jobs SET assigned_to = $3, updated_at = NOW()
		WHERE company_id = $1 AND id = $2
	`, companyID, id, nullable(assigneeID))
	if err != nil {
		return fmt.Errorf("failed to update job assignee: %w", err)
	}

	if result.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}

	return nil
}
