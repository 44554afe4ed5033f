package job

import (
	"context"
	"errors"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// Repository defines the interface for job storage. All reads and writes are
// scoped by company; a job id from another company behaves as not found.
type Repository interface {
	Create(ctx context.Context, j *Job) error
	GetByID(ctx context.Context, companyID, id string) (*Job, error)
	ListByCompany(ctx context.Context, companyID string) ([]*Job, error)
	ListByAssignee(ctx context.Context, companyID, profileID string) ([]*Job, error)

	// UpdateStatus persists a validated transition together with the
	// timestamps stamped by the service. The write is conditional on the
	// row still holding prev, so a request that lost a concurrent race
	// fails with ErrInvalidTransition instead of overwriting the winner.
	UpdateStatus(ctx context.Context, j *Job, prev Status) error

	UpdateAssignee(ctx context.Context, companyID, id, assigneeID string) error
}
