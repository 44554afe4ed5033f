package job

import (
	"time"
)

// Job is a scheduled cleaning visit at a property.
type Job struct {
	ID            string     `json:"id"`
	CompanyID     string     `json:"company_id"`
	PropertyID    string     `json:"property_id"`
	AssignedTo    string     `json:"assigned_to,omitempty"`
	JobType       string     `json:"job_type"`
	Status        Status     `json:"status"`
	ScheduledDate string     `json:"scheduled_date"`
	ScheduledTime string     `json:"scheduled_time"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Status is a job's position in its forward-only lifecycle.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is legal out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether the move from s to next is legal:
// scheduled -> in_progress -> completed, with cancellation allowed from any
// non-terminal state. Re-applying a terminal status is a hard error, not a
// no-op: it indicates a client bug or stale UI state.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusScheduled:
		return next == StatusInProgress || next == StatusCancelled
	case StatusInProgress:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// DefaultType is the job type applied when none is given.
const DefaultType = "standard"
