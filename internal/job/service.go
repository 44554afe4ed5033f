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

package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidyforge/tidyforge/internal/audit"
	"github.com/tidyforge/tidyforge/internal/identity"
	"github.com/tidyforge/tidyforge/internal/property"
)

// Service provides job scheduling business logic
type Service struct {
	repo        Repository
	properties  property.Repository
	profiles    identity.Repository
	auditLogger audit.Logger
}

// NewService creates a new job service
func NewService(repo Repository, properties property.Repository, profiles identity.Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		properties:  properties,
		profiles:    profiles,
		auditLogger: auditLogger,
	}
}

// CreateParams holds the fields accepted when scheduling a job.
type CreateParams struct {
	PropertyID    string
	AssignedTo    string
	JobType       string
	ScheduledDate string
	ScheduledTime string
}

// Create schedules a new job for a company property.
func (s *Service) Create(ctx context.Context, companyID, actorID string, params CreateParams) (*Job, error) {
	if params.PropertyID == "" {
		return nil, fmt.Errorf("property id is required")
	}
	if params.ScheduledDate == "" {
		return nil, fmt.Errorf("scheduled date is required")
	}

	// The property must belong to the caller's company.
	if _, err := s.properties.GetByID(ctx, companyID, params.PropertyID); err != nil {
		return nil, err
	}

	if params.AssignedTo != "" {
		if err := s.checkAssignee(ctx, companyID, params.AssignedTo); err != nil {
			return nil, err
		}
	}

	jobType := params.JobType
	if jobType == "" {
		jobType = DefaultType
	}

	now := time.Now()
	j := &Job{
		ID:            uuid.Must(uuid.NewV7()).String(),
		CompanyID:     companyID,
		PropertyID:    params.PropertyID,
		AssignedTo:    params.AssignedTo,
		JobType:       jobType,
		Status:        StatusScheduled,
		ScheduledDate: params.ScheduledDate,
		ScheduledTime: params.ScheduledTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeJobCreated,
		CompanyID: companyID,
		ActorID:   actorID,
		Resource:  "job",
		Metadata:  map[string]any{"job_id": j.ID, "property_id": j.PropertyID},
	})

	return j, nil
}

// Get retrieves a job within the company scope.
func (s *Service) Get(ctx context.Context, companyID, id string) (*Job, error) {
	return s.repo.GetByID(ctx, companyID, id)
}

// List lists all jobs for a company in schedule order.
func (s *Service) List(ctx context.Context, companyID string) ([]*Job, error) {
	return s.repo.ListByCompany(ctx, companyID)
}

// ListAssigned lists a cleaner's own jobs.
func (s *Service) ListAssigned(ctx context.Context, companyID, profileID string) ([]*Job, error) {
	return s.repo.ListByAssignee(ctx, companyID, profileID)
}

// UpdateStatus applies a state-machine transition. Entering in_progress
// stamps started_at if unset; entering completed stamps completed_at. A
// request against a terminal job fails with ErrInvalidTransition.
func (s *Service) UpdateStatus(ctx context.Context, companyID, id string, next Status, actorID string) (*Job, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	j, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if !j.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, next)
	}

	now := time.Now()
	prev := j.Status
	j.Status = next
	j.UpdatedAt = now

	switch next {
	case StatusInProgress:
		if j.StartedAt == nil {
			j.StartedAt = &now
		}
	case StatusCompleted:
		j.CompletedAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, j, prev); err != nil {
		// A concurrent transition may have moved the job between the read
		// above and the conditional write; surface that as the conflict it is.
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeJobStatusChanged,
		CompanyID: companyID,
		ActorID:   actorID,
		Resource:  "job",
		Metadata:  map[string]any{"job_id": id, "from": string(prev), "to": string(next)},
	})

	return j, nil
}

// Assign sets or clears the cleaner responsible for a job.
func (s *Service) Assign(ctx context.Context, companyID, id, assigneeID, actorID string) error {
	if _, err := s.repo.GetByID(ctx, companyID, id); err != nil {
		return err
	}

	if assigneeID != "" {
		if err := s.checkAssignee(ctx, companyID, assigneeID); err != nil {
			return err
		}
	}

	if err := s.repo.UpdateAssignee(ctx, companyID, id, assigneeID); err != nil {
		return fmt.Errorf("failed to assign job: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeJobAssigned,
		CompanyID: companyID,
		ActorID:   actorID,
		Resource:  "job",
		Metadata:  map[string]any{"job_id": id, "assigned_to": assigneeID},
	})

	return nil
}

// checkAssignee verifies the assignee is a cleaner in the same company.
func (s *Service) checkAssignee(ctx context.Context, companyID, profileID string) error {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return err
	}
	if p.CompanyID != companyID {
		return identity.ErrProfileNotFound
	}
	if p.Role != identity.RoleCleaner {
		return fmt.Errorf("assignee must have the cleaner role")
	}
	return nil
}
