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

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tidyforge/tidyforge/internal/identity"
	"github.com/tidyforge/tidyforge/internal/job"
	"github.com/tidyforge/tidyforge/internal/property"
)

// CreateJobRequest represents job scheduling data
type CreateJobRequest struct {
	PropertyID    string `json:"property_id"`
	AssignedTo    string `json:"assigned_to"`
	JobType       string `json:"job_type"`
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
}

// ListJobs returns the caller's visible jobs. Cleaners see only their own
// assignments; admins and managers see the whole schedule.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		jobs []*job.Job
		err  error
	)
	if GetRole(ctx) == identity.RoleCleaner {
		jobs, err = h.jobService.ListAssigned(ctx, GetCompanyID(ctx), GetUserID(ctx))
	} else {
		jobs, err = h.jobService.List(ctx, GetCompanyID(ctx))
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// CreateJob schedules a job.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PropertyID == "" || req.ScheduledDate == "" {
		respondError(w, http.StatusBadRequest, "property_id and scheduled_date are required")
		return
	}

	j, err := h.jobService.Create(r.Context(), GetCompanyID(r.Context()), GetUserID(r.Context()), job.CreateParams{
		PropertyID:    req.PropertyID,
		AssignedTo:    req.AssignedTo,
		JobType:       req.JobType,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, property.ErrPropertyNotFound):
			respondError(w, http.StatusNotFound, "property not found")
		case errors.Is(err, identity.ErrProfileNotFound):
			respondError(w, http.StatusNotFound, "assignee not found")
		default:
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, j)
}

// GetJob returns a single job.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobService.Get(r.Context(), GetCompanyID(r.Context()), chi.URLParam(r, "jobID"))
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	respondJSON(w, http.StatusOK, j)
}

// UpdateJobStatusRequest represents a status transition
type UpdateJobStatusRequest struct {
	Status string `json:"status"`
}

// UpdateJobStatus applies a job state transition. Cleaners may only move
// their own assignments; an invalid transition is a conflict, not a crash.
func (h *Handler) UpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateJobStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	jobID := chi.URLParam(r, "jobID")

	if GetRole(ctx) == identity.RoleCleaner {
		j, err := h.jobService.Get(ctx, GetCompanyID(ctx), jobID)
		if err != nil {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		if j.AssignedTo != GetUserID(ctx) {
			respondError(w, http.StatusForbidden, "job is not assigned to you")
			return
		}
	}

	j, err := h.jobService.UpdateStatus(ctx, GetCompanyID(ctx), jobID, job.Status(req.Status), GetUserID(ctx))
	if err != nil {
		switch {
		case errors.Is(err, job.ErrJobNotFound):
			respondError(w, http.StatusNotFound, "job not found")
		case errors.Is(err, job.ErrInvalidTransition):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to update job status")
		}
		return
	}

	respondJSON(w, http.StatusOK, j)
}

// AssignJobRequest represents an assignment change
type AssignJobRequest struct {
	AssignedTo string `json:"assigned_to"`
}

// AssignJob sets or clears the cleaner responsible for a job.
func (h *Handler) AssignJob(w http.ResponseWriter, r *http.Request) {
	var req AssignJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	err := h.jobService.Assign(ctx, GetCompanyID(ctx), chi.URLParam(r, "jobID"), req.AssignedTo, GetUserID(ctx))
	if err != nil {
		switch {
		case errors.Is(err, job.ErrJobNotFound):
			respondError(w, http.StatusNotFound, "job not found")
		case errors.Is(err, identity.ErrProfileNotFound):
			respondError(w, http.StatusNotFound, "assignee not found")
		default:
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "job assigned"})
}
