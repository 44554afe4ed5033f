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

package system

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidyforge/tidyforge/internal/job"
	"github.com/tidyforge/tidyforge/internal/property"
	"github.com/tidyforge/tidyforge/internal/store/postgres"
)

func createProperty(t *testing.T, companyID string) *property.Property {
	t.Helper()
	now := time.Now()
	p := &property.Property{
		ID:        uuid.Must(uuid.NewV7()).String(),
		CompanyID: companyID,
		Address:   "1 Main St",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, postgres.NewPropertyRepository(testDB).Create(context.Background(), p))
	return p
}

// Validates that a property persists and reads back without a client link.
func TestProperties_ClientLinkIsOptional(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	c, _ := provisionCompany(t, "Standalone Properties Co")
	created := createProperty(t, c.ID)

	got, err := postgres.NewPropertyRepository(testDB).GetByID(ctx, c.ID, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ClientID)
	assert.Equal(t, "1 Main St", got.Address)
}

// Validates that the status column pins job transitions at the store: a
// writer holding a stale snapshot cannot overwrite a transition that landed
// after its read.
func TestJobTransitions_StaleWriteRejectedAtStore(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	jobRepo := postgres.NewJobRepository(testDB)

	c, _ := provisionCompany(t, "Transition Race Co")
	prop := createProperty(t, c.ID)

	now := time.Now()
	j := &job.Job{
		ID:            uuid.Must(uuid.NewV7()).String(),
		CompanyID:     c.ID,
		PropertyID:    prop.ID,
		JobType:       job.DefaultType,
		Status:        job.StatusScheduled,
		ScheduledDate: "2026-09-01",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, jobRepo.Create(ctx, j))

	// First writer moves the job to in_progress.
	started := *j
	started.Status = job.StatusInProgress
	startTime := time.Now()
	started.StartedAt = &startTime
	started.UpdatedAt = startTime
	require.NoError(t, jobRepo.UpdateStatus(ctx, &started, job.StatusScheduled))

	// A second writer still holding the scheduled snapshot loses the race.
	stale := *j
	stale.Status = job.StatusCancelled
	stale.UpdatedAt = time.Now()
	err := jobRepo.UpdateStatus(ctx, &stale, job.StatusScheduled)
	require.ErrorIs(t, err, job.ErrInvalidTransition)

	current, err := jobRepo.GetByID(ctx, c.ID, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusInProgress, current.Status)
	assert.NotNil(t, current.StartedAt)
}
