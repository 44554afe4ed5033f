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

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidyforge/tidyforge/internal/audit"
	"github.com/tidyforge/tidyforge/internal/company"
)

// Service provides identity provisioning and profile management
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new identity service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// Provision sets up a company and founding admin profile for a newly
// authenticated identity. It is idempotent: if a profile already exists for
// identityID it is returned unchanged, including when a concurrent request
// wins the creation race (a duplicated OAuth callback is the usual cause).
func (s *Service) Provision(ctx context.Context, identityID, email, fullName string) (*Profile, error) {
	if identityID == "" {
		return nil, fmt.Errorf("identity id is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if fullName == "" {
		fullName = "User"
	}

	// Fast path: already onboarded.
	existing, err := s.repo.GetByID(ctx, identityID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}

	now := time.Now()
	trialEndsAt := now.Add(company.TrialPeriod)

	c := &company.Company{
		ID:                 uuid.Must(uuid.NewV7()).String(),
		Name:               fmt.Sprintf("%s's Company", fullName),
		Email:              email,
		SubscriptionStatus: company.StatusTrial,
		SubscriptionPlan:   company.PlanStarter,
		TrialEndsAt:        &trialEndsAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	p := &Profile{
		ID:        identityID,
		CompanyID: c.ID,
		Email:     email,
		FullName:  fullName,
		Role:      RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateWithCompany(ctx, c, p); err != nil {
		// Duplicate identity means a concurrent provision won the race: the
		// transaction rolled back, so no orphaned company exists and the
		// winner's profile is the answer.
		if errors.Is(err, ErrProfileAlreadyExists) {
			return s.repo.GetByID(ctx, identityID)
		}
		return nil, fmt.Errorf("failed to provision identity: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeCompanyProvisioned,
		CompanyID: c.ID,
		ActorID:   p.ID,
		Resource:  "company",
		Metadata: map[string]any{
			"email": email,
			"plan":  c.SubscriptionPlan,
		},
	})

	return p, nil
}

// Get retrieves a profile by identity ID
func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// ListTeam lists all profiles belonging to a company
func (s *Service) ListTeam(ctx context.Context, companyID string) ([]*Profile, error) {
	return s.repo.ListByCompany(ctx, companyID)
}

// ChangeRole updates a team member's role. The caller must belong to the
// same company as the target profile; the transport layer checks the caller
// is an admin.
func (s *Service) ChangeRole(ctx context.Context, companyID, profileID, role string) error {
	if !ValidRole(role) {
		return fmt.Errorf("invalid role: %s", role)
	}

	p, err := s.repo.GetByID(ctx, profileID)
	if err != nil {
		return err
	}
	if p.CompanyID != companyID {
		return ErrProfileNotFound
	}

	return s.repo.UpdateRole(ctx, profileID, role)
}
