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

package company

import (
	"context"
	"fmt"

	"github.com/tidyforge/tidyforge/internal/audit"
)

// Service provides company management business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new company service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// Get retrieves a company by ID
func (s *Service) Get(ctx context.Context, id string) (*Company, error) {
	return s.repo.GetByID(ctx, id)
}

// Rename updates the company name. OAuth-provisioned companies start with a
// derived placeholder name, so this is the first thing most admins change.
func (s *Service) Rename(ctx context.Context, id, name, actorID string) (*Company, error) {
	if name == "" {
		return nil, fmt.Errorf("company name is required")
	}

	if err := s.repo.UpdateName(ctx, id, name); err != nil {
		return nil, fmt.Errorf("failed to rename company: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeCompanyUpdated,
		CompanyID: id,
		ActorID:   actorID,
		Resource:  "company",
		Metadata:  map[string]any{"name": name},
	})

	return s.repo.GetByID(ctx, id)
}
