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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tidyforge/tidyforge/internal/company"
	"github.com/tidyforge/tidyforge/internal/identity"
)

// ProfileRepository implements identity.Repository
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*identity.Profile, error) {
	var p identity.Profile

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, company_id, email, full_name, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, id).Scan(&p.ID, &p.CompanyID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &p, nil
}

// ListByCompany retrieves all profiles belonging to a company
func (r *ProfileRepository) ListByCompany(ctx context.Context, companyID string) ([]*identity.Profile, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, company_id, email, full_name, role, created_at, updated_at
		FROM profiles
		WHERE company_id = $1
		ORDER BY created_at
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*identity.Profile
	for rows.Next() {
		var p identity.Profile
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, &p)
	}

	return profiles, rows.Err()
}

// CreateWithCompany creates a company and its founding admin profile in a
// single transaction. A duplicate profile ID rolls both inserts back and
// surfaces identity.ErrProfileAlreadyExists.
func (r *ProfileRepository) CreateWithCompany(ctx context.Context, c *company.Company, p *identity.Profile) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	_, err = tx.Exec(ctx, `
		INSERT INTO companies (
			id, name, email, subscription_status, subscription_plan,
			trial_ends_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, c.Email, c.SubscriptionStatus, c.SubscriptionPlan, c.TrialEndsAt, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert company: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (id, company_id, email, full_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.CompanyID, p.Email, p.FullName, p.Role, now, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return identity.ErrProfileAlreadyExists
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit provisioning transaction: %w", err)
	}

	c.CreatedAt = now
	c.UpdatedAt = now
	p.CreatedAt = now
	p.UpdatedAt = now

	return nil
}

// UpdateRole updates a profile's role
func (r *ProfileRepository) UpdateRole(ctx context.Context, id, role string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE profiles SET role = $2, updated_at = NOW()
		WHERE id = $1
	`, id, role)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrProfileNotFound
	}

	return nil
}
