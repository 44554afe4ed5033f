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
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tidyforge/tidyforge/internal/company"
)

// CompanyRepository implements company.Repository
type CompanyRepository struct {
	db *DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

const companyColumns = `
	id, name, email, stripe_customer_id, stripe_subscription_id,
	subscription_status, subscription_plan, trial_ends_at,
	subscription_synced_at, created_at, updated_at
`

func scanCompany(row pgx.Row) (*company.Company, error) {
	var c company.Company
	var customerRef, subscriptionRef sql.NullString
	var trialEndsAt, syncedAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &customerRef, &subscriptionRef,
		&c.SubscriptionStatus, &c.SubscriptionPlan, &trialEndsAt,
		&syncedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.StripeCustomerID = customerRef.String
	c.StripeSubscriptionID = subscriptionRef.String
	if trialEndsAt.Valid {
		c.TrialEndsAt = &trialEndsAt.Time
	}
	if syncedAt.Valid {
		c.SubscriptionSyncedAt = &syncedAt.Time
	}

	return &c, nil
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*company.Company, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE id = $1
	`, id)

	c, err := scanCompany(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, company.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return c, nil
}

// GetByCustomerRef retrieves a company by its billing customer reference
func (r *CompanyRepository) GetByCustomerRef(ctx context.Context, customerRef string) (*company.Company, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE stripe_customer_id = $1
	`, customerRef)

	c, err := scanCompany(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, company.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company by customer ref: %w", err)
	}

	return c, nil
}

// UpdateName updates the company display name
func (r *CompanyRepository) UpdateName(ctx context.Context, id, name string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE companies SET name = $2, updated_at = NOW()
		WHERE id = $1
	`, id, name)
	if err != nil {
		return fmt.Errorf("failed to update company name: %w", err)
	}

	if result.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}

	return nil
}

// ClaimCustomerRef sets the billing customer reference only if unset.
// The WHERE clause makes concurrent claims race safely: exactly one
// UPDATE matches, the losers see zero rows affected.
func (r *CompanyRepository) ClaimCustomerRef(ctx context.Context, id, customerRef string) (bool, error) {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE companies SET stripe_customer_id = $2, updated_at = NOW()
		WHERE id = $1 AND stripe_customer_id IS NULL
	`, id, customerRef)
	if err != nil {
		return false, fmt.Errorf("failed to claim customer ref: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ActivateSubscription records a completed checkout
func (r *CompanyRepository) ActivateSubscription(ctx context.Context, id, subscriptionRef, plan string, eventTime time.Time) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE companies SET
			stripe_subscription_id = $2,
			subscription_status = $3,
			subscription_plan = $4,
			subscription_synced_at = $5,
			updated_at = NOW()
		WHERE id = $1
			AND (subscription_synced_at IS NULL OR subscription_synced_at <= $5)
	`, id, subscriptionRef, company.StatusActive, plan, eventTime)
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Existence check: a stale event against a live company is not an
		// error, but an unknown company is.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}

	return nil
}

// UpdateSubscriptionStatus applies a provider status verbatim, guarded by
// the event timestamp so out-of-order webhook deliveries never regress
// the stored state.
func (r *CompanyRepository) UpdateSubscriptionStatus(ctx context.Context, id, status string, eventTime time.Time) (bool, error) {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE companies SET
			subscription_status = $2,
			subscription_synced_at = $3,
			updated_at = NOW()
		WHERE id = $1
			AND (subscription_synced_at IS NULL OR subscription_synced_at <= $3)
	`, id, status, eventTime)
	if err != nil {
		return false, fmt.Errorf("failed to update subscription status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// CancelSubscription marks the subscription cancelled and clears the
// subscription reference
func (r *CompanyRepository) CancelSubscription(ctx context.Context, id string, eventTime time.Time) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE companies SET
			subscription_status = $2,
			stripe_subscription_id = NULL,
			subscription_synced_at = $3,
			updated_at = NOW()
		WHERE id = $1
			AND (subscription_synced_at IS NULL OR subscription_synced_at <= $3)
	`, id, company.StatusCancelled, eventTime)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}

	return nil
}
