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

// Package system provides integration tests that run against a real PostgreSQL database.
//
// Test Execution:
//
//	INTEGRATION_TEST=true go test -v ./tests/system/...
//
// Prerequisites:
//
//	docker compose up -d postgres
package system

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidyforge/tidyforge/internal/client"
	"github.com/tidyforge/tidyforge/internal/company"
	"github.com/tidyforge/tidyforge/internal/identity"
	"github.com/tidyforge/tidyforge/internal/store/postgres"
)

// testDB is the shared database connection for integration tests
var testDB *postgres.DB

// TestMain sets up and tears down the test database connection
func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		os.Exit(0)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:            getEnvOrDefault("DB_HOST", "localhost"),
		Port:            getEnvOrDefault("DB_PORT", "5432"),
		User:            getEnvOrDefault("DB_USER", "tidyforge"),
		Password:        getEnvOrDefault("DB_PASSWORD", "tidyforge_dev_password"),
		Database:        getEnvOrDefault("DB_NAME", "tidyforge"),
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        2,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	testDB = db

	// Apply migrations; existing tables are fine
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		_ = err
	}

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func provisionCompany(t *testing.T, name string) (*company.Company, *identity.Profile) {
	t.Helper()
	ctx := context.Background()
	profileRepo := postgres.NewProfileRepository(testDB)

	now := time.Now()
	trialEnd := now.Add(company.TrialPeriod)
	c := &company.Company{
		ID:                 uuid.Must(uuid.NewV7()).String(),
		Name:               name,
		Email:              name + "@example.com",
		SubscriptionStatus: company.StatusTrial,
		SubscriptionPlan:   company.PlanStarter,
		TrialEndsAt:        &trialEnd,
	}
	p := &identity.Profile{
		ID:        uuid.Must(uuid.NewV7()).String(),
		CompanyID: c.ID,
		Email:     name + "@example.com",
		FullName:  name,
		Role:      identity.RoleAdmin,
	}
	require.NoError(t, profileRepo.CreateWithCompany(ctx, c, p))
	return c, p
}

// Validates that clients created by company A are invisible to company B
// through every repository read path.
func TestCompanyIsolation_ClientsAreScoped(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	clientRepo := postgres.NewClientRepository(testDB)

	companyA, _ := provisionCompany(t, "isolation-a")
	companyB, _ := provisionCompany(t, "isolation-b")

	now := time.Now()
	c := &client.Client{
		ID:        uuid.Must(uuid.NewV7()).String(),
		CompanyID: companyA.ID,
		Name:      "Acme Offices",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, clientRepo.Create(ctx, c))

	// Visible to the owner
	got, err := clientRepo.GetByID(ctx, companyA.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Offices", got.Name)

	// Invisible to the other company, even with the right ID
	_, err = clientRepo.GetByID(ctx, companyB.ID, c.ID)
	assert.ErrorIs(t, err, client.ErrClientNotFound)

	listed, err := clientRepo.ListByCompany(ctx, companyB.ID)
	require.NoError(t, err)
	for _, item := range listed {
		assert.NotEqual(t, c.ID, item.ID)
	}
}

// Validates that provisioning the same identity twice rolls the second
// company insert back and surfaces the duplicate to the caller.
func TestProvisioning_DuplicateIdentityLeavesNoOrphanCompany(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	profileRepo := postgres.NewProfileRepository(testDB)
	companyRepo := postgres.NewCompanyRepository(testDB)

	_, p := provisionCompany(t, "dup-identity")

	now := time.Now()
	trialEnd := now.Add(company.TrialPeriod)
	orphan := &company.Company{
		ID:                 uuid.Must(uuid.NewV7()).String(),
		Name:               "Orphan Co",
		Email:              "orphan@example.com",
		SubscriptionStatus: company.StatusTrial,
		SubscriptionPlan:   company.PlanStarter,
		TrialEndsAt:        &trialEnd,
	}
	dup := &identity.Profile{
		ID:        p.ID, // same identity
		CompanyID: orphan.ID,
		Email:     "orphan@example.com",
		FullName:  "Orphan",
		Role:      identity.RoleAdmin,
	}

	err := profileRepo.CreateWithCompany(ctx, orphan, dup)
	require.ErrorIs(t, err, identity.ErrProfileAlreadyExists)

	// The company insert must have been rolled back with the profile.
	_, err = companyRepo.GetByID(ctx, orphan.ID)
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)
}

// Validates the at-most-once customer reference claim against real SQL.
func TestCompanyBilling_CustomerRefClaimedOnce(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	companyRepo := postgres.NewCompanyRepository(testDB)

	c, _ := provisionCompany(t, "claim-once")

	claimed, err := companyRepo.ClaimCustomerRef(ctx, c.ID, "cus_first")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = companyRepo.ClaimCustomerRef(ctx, c.ID, "cus_second")
	require.NoError(t, err)
	assert.False(t, claimed, "second claim must lose")

	stored, err := companyRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "cus_first", stored.StripeCustomerID)
}

// Validates the event timestamp guard against real SQL: an older event must
// not overwrite a newer applied status.
func TestCompanyBilling_StaleEventDropped(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	companyRepo := postgres.NewCompanyRepository(testDB)

	c, _ := provisionCompany(t, "stale-guard")

	newer := time.Now()
	older := newer.Add(-time.Minute)

	applied, err := companyRepo.UpdateSubscriptionStatus(ctx, c.ID, "active", newer)
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = companyRepo.UpdateSubscriptionStatus(ctx, c.ID, "past_due", older)
	require.NoError(t, err)
	assert.False(t, applied)

	stored, err := companyRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", stored.SubscriptionStatus)
}
