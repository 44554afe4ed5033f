package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidyforge/tidyforge/internal/audit"
	"github.com/tidyforge/tidyforge/internal/company"
)

// fakeCompanyRepo is an in-memory company.Repository with the same
// conditional-write semantics as the postgres implementation, so replay and
// ordering behavior can be exercised against real state.
type fakeCompanyRepo struct {
	companies map[string]*company.Company
	failWith  error

	// beforeClaim runs at the top of ClaimCustomerRef, letting tests model a
	// concurrent request winning the claim race.
	beforeClaim func()
}

func newFakeCompanyRepo(companies ...*company.Company) *fakeCompanyRepo {
	repo := &fakeCompanyRepo{companies: make(map[string]*company.Company)}
	for _, c := range companies {
		repo.companies[c.ID] = c
	}
	return repo
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id string) (*company.Company, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	c, ok := r.companies[id]
	if !ok {
		return nil, company.ErrCompanyNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCompanyRepo) GetByCustomerRef(_ context.Context, ref string) (*company.Company, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, c := range r.companies {
		if c.StripeCustomerID == ref && ref != "" {
			copied := *c
			return &copied, nil
		}
	}
	return nil, company.ErrCompanyNotFound
}

func (r *fakeCompanyRepo) UpdateName(_ context.Context, id, name string) error {
	c, ok := r.companies[id]
	if !ok {
		return company.ErrCompanyNotFound
	}
	c.Name = name
	return nil
}

func (r *fakeCompanyRepo) ClaimCustomerRef(_ context.Context, id, ref string) (bool, error) {
	if r.beforeClaim != nil {
		r.beforeClaim()
	}
	if r.failWith != nil {
		return false, r.failWith
	}
	c, ok := r.companies[id]
	if !ok {
		return false, company.ErrCompanyNotFound
	}
	if c.StripeCustomerID != "" {
		return false, nil
	}
	c.StripeCustomerID = ref
	return true, nil
}

func (r *fakeCompanyRepo) ActivateSubscription(_ context.Context, id, subscriptionRef, plan string, eventTime time.Time) error {
	if r.failWith != nil {
		return r.failWith
	}
	c, ok := r.companies[id]
	if !ok {
		return company.ErrCompanyNotFound
	}
	if c.SubscriptionSyncedAt != nil && c.SubscriptionSyncedAt.After(eventTime) {
		return nil
	}
	c.StripeSubscriptionID = subscriptionRef
	c.SubscriptionStatus = company.StatusActive
	c.SubscriptionPlan = plan
	t := eventTime
	c.SubscriptionSyncedAt = &t
	return nil
}

func (r *fakeCompanyRepo) UpdateSubscriptionStatus(_ context.Context, id, status string, eventTime time.Time) (bool, error) {
	if r.failWith != nil {
		return false, r.failWith
	}
	c, ok := r.companies[id]
	if !ok {
		return false, company.ErrCompanyNotFound
	}
	if c.SubscriptionSyncedAt != nil && c.SubscriptionSyncedAt.After(eventTime) {
		return false, nil
	}
	c.SubscriptionStatus = status
	t := eventTime
	c.SubscriptionSyncedAt = &t
	return true, nil
}

func (r *fakeCompanyRepo) CancelSubscription(_ context.Context, id string, eventTime time.Time) error {
	if r.failWith != nil {
		return r.failWith
	}
	c, ok := r.companies[id]
	if !ok {
		return company.ErrCompanyNotFound
	}
	c.SubscriptionStatus = company.StatusCancelled
	c.StripeSubscriptionID = ""
	t := eventTime
	c.SubscriptionSyncedAt = &t
	return nil
}

func trialCompany(id, customerRef string) *company.Company {
	return &company.Company{
		ID:                 id,
		Name:               "Sparkle Co",
		Email:              "owner@sparkle.test",
		StripeCustomerID:   customerRef,
		SubscriptionStatus: company.StatusTrial,
		SubscriptionPlan:   company.PlanStarter,
	}
}

// TestPurpose: Validates the full lifecycle scenario: checkout completion
// activates the subscription, a later deletion cancels it and clears the
// subscription reference.
func TestBilling_Reconciler_Lifecycle(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", "cus_42"))
	rec := NewReconciler(repo, audit.NewSlogLogger())
	ctx := context.Background()

	err := rec.Reconcile(ctx, Event{
		ID:              "evt_1",
		Type:            EventCheckoutCompleted,
		CreatedAt:       time.Unix(1000, 0),
		CompanyID:       "company-1",
		PlanKey:         "professional",
		SubscriptionRef: "sub_123",
	})
	require.NoError(t, err)

	c, err := repo.GetByID(ctx, "company-1")
	require.NoError(t, err)
	assert.Equal(t, company.StatusActive, c.SubscriptionStatus)
	assert.Equal(t, "professional", c.SubscriptionPlan)
	assert.Equal(t, "sub_123", c.StripeSubscriptionID)

	err = rec.Reconcile(ctx, Event{
		ID:          "evt_2",
		Type:        EventSubscriptionDeleted,
		CreatedAt:   time.Unix(2000, 0),
		CustomerRef: "cus_42",
	})
	require.NoError(t, err)

	c, err = repo.GetByID(ctx, "company-1")
	require.NoError(t, err)
	assert.Equal(t, company.StatusCancelled, c.SubscriptionStatus)
	assert.Empty(t, c.StripeSubscriptionID)
}

// TestPurpose: Validates replaying the same checkout completed event is
// idempotent: the second application leaves the same end state as the first.
func TestBilling_Reconciler_CheckoutCompleted_Replay(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", "cus_42"))
	rec := NewReconciler(repo, audit.NewSlogLogger())
	ctx := context.Background()

	ev := Event{
		ID:              "evt_1",
		Type:            EventCheckoutCompleted,
		CreatedAt:       time.Unix(1000, 0),
		CompanyID:       "company-1",
		PlanKey:         "professional",
		SubscriptionRef: "sub_123",
	}

	require.NoError(t, rec.Reconcile(ctx, ev))
	first, err := repo.GetByID(ctx, "company-1")
	require.NoError(t, err)

	require.NoError(t, rec.Reconcile(ctx, ev))
	second, err := repo.GetByID(ctx, "company-1")
	require.NoError(t, err)

	assert.Equal(t, first.SubscriptionStatus, second.SubscriptionStatus)
	assert.Equal(t, first.SubscriptionPlan, second.SubscriptionPlan)
	assert.Equal(t, first.StripeSubscriptionID, second.StripeSubscriptionID)
}

// TestPurpose: Validates that checkout events without attribution (no
// company metadata or no subscription) are acknowledged without touching
// state.
func TestBilling_Reconciler_CheckoutCompleted_MissingAttribution(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
	}{
		{
			name: "no company metadata",
			ev:   Event{Type: EventCheckoutCompleted, SubscriptionRef: "sub_123"},
		},
		{
			name: "no subscription reference",
			ev:   Event{Type: EventCheckoutCompleted, CompanyID: "company-1"},
		},
		{
			name: "unknown company",
			ev:   Event{Type: EventCheckoutCompleted, CompanyID: "ghost", SubscriptionRef: "sub_123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeCompanyRepo(trialCompany("company-1", ""))
			rec := NewReconciler(repo, audit.NewSlogLogger())

			err := rec.Reconcile(context.Background(), tt.ev)

			require.NoError(t, err)
			c, _ := repo.GetByID(context.Background(), "company-1")
			assert.Equal(t, company.StatusTrial, c.SubscriptionStatus)
			assert.Empty(t, c.StripeSubscriptionID)
		})
	}
}

// TestPurpose: Validates the provider status is passed through verbatim on
// subscription updates, with no local enum re-validation.
func TestBilling_Reconciler_SubscriptionUpdated_VerbatimStatus(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", "cus_42"))
	rec := NewReconciler(repo, audit.NewSlogLogger())
	ctx := context.Background()

	err := rec.Reconcile(ctx, Event{
		ID:                 "evt_1",
		Type:               EventSubscriptionUpdated,
		CreatedAt:          time.Unix(1000, 0),
		CustomerRef:        "cus_42",
		SubscriptionStatus: "past_due",
	})

	require.NoError(t, err)
	c, _ := repo.GetByID(ctx, "company-1")
	assert.Equal(t, "past_due", c.SubscriptionStatus)
}

// TestPurpose: Validates an update for a customer reference matching no
// company is acknowledged successfully and changes no row.
func TestBilling_Reconciler_SubscriptionUpdated_UnknownCustomer(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", "cus_42"))
	rec := NewReconciler(repo, audit.NewSlogLogger())
	ctx := context.Background()

	err := rec.Reconcile(ctx, Event{
		Type:               EventSubscriptionUpdated,
		CustomerRef:        "cus_stranger",
		SubscriptionStatus: "active",
	})

	require.NoError(t, err)
	c, _ := repo.GetByID(ctx, "company-1")
	assert.Equal(t, company.StatusTrial, c.SubscriptionStatus)
}

// TestPurpose: Validates a late-arriving update older than the last applied
// event is dropped instead of overwriting newer state.
func TestBilling_Reconciler_SubscriptionUpdated_StaleEventIgnored(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", "cus_42"))
	rec := NewReconciler(repo, audit.NewSlogLogger())
	ctx := context.Background()

	require.NoError(t, rec.Reconcile(ctx, Event{
		ID:                 "evt_new",
		Type:               EventSubscriptionUpdated,
		CreatedAt:          time.Unix(2000, 0),
		CustomerRef:        "cus_42",
		SubscriptionStatus: "active",
	}))

	// Delivered late, created earlier.
	require.NoError(t, rec.Reconcile(ctx, Event{
		ID:                 "evt_old",
		Type:               EventSubscriptionUpdated,
		CreatedAt:          time.Unix(1000, 0),
		CustomerRef:        "cus_42",
		SubscriptionStatus: "past_due",
	}))

	c, _ := repo.GetByID(ctx, "company-1")
	assert.Equal(t, "active", c.SubscriptionStatus)
}

// TestPurpose: Validates unknown event kinds are acknowledged without state
// change (forward compatibility).
func TestBilling_Reconciler_UnknownEventKind(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", "cus_42"))
	rec := NewReconciler(repo, audit.NewSlogLogger())

	err := rec.Reconcile(context.Background(), Event{Type: "invoice.paid"})

	require.NoError(t, err)
	c, _ := repo.GetByID(context.Background(), "company-1")
	assert.Equal(t, company.StatusTrial, c.SubscriptionStatus)
}

// TestPurpose: Validates a storage failure during a matched event surfaces
// an error so the provider retries delivery.
func TestBilling_Reconciler_StorageFailure(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", "cus_42"))
	repo.failWith = errors.New("connection reset")
	rec := NewReconciler(repo, audit.NewSlogLogger())

	err := rec.Reconcile(context.Background(), Event{
		Type:               EventSubscriptionUpdated,
		CustomerRef:        "cus_42",
		SubscriptionStatus: "active",
	})

	assert.Error(t, err)
}
