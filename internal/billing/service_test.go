package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidyforge/tidyforge/internal/audit"
	"github.com/tidyforge/tidyforge/internal/identity"
)

type fakeProvider struct {
	customerRef string
	checkoutURL string
	portalURL   string

	customerErr error
	checkoutErr error
	portalErr   error

	createdCustomers []CustomerParams
	checkouts        []CheckoutParams
	portals          []string
}

func (p *fakeProvider) CreateCustomer(_ context.Context, params CustomerParams) (string, error) {
	if p.customerErr != nil {
		return "", p.customerErr
	}
	p.createdCustomers = append(p.createdCustomers, params)
	return p.customerRef, nil
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, params CheckoutParams) (string, error) {
	if p.checkoutErr != nil {
		return "", p.checkoutErr
	}
	p.checkouts = append(p.checkouts, params)
	return p.checkoutURL, nil
}

func (p *fakeProvider) CreatePortalSession(_ context.Context, customerRef, _ string) (string, error) {
	if p.portalErr != nil {
		return "", p.portalErr
	}
	p.portals = append(p.portals, customerRef)
	return p.portalURL, nil
}

func (p *fakeProvider) VerifyWebhook(_ []byte, _ string) (Event, error) {
	return Event{}, nil
}

func testURLs() URLs {
	return URLs{
		CheckoutSuccess: "https://app.tidyforge.test/dashboard/billing?success=true",
		CheckoutCancel:  "https://app.tidyforge.test/dashboard/billing?canceled=true",
		PortalReturn:    "https://app.tidyforge.test/dashboard/billing",
	}
}

func testPriceIDs() map[string]string {
	return map[string]string{
		"starter":      "price_starter",
		"professional": "price_professional",
		"enterprise":   "price_enterprise",
	}
}

func adminProfile() *identity.Profile {
	return &identity.Profile{
		ID:        "auth0|ada",
		CompanyID: "company-1",
		Email:     "ada@example.com",
		FullName:  "Ada Lovelace",
		Role:      identity.RoleAdmin,
	}
}

// TestPurpose: Validates the first checkout creates a billing customer,
// persists the reference onto the company before requesting the session,
// and embeds company and plan metadata for later attribution.
func TestBilling_Service_Checkout_FirstCall_CreatesCustomer(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", ""))
	provider := &fakeProvider{
		customerRef: "cus_42",
		checkoutURL: "https://checkout.stripe.test/c/pay_1",
	}
	svc := NewService(repo, provider, testPriceIDs(), testURLs(), time.Second, audit.NewSlogLogger())

	url, err := svc.CreateCheckoutSession(context.Background(), adminProfile(), "professional")

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/c/pay_1", url)

	require.Len(t, provider.createdCustomers, 1)
	assert.Equal(t, "company-1", provider.createdCustomers[0].CompanyID)
	assert.Equal(t, "auth0|ada", provider.createdCustomers[0].UserID)

	// Reference persisted before use.
	c, err := repo.GetByID(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, "cus_42", c.StripeCustomerID)

	require.Len(t, provider.checkouts, 1)
	assert.Equal(t, "cus_42", provider.checkouts[0].CustomerRef)
	assert.Equal(t, "price_professional", provider.checkouts[0].PriceID)
	assert.Equal(t, "company-1", provider.checkouts[0].CompanyID)
	assert.Equal(t, "professional", provider.checkouts[0].PlanKey)
}

// TestPurpose: Validates a second checkout observes the stored reference and
// does not create another provider customer (at-most-one customer per
// company).
func TestBilling_Service_Checkout_SecondCall_ReusesCustomer(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", "cus_existing"))
	provider := &fakeProvider{checkoutURL: "https://checkout.stripe.test/c/pay_2"}
	svc := NewService(repo, provider, testPriceIDs(), testURLs(), time.Second, audit.NewSlogLogger())

	_, err := svc.CreateCheckoutSession(context.Background(), adminProfile(), "starter")

	require.NoError(t, err)
	assert.Empty(t, provider.createdCustomers)
	require.Len(t, provider.checkouts, 1)
	assert.Equal(t, "cus_existing", provider.checkouts[0].CustomerRef)
}

// TestPurpose: Validates losing the claim race does not overwrite the stored
// reference: the concurrent winner's customer is used for the session.
func TestBilling_Service_Checkout_ClaimRaceLost(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", ""))
	provider := &fakeProvider{
		customerRef: "cus_loser",
		checkoutURL: "https://checkout.stripe.test/c/pay_3",
	}
	svc := NewService(repo, provider, testPriceIDs(), testURLs(), time.Second, audit.NewSlogLogger())

	// A concurrent request claims the column between this request's read and
	// its own claim attempt.
	repo.beforeClaim = func() {
		repo.beforeClaim = nil
		repo.companies["company-1"].StripeCustomerID = "cus_winner"
	}

	url, err := svc.CreateCheckoutSession(context.Background(), &identity.Profile{
		ID:        "auth0|grace",
		CompanyID: "company-1",
		Email:     "grace@example.com",
		Role:      identity.RoleAdmin,
	}, "starter")

	require.NoError(t, err)
	assert.NotEmpty(t, url)

	got, err := repo.GetByID(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, "cus_winner", got.StripeCustomerID)
	require.Len(t, provider.checkouts, 1)
	assert.Equal(t, "cus_winner", provider.checkouts[0].CustomerRef)
}

func TestBilling_Service_Checkout_UnknownPlan(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", ""))
	svc := NewService(repo, &fakeProvider{}, testPriceIDs(), testURLs(), time.Second, audit.NewSlogLogger())

	_, err := svc.CreateCheckoutSession(context.Background(), adminProfile(), "platinum")

	assert.ErrorIs(t, err, ErrUnknownPlan)
}

// TestPurpose: Validates provider failures surface without persisting a
// customer reference, so the whole operation is retryable.
func TestBilling_Service_Checkout_ProviderFailure(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", ""))
	provider := &fakeProvider{customerErr: errors.New("stripe is down")}
	svc := NewService(repo, provider, testPriceIDs(), testURLs(), time.Second, audit.NewSlogLogger())

	_, err := svc.CreateCheckoutSession(context.Background(), adminProfile(), "starter")

	require.Error(t, err)
	c, _ := repo.GetByID(context.Background(), "company-1")
	assert.Empty(t, c.StripeCustomerID)
}

// TestPurpose: Validates the portal requires an existing billing customer.
func TestBilling_Service_Portal_NoCustomer(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", ""))
	svc := NewService(repo, &fakeProvider{}, testPriceIDs(), testURLs(), time.Second, audit.NewSlogLogger())

	_, err := svc.CreatePortalSession(context.Background(), adminProfile())

	assert.ErrorIs(t, err, ErrNoCustomer)
}

func TestBilling_Service_Portal_Success(t *testing.T) {
	repo := newFakeCompanyRepo(trialCompany("company-1", "cus_42"))
	provider := &fakeProvider{portalURL: "https://billing.stripe.test/p/session_1"}
	svc := NewService(repo, provider, testPriceIDs(), testURLs(), time.Second, audit.NewSlogLogger())

	url, err := svc.CreatePortalSession(context.Background(), adminProfile())

	require.NoError(t, err)
	assert.Equal(t, "https://billing.stripe.test/p/session_1", url)
	require.Len(t, provider.portals, 1)
	assert.Equal(t, "cus_42", provider.portals[0])
}

func TestBilling_PlanCatalog(t *testing.T) {
	p, ok := PlanByKey("professional")
	require.True(t, ok)
	assert.Equal(t, int64(99), p.MonthlyPriceUSD)

	_, ok = PlanByKey("platinum")
	assert.False(t, ok)
}
