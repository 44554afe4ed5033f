package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidyforge/tidyforge/internal/audit"
	"github.com/tidyforge/tidyforge/internal/company"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func (m *mockRepo) ListByCompany(ctx context.Context, companyID string) ([]*Profile, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Profile), args.Error(1)
}

func (m *mockRepo) CreateWithCompany(ctx context.Context, c *company.Company, p *Profile) error {
	args := m.Called(ctx, c, p)
	return args.Error(0)
}

func (m *mockRepo) UpdateRole(ctx context.Context, id, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Log(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

// TestPurpose: Validates that provisioning a new identity creates a company
// and founding admin profile as one unit, with a 14-day trial on the lowest
// plan.
// Expected: CreateWithCompany receives a UUIDv7 company id, trial status and
// an admin profile keyed by the identity id.
func TestIdentity_Service_Provision_NewIdentity(t *testing.T) {
	repo := new(mockRepo)
	auditLogger := new(mockAudit)
	service := NewService(repo, auditLogger)

	ctx := context.Background()
	before := time.Now()

	repo.On("GetByID", ctx, "auth0|ada").Return(nil, ErrProfileNotFound).Once()

	repo.On("CreateWithCompany", ctx,
		mock.MatchedBy(func(c *company.Company) bool {
			uid, err := uuid.Parse(c.ID)
			if err != nil || uid.Version() != 7 {
				return false
			}
			if c.Name != "Ada Lovelace's Company" {
				return false
			}
			if c.SubscriptionStatus != company.StatusTrial || c.SubscriptionPlan != company.PlanStarter {
				return false
			}
			if c.TrialEndsAt == nil {
				return false
			}
			return c.TrialEndsAt.After(before.Add(13 * 24 * time.Hour))
		}),
		mock.MatchedBy(func(p *Profile) bool {
			return p.ID == "auth0|ada" && p.Role == RoleAdmin && p.Email == "ada@example.com"
		}),
	).Return(nil)

	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeCompanyProvisioned
	})).Return()

	profile, err := service.Provision(ctx, "auth0|ada", "ada@example.com", "Ada Lovelace")

	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "auth0|ada", profile.ID)
	assert.Equal(t, RoleAdmin, profile.Role)
	assert.NotEmpty(t, profile.CompanyID)

	repo.AssertExpectations(t)
	auditLogger.AssertExpectations(t)
}

// TestPurpose: Validates provisioning is an idempotent no-op when the
// profile already exists (retried OAuth callback).
// Expected: The existing profile is returned unchanged; no company or
// profile is created.
func TestIdentity_Service_Provision_AlreadyOnboarded(t *testing.T) {
	repo := new(mockRepo)
	auditLogger := new(mockAudit)
	service := NewService(repo, auditLogger)

	ctx := context.Background()
	existing := &Profile{
		ID:        "auth0|ada",
		CompanyID: "company-1",
		Email:     "ada@example.com",
		Role:      RoleAdmin,
	}

	repo.On("GetByID", ctx, "auth0|ada").Return(existing, nil).Once()

	profile, err := service.Provision(ctx, "auth0|ada", "ada@example.com", "Ada Lovelace")

	require.NoError(t, err)
	assert.Same(t, existing, profile)
	repo.AssertNotCalled(t, "CreateWithCompany", mock.Anything, mock.Anything, mock.Anything)
}

// TestPurpose: Validates the duplicate-key race is treated as success: if a
// concurrent request created the profile between the existence check and the
// insert, the winner's profile is returned.
// Expected: ErrProfileAlreadyExists from the atomic create resolves to the
// stored profile, not an error.
func TestIdentity_Service_Provision_ConcurrentDuplicate(t *testing.T) {
	repo := new(mockRepo)
	auditLogger := new(mockAudit)
	service := NewService(repo, auditLogger)

	ctx := context.Background()
	winner := &Profile{
		ID:        "auth0|ada",
		CompanyID: "company-won",
		Role:      RoleAdmin,
	}

	repo.On("GetByID", ctx, "auth0|ada").Return(nil, ErrProfileNotFound).Once()
	repo.On("CreateWithCompany", ctx, mock.Anything, mock.Anything).Return(ErrProfileAlreadyExists).Once()
	repo.On("GetByID", ctx, "auth0|ada").Return(winner, nil).Once()

	profile, err := service.Provision(ctx, "auth0|ada", "ada@example.com", "Ada Lovelace")

	require.NoError(t, err)
	assert.Equal(t, "company-won", profile.CompanyID)
	repo.AssertExpectations(t)
}

// TestPurpose: Validates a storage failure during the atomic create is
// surfaced so the caller does not treat the identity as onboarded.
func TestIdentity_Service_Provision_StorageFailure(t *testing.T) {
	repo := new(mockRepo)
	auditLogger := new(mockAudit)
	service := NewService(repo, auditLogger)

	ctx := context.Background()
	boom := errors.New("connection reset")

	repo.On("GetByID", ctx, "auth0|ada").Return(nil, ErrProfileNotFound).Once()
	repo.On("CreateWithCompany", ctx, mock.Anything, mock.Anything).Return(boom).Once()

	profile, err := service.Provision(ctx, "auth0|ada", "ada@example.com", "Ada Lovelace")

	require.Error(t, err)
	assert.Nil(t, profile)
	assert.ErrorIs(t, err, boom)
}

func TestIdentity_Service_Provision_MissingIdentity(t *testing.T) {
	service := NewService(new(mockRepo), new(mockAudit))

	_, err := service.Provision(context.Background(), "", "ada@example.com", "Ada")
	assert.Error(t, err)
}

// TestPurpose: Validates ChangeRole refuses to touch a profile belonging to
// another company, reporting not-found rather than leaking its existence.
func TestIdentity_Service_ChangeRole_CrossCompany(t *testing.T) {
	repo := new(mockRepo)
	service := NewService(repo, new(mockAudit))

	ctx := context.Background()
	repo.On("GetByID", ctx, "user-2").Return(&Profile{
		ID:        "user-2",
		CompanyID: "other-company",
		Role:      RoleCleaner,
	}, nil).Once()

	err := service.ChangeRole(ctx, "my-company", "user-2", RoleManager)

	assert.ErrorIs(t, err, ErrProfileNotFound)
	repo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdentity_Service_ChangeRole_InvalidRole(t *testing.T) {
	service := NewService(new(mockRepo), new(mockAudit))

	err := service.ChangeRole(context.Background(), "my-company", "user-2", "superuser")
	assert.Error(t, err)
}
