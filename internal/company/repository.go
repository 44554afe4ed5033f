package company

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
)

// Repository defines the interface for company storage.
//
// Companies are created only through identity provisioning (the company and
// its founding admin profile are one atomic unit), so there is no Create
// here; see identity.Repository.CreateWithCompany.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Company, error)

	// GetByCustomerRef looks a company up by its billing customer reference.
	GetByCustomerRef(ctx context.Context, customerRef string) (*Company, error)

	UpdateName(ctx context.Context, id, name string) error

	// ClaimCustomerRef sets the billing customer reference if and only if it
	// is currently unset. It reports whether the claim was applied; a false
	// return means another request already claimed a reference and the caller
	// must re-read and use the stored one.
	ClaimCustomerRef(ctx context.Context, id, customerRef string) (bool, error)

	// ActivateSubscription records a completed checkout: subscription
	// reference, status "active" and the purchased plan, guarded by the
	// provider event timestamp.
	ActivateSubscription(ctx context.Context, id, subscriptionRef, plan string, eventTime time.Time) error

	// UpdateSubscriptionStatus applies a provider-supplied status verbatim.
	// The write is conditional on eventTime being no older than the last
	// applied billing event; it reports whether the row was updated.
	UpdateSubscriptionStatus(ctx context.Context, id, status string, eventTime time.Time) (bool, error)

	// CancelSubscription marks the subscription cancelled and clears the
	// subscription reference. Cancellation is a status value, never a row
	// deletion.
	CancelSubscription(ctx context.Context, id string, eventTime time.Time) error
}
