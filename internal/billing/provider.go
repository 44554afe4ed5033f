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

package billing

import (
	"context"
	"errors"
	"time"
)

// Lifecycle event kinds, matching the provider's event type strings. Any
// other kind reaching the reconciler is acknowledged without state change.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

var (
	// ErrInvalidSignature means the webhook payload could not be
	// authenticated. It is terminal: no state may be read or written.
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	ErrUnknownPlan = errors.New("unknown plan")

	// ErrNoCustomer means the company has no billing customer reference yet,
	// so a portal session cannot be issued.
	ErrNoCustomer = errors.New("company has no billing customer")
)

// Event is a verified lifecycle event, reduced to the fields the reconciler
// acts on. Which fields are populated depends on Type.
type Event struct {
	ID        string
	Type      string
	CreatedAt time.Time

	// checkout.session.completed: session metadata written at
	// session-creation time plus the resulting subscription reference.
	CompanyID       string
	PlanKey         string
	SubscriptionRef string

	// customer.subscription.updated / deleted
	CustomerRef        string
	SubscriptionStatus string
}

// CustomerParams describes a new billing customer. CompanyID and UserID are
// stored in the customer's metadata so provider-side records can always be
// attributed to a tenant.
type CustomerParams struct {
	Email     string
	Name      string
	CompanyID string
	UserID    string
}

// CheckoutParams describes a subscription-mode checkout session. CompanyID
// and PlanKey go into session metadata; the reconciler reads them back from
// the completion event.
type CheckoutParams struct {
	CustomerRef string
	PriceID     string
	CompanyID   string
	PlanKey     string
	SuccessURL  string
	CancelURL   string
}

// Provider abstracts the hosted payments provider. There is exactly one
// implementation against Stripe; tests substitute their own.
type Provider interface {
	CreateCustomer(ctx context.Context, params CustomerParams) (customerRef string, err error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (redirectURL string, err error)
	CreatePortalSession(ctx context.Context, customerRef, returnURL string) (redirectURL string, err error)

	// VerifyWebhook authenticates a raw webhook delivery against the shared
	// signing secret and maps it to an Event. It returns ErrInvalidSignature
	// before touching any payload content it cannot trust.
	VerifyWebhook(payload []byte, signatureHeader string) (Event, error)
}
