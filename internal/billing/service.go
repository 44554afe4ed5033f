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
	"fmt"
	"log/slog"
	"time"

	"github.com/tidyforge/tidyforge/internal/audit"
	"github.com/tidyforge/tidyforge/internal/company"
	"github.com/tidyforge/tidyforge/internal/identity"
	"github.com/tidyforge/tidyforge/internal/observability/logger"
)

// URLs holds the redirect targets embedded in provider sessions.
type URLs struct {
	CheckoutSuccess string
	CheckoutCancel  string
	PortalReturn    string
}

// Service issues checkout and billing-portal redirect sessions. It owns the
// company's billing customer reference: the reference is created lazily on
// the first checkout attempt and persisted before use, so retries and
// concurrent calls converge on a single provider customer per company.
type Service struct {
	companies    company.Repository
	provider     Provider
	planPriceIDs map[string]string
	urls         URLs
	timeout      time.Duration
	auditLogger  audit.Logger
}

// NewService creates a new billing service
func NewService(
	companies company.Repository,
	provider Provider,
	planPriceIDs map[string]string,
	urls URLs,
	timeout time.Duration,
	auditLogger audit.Logger,
) *Service {
	return &Service{
		companies:    companies,
		provider:     provider,
		planPriceIDs: planPriceIDs,
		urls:         urls,
		timeout:      timeout,
		auditLogger:  auditLogger,
	}
}

// CreateCheckoutSession resolves the company's billing customer (creating it
// on first use) and returns the provider's hosted checkout URL for planKey.
func (s *Service) CreateCheckoutSession(ctx context.Context, caller *identity.Profile, planKey string) (string, error) {
	if !company.ValidPlan(planKey) {
		return "", ErrUnknownPlan
	}
	priceID, ok := s.planPriceIDs[planKey]
	if !ok {
		return "", ErrUnknownPlan
	}

	c, err := s.companies.GetByID(ctx, caller.CompanyID)
	if err != nil {
		return "", err
	}

	customerRef, err := s.ensureCustomer(ctx, c, caller)
	if err != nil {
		return "", err
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url, err := s.provider.CreateCheckoutSession(pctx, CheckoutParams{
		CustomerRef: customerRef,
		PriceID:     priceID,
		CompanyID:   c.ID,
		PlanKey:     planKey,
		SuccessURL:  s.urls.CheckoutSuccess,
		CancelURL:   s.urls.CheckoutCancel,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeCheckoutStarted,
		CompanyID: c.ID,
		ActorID:   caller.ID,
		Resource:  "checkout_session",
		Metadata:  map[string]any{"plan": planKey},
	})

	return url, nil
}

// CreatePortalSession returns a self-service billing portal URL for the
// caller's company. The company must already have a billing customer.
func (s *Service) CreatePortalSession(ctx context.Context, caller *identity.Profile) (string, error) {
	c, err := s.companies.GetByID(ctx, caller.CompanyID)
	if err != nil {
		return "", err
	}

	if c.StripeCustomerID == "" {
		return "", ErrNoCustomer
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url, err := s.provider.CreatePortalSession(pctx, c.StripeCustomerID, s.urls.PortalReturn)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypePortalOpened,
		CompanyID: c.ID,
		ActorID:   caller.ID,
		Resource:  "portal_session",
	})

	return url, nil
}

// ensureCustomer returns the company's billing customer reference, creating
// and persisting one if absent. The persist happens before the reference is
// used, and the claim is conditional on the column still being empty: if a
// concurrent call won, the stored reference is used and the extra provider
// customer is simply left unreferenced.
func (s *Service) ensureCustomer(ctx context.Context, c *company.Company, caller *identity.Profile) (string, error) {
	if c.StripeCustomerID != "" {
		return c.StripeCustomerID, nil
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ref, err := s.provider.CreateCustomer(pctx, CustomerParams{
		Email:     caller.Email,
		Name:      c.Name,
		CompanyID: c.ID,
		UserID:    caller.ID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create billing customer: %w", err)
	}

	claimed, err := s.companies.ClaimCustomerRef(ctx, c.ID, ref)
	if err != nil {
		return "", fmt.Errorf("failed to persist customer reference: %w", err)
	}
	if !claimed {
		stored, err := s.companies.GetByID(ctx, c.ID)
		if err != nil {
			return "", err
		}
		slog.InfoContext(ctx, "billing customer already claimed by concurrent request",
			logger.CompanyID(c.ID),
			logger.CustomerRef(stored.StripeCustomerID),
		)
		return stored.StripeCustomerID, nil
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeCustomerCreated,
		CompanyID: c.ID,
		ActorID:   caller.ID,
		Resource:  "billing_customer",
		Metadata:  map[string]any{"customer_ref": ref},
	})

	return ref, nil
}
