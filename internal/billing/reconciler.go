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
	"fmt"
	"log/slog"

	"github.com/tidyforge/tidyforge/internal/audit"
	"github.com/tidyforge/tidyforge/internal/company"
	"github.com/tidyforge/tidyforge/internal/observability/logger"
)

// Reconciler applies verified provider lifecycle events to company
// subscription state. All writes are absolute assignments guarded by the
// provider event timestamp, so duplicate and out-of-order deliveries
// converge: a replay re-applies the same values and a stale update is
// dropped.
//
// A nil return means the event was handled and must be acknowledged,
// including every no-op branch; an error means a storage failure on a
// matched event and tells the provider to retry delivery.
type Reconciler struct {
	companies   company.Repository
	auditLogger audit.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(companies company.Repository, auditLogger audit.Logger) *Reconciler {
	return &Reconciler{
		companies:   companies,
		auditLogger: auditLogger,
	}
}

// Reconcile applies one lifecycle event.
func (r *Reconciler) Reconcile(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventCheckoutCompleted:
		return r.applyCheckoutCompleted(ctx, ev)
	case EventSubscriptionUpdated:
		return r.applySubscriptionUpdated(ctx, ev)
	case EventSubscriptionDeleted:
		return r.applySubscriptionDeleted(ctx, ev)
	default:
		// Forward-compatible: acknowledge kinds we do not understand yet.
		slog.DebugContext(ctx, "ignoring unhandled billing event",
			logger.EventType(ev.Type),
			logger.String("event_id", ev.ID),
		)
		return nil
	}
}

func (r *Reconciler) applyCheckoutCompleted(ctx context.Context, ev Event) error {
	if ev.CompanyID == "" || ev.SubscriptionRef == "" {
		// Session created outside this application, or checkout without a
		// subscription. Acknowledge so the provider stops redelivering.
		slog.WarnContext(ctx, "checkout completed event missing attribution, skipping",
			logger.String("event_id", ev.ID),
			logger.CompanyID(ev.CompanyID),
		)
		return nil
	}

	err := r.companies.ActivateSubscription(ctx, ev.CompanyID, ev.SubscriptionRef, ev.PlanKey, ev.CreatedAt)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			slog.WarnContext(ctx, "checkout completed for unknown company, skipping",
				logger.String("event_id", ev.ID),
				logger.CompanyID(ev.CompanyID),
			)
			return nil
		}
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	r.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeSubscriptionActivated,
		CompanyID: ev.CompanyID,
		Resource:  "subscription",
		Metadata: map[string]any{
			"plan":             ev.PlanKey,
			"subscription_ref": ev.SubscriptionRef,
		},
	})

	return nil
}

func (r *Reconciler) applySubscriptionUpdated(ctx context.Context, ev Event) error {
	c, err := r.companies.GetByCustomerRef(ctx, ev.CustomerRef)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			// The event may predate provisioning or belong to a foreign
			// customer on a shared Stripe account.
			slog.InfoContext(ctx, "subscription update for unknown customer, skipping",
				logger.String("event_id", ev.ID),
				logger.CustomerRef(ev.CustomerRef),
			)
			return nil
		}
		return fmt.Errorf("failed to look up company by customer: %w", err)
	}

	// Provider status is stored verbatim; it is the source of truth.
	applied, err := r.companies.UpdateSubscriptionStatus(ctx, c.ID, ev.SubscriptionStatus, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	if !applied {
		slog.InfoContext(ctx, "dropping stale subscription update",
			logger.String("event_id", ev.ID),
			logger.CompanyID(c.ID),
			logger.String("status", ev.SubscriptionStatus),
		)
		return nil
	}

	r.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeSubscriptionUpdated,
		CompanyID: c.ID,
		Resource:  "subscription",
		Metadata:  map[string]any{"status": ev.SubscriptionStatus},
	})

	return nil
}

func (r *Reconciler) applySubscriptionDeleted(ctx context.Context, ev Event) error {
	c, err := r.companies.GetByCustomerRef(ctx, ev.CustomerRef)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			slog.InfoContext(ctx, "subscription deletion for unknown customer, skipping",
				logger.String("event_id", ev.ID),
				logger.CustomerRef(ev.CustomerRef),
			)
			return nil
		}
		return fmt.Errorf("failed to look up company by customer: %w", err)
	}

	if err := r.companies.CancelSubscription(ctx, c.ID, ev.CreatedAt); err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	r.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeSubscriptionCancelled,
		CompanyID: c.ID,
		Resource:  "subscription",
	})

	return nil
}
