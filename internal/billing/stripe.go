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
	"encoding/json"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider implements Provider using the Stripe API. The client is an
// explicit instance, not the SDK's global key, so each provider carries its
// own credentials and tests can construct throwaway instances.
type StripeProvider struct {
	api           *stripeclient.API
	webhookSecret string
}

// NewStripeProvider creates a StripeProvider with its own API client.
func NewStripeProvider(apiKey, webhookSecret string) *StripeProvider {
	api := &stripeclient.API{}
	api.Init(apiKey, nil)

	return &StripeProvider{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

// CreateCustomer creates a new Stripe customer tagged with the owning
// company and requesting user.
func (p *StripeProvider) CreateCustomer(ctx context.Context, params CustomerParams) (string, error) {
	cp := &stripe.CustomerParams{
		Email: stripe.String(params.Email),
		Name:  stripe.String(params.Name),
		Metadata: map[string]string{
			"company_id": params.CompanyID,
			"user_id":    params.UserID,
		},
	}
	cp.Context = ctx

	c, err := p.api.Customers.New(cp)
	if err != nil {
		return "", fmt.Errorf("billing: create stripe customer: %w", err)
	}
	return c.ID, nil
}

// CreateCheckoutSession creates a subscription-mode checkout session and
// returns its hosted URL. Company and plan go into session metadata so the
// completion webhook can be attributed without a lookup.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error) {
	sp := &stripe.CheckoutSessionParams{
		Customer: stripe.String(params.CustomerRef),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(params.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	sp.Metadata = map[string]string{
		"company_id": params.CompanyID,
		"plan_name":  params.PlanKey,
	}
	sp.Context = ctx

	sess, err := p.api.CheckoutSessions.New(sp)
	if err != nil {
		return "", fmt.Errorf("billing: create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortalSession creates a self-service billing portal session scoped
// to an existing customer.
func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerRef, returnURL string) (string, error) {
	bp := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerRef),
		ReturnURL: stripe.String(returnURL),
	}
	bp.Context = ctx

	sess, err := p.api.BillingPortalSessions.New(bp)
	if err != nil {
		return "", fmt.Errorf("billing: create portal session: %w", err)
	}
	return sess.URL, nil
}

// VerifyWebhook validates the Stripe webhook signature and maps the event to
// the reconciler's domain form.
func (p *StripeProvider) VerifyWebhook(payload []byte, signatureHeader string) (Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signatureHeader, p.webhookSecret)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	ev := Event{
		ID:        stripeEvent.ID,
		Type:      string(stripeEvent.Type),
		CreatedAt: time.Unix(stripeEvent.Created, 0),
	}

	switch ev.Type {
	case EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(stripeEvent.Data.Raw, &sess); err != nil {
			return Event{}, fmt.Errorf("billing: parse checkout session event: %w", err)
		}
		ev.CompanyID = sess.Metadata["company_id"]
		ev.PlanKey = sess.Metadata["plan_name"]
		if sess.Subscription != nil {
			ev.SubscriptionRef = sess.Subscription.ID
		}

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(stripeEvent.Data.Raw, &sub); err != nil {
			return Event{}, fmt.Errorf("billing: parse subscription event: %w", err)
		}
		if sub.Customer != nil {
			ev.CustomerRef = sub.Customer.ID
		}
		ev.SubscriptionStatus = string(sub.Status)
	}

	return ev, nil
}
