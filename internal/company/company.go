package company

import (
	"time"
)

// Company represents an isolated customer organization (a cleaning company).
// All other mutable entities are owned by exactly one Company.
type Company struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`

	// Billing references are owned by the payment provider. StripeCustomerID
	// is set at most once and never reassigned; StripeSubscriptionID follows
	// the subscription lifecycle.
	StripeCustomerID     string `json:"-"`
	StripeSubscriptionID string `json:"-"`

	SubscriptionStatus string     `json:"subscription_status"`
	SubscriptionPlan   string     `json:"subscription_plan"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`

	// SubscriptionSyncedAt records the provider timestamp of the last applied
	// billing event, so a late-arriving stale event cannot overwrite a newer
	// status.
	SubscriptionSyncedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subscription status constants. The provider is the source of truth for
// this field on "subscription updated" events, so values outside this set
// (e.g. "past_due", "unpaid") are stored verbatim.
const (
	StatusTrial     = "trial"
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Plan keys
const (
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

// TrialPeriod is the length of the free trial granted at provisioning time.
const TrialPeriod = 14 * 24 * time.Hour

// ValidPlan reports whether key is a known plan key.
func ValidPlan(key string) bool {
	switch key {
	case PlanStarter, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}
