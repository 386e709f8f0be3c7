package model

import "time"

// SubscriptionStatus mirrors the billing provider's subscription status
type SubscriptionStatus string

const (
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionUnpaid     SubscriptionStatus = "unpaid"
)

// Subscription is the locally mirrored membership of a user
type Subscription struct {
	ID                string             `json:"id,omitempty"`
	UserID            string             `json:"user_id"`
	CustomerID        string             `json:"customer_id"`
	SubscriptionID    string             `json:"subscription_id,omitempty"`
	Status            SubscriptionStatus `json:"status"`
	PriceID           string             `json:"price_id,omitempty"`
	Plan              string             `json:"plan,omitempty"`
	CurrentPeriodEnd  *time.Time         `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool               `json:"cancel_at_period_end"`
	// EventOn is the creation time of the last subscription event applied
	EventOn   *time.Time `json:"event_on,omitempty"`
	UpdatedOn time.Time  `json:"updated_on,omitempty"`
}

// Active reports whether the membership grants paid features at now
func (s *Subscription) Active(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Status != SubscriptionActive && s.Status != SubscriptionTrialing {
		return false
	}
	return s.CurrentPeriodEnd != nil && s.CurrentPeriodEnd.After(now)
}

// Plan is a purchasable membership option
type Plan struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PriceID  string `json:"-"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Interval string `json:"interval"`
}

// CheckoutRequest starts a Stripe Checkout session for a plan id
type CheckoutRequest struct {
	Plan string `json:"plan"`
}

// Validate only checks presence; the billing service resolves the plan.
func (r *CheckoutRequest) Validate() []FieldError {
	var f fieldErrors
	f.required("plan", r.Plan)
	return f.result()
}

// RedirectResponse carries a hosted-page URL for the client to open
type RedirectResponse struct {
	URL string `json:"url"`
}

// MembershipStatus is returned by GET /api/billing/subscription
type MembershipStatus struct {
	Active       bool          `json:"active"`
	Subscription *Subscription `json:"subscription,omitempty"`
}
