package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/webeat/weve/internal/billing"
	"github.com/webeat/weve/internal/model"
)

// BillingService sells memberships and mirrors subscription state
type BillingService struct {
	gateway billing.Gateway
	subs    SubscriptionRepository
	plans   []model.Plan
	appURL  string
	now     func() time.Time

	mu     sync.Mutex
	priced bool
}

// BillingServiceConfig holds configuration for the billing service
type BillingServiceConfig struct {
	// Gateway may be nil, which disables billing
	Gateway          billing.Gateway
	SubscriptionRepo SubscriptionRepository
	MonthlyPriceID   string
	YearlyPriceID    string
	// AppURL is the web client origin checkout and portal return to
	AppURL string
}

// NewBillingService creates a new billing service
func NewBillingService(cfg BillingServiceConfig) *BillingService {
	var plans []model.Plan
	if cfg.MonthlyPriceID != "" {
		plans = append(plans, model.Plan{ID: "monthly", Name: "월간 멤버십", PriceID: cfg.MonthlyPriceID, Interval: "month"})
	}
	if cfg.YearlyPriceID != "" {
		plans = append(plans, model.Plan{ID: "yearly", Name: "연간 멤버십", PriceID: cfg.YearlyPriceID, Interval: "year"})
	}
	return &BillingService{
		gateway: cfg.Gateway,
		subs:    cfg.SubscriptionRepo,
		plans:   plans,
		appURL:  strings.TrimRight(cfg.AppURL, "/"),
		now:     time.Now,
	}
}

// Plans lists the purchasable plans with prices from the provider. Prices
// are fetched once and cached for the life of the process.
func (s *BillingService) Plans(ctx context.Context) ([]model.Plan, error) {
	if s.gateway == nil {
		return nil, ErrBillingDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.priced {
		for i := range s.plans {
			price, err := s.gateway.Price(ctx, s.plans[i].PriceID)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBillingProvider, err)
			}
			s.plans[i].Amount = price.Amount
			s.plans[i].Currency = price.Currency
			if price.Interval != "" {
				s.plans[i].Interval = price.Interval
			}
		}
		s.priced = true
	}

	out := make([]model.Plan, len(s.plans))
	copy(out, s.plans)
	return out, nil
}

// Membership returns the caller's subscription and whether it is active
func (s *BillingService) Membership(ctx context.Context, userID string) (*model.MembershipStatus, error) {
	sub, err := s.subs.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.MembershipStatus{Active: sub.Active(s.now()), Subscription: sub}, nil
}

// Checkout starts a hosted checkout for plan
func (s *BillingService) Checkout(ctx context.Context, user *model.User, planID string) (*model.RedirectResponse, error) {
	if s.gateway == nil {
		return nil, ErrBillingDisabled
	}

	plan, ok := s.plan(planID)
	if !ok {
		return nil, ErrUnknownPlan
	}

	existing, err := s.subs.GetByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	params := billing.CheckoutParams{
		UserID:     user.ID,
		Email:      user.Email,
		PriceID:    plan.PriceID,
		SuccessURL: s.appURL + "/membership?checkout=success",
		CancelURL:  s.appURL + "/membership?checkout=cancelled",
	}
	if existing != nil {
		params.CustomerID = existing.CustomerID
	}

	url, err := s.gateway.CreateCheckout(ctx, params)
	if err != nil {
		slog.Warn("checkout session failed", slog.String("user_id", user.ID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrBillingProvider, err)
	}
	return &model.RedirectResponse{URL: url}, nil
}

// Portal opens the billing portal for the caller's customer record
func (s *BillingService) Portal(ctx context.Context, userID string) (*model.RedirectResponse, error) {
	if s.gateway == nil {
		return nil, ErrBillingDisabled
	}

	sub, err := s.subs.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.CustomerID == "" {
		return nil, ErrNoCustomer
	}

	url, err := s.gateway.CreatePortal(ctx, sub.CustomerID, s.appURL+"/membership")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBillingProvider, err)
	}
	return &model.RedirectResponse{URL: url}, nil
}

// HandleWebhook verifies and applies a provider event. Event types the API
// does not use, and events for unknown customers, are acknowledged and
// dropped.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return ErrBillingDisabled
	}

	evt, err := s.gateway.ParseWebhook(payload, signature)
	if errors.Is(err, billing.ErrIgnoredEvent) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	current, err := s.lookup(ctx, evt)
	if err != nil {
		return err
	}
	if stale(current, evt) {
		slog.Info("stale subscription event dropped",
			slog.String("event_id", evt.ID),
			slog.String("event", string(evt.Kind)),
			slog.String("user_id", current.UserID),
		)
		return nil
	}

	sub := current
	if sub == nil {
		if evt.UserID == "" {
			slog.Warn("billing event for unknown customer",
				slog.String("event_id", evt.ID),
				slog.String("customer_id", evt.CustomerID),
			)
			return nil
		}
		sub = &model.Subscription{UserID: evt.UserID, Status: model.SubscriptionIncomplete}
	}

	if evt.CustomerID != "" {
		sub.CustomerID = evt.CustomerID
	}
	if evt.SubscriptionID != "" {
		sub.SubscriptionID = evt.SubscriptionID
	}

	switch evt.Kind {
	case billing.EventSubscriptionCreated, billing.EventSubscriptionUpdated, billing.EventSubscriptionDeleted:
		if !evt.Created.IsZero() {
			created := evt.Created
			sub.EventOn = &created
		}
		sub.Status = evt.Status
		sub.CurrentPeriodEnd = evt.PeriodEnd
		sub.CancelAtPeriodEnd = evt.CancelAtEnd
		if evt.PriceID != "" {
			sub.PriceID = evt.PriceID
			sub.Plan = s.planForPrice(evt.PriceID)
		}
	}

	if _, err := s.subs.Upsert(ctx, sub); err != nil {
		return err
	}
	slog.Info("subscription updated",
		slog.String("event", string(evt.Kind)),
		slog.String("user_id", sub.UserID),
		slog.String("status", string(sub.Status)),
	)
	return nil
}

// stale reports whether a subscription event arrived after a newer one was
// applied. A deleted subscription never comes back, so later events for
// the same subscription id are stale too.
func stale(current *model.Subscription, evt *billing.Event) bool {
	switch evt.Kind {
	case billing.EventSubscriptionCreated, billing.EventSubscriptionUpdated, billing.EventSubscriptionDeleted:
	default:
		return false
	}
	if current == nil {
		return false
	}
	if current.EventOn != nil && !evt.Created.IsZero() && evt.Created.Before(*current.EventOn) {
		return true
	}
	return evt.Kind != billing.EventSubscriptionDeleted &&
		current.Status == model.SubscriptionCanceled &&
		evt.SubscriptionID != "" && evt.SubscriptionID == current.SubscriptionID
}

func (s *BillingService) lookup(ctx context.Context, evt *billing.Event) (*model.Subscription, error) {
	if evt.UserID != "" {
		return s.subs.GetByUser(ctx, evt.UserID)
	}
	if evt.CustomerID != "" {
		return s.subs.GetByCustomer(ctx, evt.CustomerID)
	}
	return nil, nil
}

func (s *BillingService) plan(id string) (model.Plan, bool) {
	for _, p := range s.plans {
		if p.ID == id {
			return p, true
		}
	}
	return model.Plan{}, false
}

func (s *BillingService) planForPrice(priceID string) string {
	for _, p := range s.plans {
		if p.PriceID == priceID {
			return p.ID
		}
	}
	return ""
}
