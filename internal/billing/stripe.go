package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/webeat/weve/internal/model"
)

var (
	// ErrInvalidSignature is returned for webhook payloads that fail verification
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrIgnoredEvent is returned for webhook event types the API does not handle
	ErrIgnoredEvent = errors.New("ignored event type")
)

// EventKind classifies the webhook events the API acts on
type EventKind string

const (
	EventCheckoutCompleted   EventKind = "checkout.session.completed"
	EventSubscriptionCreated EventKind = "customer.subscription.created"
	EventSubscriptionUpdated EventKind = "customer.subscription.updated"
	EventSubscriptionDeleted EventKind = "customer.subscription.deleted"
)

// Event is a verified webhook event reduced to what the API stores
type Event struct {
	ID   string
	Kind EventKind
	// UserID is the client reference of a checkout, or the user_id metadata
	// of a subscription. It may be empty.
	UserID         string
	CustomerID     string
	SubscriptionID string
	Status         model.SubscriptionStatus
	PriceID        string
	PeriodEnd      *time.Time
	CancelAtEnd    bool
	// Created is when the provider emitted the event. Delivery order is
	// not guaranteed, so it orders subscription changes.
	Created time.Time
}

// CheckoutParams describes a subscription checkout
type CheckoutParams struct {
	UserID     string
	Email      string
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// Price is the display data of a configured price
type Price struct {
	ID       string
	Amount   int64
	Currency string
	Interval string
}

// Gateway is the billing provider contract used by the service layer
type Gateway interface {
	Price(ctx context.Context, priceID string) (*Price, error)
	CreateCheckout(ctx context.Context, p CheckoutParams) (string, error)
	CreatePortal(ctx context.Context, customerID, returnURL string) (string, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// Config holds Stripe settings
type Config struct {
	SecretKey     string
	WebhookSecret string
	// BackendURL overrides the Stripe API endpoint (tests point it at httptest)
	BackendURL string
	HTTPClient *http.Client
}

// Stripe implements Gateway with the Stripe API
type Stripe struct {
	api           *client.API
	webhookSecret string
}

// NewStripe creates a Stripe gateway
func NewStripe(cfg Config) *Stripe {
	var backends *stripe.Backends
	if cfg.BackendURL != "" || cfg.HTTPClient != nil {
		bc := &stripe.BackendConfig{HTTPClient: cfg.HTTPClient}
		if cfg.BackendURL != "" {
			bc.URL = stripe.String(cfg.BackendURL)
		}
		api := stripe.GetBackendWithConfig(stripe.APIBackend, bc)
		backends = &stripe.Backends{API: api, Connect: api, Uploads: api}
	}
	return &Stripe{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
	}
}

// Price fetches a recurring price
func (s *Stripe) Price(ctx context.Context, priceID string) (*Price, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx
	p, err := s.api.Prices.Get(priceID, params)
	if err != nil {
		return nil, fmt.Errorf("get price %s: %w", priceID, err)
	}
	out := &Price{ID: p.ID, Amount: p.UnitAmount, Currency: string(p.Currency)}
	if p.Recurring != nil {
		out.Interval = string(p.Recurring.Interval)
	}
	return out, nil
}

// CreateCheckout opens a hosted subscription checkout and returns its URL
func (s *Stripe) CreateCheckout(ctx context.Context, p CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(p.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		ClientReferenceID: stripe.String(p.UserID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": p.UserID},
		},
	}
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	} else if p.Email != "" {
		params.CustomerEmail = stripe.String(p.Email)
	}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortal opens the hosted billing portal for a customer
func (s *Stripe) CreatePortal(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := s.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return sess.URL, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: evt.ID, Kind: EventKind(evt.Type)}
	if evt.Created > 0 {
		out.Created = time.Unix(evt.Created, 0).UTC()
	}
	switch out.Kind {
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.UserID = cs.ClientReferenceID
		if cs.Customer != nil {
			out.CustomerID = cs.Customer.ID
		}
		if cs.Subscription != nil {
			out.SubscriptionID = cs.Subscription.ID
		}
		return out, nil

	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(evt.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		out.SubscriptionID = sub.ID
		out.UserID = sub.Metadata["user_id"]
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
		out.Status = model.SubscriptionStatus(sub.Status)
		out.CancelAtEnd = sub.CancelAtPeriodEnd
		if sub.CurrentPeriodEnd > 0 {
			end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
			out.PeriodEnd = &end
		}
		if sub.Items != nil {
			for _, item := range sub.Items.Data {
				if item.Price != nil {
					out.PriceID = item.Price.ID
					break
				}
			}
		}
		if out.Kind == EventSubscriptionDeleted {
			out.Status = model.SubscriptionCanceled
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrIgnoredEvent, evt.Type)
}
