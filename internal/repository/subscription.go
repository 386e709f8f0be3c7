package repository

import (
	"context"
	"errors"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
)

// SubscriptionRepository mirrors billing provider subscriptions
type SubscriptionRepository struct {
	db database.Database
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db database.Database) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// GetByUser returns the user's subscription or (nil, nil)
func (r *SubscriptionRepository) GetByUser(ctx context.Context, userID string) (*model.Subscription, error) {
	return r.getOne(ctx, `SELECT * FROM subscription WHERE user_id = $user LIMIT 1`, map[string]interface{}{"user": userID})
}

// GetByCustomer returns the subscription for a billing customer or (nil, nil)
func (r *SubscriptionRepository) GetByCustomer(ctx context.Context, customerID string) (*model.Subscription, error) {
	return r.getOne(ctx, `SELECT * FROM subscription WHERE customer_id = $customer LIMIT 1`, map[string]interface{}{"customer": customerID})
}

func (r *SubscriptionRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.Subscription, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRecord[model.Subscription](result)
}

// Upsert stores sub keyed by user id
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	content, err := contentOf(sub)
	if err != nil {
		return nil, err
	}
	result, err := r.db.QueryOne(ctx, `UPSERT type::thing('subscription', $key) CONTENT $content RETURN AFTER`, map[string]interface{}{
		"key":     recordKey(sub.UserID),
		"content": content,
	})
	if err != nil {
		return nil, err
	}
	return decodeRecord[model.Subscription](result)
}
