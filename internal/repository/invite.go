package repository

import (
	"context"
	"errors"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
)

// InviteRepository handles couple invite data access
type InviteRepository struct {
	db database.Database
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(db database.Database) *InviteRepository {
	return &InviteRepository{db: db}
}

// Create stores a new pending invite. A code collision returns database.ErrDuplicate.
func (r *InviteRepository) Create(ctx context.Context, inv *model.CoupleInvite) error {
	query := `
		CREATE couple_invite CONTENT {
			code: $code,
			inviter_id: $inviter_id,
			status: 'pending',
			expires_on: <datetime>$expires_on
		}
	`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{
		"code":       inv.Code,
		"inviter_id": inv.InviterID,
		"expires_on": formatTime(inv.ExpiresOn),
	})
	if err != nil {
		return err
	}
	created, err := decodeRecord[model.CoupleInvite](result)
	if err != nil {
		return err
	}
	*inv = *created
	return nil
}

// GetByCode retrieves an invite by code
func (r *InviteRepository) GetByCode(ctx context.Context, code string) (*model.CoupleInvite, error) {
	return r.getOne(ctx, `SELECT * FROM couple_invite WHERE code = $code LIMIT 1`, map[string]interface{}{"code": code})
}

// GetPendingForInviter returns the inviter's newest unexpired pending invite
func (r *InviteRepository) GetPendingForInviter(ctx context.Context, inviterID string) (*model.CoupleInvite, error) {
	query := `
		SELECT * FROM couple_invite
		WHERE inviter_id = $inviter AND status = 'pending' AND expires_on > time::now()
		ORDER BY created_on DESC LIMIT 1
	`
	return r.getOne(ctx, query, map[string]interface{}{"inviter": inviterID})
}

func (r *InviteRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.CoupleInvite, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRecord[model.CoupleInvite](result)
}

// CancelPending cancels every pending invite of the inviter
func (r *InviteRepository) CancelPending(ctx context.Context, inviterID string) error {
	return r.db.Execute(ctx, `UPDATE couple_invite SET status = 'cancelled' WHERE inviter_id = $inviter AND status = 'pending'`, map[string]interface{}{"inviter": inviterID})
}

// ExpireStale marks pending invites past expiry as expired and returns the count
func (r *InviteRepository) ExpireStale(ctx context.Context) (int, error) {
	results, err := r.db.Query(ctx, `UPDATE couple_invite SET status = 'expired' WHERE status = 'pending' AND expires_on <= time::now() RETURN AFTER`, nil)
	if err != nil {
		return 0, err
	}
	return len(extractQueryResults(results)), nil
}
