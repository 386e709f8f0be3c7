package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
)

// InviteRepository defines the interface for couple invite storage
type InviteRepository interface {
	Create(ctx context.Context, inv *model.CoupleInvite) error
	GetByCode(ctx context.Context, code string) (*model.CoupleInvite, error)
	GetPendingForInviter(ctx context.Context, inviterID string) (*model.CoupleInvite, error)
	CancelPending(ctx context.Context, inviterID string) error
	ExpireStale(ctx context.Context) (int, error)
}

const maxInviteCodeAttempts = 5

// CoupleService pairs two accounts through invite codes
type CoupleService struct {
	users   UserRepository
	invites InviteRepository
	events  Publisher
	now     func() time.Time
	newCode func() (string, error)
}

// CoupleServiceConfig holds configuration for the couple service
type CoupleServiceConfig struct {
	UserRepo   UserRepository
	InviteRepo InviteRepository
	Events     Publisher
}

// NewCoupleService creates a new couple service
func NewCoupleService(cfg CoupleServiceConfig) *CoupleService {
	return &CoupleService{
		users:   cfg.UserRepo,
		invites: cfg.InviteRepo,
		events:  cfg.Events,
		now:     time.Now,
		newCode: generateInviteCode,
	}
}

// Invite returns the caller's live pending invite, or creates one
func (s *CoupleService) Invite(ctx context.Context, userID string) (*model.CoupleInvite, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasPartner() {
		return nil, ErrAlreadyLinked
	}

	now := s.now()
	pending, err := s.invites.GetPendingForInviter(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if pending != nil && pending.Usable(now) {
		return pending, nil
	}

	for attempt := 0; attempt < maxInviteCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		inv := &model.CoupleInvite{
			Code:      code,
			InviterID: user.ID,
			Status:    model.InviteStatusPending,
			ExpiresOn: now.Add(model.InviteTTL),
		}
		err = s.invites.Create(ctx, inv)
		if errors.Is(err, database.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return inv, nil
	}
	return nil, ErrInviteCodeExhausted
}

// Accept links the caller with the owner of code
func (s *CoupleService) Accept(ctx context.Context, userID, code string) (*model.CoupleStatus, error) {
	inv, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInviteNotFound
	}
	if inv.InviterID == userID {
		return nil, ErrOwnInvite
	}
	if !inv.Usable(s.now()) {
		return nil, ErrInviteExpired
	}

	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasPartner() {
		return nil, ErrAlreadyLinked
	}

	inviter, err := s.users.GetByID(ctx, inv.InviterID)
	if err != nil {
		return nil, err
	}
	if inviter == nil {
		return nil, ErrInviteNotFound
	}
	if inviter.HasPartner() {
		return nil, ErrPartnerLinked
	}

	if err := s.users.Link(ctx, inv.ID, inviter.ID, user.ID); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrAlreadyLinked
		}
		return nil, err
	}

	s.publish([]string{user.ID}, EventCoupleLinked, model.NewPartnerSummary(inviter))
	s.publish([]string{inviter.ID}, EventCoupleLinked, model.NewPartnerSummary(user))

	return &model.CoupleStatus{Linked: true, Partner: model.NewPartnerSummary(inviter)}, nil
}

// Status returns the caller's partner and pending invite
func (s *CoupleService) Status(ctx context.Context, userID string) (*model.CoupleStatus, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &model.CoupleStatus{}
	if user.HasPartner() {
		partner, err := s.users.GetByID(ctx, *user.PartnerID)
		if err != nil {
			return nil, err
		}
		if partner != nil {
			status.Linked = true
			status.Partner = model.NewPartnerSummary(partner)
		}
		return status, nil
	}

	pending, err := s.invites.GetPendingForInviter(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if pending != nil && pending.Usable(s.now()) {
		status.Invite = pending
	}
	return status, nil
}

// Unlink separates the caller from their partner. Each keeps the rows
// they created. Calling it without a partner is a no-op.
func (s *CoupleService) Unlink(ctx context.Context, userID string) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasPartner() {
		return nil
	}

	partnerID := *user.PartnerID
	if err := s.users.Unlink(ctx, user.ID, partnerID); err != nil {
		return err
	}

	s.publish([]string{user.ID, partnerID}, EventCoupleUnlinked, map[string]string{
		"user_id":    user.ID,
		"partner_id": partnerID,
	})
	return nil
}

// CancelInvite withdraws the caller's pending invite
func (s *CoupleService) CancelInvite(ctx context.Context, userID string) error {
	return s.invites.CancelPending(ctx, userID)
}

// ExpireInvites marks stale pending invites expired
func (s *CoupleService) ExpireInvites(ctx context.Context) (int, error) {
	return s.invites.ExpireStale(ctx)
}

func (s *CoupleService) user(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *CoupleService) publish(userIDs []string, t EventType, data interface{}) {
	if s.events != nil {
		s.events.SendToUsers(userIDs, Event{Type: t, Data: data})
	}
}

func generateInviteCode() (string, error) {
	max := big.NewInt(int64(len(model.InviteCodeAlphabet)))
	code := make([]byte, model.InviteCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = model.InviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
