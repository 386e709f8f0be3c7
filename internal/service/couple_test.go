package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
)

func setupCoupleService(t *testing.T) (*CoupleService, *mockUserRepo, *mockInviteRepo, *recordingPublisher) {
	t.Helper()

	users := newMockUserRepo()
	users.add(&model.User{ID: "user:a", Email: "a@example.com", Nickname: strPtr("A")})
	users.add(&model.User{ID: "user:b", Email: "b@example.com", Nickname: strPtr("B")})
	users.add(&model.User{ID: "user:c", Email: "c@example.com"})
	invites := &mockInviteRepo{}
	pub := &recordingPublisher{}

	svc := NewCoupleService(CoupleServiceConfig{UserRepo: users, InviteRepo: invites, Events: pub})
	return svc, users, invites, pub
}

func TestCoupleService_Invite_CreatesCode(t *testing.T) {
	svc, _, invites, _ := setupCoupleService(t)

	inv, err := svc.Invite(context.Background(), "user:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(inv.Code) != model.InviteCodeLength {
		t.Errorf("expected %d character code, got %q", model.InviteCodeLength, inv.Code)
	}
	for _, r := range inv.Code {
		if !strings.ContainsRune(model.InviteCodeAlphabet, r) {
			t.Errorf("code %q contains %q outside the alphabet", inv.Code, r)
		}
	}
	if inv.Status != model.InviteStatusPending {
		t.Errorf("expected pending invite, got %s", inv.Status)
	}
	if ttl := time.Until(inv.ExpiresOn); ttl < model.InviteTTL-time.Minute || ttl > model.InviteTTL {
		t.Errorf("expected expiry about %v ahead, got %v", model.InviteTTL, ttl)
	}
	if len(invites.invites) != 1 {
		t.Errorf("expected 1 stored invite, got %d", len(invites.invites))
	}
}

func TestCoupleService_Invite_ReusesPending(t *testing.T) {
	svc, _, invites, _ := setupCoupleService(t)
	ctx := context.Background()

	first, err := svc.Invite(ctx, "user:a")
	if err != nil {
		t.Fatalf("first invite: %v", err)
	}
	second, err := svc.Invite(ctx, "user:a")
	if err != nil {
		t.Fatalf("second invite: %v", err)
	}

	if first.Code != second.Code {
		t.Errorf("expected pending code to be reused, got %s then %s", first.Code, second.Code)
	}
	if len(invites.invites) != 1 {
		t.Errorf("expected 1 stored invite, got %d", len(invites.invites))
	}
}

func TestCoupleService_Invite_ReplacesExpired(t *testing.T) {
	svc, _, invites, _ := setupCoupleService(t)
	invites.invites = append(invites.invites, &model.CoupleInvite{
		ID: "couple_invite:old", Code: "OLDCODE2", InviterID: "user:a",
		Status: model.InviteStatusPending, ExpiresOn: time.Now().Add(-time.Hour),
	})

	inv, err := svc.Invite(context.Background(), "user:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Code == "OLDCODE2" {
		t.Error("expected a fresh code for an expired invite")
	}
}

func TestCoupleService_Invite_RetriesCollisions(t *testing.T) {
	svc, _, invites, _ := setupCoupleService(t)
	dup := fmt.Errorf("%w: code taken", database.ErrDuplicate)
	invites.createErr = []error{dup, dup}

	if _, err := svc.Invite(context.Background(), "user:a"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}

	invites.invites = nil
	invites.createErr = []error{dup, dup, dup, dup, dup}
	if _, err := svc.Invite(context.Background(), "user:c"); !errors.Is(err, ErrInviteCodeExhausted) {
		t.Errorf("expected ErrInviteCodeExhausted, got %v", err)
	}
}

func TestCoupleService_Invite_AlreadyLinked(t *testing.T) {
	svc, users, _, _ := setupCoupleService(t)
	users.add(&model.User{ID: "user:d", Email: "d@example.com", PartnerID: strPtr("user:e")})

	if _, err := svc.Invite(context.Background(), "user:d"); !errors.Is(err, ErrAlreadyLinked) {
		t.Errorf("expected ErrAlreadyLinked, got %v", err)
	}
}

func TestCoupleService_Accept_Links(t *testing.T) {
	svc, users, _, pub := setupCoupleService(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, "user:a")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	status, err := svc.Accept(ctx, "user:b", inv.Code)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	if !status.Linked || status.Partner.ID != "user:a" {
		t.Errorf("expected to be linked to user:a, got %+v", status)
	}
	a, b := users.get("user:a"), users.get("user:b")
	if a.PartnerID == nil || *a.PartnerID != "user:b" || b.PartnerID == nil || *b.PartnerID != "user:a" {
		t.Error("expected partner ids on both users")
	}

	if len(pub.sent) != 2 {
		t.Fatalf("expected 2 couple.linked events, got %v", pub.types())
	}
	for _, s := range pub.sent {
		if s.Event.Type != EventCoupleLinked || len(s.UserIDs) != 1 {
			t.Errorf("unexpected event %+v", s)
		}
		summary := s.Event.Data.(*model.PartnerSummary)
		if summary.ID == s.UserIDs[0] {
			t.Errorf("user %s was told they are their own partner", s.UserIDs[0])
		}
	}
}

func TestCoupleService_Accept_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(users *mockUserRepo, invites *mockInviteRepo)
		caller  string
		code    string
		wantErr error
	}{
		{
			name:    "unknown code",
			caller:  "user:b",
			code:    "ZZZZZZZZ",
			wantErr: ErrInviteNotFound,
		},
		{
			name:    "own invite",
			caller:  "user:a",
			code:    "CODE2345",
			wantErr: ErrOwnInvite,
		},
		{
			name: "expired",
			setup: func(_ *mockUserRepo, invites *mockInviteRepo) {
				invites.invites[0].ExpiresOn = time.Now().Add(-time.Minute)
			},
			caller:  "user:b",
			code:    "CODE2345",
			wantErr: ErrInviteExpired,
		},
		{
			name: "already used",
			setup: func(_ *mockUserRepo, invites *mockInviteRepo) {
				invites.invites[0].Status = model.InviteStatusAccepted
			},
			caller:  "user:b",
			code:    "CODE2345",
			wantErr: ErrInviteExpired,
		},
		{
			name: "caller already linked",
			setup: func(users *mockUserRepo, _ *mockInviteRepo) {
				users.users["user:b"].PartnerID = strPtr("user:c")
			},
			caller:  "user:b",
			code:    "CODE2345",
			wantErr: ErrAlreadyLinked,
		},
		{
			name: "inviter linked meanwhile",
			setup: func(users *mockUserRepo, _ *mockInviteRepo) {
				users.users["user:a"].PartnerID = strPtr("user:c")
			},
			caller:  "user:b",
			code:    "CODE2345",
			wantErr: ErrPartnerLinked,
		},
		{
			name: "lost race in storage",
			setup: func(users *mockUserRepo, _ *mockInviteRepo) {
				users.linkErr = fmt.Errorf("%w: partner already set", database.ErrDuplicate)
			},
			caller:  "user:b",
			code:    "CODE2345",
			wantErr: ErrAlreadyLinked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, invites, pub := setupCoupleService(t)
			invites.invites = []*model.CoupleInvite{{
				ID: "couple_invite:1", Code: "CODE2345", InviterID: "user:a",
				Status: model.InviteStatusPending, ExpiresOn: time.Now().Add(time.Hour),
			}}
			if tt.setup != nil {
				tt.setup(users, invites)
			}

			_, err := svc.Accept(context.Background(), tt.caller, tt.code)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if len(pub.sent) != 0 {
				t.Errorf("expected no events on failure, got %v", pub.types())
			}
		})
	}
}

func TestCoupleService_Status(t *testing.T) {
	svc, _, _, _ := setupCoupleService(t)
	ctx := context.Background()

	status, err := svc.Status(ctx, "user:a")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Linked || status.Invite != nil {
		t.Errorf("expected empty status, got %+v", status)
	}

	inv, _ := svc.Invite(ctx, "user:a")
	status, _ = svc.Status(ctx, "user:a")
	if status.Invite == nil || status.Invite.Code != inv.Code {
		t.Errorf("expected pending invite in status")
	}

	if _, err := svc.Accept(ctx, "user:b", inv.Code); err != nil {
		t.Fatalf("accept: %v", err)
	}
	status, _ = svc.Status(ctx, "user:a")
	if !status.Linked || status.Partner == nil || status.Partner.ID != "user:b" {
		t.Errorf("expected linked status, got %+v", status)
	}
	if status.Invite != nil {
		t.Error("linked users should not report a pending invite")
	}
}

func TestCoupleService_Unlink(t *testing.T) {
	svc, users, _, pub := setupCoupleService(t)
	ctx := context.Background()
	users.users["user:a"].PartnerID = strPtr("user:b")
	users.users["user:b"].PartnerID = strPtr("user:a")

	if err := svc.Unlink(ctx, "user:b"); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	if users.get("user:a").HasPartner() || users.get("user:b").HasPartner() {
		t.Error("expected both users to be unlinked")
	}
	if len(pub.sent) != 1 || pub.sent[0].Event.Type != EventCoupleUnlinked || len(pub.sent[0].UserIDs) != 2 {
		t.Errorf("expected one couple.unlinked event for both users, got %+v", pub.sent)
	}

	if err := svc.Unlink(ctx, "user:b"); err != nil {
		t.Errorf("second unlink should be a no-op, got %v", err)
	}
	if len(pub.sent) != 1 {
		t.Error("no-op unlink must not publish")
	}
}

func TestCoupleService_CancelAndExpire(t *testing.T) {
	svc, _, invites, _ := setupCoupleService(t)
	ctx := context.Background()

	if _, err := svc.Invite(ctx, "user:a"); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if err := svc.CancelInvite(ctx, "user:a"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if invites.invites[0].Status != model.InviteStatusCancelled {
		t.Errorf("expected cancelled invite, got %s", invites.invites[0].Status)
	}

	invites.invites = append(invites.invites, &model.CoupleInvite{
		Code: "STALE234", InviterID: "user:c", Status: model.InviteStatusPending, ExpiresOn: time.Now().Add(-time.Hour),
	})
	n, err := svc.ExpireInvites(ctx)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired invite, got %d", n)
	}
}

func TestGenerateInviteCode_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := generateInviteCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate code %s after %d draws", code, i)
		}
		seen[code] = true
	}
}
