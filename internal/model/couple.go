package model

import (
	"strings"
	"time"
)

// InviteStatus tracks a couple invite through its lifecycle
type InviteStatus string

const (
	InviteStatusPending   InviteStatus = "pending"
	InviteStatusAccepted  InviteStatus = "accepted"
	InviteStatusExpired   InviteStatus = "expired"
	InviteStatusCancelled InviteStatus = "cancelled"
)

// Invite code rules. The alphabet drops 0/O and 1/I/L.
const (
	InviteCodeLength   = 8
	InviteCodeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
	InviteTTL          = 7 * 24 * time.Hour
)

// CoupleInvite is a pending request to link two accounts
type CoupleInvite struct {
	ID         string       `json:"id"`
	Code       string       `json:"code"`
	InviterID  string       `json:"inviter_id"`
	Status     InviteStatus `json:"status"`
	AcceptedBy *string      `json:"accepted_by,omitempty"`
	ExpiresOn  time.Time    `json:"expires_on"`
	CreatedOn  time.Time    `json:"created_on"`
	UpdatedOn  time.Time    `json:"updated_on"`
}

// Usable reports whether the invite can still be accepted at now
func (i *CoupleInvite) Usable(now time.Time) bool {
	return i.Status == InviteStatusPending && now.Before(i.ExpiresOn)
}

// AcceptInviteRequest links the caller to the inviter
type AcceptInviteRequest struct {
	Code string `json:"code"`
}

// Normalize upper-cases the code and strips separators users tend to type
func (r *AcceptInviteRequest) Normalize() {
	r.Code = strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(r.Code))
}

// Validate expects a normalized code.
func (r *AcceptInviteRequest) Validate() []FieldError {
	var f fieldErrors
	if f.required("code", r.Code) && len(r.Code) != InviteCodeLength {
		f.add("code", "code must be 8 characters")
	}
	return f.result()
}

// PartnerSummary is the public view of a linked partner
type PartnerSummary struct {
	ID              string  `json:"id"`
	Name            *string `json:"name,omitempty"`
	Nickname        *string `json:"nickname,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// NewPartnerSummary strips private fields from u
func NewPartnerSummary(u *User) *PartnerSummary {
	return &PartnerSummary{
		ID:              u.ID,
		Name:            u.Name,
		Nickname:        u.Nickname,
		ProfileImageURL: u.ProfileImageURL,
	}
}

// CoupleStatus is returned by GET /api/couple
type CoupleStatus struct {
	Linked  bool            `json:"linked"`
	Partner *PartnerSummary `json:"partner,omitempty"`
	Invite  *CoupleInvite   `json:"invite,omitempty"`
}
