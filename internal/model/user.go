package model

import (
	"net/mail"
	"time"
)

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin" // Can moderate community posts
)

// User represents a user account. A user is linked to at most one
// partner; PartnerID is set on both rows of a couple.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            *string    `json:"name,omitempty"`
	Nickname        *string    `json:"nickname,omitempty"`
	ProfileImageURL *string    `json:"profile_image_url,omitempty"`
	OIDCSubject     *string    `json:"-"`
	Hash            *string    `json:"-"` // Never expose password hash
	Role            UserRole   `json:"role"`
	CurrentMode     Mode       `json:"current_mode"`
	PartnerID       *string    `json:"partner_id,omitempty"`
	AnniversaryDate *string    `json:"anniversary_date,omitempty"`
	WeddingDate     *string    `json:"wedding_date,omitempty"`
	CreatedOn       time.Time  `json:"created_on"`
	UpdatedOn       time.Time  `json:"updated_on"`
	LoginOn         *time.Time `json:"login_on,omitempty"`
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// HasPartner reports whether the user is linked to a partner
func (u *User) HasPartner() bool {
	return u.PartnerID != nil && *u.PartnerID != ""
}

// CoupleUserIDs returns the user ids whose rows this user can see:
// the user alone, or the user followed by the partner.
func (u *User) CoupleUserIDs() []string {
	if u.HasPartner() {
		return []string{u.ID, *u.PartnerID}
	}
	return []string{u.ID}
}

// DisplayName prefers the nickname, then the name, then the email
func (u *User) DisplayName() string {
	if u.Nickname != nil && *u.Nickname != "" {
		return *u.Nickname
	}
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}

// Session is a server-side login session. The browser only ever sees the
// raw token; TokenHash is its SHA-256.
type Session struct {
	ID         string                 `json:"id"`
	UserID     string                 `json:"user_id"`
	TokenHash  string                 `json:"-"`
	Claims     map[string]interface{} `json:"claims,omitempty"`
	ExpiresOn  time.Time              `json:"expires_on"`
	CreatedOn  time.Time              `json:"created_on"`
	LastSeenOn time.Time              `json:"last_seen_on"`
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresOn)
}

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxNameLength     = 50
)

// RegisterRequest creates an email/password account
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
	Nickname *string `json:"nickname,omitempty"`
}

// Validate checks the address parses and the password length is in range.
func (r *RegisterRequest) Validate() []FieldError {
	var f fieldErrors
	if f.required("email", r.Email) {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			f.add("email", "email must be a valid address")
		}
	}
	if f.required("password", r.Password) {
		if n := len(r.Password); n < MinPasswordLength || n > MaxPasswordLength {
			f.add("password", "password must be between 8 and 128 characters")
		}
	}
	f.maxLen("name", r.Name, MaxNameLength)
	f.maxLen("nickname", r.Nickname, MaxNameLength)
	return f.result()
}

// PasswordLoginRequest signs in with email and password
type PasswordLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks presence only so a failed login never hints at password rules.
func (r *PasswordLoginRequest) Validate() []FieldError {
	var f fieldErrors
	f.required("email", r.Email)
	f.required("password", r.Password)
	return f.result()
}

// AuthResponse is returned by the password endpoints. Token is the raw
// session token for clients that cannot hold cookies.
type AuthResponse struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresOn time.Time `json:"expires_on"`
}

// UpdateUserRequest patches the caller's profile
type UpdateUserRequest struct {
	Name            *string `json:"name,omitempty"`
	Nickname        *string `json:"nickname,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
	CurrentMode     *Mode   `json:"current_mode,omitempty"`
	AnniversaryDate *string `json:"anniversary_date,omitempty"`
	WeddingDate     *string `json:"wedding_date,omitempty"`
}

// Validate checks lengths, dates and that the mode is known.
func (r *UpdateUserRequest) Validate() []FieldError {
	var f fieldErrors
	f.maxLen("name", r.Name, MaxNameLength)
	f.maxLen("nickname", r.Nickname, MaxNameLength)
	f.maxLen("profile_image_url", r.ProfileImageURL, MaxURLLength)
	f.mode(r.CurrentMode)
	f.date("anniversary_date", r.AnniversaryDate)
	f.date("wedding_date", r.WeddingDate)
	return f.result()
}

// Apply copies the set fields onto u. Empty strings clear optional fields.
func (r *UpdateUserRequest) Apply(u *User) {
	if r.Name != nil {
		u.Name = emptyToNil(r.Name)
	}
	if r.Nickname != nil {
		u.Nickname = emptyToNil(r.Nickname)
	}
	if r.ProfileImageURL != nil {
		u.ProfileImageURL = emptyToNil(r.ProfileImageURL)
	}
	if r.CurrentMode != nil {
		u.CurrentMode = *r.CurrentMode
	}
	if r.AnniversaryDate != nil {
		u.AnniversaryDate = emptyToNil(r.AnniversaryDate)
	}
	if r.WeddingDate != nil {
		u.WeddingDate = emptyToNil(r.WeddingDate)
	}
}

// MaxURLLength bounds stored image and link URLs
const MaxURLLength = 2048

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

// SetRoleRequest changes a user's role by email
type SetRoleRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validate accepts only the user and admin roles.
func (r *SetRoleRequest) Validate() []FieldError {
	var f fieldErrors
	f.required("email", r.Email)
	if f.required("role", r.Role) {
		f.oneOf("role", &r.Role, string(UserRoleUser), string(UserRoleAdmin))
	}
	return f.result()
}
