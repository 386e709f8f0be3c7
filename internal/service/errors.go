package service

import (
	"errors"
	"strings"

	"github.com/webeat/weve/internal/model"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here so handlers can
// map them with errors.Is.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionInvalid     = errors.New("session missing or expired")
	ErrPasswordLoginOff   = errors.New("password login is not enabled for this account")
)

// ===== OIDC Errors =====
var (
	ErrOIDCDisabled     = errors.New("single sign-on is not configured")
	ErrInvalidFlowState = errors.New("login state mismatch or expired")
	ErrProviderError    = errors.New("identity provider error")
	ErrInvalidIDToken   = errors.New("invalid ID token")
	ErrMissingEmail     = errors.New("identity provider did not return an email")
	ErrEmailNotVerified = errors.New("identity provider has not verified this email")
)

// ===== Couple Errors =====
var (
	ErrAlreadyLinked       = errors.New("already linked to a partner")
	ErrPartnerLinked       = errors.New("the inviter is already linked to a partner")
	ErrInviteNotFound      = errors.New("invite code not found")
	ErrInviteExpired       = errors.New("invite code has expired or was already used")
	ErrOwnInvite           = errors.New("cannot accept your own invite")
	ErrInviteCodeExhausted = errors.New("could not allocate a unique invite code")
)

// ===== Resource Errors =====
var (
	ErrNotFound         = errors.New("not found")
	ErrAlbumNotFound    = errors.New("album not found")
	ErrNotAuthor        = errors.New("only the author can change this post")
	ErrChecklistSeeded  = errors.New("checklist already has items")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// ===== Integration Errors =====
var (
	ErrMembershipRequired = errors.New("an active membership is required")
	ErrAIUnavailable      = errors.New("AI assistant is not configured")
	ErrAIProvider         = errors.New("AI provider request failed")
	ErrBillingDisabled    = errors.New("billing is not configured")
	ErrBillingProvider    = errors.New("billing provider request failed")
	ErrUnknownPlan        = errors.New("unknown plan")
	ErrNoCustomer         = errors.New("no billing customer for this user")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
)

// ValidationError carries field errors detected after a request has been
// merged with stored state (for example an end date before a start date).
type ValidationError struct {
	Fields []model.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func invalid(field, message string) error {
	return &ValidationError{Fields: []model.FieldError{{Field: field, Message: message}}}
}
