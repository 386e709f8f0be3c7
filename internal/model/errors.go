package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// problemBase prefixes every ProblemDetails.Type.
const problemBase = "https://api.weve.app/errors/"

// ErrorCode is the numeric "code" extension carried in problem bodies so
// clients can branch without parsing titles. The thousands digit groups
// codes by family.
type ErrorCode int

const (
	ErrCodeUnauthorized ErrorCode = 1001

	ErrCodeForbidden    ErrorCode = 2001
	ErrCodeNoMembership ErrorCode = 2003

	ErrCodeNotFound ErrorCode = 3001
	ErrCodeConflict ErrorCode = 3003

	ErrCodeValidation   ErrorCode = 4001
	ErrCodeInvalidInput ErrorCode = 4002
	ErrCodeRateLimited  ErrorCode = 4029

	ErrCodeInternal    ErrorCode = 5001
	ErrCodeExternalAPI ErrorCode = 5003
)

// ProblemDetails is an RFC 9457 error body. It doubles as an error so
// services and middleware can hand one straight to the writer.
type ProblemDetails struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
	Code     ErrorCode    `json:"code,omitempty"`
}

// FieldError names one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error formats p as "[status] title: detail".
func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

// WriteJSON sends p with the problem+json media type.
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func problem(status int, slug string, code ErrorCode, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemBase + slug,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Code:   code,
	}
}

// NewUnauthorizedError is a 401 for a missing, expired or revoked session.
func NewUnauthorizedError(detail string) *ProblemDetails {
	return problem(http.StatusUnauthorized, "unauthorized", ErrCodeUnauthorized, detail)
}

// NewForbiddenError is a 403: the caller is known but may not touch the
// resource, e.g. someone else's post or another couple's data.
func NewForbiddenError(detail string) *ProblemDetails {
	return problem(http.StatusForbidden, "forbidden", ErrCodeForbidden, detail)
}

// NewNotFoundError reports a missing resource by kind ("todo", "album").
func NewNotFoundError(resource string) *ProblemDetails {
	return problem(http.StatusNotFound, "not-found", ErrCodeNotFound, resource+" not found")
}

// NewValidationError is a 422 listing every rejected field. Detail
// repeats the first one so clients that only show Detail stay useful.
func NewValidationError(errors []FieldError) *ProblemDetails {
	detail := "One or more fields failed validation"
	switch n := len(errors); {
	case n == 1:
		detail = errors[0].Field + ": " + errors[0].Message
	case n > 1:
		detail = fmt.Sprintf("%s: %s (and %d more errors)", errors[0].Field, errors[0].Message, n-1)
	}
	p := problem(http.StatusUnprocessableEntity, "validation", ErrCodeValidation, detail)
	p.Title = "Validation Error"
	p.Errors = errors
	return p
}

// NewConflictError covers duplicate links, reused invite codes and
// idempotency keys replayed with a different body.
func NewConflictError(detail string) *ProblemDetails {
	return problem(http.StatusConflict, "conflict", ErrCodeConflict, detail)
}

// NewInternalError never leaks the cause; an empty detail gets a generic one.
func NewInternalError(detail string) *ProblemDetails {
	if detail == "" {
		detail = "An unexpected error occurred"
	}
	return problem(http.StatusInternalServerError, "internal", ErrCodeInternal, detail)
}

// NewBadRequestError is a 400 for a body or query that could not be read.
func NewBadRequestError(detail string) *ProblemDetails {
	return problem(http.StatusBadRequest, "bad-request", ErrCodeInvalidInput, detail)
}

// NewPaymentRequiredError is returned for member-only features.
func NewPaymentRequiredError(detail string) *ProblemDetails {
	p := problem(http.StatusPaymentRequired, "membership-required", ErrCodeNoMembership, detail)
	p.Title = "Membership Required"
	return p
}

// NewBadGatewayError reports a failed call to Stripe, the AI provider or
// an identity provider.
func NewBadGatewayError(detail string) *ProblemDetails {
	return problem(http.StatusBadGateway, "upstream", ErrCodeExternalAPI, detail)
}

// NewRateLimitError pairs with the Retry-After header set by the limiter.
func NewRateLimitError(retryAfter int) *ProblemDetails {
	detail := fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter)
	return problem(http.StatusTooManyRequests, "rate-limited", ErrCodeRateLimited, detail)
}

// NewServiceUnavailableError is used when an optional integration
// (billing, AI) is not configured on this deployment.
func NewServiceUnavailableError(detail string) *ProblemDetails {
	return problem(http.StatusServiceUnavailable, "unavailable", ErrCodeExternalAPI, detail)
}
