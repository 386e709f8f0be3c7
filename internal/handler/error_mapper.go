package handler

import (
	"errors"

	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return model.NewValidationError(verr.Fields)
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionInvalid):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotAuthor),
		errors.Is(err, service.ErrPasswordLoginOff),
		errors.Is(err, service.ErrEmailNotVerified):
		return model.NewForbiddenError(err.Error())

	// ===== Membership → 402 =====
	case errors.Is(err, service.ErrMembershipRequired):
		return model.NewPaymentRequiredError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrAlbumNotFound):
		return model.NewNotFoundError("album")
	case errors.Is(err, service.ErrInviteNotFound):
		return model.NewNotFoundError("invite code")
	case errors.Is(err, service.ErrNoCustomer):
		return model.NewNotFoundError("billing customer")
	case errors.Is(err, service.ErrNotFound):
		return model.NewNotFoundError("resource")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrAlreadyLinked),
		errors.Is(err, service.ErrPartnerLinked),
		errors.Is(err, service.ErrChecklistSeeded):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrInviteExpired),
		errors.Is(err, service.ErrOwnInvite):
		return model.NewValidationError([]model.FieldError{{Field: "code", Message: err.Error()}})
	case errors.Is(err, service.ErrUnsupportedImage):
		return model.NewValidationError([]model.FieldError{{Field: "file", Message: err.Error()}})
	case errors.Is(err, service.ErrUnknownPlan):
		return model.NewValidationError([]model.FieldError{{Field: "plan", Message: err.Error()}})

	// ===== Security Errors → 400 =====
	case errors.Is(err, service.ErrInvalidFlowState),
		errors.Is(err, service.ErrInvalidIDToken),
		errors.Is(err, service.ErrMissingEmail),
		errors.Is(err, service.ErrInvalidSignature):
		return model.NewBadRequestError(err.Error())

	// ===== Provider/External Errors → 502 =====
	case errors.Is(err, service.ErrProviderError),
		errors.Is(err, service.ErrAIProvider),
		errors.Is(err, service.ErrBillingProvider):
		return model.NewBadGatewayError(err.Error())

	// ===== Unconfigured Integrations → 503 =====
	case errors.Is(err, service.ErrOIDCDisabled),
		errors.Is(err, service.ErrAIUnavailable),
		errors.Is(err, service.ErrBillingDisabled):
		return model.NewServiceUnavailableError(err.Error())

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
