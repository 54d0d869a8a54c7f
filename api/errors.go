package api

import (
	"errors"
	"net/http"

	"github.com/agendateonline/agendate/domain"
	apperrors "github.com/agendateonline/agendate/errors"
)

// Generic messages. Provider payloads are logged, never returned to customers.
const (
	msgPaymentRejected = "The payment could not be processed. Please try again later."
	msgNotLinked       = "This business has not connected a Mercado Pago account."
)

// PaymentErrorStatus maps payment creation errors onto HTTP responses.
func PaymentErrorStatus(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()}
	case errors.Is(err, apperrors.ErrNotLinked):
		return http.StatusUnauthorized, ErrorResponse{Error: "not_linked", Message: msgNotLinked}
	case errors.Is(err, apperrors.ErrRefreshFailed):
		return http.StatusInternalServerError, ErrorResponse{Error: "refresh_failed", Message: msgPaymentRejected}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "payment_failed", Message: msgPaymentRejected}
	}
}

// WebhookErrorStatus maps reconciliation errors onto HTTP responses. Anything not
// listed is a storage failure and answers 500 so the provider redelivers.
func WebhookErrorStatus(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidSignature):
		return http.StatusUnauthorized, ErrorResponse{Error: "invalid_signature"}
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()}
	case errors.Is(err, apperrors.ErrUnresolvable):
		return http.StatusBadRequest, ErrorResponse{Error: "unresolvable", Message: err.Error()}
	case errors.Is(err, apperrors.ErrPaymentNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "payment_not_found", Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal_error"}
	}
}

// OAuthErrorStatus maps account linking errors onto HTTP status codes.
func OAuthErrorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrTenantNotFound), errors.Is(err, domain.ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrTokenExchangeFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
