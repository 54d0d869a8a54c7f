package errors

import "errors"

// Caller-facing failure classes. Services wrap these with %w so handlers can map
// them with errors.Is.
var (
	// ErrBadRequest means the caller's input could not be used.
	ErrBadRequest = errors.New("bad request")

	// ErrNotLinked means the tenant has no Mercado Pago account connected.
	ErrNotLinked = errors.New("tenant has no linked payment account")

	// ErrNoCredential is returned by the refresher when there is nothing to refresh.
	ErrNoCredential = errors.New("no credential stored for tenant")

	// ErrProviderRejected means the token endpoint refused a refresh.
	ErrProviderRejected = errors.New("provider rejected credential refresh")

	// ErrRefreshFailed means a payment could not be retried because the refresh failed.
	ErrRefreshFailed = errors.New("credential refresh failed")

	// ErrUnresolvable means a notification does not identify a tenant and booking.
	ErrUnresolvable = errors.New("payment cannot be resolved to a booking")

	// ErrPaymentNotFound means no credential could read the notified payment.
	ErrPaymentNotFound = errors.New("payment not found at provider")

	// ErrInvalidSignature means a webhook signature did not verify.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTokenExchangeFailed = errors.New("authorization code exchange failed")
)
