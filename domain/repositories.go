package domain

import (
	"context"
	"errors"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrBookingNotFound    = errors.New("booking not found")
)

// CredentialRepository persists one Credential per tenant.
// Get returns ErrCredentialNotFound when the tenant has none.
type CredentialRepository interface {
	Get(ctx context.Context, tenantID string) (*Credential, error)
	Put(ctx context.Context, tenantID string, cred *Credential) error
	Delete(ctx context.Context, tenantID string) error
}

// TenantRepository gives read access to registered businesses.
type TenantRepository interface {
	GetTenant(ctx context.Context, tenantID string) (*Tenant, error)
	TenantExists(ctx context.Context, tenantID string) (bool, error)
}

// BookingRepository updates booking payment state.
type BookingRepository interface {
	GetBooking(ctx context.Context, tenantID, bookingID string) (*Booking, error)

	// ApplyPayment writes state and meta unless doing so would move the booking to a
	// lower state or replace an already recorded provider payment id. It reports whether
	// the write happened and returns ErrBookingNotFound for unknown bookings.
	ApplyPayment(ctx context.Context, tenantID, bookingID string, state PaymentState, meta PaymentMeta) (bool, error)
}

// PaymentAuditRepository stores one audit entry per provider payment id.
type PaymentAuditRepository interface {
	UpsertPaymentAudit(ctx context.Context, entry *PaymentAudit) error
}
