package domain

import "time"

// PaymentIntent carries what is needed to start a payment for a booking.
// It is never persisted; TenantID and BookingID travel to the provider as metadata.
type PaymentIntent struct {
	TenantID        string  `json:"tenantId"`
	BookingID       string  `json:"bookingId"`
	Amount          float64 `json:"amount"`
	PayerEmail      string  `json:"payerEmail"`
	Description     string  `json:"description"`
	PaymentMethodID string  `json:"paymentMethodId,omitempty"`
}

// PaymentResult is what the payer's client needs to continue.
type PaymentResult struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RedirectURL string `json:"redirectUrl"`
}

// PaymentAudit is the per-provider-payment record written on every applied webhook.
type PaymentAudit struct {
	ProviderPaymentID string    `bson:"_id"                     json:"provider_payment_id"`
	TenantID          string    `bson:"tenant_id"               json:"tenant_id"`
	BookingID         string    `bson:"booking_id"              json:"booking_id"`
	Amount            float64   `bson:"amount"                  json:"amount"`
	Status            string    `bson:"status"                  json:"status"`
	StatusDetail      string    `bson:"status_detail,omitempty" json:"status_detail,omitempty"`
	LiveMode          bool      `bson:"live_mode"               json:"live_mode"`
	UpdatedAt         time.Time `bson:"updated_at"              json:"updated_at"`
}
