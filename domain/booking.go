package domain

import "time"

// PaymentState is the payment progress of a booking.
type PaymentState string

const (
	PaymentStateNone      PaymentState = "none"
	PaymentStatePending   PaymentState = "pending"
	PaymentStateConfirmed PaymentState = "confirmed"
)

// Provider payment statuses the reconciler cares about.
const (
	ProviderStatusPending   = "pending"
	ProviderStatusInProcess = "in_process"
	ProviderStatusApproved  = "approved"
	ProviderStatusRejected  = "rejected"
)

// Rank orders payment states so that writes never move a booking backwards.
// Unknown or empty states rank as PaymentStateNone.
func (s PaymentState) Rank() int {
	switch s {
	case PaymentStatePending:
		return 1
	case PaymentStateConfirmed:
		return 2
	default:
		return 0
	}
}

// StatesAtOrBelow lists the states a booking may hold for s to be written over it.
func (s PaymentState) StatesAtOrBelow() []PaymentState {
	all := []PaymentState{PaymentStateNone, PaymentStatePending, PaymentStateConfirmed}
	out := make([]PaymentState, 0, len(all))
	for _, st := range all {
		if st.Rank() <= s.Rank() {
			out = append(out, st)
		}
	}
	return out
}

// PaymentStateFromProvider maps a provider payment status onto a booking state.
// The second return value is false for statuses with no booking equivalent.
func PaymentStateFromProvider(status string) (PaymentState, bool) {
	switch status {
	case ProviderStatusApproved:
		return PaymentStateConfirmed, true
	case ProviderStatusPending, ProviderStatusInProcess:
		return PaymentStatePending, true
	default:
		return "", false
	}
}

// PaymentMeta is the last known provider view of the booking's payment.
type PaymentMeta struct {
	ProviderPaymentID string    `bson:"provider_payment_id" json:"provider_payment_id"`
	Amount            float64   `bson:"amount"              json:"amount"`
	Status            string    `bson:"status"              json:"status"`
	UpdatedAt         time.Time `bson:"updated_at"          json:"updated_at"`
}

// Booking is a scheduled appointment and its payment state.
type Booking struct {
	ID                string       `bson:"_id"                    json:"id"`
	TenantID          string       `bson:"tenant_id"              json:"tenant_id"`
	CustomerContact   string       `bson:"customer_contact"       json:"customer_contact"`
	ServiceDescriptor string       `bson:"service_descriptor"     json:"service_descriptor"`
	ScheduledAt       time.Time    `bson:"scheduled_at"           json:"scheduled_at"`
	PaymentState      PaymentState `bson:"payment_state"          json:"payment_state"`
	PaymentMeta       *PaymentMeta `bson:"payment_meta,omitempty" json:"payment_meta,omitempty"`
	CreatedAt         time.Time    `bson:"created_at"             json:"created_at"`
}
