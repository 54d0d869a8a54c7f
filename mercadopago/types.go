package mercadopago

import (
	"encoding/json"
	"strconv"
	"time"
)

// Payer identifies the paying customer.
type Payer struct {
	Email string `json:"email"`
}

// PaymentRequest is the body of POST /v1/payments.
type PaymentRequest struct {
	TransactionAmount float64        `json:"transaction_amount"`
	Description       string         `json:"description,omitempty"`
	PaymentMethodID   string         `json:"payment_method_id,omitempty"`
	Payer             Payer          `json:"payer"`
	ExternalReference string         `json:"external_reference,omitempty"`
	NotificationURL   string         `json:"notification_url,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// Payment is the subset of the provider's payment resource the service reads.
type Payment struct {
	ID                 int64          `json:"id"`
	Status             string         `json:"status"`
	StatusDetail       string         `json:"status_detail"`
	TransactionAmount  float64        `json:"transaction_amount"`
	ExternalReference  string         `json:"external_reference"`
	LiveMode           bool           `json:"live_mode"`
	DateLastUpdated    *time.Time     `json:"date_last_updated,omitempty"`
	Metadata           map[string]any `json:"metadata"`
	TransactionDetails struct {
		ExternalResourceURL string `json:"external_resource_url"`
	} `json:"transaction_details"`
	PointOfInteraction struct {
		TransactionData struct {
			TicketURL string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// IDString returns the payment id in decimal.
func (p *Payment) IDString() string {
	return strconv.FormatInt(p.ID, 10)
}

// RedirectURL prefers the cash voucher over the generic checkout URL.
func (p *Payment) RedirectURL() string {
	if p.TransactionDetails.ExternalResourceURL != "" {
		return p.TransactionDetails.ExternalResourceURL
	}
	return p.PointOfInteraction.TransactionData.TicketURL
}

// MetadataString reads a metadata value under any of keys. The provider snake-cases
// metadata keys, so callers usually pass both spellings.
func (p *Payment) MetadataString(keys ...string) string {
	for _, k := range keys {
		v, ok := p.Metadata[k]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

// PreferenceItem is a single checkout line.
type PreferenceItem struct {
	ID         string  `json:"id,omitempty"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id,omitempty"`
}

// BackURLs are where the provider sends the payer after checkout.
type BackURLs struct {
	Success string `json:"success,omitempty"`
	Pending string `json:"pending,omitempty"`
	Failure string `json:"failure,omitempty"`
}

// PreferenceRequest is the body of POST /checkout/preferences.
type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	Payer             Payer            `json:"payer"`
	ExternalReference string           `json:"external_reference,omitempty"`
	NotificationURL   string           `json:"notification_url,omitempty"`
	BackURLs          *BackURLs        `json:"back_urls,omitempty"`
	AutoReturn        string           `json:"auto_return,omitempty"`
	Metadata          map[string]any   `json:"metadata,omitempty"`
}

// Preference is a created checkout preference.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CheckoutURL returns the live or sandbox checkout link.
func (p *Preference) CheckoutURL(liveMode bool) string {
	if liveMode || p.SandboxInitPoint == "" {
		return p.InitPoint
	}
	return p.SandboxInitPoint
}

// User is the account behind an access token.
type User struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	SiteID   string `json:"site_id"`
}

// TokenSet is the result of an authorization_code or refresh_token grant. Empty
// fields were absent from the response.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	PublicKey    string
	LiveMode     *bool
	Scope        string
	Expiry       time.Time
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
