package mercadopago

import (
	"context"
	"net/http"
	"net/url"
)

// CreatePayment creates a payment on behalf of the account owning accessToken.
func (c *Client) CreatePayment(ctx context.Context, accessToken string, req *PaymentRequest) (*Payment, error) {
	var payment Payment
	if err := c.doJSON(ctx, http.MethodPost, "/v1/payments", accessToken, req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPayment fetches the authoritative state of a payment.
func (c *Client) GetPayment(ctx context.Context, accessToken, paymentID string) (*Payment, error) {
	var payment Payment
	if err := c.doJSON(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), accessToken, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// CreatePreference creates a Checkout Pro preference.
func (c *Client) CreatePreference(ctx context.Context, accessToken string, req *PreferenceRequest) (*Preference, error) {
	var pref Preference
	if err := c.doJSON(ctx, http.MethodPost, "/checkout/preferences", accessToken, req, &pref); err != nil {
		return nil, err
	}
	return &pref, nil
}
