package mercadopago_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	apperrors "github.com/agendateonline/agendate/errors"
	"github.com/agendateonline/agendate/mercadopago"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *mercadopago.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return mercadopago.NewClient(mercadopago.Config{
		BaseURL:      server.URL,
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		RedirectURL:  "https://agendate.test/oauth/mercadopago/callback",
	})
}

func TestClient_CreatePayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments", r.URL.Path)
		assert.Equal(t, "Bearer tenant-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Idempotency-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1500.0, body["transaction_amount"])
		assert.Equal(t, "b-1", body["external_reference"])
		meta := body["metadata"].(map[string]any)
		assert.Equal(t, "t-1", meta["tenant_id"])
		assert.Equal(t, "b-1", meta["booking_id"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 123456789,
			"status": "pending",
			"transaction_details": {"external_resource_url": "https://voucher.test/123"},
			"point_of_interaction": {"transaction_data": {"ticket_url": "https://ticket.test/123"}}
		}`))
	})

	payment, err := client.CreatePayment(context.Background(), "tenant-token", &mercadopago.PaymentRequest{
		TransactionAmount: 1500,
		Payer:             mercadopago.Payer{Email: "ana@example.com"},
		ExternalReference: "b-1",
		Metadata:          map[string]any{"tenant_id": "t-1", "booking_id": "b-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "123456789", payment.IDString())
	assert.Equal(t, "pending", payment.Status)
	assert.Equal(t, "https://voucher.test/123", payment.RedirectURL())
}

func TestPayment_RedirectURL_FallsBackToTicket(t *testing.T) {
	var p mercadopago.Payment
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"point_of_interaction":{"transaction_data":{"ticket_url":"https://ticket.test/1"}}}`), &p))
	assert.Equal(t, "https://ticket.test/1", p.RedirectURL())
}

func TestPayment_MetadataString(t *testing.T) {
	var p mercadopago.Payment
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"metadata":{"tenant_id":"t-9","booking_id":42}}`), &p))

	assert.Equal(t, "t-9", p.MetadataString("tenantId", "tenant_id"))
	assert.Equal(t, "42", p.MetadataString("booking_id"))
	assert.Empty(t, p.MetadataString("missing"))
}

func TestClient_GetPayment_Unauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/999", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid access token","error":"unauthorized","status":401}`))
	})

	_, err := client.GetPayment(context.Background(), "stale", "999")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))

	pe, ok := apperrors.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, "invalid access token", pe.Message)
	assert.Contains(t, pe.Body, "invalid access token")
}

func TestClient_CreatePreference(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"pref-1","init_point":"https://mp.test/live","sandbox_init_point":"https://mp.test/sandbox"}`))
	})

	pref, err := client.CreatePreference(context.Background(), "tok", &mercadopago.PreferenceRequest{
		Items: []mercadopago.PreferenceItem{{Title: "Corte", Quantity: 1, UnitPrice: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, "pref-1", pref.ID)
	assert.Equal(t, "https://mp.test/live", pref.CheckoutURL(true))
	assert.Equal(t, "https://mp.test/sandbox", pref.CheckoutURL(false))
}

func TestClient_ExchangeCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "abc123", r.PostForm.Get("code"))
		assert.Equal(t, "app-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "app-secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "APP_USR-access",
			"token_type": "Bearer",
			"expires_in": 15552000,
			"scope": "offline_access read write",
			"user_id": 987654321,
			"refresh_token": "TG-refresh",
			"public_key": "APP_USR-public",
			"live_mode": true
		}`))
	})

	ts, err := client.ExchangeCode(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "APP_USR-access", ts.AccessToken)
	assert.Equal(t, "TG-refresh", ts.RefreshToken)
	assert.Equal(t, "987654321", ts.UserID)
	assert.Equal(t, "APP_USR-public", ts.PublicKey)
	require.NotNil(t, ts.LiveMode)
	assert.True(t, *ts.LiveMode)
	assert.False(t, ts.Expiry.IsZero())
}

func TestClient_RefreshToken_InvalidGrant(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		assert.Equal(t, "refresh_token", form.Get("grant_type"))
		assert.Equal(t, "TG-old", form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","message":"invalid refresh_token","status":400}`))
	})

	_, err := client.RefreshToken(context.Background(), "TG-old")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidGrant(err))
	assert.True(t, strings.Contains(err.Error(), "refresh token"))
}

func TestClient_AuthCodeURL(t *testing.T) {
	client := mercadopago.NewClient(mercadopago.Config{
		ClientID:    "app-id",
		RedirectURL: "https://agendate.test/cb",
	})

	u, err := url.Parse(client.AuthCodeURL("tenant-7"))
	require.NoError(t, err)
	assert.Equal(t, "auth.mercadopago.com", u.Host)
	assert.Equal(t, "tenant-7", u.Query().Get("state"))
	assert.Equal(t, "app-id", u.Query().Get("client_id"))
	assert.Equal(t, "mp", u.Query().Get("platform_id"))
	assert.Equal(t, "code", u.Query().Get("response_type"))
}

func TestClient_GetUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":555,"nickname":"BARBERIA","site_id":"MLA"}`))
	})

	user, err := client.GetUser(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(555), user.ID)
}
