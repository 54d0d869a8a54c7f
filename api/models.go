package api

import "github.com/agendateonline/agendate/services"

// Route paths shared by the gin and echo front-ends.
const (
	PathPayments      = "/api/payments"
	PathPreferences   = "/api/preferences"
	PathWebhook       = "/webhooks/mercadopago"
	PathOAuthCallback = "/oauth/mercadopago/callback"
	PathOAuthConnect  = "/oauth/mercadopago/connect"
	PathHealth        = "/health"
	PathMetrics       = "/metrics"
)

// ErrorResponse is the JSON body of every non-HTML error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WebhookResponse acknowledges a notification.
type WebhookResponse struct {
	Status  string                    `json:"status"`
	Outcome services.ReconcileOutcome `json:"outcome"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Mongo  string `json:"mongo,omitempty"`
}

// webhookBody is the JSON notification sent by the provider. data.id is a string
// in current deliveries and a number in older ones.
type webhookBody struct {
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Data   struct {
		ID any `json:"id"`
	} `json:"data"`
}
