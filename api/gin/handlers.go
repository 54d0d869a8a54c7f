// Package ginapi serves the payment routes on a gin engine.
package ginapi

import (
	"io"
	"net/http"

	"github.com/agendateonline/agendate/api"
	"github.com/agendateonline/agendate/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const maxWebhookBody = 1 << 20

// PaymentsAPI holds the handler dependencies.
type PaymentsAPI struct {
	h api.Handlers
}

// NewPaymentsAPI creates the gin handlers.
func NewPaymentsAPI(h api.Handlers) *PaymentsAPI {
	return &PaymentsAPI{h: h}
}

// RegisterRoutes registers all routes except /metrics.
func (pa *PaymentsAPI) RegisterRoutes(e *gin.Engine) {
	e.POST(api.PathPayments, pa.CreatePaymentHandler)
	e.POST(api.PathPreferences, pa.CreatePreferenceHandler)
	e.POST(api.PathWebhook, pa.WebhookHandler)
	e.GET(api.PathOAuthCallback, pa.OAuthCallbackHandler)
	e.GET(api.PathOAuthConnect, pa.OAuthConnectHandler)
	e.GET(api.PathHealth, pa.HealthHandler)
}

// CreatePaymentHandler starts a payment for a booking.
func (pa *PaymentsAPI) CreatePaymentHandler(c *gin.Context) {
	pa.createPayment(c, false)
}

// CreatePreferenceHandler starts a Checkout Pro preference for a booking.
func (pa *PaymentsAPI) CreatePreferenceHandler(c *gin.Context) {
	pa.createPayment(c, true)
}

func (pa *PaymentsAPI) createPayment(c *gin.Context, preference bool) {
	var intent domain.PaymentIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	ctx := c.Request.Context()
	var (
		result *domain.PaymentResult
		err    error
	)
	if preference {
		result, err = pa.h.Payments.CreatePreference(ctx, &intent)
	} else {
		result, err = pa.h.Payments.CreatePayment(ctx, &intent)
	}
	if err != nil {
		status, body := api.PaymentErrorStatus(err)
		if status >= http.StatusInternalServerError {
			log.Ctx(ctx).Error().Err(err).Str("tenantID", intent.TenantID).Str("bookingID", intent.BookingID).Msg("payment creation failed")
			_ = c.Error(err)
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, result)
}

// WebhookHandler reconciles a provider notification.
func (pa *PaymentsAPI) WebhookHandler(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "bad_request", Message: "unreadable body"})
		return
	}

	n, err := api.ParseNotification(body, c.Request.URL.Query(), c.Request.Header)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "bad_request", Message: err.Error()})
		return
	}

	result, err := pa.h.Webhooks.Reconcile(c.Request.Context(), n)
	if err != nil {
		status, resp := api.WebhookErrorStatus(err)
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, api.WebhookResponse{Status: "ok", Outcome: result.Outcome})
}

// OAuthCallbackHandler completes account linking and renders the popup page.
func (pa *PaymentsAPI) OAuthCallbackHandler(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := c.Query("state")
	code := c.Query("code")

	if denial := c.Query("error"); denial != "" {
		log.Ctx(ctx).Warn().Str("tenantID", tenantID).Str("error", denial).Msg("account linking denied at provider")
		pa.failedPage(c, http.StatusBadRequest, denial)
		return
	}
	if tenantID == "" || code == "" {
		pa.failedPage(c, http.StatusBadRequest, "missing code or state")
		return
	}

	cred, err := pa.h.Accounts.CompleteAuthorization(ctx, tenantID, code)
	if err != nil {
		status := api.OAuthErrorStatus(err)
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
		pa.failedPage(c, status, err.Error())
		return
	}

	page, err := api.LinkedPage(pa.h.FrontendOrigin, cred)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "account linked")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (pa *PaymentsAPI) failedPage(c *gin.Context, status int, detail string) {
	page, err := api.FailedPage(pa.h.FrontendOrigin, status, detail)
	if err != nil {
		_ = c.Error(err)
		c.String(status, detail)
		return
	}
	c.Data(status, "text/html; charset=utf-8", page)
}

// OAuthConnectHandler redirects the business owner to the provider consent screen.
func (pa *PaymentsAPI) OAuthConnectHandler(c *gin.Context) {
	tenantID := c.Query("tenantId")
	if tenantID == "" {
		tenantID = c.Query("tenant_id")
	}

	target, err := pa.h.Accounts.AuthorizationURL(c.Request.Context(), tenantID)
	if err != nil {
		status := api.OAuthErrorStatus(err)
		c.JSON(status, api.ErrorResponse{Error: http.StatusText(status), Message: err.Error()})
		return
	}
	c.Redirect(http.StatusFound, target)
}

// HealthHandler reports service and MongoDB health.
func (pa *PaymentsAPI) HealthHandler(c *gin.Context) {
	if pa.h.Health == nil {
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
		return
	}
	if err := pa.h.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable", Mongo: err.Error()})
		return
	}
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok", Mongo: "ok"})
}
