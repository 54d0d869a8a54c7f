//nolint:varnamelen
package echoapi

import (
	"context"
	"io"
	"net/http"

	"github.com/agendateonline/agendate/api"
	"github.com/agendateonline/agendate/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const maxWebhookBody = 1 << 20

// PaymentsAPI struct to hold dependencies.
type PaymentsAPI struct {
	h api.Handlers
}

// NewPaymentsAPI initializes the echo handlers.
func NewPaymentsAPI(h api.Handlers) *PaymentsAPI {
	return &PaymentsAPI{h: h}
}

// RegisterRoutes registers the payment, webhook and OAuth routes.
func (pa *PaymentsAPI) RegisterRoutes(e *echo.Echo) {
	e.POST(api.PathPayments, pa.CreatePaymentHandler)
	e.POST(api.PathPreferences, pa.CreatePreferenceHandler)
	e.POST(api.PathWebhook, pa.WebhookHandler)
	e.GET(api.PathOAuthCallback, pa.OAuthCallbackHandler)
	e.GET(api.PathOAuthConnect, pa.OAuthConnectHandler)
	e.GET(api.PathHealth, pa.HealthHandler)
}

func (pa *PaymentsAPI) CreatePaymentHandler(c echo.Context) error {
	return pa.createPayment(c, pa.h.Payments.CreatePayment)
}

func (pa *PaymentsAPI) CreatePreferenceHandler(c echo.Context) error {
	return pa.createPayment(c, pa.h.Payments.CreatePreference)
}

type createFunc func(ctx context.Context, intent *domain.PaymentIntent) (*domain.PaymentResult, error)

func (pa *PaymentsAPI) createPayment(c echo.Context, create createFunc) error {
	var intent domain.PaymentIntent
	if err := c.Bind(&intent); err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "bad_request", Message: "invalid JSON body"})
	}

	ctx := c.Request().Context()
	result, err := create(ctx, &intent)
	if err != nil {
		status, body := api.PaymentErrorStatus(err)
		if status >= http.StatusInternalServerError {
			log.Ctx(ctx).Error().Err(err).Str("tenantID", intent.TenantID).Str("bookingID", intent.BookingID).Msg("payment creation failed")
		}
		return c.JSON(status, body)
	}
	return c.JSON(http.StatusOK, result)
}

// WebhookHandler reconciles a provider notification. Errors other than the
// mapped ones answer 500 so the provider redelivers.
func (pa *PaymentsAPI) WebhookHandler(c echo.Context) error {
	req := c.Request()
	body, err := io.ReadAll(io.LimitReader(req.Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "bad_request", Message: "unreadable body"})
	}

	n, err := api.ParseNotification(body, req.URL.Query(), req.Header)
	if err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "bad_request", Message: err.Error()})
	}

	result, err := pa.h.Webhooks.Reconcile(req.Context(), n)
	if err != nil {
		status, resp := api.WebhookErrorStatus(err)
		if status >= http.StatusInternalServerError {
			log.Ctx(req.Context()).Error().Err(err).Str("paymentID", n.PaymentID).Msg("webhook reconciliation failed")
		}
		return c.JSON(status, resp)
	}
	return c.JSON(http.StatusOK, api.WebhookResponse{Status: "ok", Outcome: result.Outcome})
}

// OAuthCallbackHandler completes account linking and renders the popup page.
func (pa *PaymentsAPI) OAuthCallbackHandler(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := c.QueryParam("state")
	code := c.QueryParam("code")

	if denial := c.QueryParam("error"); denial != "" {
		log.Ctx(ctx).Warn().Str("tenantID", tenantID).Str("error", denial).Msg("account linking denied at provider")
		return pa.failedPage(c, http.StatusBadRequest, denial)
	}
	if tenantID == "" || code == "" {
		return pa.failedPage(c, http.StatusBadRequest, "missing code or state")
	}

	cred, err := pa.h.Accounts.CompleteAuthorization(ctx, tenantID, code)
	if err != nil {
		return pa.failedPage(c, api.OAuthErrorStatus(err), err.Error())
	}

	page, err := api.LinkedPage(pa.h.FrontendOrigin, cred)
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, page)
}

func (pa *PaymentsAPI) failedPage(c echo.Context, status int, detail string) error {
	page, err := api.FailedPage(pa.h.FrontendOrigin, status, detail)
	if err != nil {
		return err
	}
	return c.HTMLBlob(status, page)
}

// OAuthConnectHandler redirects to the provider consent screen.
func (pa *PaymentsAPI) OAuthConnectHandler(c echo.Context) error {
	tenantID := c.QueryParam("tenantId")
	if tenantID == "" {
		tenantID = c.QueryParam("tenant_id")
	}

	target, err := pa.h.Accounts.AuthorizationURL(c.Request().Context(), tenantID)
	if err != nil {
		status := api.OAuthErrorStatus(err)
		return c.JSON(status, api.ErrorResponse{Error: http.StatusText(status), Message: err.Error()})
	}
	return c.Redirect(http.StatusFound, target)
}

// HealthHandler reports service and MongoDB health.
func (pa *PaymentsAPI) HealthHandler(c echo.Context) error {
	if pa.h.Health == nil {
		return c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
	}
	if err := pa.h.Health(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable", Mongo: err.Error()})
	}
	return c.JSON(http.StatusOK, api.HealthResponse{Status: "ok", Mongo: "ok"})
}
