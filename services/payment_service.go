package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/agendateonline/agendate/domain"
	apperrors "github.com/agendateonline/agendate/errors"
	"github.com/agendateonline/agendate/internal/audit"
	"github.com/agendateonline/agendate/internal/metrics"
	"github.com/agendateonline/agendate/mercadopago"
	"github.com/agendateonline/agendate/tracing"
	"github.com/rs/zerolog/log"
)

// PreferenceStatusCreated is reported for freshly created checkout preferences,
// which carry no payment status of their own.
const PreferenceStatusCreated = "created"

// PaymentConfig holds the provider request settings shared by all tenants.
type PaymentConfig struct {
	// NotificationURL receives webhooks. The tenant id is appended as a
	// tenant_id query parameter.
	NotificationURL string
	// DefaultPaymentMethodID is used when the intent names none.
	DefaultPaymentMethodID string
	CurrencyID             string
	BackURLs               mercadopago.BackURLs
}

// PaymentService starts payments on behalf of tenants.
type PaymentService struct {
	credentials domain.CredentialRepository
	refresher   CredentialRefresher
	provider    PaymentProvider
	cfg         PaymentConfig
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	credentials domain.CredentialRepository,
	refresher CredentialRefresher,
	provider PaymentProvider,
	cfg PaymentConfig,
) *PaymentService {
	return &PaymentService{
		credentials: credentials,
		refresher:   refresher,
		provider:    provider,
		cfg:         cfg,
	}
}

// CreatePayment creates a provider payment for the booking in intent.
//
// It fails with ErrBadRequest on invalid input, ErrNotLinked when the tenant has no
// credential, ErrRefreshFailed when a 401 could not be recovered by refreshing, and
// a *errors.ProviderError for any other provider refusal.
func (s *PaymentService) CreatePayment(ctx context.Context, intent *domain.PaymentIntent) (result *domain.PaymentResult, err error) {
	if err := validateIntent(intent); err != nil {
		return nil, err
	}

	ctx, span := tracing.Start(ctx, "PaymentService.CreatePayment", intent.TenantID)
	defer func() {
		tracing.End(span, err)
		recordPayment("payment", err)
	}()

	req := &mercadopago.PaymentRequest{
		TransactionAmount: intent.Amount,
		Description:       intent.Description,
		PaymentMethodID:   firstNonEmpty(intent.PaymentMethodID, s.cfg.DefaultPaymentMethodID),
		Payer:             mercadopago.Payer{Email: intent.PayerEmail},
		ExternalReference: intent.BookingID,
		NotificationURL:   s.notificationURL(intent.TenantID),
		Metadata:          paymentMetadata(intent),
	}

	payment, err := withCredentialRetry(ctx, s, intent.TenantID, func(cred *domain.Credential) (*mercadopago.Payment, error) {
		return s.provider.CreatePayment(ctx, cred.AccessToken, req)
	})
	if err != nil {
		return nil, err
	}

	audit.Log("payment_service", audit.ActionPaymentCreated, intent.TenantID, intent.BookingID, payment.IDString(), true, nil)

	return &domain.PaymentResult{
		ID:          payment.IDString(),
		Status:      payment.Status,
		RedirectURL: payment.RedirectURL(),
	}, nil
}

// CreatePreference creates a Checkout Pro preference for the booking in intent. The
// redirect URL is the live or sandbox checkout link depending on the credential.
func (s *PaymentService) CreatePreference(ctx context.Context, intent *domain.PaymentIntent) (result *domain.PaymentResult, err error) {
	if err := validateIntent(intent); err != nil {
		return nil, err
	}

	ctx, span := tracing.Start(ctx, "PaymentService.CreatePreference", intent.TenantID)
	defer func() {
		tracing.End(span, err)
		recordPayment("preference", err)
	}()

	title := intent.Description
	if title == "" {
		title = "Reserva " + intent.BookingID
	}
	req := &mercadopago.PreferenceRequest{
		Items: []mercadopago.PreferenceItem{{
			ID:         intent.BookingID,
			Title:      title,
			Quantity:   1,
			UnitPrice:  intent.Amount,
			CurrencyID: s.cfg.CurrencyID,
		}},
		Payer:             mercadopago.Payer{Email: intent.PayerEmail},
		ExternalReference: intent.BookingID,
		NotificationURL:   s.notificationURL(intent.TenantID),
		Metadata:          paymentMetadata(intent),
	}
	if s.cfg.BackURLs != (mercadopago.BackURLs{}) {
		backURLs := s.cfg.BackURLs
		req.BackURLs = &backURLs
		if backURLs.Success != "" {
			req.AutoReturn = "approved"
		}
	}

	type created struct {
		pref     *mercadopago.Preference
		liveMode bool
	}
	out, err := withCredentialRetry(ctx, s, intent.TenantID, func(cred *domain.Credential) (created, error) {
		pref, err := s.provider.CreatePreference(ctx, cred.AccessToken, req)
		return created{pref: pref, liveMode: cred.LiveMode}, err
	})
	if err != nil {
		return nil, err
	}

	return &domain.PaymentResult{
		ID:          out.pref.ID,
		Status:      PreferenceStatusCreated,
		RedirectURL: out.pref.CheckoutURL(out.liveMode),
	}, nil
}

// withCredentialRetry runs call with the tenant's access token. A provider 401
// triggers exactly one refresh and exactly one retry with the new token.
func withCredentialRetry[T any](ctx context.Context, s *PaymentService, tenantID string, call func(*domain.Credential) (T, error)) (T, error) {
	var zero T

	cred, err := s.credentials.Get(ctx, tenantID)
	if errors.Is(err, domain.ErrCredentialNotFound) {
		return zero, apperrors.ErrNotLinked
	}
	if err != nil {
		return zero, fmt.Errorf("failed to load credential: %w", err)
	}

	out, err := call(cred)
	if err == nil || !apperrors.IsUnauthorized(err) {
		return out, err
	}

	log.Ctx(ctx).Info().Str("tenantID", tenantID).Msg("access token rejected, refreshing credential")

	refreshed, err := s.refresher.Refresh(ctx, tenantID)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, err)
	}

	return call(refreshed)
}

func validateIntent(intent *domain.PaymentIntent) error {
	if intent == nil {
		return fmt.Errorf("%w: missing payment intent", apperrors.ErrBadRequest)
	}

	var missing []string
	if strings.TrimSpace(intent.TenantID) == "" {
		missing = append(missing, "tenantId")
	}
	if strings.TrimSpace(intent.BookingID) == "" {
		missing = append(missing, "bookingId")
	}
	if strings.TrimSpace(intent.PayerEmail) == "" {
		missing = append(missing, "payerEmail")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", apperrors.ErrBadRequest, strings.Join(missing, ", "))
	}
	if intent.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrBadRequest)
	}
	return nil
}

func paymentMetadata(intent *domain.PaymentIntent) map[string]any {
	return map[string]any{
		"tenant_id":  intent.TenantID,
		"booking_id": intent.BookingID,
	}
}

func (s *PaymentService) notificationURL(tenantID string) string {
	if s.cfg.NotificationURL == "" {
		return ""
	}
	u, err := url.Parse(s.cfg.NotificationURL)
	if err != nil {
		return s.cfg.NotificationURL
	}
	q := u.Query()
	q.Set(TenantHintParam, tenantID)
	u.RawQuery = q.Encode()
	return u.String()
}

func recordPayment(kind string, err error) {
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotLinked):
		result = "not_linked"
	case errors.Is(err, apperrors.ErrRefreshFailed):
		result = "refresh_failed"
	default:
		result = "provider_error"
	}
	metrics.PaymentsCreatedTotal.WithLabelValues(kind, result).Inc()
}
