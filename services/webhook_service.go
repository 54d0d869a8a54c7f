package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/agendateonline/agendate/domain"
	apperrors "github.com/agendateonline/agendate/errors"
	"github.com/agendateonline/agendate/internal/audit"
	"github.com/agendateonline/agendate/internal/metrics"
	"github.com/agendateonline/agendate/mercadopago"
	"github.com/agendateonline/agendate/tracing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TenantHintParam is the notification URL query parameter naming the tenant.
const TenantHintParam = "tenant_id"

// TopicPayment is the only notification topic that is reconciled.
const TopicPayment = "payment"

// ReconcileOutcome describes what an acknowledged notification did.
type ReconcileOutcome string

const (
	OutcomeApplied       ReconcileOutcome = "applied"
	OutcomeStale         ReconcileOutcome = "stale"
	OutcomeIgnoredStatus ReconcileOutcome = "ignored_status"
	OutcomeIgnoredTopic  ReconcileOutcome = "ignored_topic"
)

// Notification is a parsed webhook delivery.
type Notification struct {
	PaymentID  string
	Topic      string
	TenantHint string

	// Signature and RequestID are the x-signature and x-request-id headers.
	Signature string
	RequestID string
}

// ReconcileResult is returned for every acknowledged notification.
type ReconcileResult struct {
	Outcome   ReconcileOutcome `json:"outcome"                yaml:"outcome"`
	PaymentID string           `json:"paymentId,omitempty"    yaml:"payment_id,omitempty"`
	TenantID  string           `json:"tenantId,omitempty"     yaml:"tenant_id,omitempty"`
	BookingID string           `json:"bookingId,omitempty"    yaml:"booking_id,omitempty"`
	Status    string           `json:"status,omitempty"       yaml:"status,omitempty"`
	State     string           `json:"paymentState,omitempty" yaml:"payment_state,omitempty"`
}

// WebhookConfig configures the reconciler.
type WebhookConfig struct {
	// PlatformAccessToken reads payments before the owning tenant is known.
	PlatformAccessToken string
	// Secret enables x-signature verification when set.
	Secret string
}

// WebhookService reconciles provider notifications into booking payment state.
type WebhookService struct {
	credentials domain.CredentialRepository
	bookings    domain.BookingRepository
	audits      domain.PaymentAuditRepository
	provider    PaymentProvider
	cfg         WebhookConfig
	now         func() time.Time
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(
	credentials domain.CredentialRepository,
	bookings domain.BookingRepository,
	audits domain.PaymentAuditRepository,
	provider PaymentProvider,
	cfg WebhookConfig,
) *WebhookService {
	return &WebhookService{
		credentials: credentials,
		bookings:    bookings,
		audits:      audits,
		provider:    provider,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Reconcile fetches the notified payment from the provider and applies its status
// to the booking it belongs to.
//
// Errors: ErrInvalidSignature, ErrBadRequest (no payment id), ErrUnresolvable (bad
// id, or no tenant/booking), ErrPaymentNotFound (no credential could read the
// payment). Any other error is a storage failure and the delivery should be retried.
func (s *WebhookService) Reconcile(ctx context.Context, n Notification) (result *ReconcileResult, err error) {
	ctx, span := tracing.Start(ctx, "WebhookService.Reconcile", n.TenantHint)
	defer func() {
		tracing.End(span, err)
		recordWebhook(result, err)
	}()

	logger := log.Ctx(ctx).With().Str("paymentID", n.PaymentID).Str("topic", n.Topic).Logger()

	// The signature manifest is built from the payment id, so a notification
	// without one cannot be verified and is malformed rather than forged.
	if n.PaymentID == "" {
		if n.Topic != "" && n.Topic != TopicPayment {
			logger.Debug().Msg("ignoring non-payment notification")
			return &ReconcileResult{Outcome: OutcomeIgnoredTopic}, nil
		}
		return nil, fmt.Errorf("%w: notification carries no payment id", apperrors.ErrBadRequest)
	}

	if s.cfg.Secret != "" {
		if err := VerifySignature(s.cfg.Secret, n.Signature, n.RequestID, n.PaymentID); err != nil {
			logger.Warn().Err(err).Msg("rejecting notification with invalid signature")
			return nil, err
		}
	}

	if n.Topic != "" && n.Topic != TopicPayment {
		logger.Debug().Msg("ignoring non-payment notification")
		return &ReconcileResult{Outcome: OutcomeIgnoredTopic, PaymentID: n.PaymentID}, nil
	}
	if id, perr := strconv.ParseInt(n.PaymentID, 10, 64); perr != nil || id <= 0 {
		return nil, fmt.Errorf("%w: invalid payment id %q", apperrors.ErrUnresolvable, n.PaymentID)
	}

	payment, tenantID, fetchErr := s.resolve(ctx, logger, n)
	if payment == nil {
		if fetchErr != nil {
			return nil, fmt.Errorf("failed to fetch payment %s: %w", n.PaymentID, fetchErr)
		}
		return nil, fmt.Errorf("%w: payment %s", apperrors.ErrPaymentNotFound, n.PaymentID)
	}
	if tenantID == "" && fetchErr != nil {
		return nil, fmt.Errorf("failed to resolve tenant of payment %s: %w", n.PaymentID, fetchErr)
	}

	bookingID := firstNonEmpty(payment.MetadataString("booking_id", "bookingId"), payment.ExternalReference)
	if tenantID == "" || bookingID == "" {
		logger.Warn().Str("tenantID", tenantID).Str("bookingID", bookingID).Msg("payment has no tenant or booking reference")
		return nil, fmt.Errorf("%w: payment %s", apperrors.ErrUnresolvable, n.PaymentID)
	}

	result = &ReconcileResult{
		PaymentID: payment.IDString(),
		TenantID:  tenantID,
		BookingID: bookingID,
		Status:    payment.Status,
	}

	state, ok := applicableState(payment.Status)
	if !ok {
		logger.Info().Str("status", payment.Status).Msg("payment status does not change booking state")
		result.Outcome = OutcomeIgnoredStatus
		return result, nil
	}
	result.State = string(state)

	now := s.now().UTC()
	applied, err := s.bookings.ApplyPayment(ctx, tenantID, bookingID, state, domain.PaymentMeta{
		ProviderPaymentID: payment.IDString(),
		Amount:            payment.TransactionAmount,
		Status:            payment.Status,
		UpdatedAt:         now,
	})
	if errors.Is(err, domain.ErrBookingNotFound) {
		return nil, fmt.Errorf("%w: booking %s of tenant %s does not exist", apperrors.ErrUnresolvable, bookingID, tenantID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply payment to booking: %w", err)
	}
	if !applied {
		logger.Info().
			Str("tenantID", tenantID).
			Str("bookingID", bookingID).
			Str("status", payment.Status).
			Msg("booking already past this state or bound to another payment, skipping")
		result.Outcome = OutcomeStale
		return result, nil
	}

	err = s.audits.UpsertPaymentAudit(ctx, &domain.PaymentAudit{
		ProviderPaymentID: payment.IDString(),
		TenantID:          tenantID,
		BookingID:         bookingID,
		Amount:            payment.TransactionAmount,
		Status:            payment.Status,
		StatusDetail:      payment.StatusDetail,
		LiveMode:          payment.LiveMode,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write payment audit: %w", err)
	}

	audit.Log("webhook_service", audit.ActionBookingPaymentSet, tenantID, bookingID,
		fmt.Sprintf("payment=%s status=%s", payment.IDString(), payment.Status), true, nil)
	logger.Info().
		Str("tenantID", tenantID).
		Str("bookingID", bookingID).
		Str("state", string(state)).
		Msg("booking payment state updated")

	result.Outcome = OutcomeApplied
	return result, nil
}

// resolve reads the payment with the platform credential and then, once the owning
// tenant is known, with the tenant's own credential. The tenant read wins when it
// succeeds. A tenant named only by the notification URL hint is trusted only if its
// credential could read the payment.
func (s *WebhookService) resolve(ctx context.Context, logger zerolog.Logger, n Notification) (*mercadopago.Payment, string, error) {
	var payment *mercadopago.Payment
	// transient holds a failure that may clear on redelivery. It only matters
	// when nothing else could resolve the payment or its tenant.
	var transient error

	if s.cfg.PlatformAccessToken != "" {
		p, err := s.provider.GetPayment(ctx, s.cfg.PlatformAccessToken, n.PaymentID)
		switch {
		case err == nil:
			payment = p
		case apperrors.IsTransient(err):
			logger.Warn().Err(err).Msg("platform credential failed to read payment")
			transient = err
		default:
			logger.Debug().Err(err).Msg("platform credential could not read payment")
		}
	}

	var tenantID string
	if payment != nil {
		tenantID = payment.MetadataString("tenant_id", "tenantId")
	}
	fromMetadata := tenantID != ""
	if !fromMetadata {
		tenantID = n.TenantHint
	}
	if tenantID == "" {
		return payment, "", transient
	}

	cred, err := s.credentials.Get(ctx, tenantID)
	switch {
	case errors.Is(err, domain.ErrCredentialNotFound):
		logger.Debug().Str("tenantID", tenantID).Msg("tenant has no credential for payment re-fetch")
	case err != nil:
		logger.Warn().Err(err).Str("tenantID", tenantID).Msg("failed to load tenant credential")
		transient = err
	default:
		p, err := s.provider.GetPayment(ctx, cred.AccessToken, n.PaymentID)
		if err != nil {
			if apperrors.IsTransient(err) {
				transient = err
			}
			logger.Debug().Err(err).Str("tenantID", tenantID).Msg("tenant credential could not read payment")
			break
		}
		payment = p
		if t := p.MetadataString("tenant_id", "tenantId"); t != "" {
			tenantID = t
		}
		return payment, tenantID, nil
	}

	if !fromMetadata {
		return payment, "", transient
	}
	return payment, tenantID, nil
}

// applicableState maps the provider statuses the reconciler writes. Anything
// else (pending, rejected, refunded...) leaves the booking untouched.
func applicableState(status string) (domain.PaymentState, bool) {
	switch status {
	case domain.ProviderStatusApproved, domain.ProviderStatusInProcess:
		return domain.PaymentStateFromProvider(status)
	default:
		return "", false
	}
}

func recordWebhook(result *ReconcileResult, err error) {
	outcome := "error"
	switch {
	case err == nil && result != nil:
		outcome = string(result.Outcome)
	case errors.Is(err, apperrors.ErrInvalidSignature):
		outcome = "invalid_signature"
	case errors.Is(err, apperrors.ErrBadRequest):
		outcome = "bad_request"
	case errors.Is(err, apperrors.ErrUnresolvable):
		outcome = "unresolvable"
	case errors.Is(err, apperrors.ErrPaymentNotFound):
		outcome = "payment_not_found"
	}
	metrics.WebhooksReceivedTotal.WithLabelValues(outcome).Inc()
}
