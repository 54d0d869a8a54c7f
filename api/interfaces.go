package api

import (
	"context"

	"github.com/agendateonline/agendate/domain"
	"github.com/agendateonline/agendate/services"
)

// PaymentCreator starts payments. *services.PaymentService implements it.
type PaymentCreator interface {
	CreatePayment(ctx context.Context, intent *domain.PaymentIntent) (*domain.PaymentResult, error)
	CreatePreference(ctx context.Context, intent *domain.PaymentIntent) (*domain.PaymentResult, error)
}

// Reconciler handles webhook notifications.
type Reconciler interface {
	Reconcile(ctx context.Context, n services.Notification) (*services.ReconcileResult, error)
}

// AccountLinker runs the OAuth account linking flow.
type AccountLinker interface {
	AuthorizationURL(ctx context.Context, tenantID string) (string, error)
	CompleteAuthorization(ctx context.Context, tenantID, code string) (*domain.Credential, error)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handlers bundles the services behind the HTTP routes.
type Handlers struct {
	Payments PaymentCreator
	Webhooks Reconciler
	Accounts AccountLinker
	Health   HealthCheck

	// FrontendOrigin is the postMessage target origin of the OAuth popup page.
	FrontendOrigin string
}

var (
	_ PaymentCreator = (*services.PaymentService)(nil)
	_ Reconciler     = (*services.WebhookService)(nil)
	_ AccountLinker  = (*services.OAuthService)(nil)
)
