package services

import (
	"context"

	"github.com/agendateonline/agendate/domain"
	"github.com/agendateonline/agendate/mercadopago"
)

// PaymentProvider is the payments side of the provider API. *mercadopago.Client
// implements it.
type PaymentProvider interface {
	CreatePayment(ctx context.Context, accessToken string, req *mercadopago.PaymentRequest) (*mercadopago.Payment, error)
	GetPayment(ctx context.Context, accessToken, paymentID string) (*mercadopago.Payment, error)
	CreatePreference(ctx context.Context, accessToken string, req *mercadopago.PreferenceRequest) (*mercadopago.Preference, error)
}

// TokenProvider is the OAuth side of the provider API.
type TokenProvider interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*mercadopago.TokenSet, error)
	RefreshToken(ctx context.Context, refreshToken string) (*mercadopago.TokenSet, error)
	GetUser(ctx context.Context, accessToken string) (*mercadopago.User, error)
}

// CredentialRefresher renews a tenant's access token.
type CredentialRefresher interface {
	Refresh(ctx context.Context, tenantID string) (*domain.Credential, error)
}

var (
	_ PaymentProvider     = (*mercadopago.Client)(nil)
	_ TokenProvider       = (*mercadopago.Client)(nil)
	_ CredentialRefresher = (*TokenRefresher)(nil)
)
