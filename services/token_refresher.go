package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agendateonline/agendate/domain"
	apperrors "github.com/agendateonline/agendate/errors"
	"github.com/agendateonline/agendate/internal/audit"
	"github.com/agendateonline/agendate/internal/metrics"
	"github.com/agendateonline/agendate/mercadopago"
	"github.com/agendateonline/agendate/tracing"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// TokenRefresher exchanges a tenant's refresh token for a new credential set.
type TokenRefresher struct {
	credentials domain.CredentialRepository
	provider    TokenProvider
	group       singleflight.Group
	now         func() time.Time
}

// freshCredentialReader is implemented by caching repositories that can bypass
// their cache. Another replica may have rotated the refresh token since the
// entry was cached, and spending a rotated token makes the provider answer
// invalid_grant.
type freshCredentialReader interface {
	GetFresh(ctx context.Context, tenantID string) (*domain.Credential, error)
}

// NewTokenRefresher creates a new TokenRefresher.
func NewTokenRefresher(credentials domain.CredentialRepository, provider TokenProvider) *TokenRefresher {
	return &TokenRefresher{
		credentials: credentials,
		provider:    provider,
		now:         time.Now,
	}
}

// Refresh renews the tenant's credential and persists it. Concurrent calls for the
// same tenant share one provider round trip.
//
// A provider refusal is returned as ErrProviderRejected wrapping the
// *errors.ProviderError; when the refusal is invalid_grant the stored credential
// is deleted first, so the tenant shows as unlinked. The credential is only
// deleted while it still holds the refused token.
func (r *TokenRefresher) Refresh(ctx context.Context, tenantID string) (*domain.Credential, error) {
	// The shared refresh outlives any single caller.
	sharedCtx := context.WithoutCancel(ctx)
	v, err, shared := r.group.Do(tenantID, func() (any, error) {
		return r.refresh(sharedCtx, tenantID)
	})
	if shared {
		log.Ctx(ctx).Debug().Str("tenantID", tenantID).Msg("joined in-flight credential refresh")
	}
	if err != nil {
		return nil, err
	}
	return v.(*domain.Credential), nil
}

func (r *TokenRefresher) refresh(ctx context.Context, tenantID string) (cred *domain.Credential, err error) {
	ctx, span := tracing.Start(ctx, "TokenRefresher.Refresh", tenantID)
	defer func() { tracing.End(span, err) }()

	current, err := r.load(ctx, tenantID)
	if errors.Is(err, domain.ErrCredentialNotFound) {
		metrics.TokensRefreshedTotal.WithLabelValues("no_credential").Inc()
		return nil, fmt.Errorf("%w: tenant %s", apperrors.ErrNoCredential, tenantID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if current.RefreshToken == "" {
		metrics.TokensRefreshedTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: no refresh token stored for tenant %s", apperrors.ErrProviderRejected, tenantID)
	}

	tokens, err := r.provider.RefreshToken(ctx, current.RefreshToken)
	if err != nil {
		return r.rejected(ctx, tenantID, current.RefreshToken, err)
	}

	next := mergeCredential(current, tokens, r.now())
	next.TenantID = tenantID
	if err := r.credentials.Put(ctx, tenantID, next); err != nil {
		metrics.TokensRefreshedTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("failed to store refreshed credential: %w", err)
	}

	metrics.TokensRefreshedTotal.WithLabelValues("success").Inc()
	audit.Log("token_refresher", audit.ActionCredentialRefreshed, tenantID, next.UserID, "", true, nil)
	log.Ctx(ctx).Info().Str("tenantID", tenantID).Msg("credential refreshed")

	return next, nil
}

func (r *TokenRefresher) load(ctx context.Context, tenantID string) (*domain.Credential, error) {
	if fresh, ok := r.credentials.(freshCredentialReader); ok {
		return fresh.GetFresh(ctx, tenantID)
	}
	return r.credentials.Get(ctx, tenantID)
}

func (r *TokenRefresher) rejected(ctx context.Context, tenantID, refused string, cause error) (*domain.Credential, error) {
	logger := log.Ctx(ctx)
	rejectedErr := fmt.Errorf("%w: %w", apperrors.ErrProviderRejected, cause)

	if !apperrors.IsInvalidGrant(cause) {
		metrics.TokensRefreshedTotal.WithLabelValues("rejected").Inc()
		logger.Warn().Err(cause).Str("tenantID", tenantID).Msg("credential refresh failed")
		return nil, rejectedErr
	}

	stored, err := r.load(ctx, tenantID)
	switch {
	case errors.Is(err, domain.ErrCredentialNotFound):
		metrics.TokensRefreshedTotal.WithLabelValues("revoked").Inc()
		logger.Warn().Err(cause).Str("tenantID", tenantID).Msg("refresh token revoked by provider, credential already gone")
		return nil, rejectedErr
	case err != nil:
		metrics.TokensRefreshedTotal.WithLabelValues("rejected").Inc()
		logger.Error().Err(err).Str("tenantID", tenantID).Msg("failed to recheck credential after invalid_grant, keeping it")
		return nil, rejectedErr
	case stored.RefreshToken != refused:
		// Rotated by someone else while this refresh was in flight.
		metrics.TokensRefreshedTotal.WithLabelValues("rotated_elsewhere").Inc()
		logger.Info().Str("tenantID", tenantID).Msg("credential was rotated concurrently, keeping it")
		return stored, nil
	}

	if err := r.credentials.Delete(ctx, tenantID); err != nil {
		logger.Error().Err(err).Str("tenantID", tenantID).Msg("failed to delete revoked credential")
	} else {
		audit.Log("token_refresher", audit.ActionCredentialRevoked, tenantID, "", "invalid_grant", true, nil)
	}
	metrics.TokensRefreshedTotal.WithLabelValues("revoked").Inc()
	logger.Warn().Err(cause).Str("tenantID", tenantID).Msg("refresh token revoked by provider, credential deleted")

	return nil, rejectedErr
}

// mergeCredential builds the credential that replaces current after a refresh.
// Fields the provider omitted keep their previous values.
func mergeCredential(current *domain.Credential, tokens *mercadopago.TokenSet, now time.Time) *domain.Credential {
	next := &domain.Credential{
		TenantID:     current.TenantID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: firstNonEmpty(tokens.RefreshToken, current.RefreshToken),
		UserID:       firstNonEmpty(tokens.UserID, current.UserID),
		PublicKey:    firstNonEmpty(tokens.PublicKey, current.PublicKey),
		LiveMode:     current.LiveMode,
		Scope:        firstNonEmpty(tokens.Scope, current.Scope),
		ExpiresAt:    tokens.Expiry,
		UpdatedAt:    now.UTC(),
	}
	if tokens.LiveMode != nil {
		next.LiveMode = *tokens.LiveMode
	}
	return next
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
