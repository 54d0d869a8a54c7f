package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agendateonline/agendate/domain"
	apperrors "github.com/agendateonline/agendate/errors"
	"github.com/agendateonline/agendate/internal/audit"
	"github.com/agendateonline/agendate/internal/metrics"
	"github.com/agendateonline/agendate/tracing"
	"github.com/rs/zerolog/log"
)

// sandboxTokenPrefix marks test-user access tokens.
const sandboxTokenPrefix = "TEST-"

// OAuthService links a tenant's Mercado Pago account through the authorization
// code flow. The OAuth state parameter is the tenant id.
type OAuthService struct {
	tenants     domain.TenantRepository
	credentials domain.CredentialRepository
	provider    TokenProvider
	now         func() time.Time
}

// NewOAuthService creates a new OAuthService.
func NewOAuthService(tenants domain.TenantRepository, credentials domain.CredentialRepository, provider TokenProvider) *OAuthService {
	return &OAuthService{
		tenants:     tenants,
		credentials: credentials,
		provider:    provider,
		now:         time.Now,
	}
}

// AuthorizationURL returns the provider consent URL for tenantID.
func (s *OAuthService) AuthorizationURL(ctx context.Context, tenantID string) (string, error) {
	if err := s.requireTenant(ctx, tenantID); err != nil {
		return "", err
	}
	return s.provider.AuthCodeURL(tenantID), nil
}

// CompleteAuthorization exchanges code for the tenant's credential and stores it,
// replacing any credential linked before.
func (s *OAuthService) CompleteAuthorization(ctx context.Context, tenantID, code string) (cred *domain.Credential, err error) {
	ctx, span := tracing.Start(ctx, "OAuthService.CompleteAuthorization", tenantID)
	defer func() {
		tracing.End(span, err)
		result := "success"
		if err != nil {
			result = "failure"
		}
		metrics.AccountsLinkedTotal.WithLabelValues(result).Inc()
	}()

	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: missing authorization code", apperrors.ErrBadRequest)
	}
	if err := s.requireTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	tokens, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("tenantID", tenantID).Msg("authorization code exchange failed")
		audit.Log("oauth_service", audit.ActionCredentialLinked, tenantID, "", "", false, err)
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTokenExchangeFailed, err)
	}

	cred = &domain.Credential{
		TenantID:     tenantID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		UserID:       tokens.UserID,
		PublicKey:    tokens.PublicKey,
		LiveMode:     !strings.HasPrefix(tokens.AccessToken, sandboxTokenPrefix),
		Scope:        tokens.Scope,
		ExpiresAt:    tokens.Expiry,
		UpdatedAt:    s.now().UTC(),
	}
	if tokens.LiveMode != nil {
		cred.LiveMode = *tokens.LiveMode
	}

	if cred.UserID == "" {
		user, err := s.provider.GetUser(ctx, tokens.AccessToken)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("tenantID", tenantID).Msg("could not resolve provider user id")
		} else {
			cred.UserID = strconv.FormatInt(user.ID, 10)
		}
	}

	if err := s.credentials.Put(ctx, tenantID, cred); err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}

	audit.Log("oauth_service", audit.ActionCredentialLinked, tenantID, cred.UserID, "", true, nil)
	log.Ctx(ctx).Info().Str("tenantID", tenantID).Str("userID", cred.UserID).Bool("liveMode", cred.LiveMode).Msg("payment account linked")

	return cred, nil
}

func (s *OAuthService) requireTenant(ctx context.Context, tenantID string) error {
	if strings.TrimSpace(tenantID) == "" {
		return fmt.Errorf("%w: missing tenant id", apperrors.ErrBadRequest)
	}
	exists, err := s.tenants.TenantExists(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to look up tenant: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", apperrors.ErrTenantNotFound, tenantID)
	}
	return nil
}
