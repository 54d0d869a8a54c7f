package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/agendateonline/agendate/domain"
	apperrors "github.com/agendateonline/agendate/errors"
	"github.com/agendateonline/agendate/mercadopago"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOAuthService_CompleteAuthorization(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown tenant", func(t *testing.T) {
		tenants := new(MockTenantRepository)
		creds := new(MockCredentialRepository)
		provider := new(MockTokenProvider)
		svc := NewOAuthService(tenants, creds, provider)

		tenants.On("TenantExists", mock.Anything, "ghost").Return(false, nil).Once()

		_, err := svc.CompleteAuthorization(ctx, "ghost", "code-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrTenantNotFound)
		provider.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
		creds.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing code", func(t *testing.T) {
		svc := NewOAuthService(new(MockTenantRepository), new(MockCredentialRepository), new(MockTokenProvider))

		_, err := svc.CompleteAuthorization(ctx, "t-1", "")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("Success", func(t *testing.T) {
		tenants := new(MockTenantRepository)
		creds := new(MockCredentialRepository)
		provider := new(MockTokenProvider)
		svc := NewOAuthService(tenants, creds, provider)

		live := true
		tenants.On("TenantExists", mock.Anything, "t-1").Return(true, nil).Once()
		provider.On("ExchangeCode", mock.Anything, "code-1").Return(&mercadopago.TokenSet{
			AccessToken:  "APP_USR-access",
			RefreshToken: "TG-refresh",
			UserID:       "987",
			PublicKey:    "APP_USR-public",
			LiveMode:     &live,
		}, nil).Once()
		creds.On("Put", mock.Anything, "t-1", mock.AnythingOfType("*domain.Credential")).Run(func(args mock.Arguments) {
			cred := args.Get(2).(*domain.Credential)
			assert.Equal(t, "t-1", cred.TenantID)
			assert.Equal(t, "APP_USR-access", cred.AccessToken)
			assert.Equal(t, "TG-refresh", cred.RefreshToken)
			assert.Equal(t, "987", cred.UserID)
			assert.Equal(t, "APP_USR-public", cred.PublicKey)
			assert.True(t, cred.LiveMode)
			assert.False(t, cred.UpdatedAt.IsZero())
		}).Return(nil).Once()

		cred, err := svc.CompleteAuthorization(ctx, "t-1", "code-1")
		require.NoError(t, err)
		assert.Equal(t, "987", cred.UserID)
		provider.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
		creds.AssertExpectations(t)
	})

	t.Run("User id looked up when absent", func(t *testing.T) {
		tenants := new(MockTenantRepository)
		creds := new(MockCredentialRepository)
		provider := new(MockTokenProvider)
		svc := NewOAuthService(tenants, creds, provider)

		tenants.On("TenantExists", mock.Anything, "t-1").Return(true, nil).Once()
		provider.On("ExchangeCode", mock.Anything, "code-1").Return(&mercadopago.TokenSet{
			AccessToken:  "TEST-access",
			RefreshToken: "TG-refresh",
		}, nil).Once()
		provider.On("GetUser", mock.Anything, "TEST-access").Return(&mercadopago.User{ID: 4242}, nil).Once()
		creds.On("Put", mock.Anything, "t-1", mock.Anything).Return(nil).Once()

		cred, err := svc.CompleteAuthorization(ctx, "t-1", "code-1")
		require.NoError(t, err)
		assert.Equal(t, "4242", cred.UserID)
		assert.False(t, cred.LiveMode)
	})

	t.Run("Exchange failure", func(t *testing.T) {
		tenants := new(MockTenantRepository)
		creds := new(MockCredentialRepository)
		provider := new(MockTokenProvider)
		svc := NewOAuthService(tenants, creds, provider)

		tenants.On("TenantExists", mock.Anything, "t-1").Return(true, nil).Once()
		provider.On("ExchangeCode", mock.Anything, "used-code").Return(nil,
			apperrors.NewProviderError(http.StatusBadRequest, apperrors.InvalidGrant, "code already used", nil)).Once()

		_, err := svc.CompleteAuthorization(ctx, "t-1", "used-code")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrTokenExchangeFailed)
		_, ok := apperrors.AsProviderError(err)
		assert.True(t, ok)
		creds.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Tenant lookup failure", func(t *testing.T) {
		tenants := new(MockTenantRepository)
		svc := NewOAuthService(tenants, new(MockCredentialRepository), new(MockTokenProvider))

		tenants.On("TenantExists", mock.Anything, "t-1").Return(false, errors.New("db down")).Once()

		_, err := svc.CompleteAuthorization(ctx, "t-1", "code-1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrTenantNotFound)
	})
}

func TestOAuthService_AuthorizationURL(t *testing.T) {
	tenants := new(MockTenantRepository)
	provider := new(MockTokenProvider)
	svc := NewOAuthService(tenants, new(MockCredentialRepository), provider)

	tenants.On("TenantExists", mock.Anything, "t-1").Return(true, nil).Once()
	provider.On("AuthCodeURL", "t-1").Return("https://auth.mercadopago.com/authorization?state=t-1").Once()

	u, err := svc.AuthorizationURL(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Contains(t, u, "state=t-1")

	_, err = svc.AuthorizationURL(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}
