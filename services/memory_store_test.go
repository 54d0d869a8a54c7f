package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/agendateonline/agendate/domain"
	apperrors "github.com/agendateonline/agendate/errors"
	"github.com/agendateonline/agendate/mercadopago"
)

// memoryCredentials is a shared credential backend for tests that need real
// read-after-write behaviour across components.
type memoryCredentials struct {
	mu   sync.Mutex
	data map[string]domain.Credential
}

func newMemoryCredentials() *memoryCredentials {
	return &memoryCredentials{data: map[string]domain.Credential{}}
}

func (m *memoryCredentials) Get(_ context.Context, tenantID string) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.data[tenantID]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return &cred, nil
}

func (m *memoryCredentials) Put(_ context.Context, tenantID string, cred *domain.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[tenantID] = *cred
	return nil
}

func (m *memoryCredentials) Delete(_ context.Context, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, tenantID)
	return nil
}

// rotatingTokenProvider accepts only the latest refresh token it issued and
// rotates it on every refresh, the way the provider does.
type rotatingTokenProvider struct {
	mu      sync.Mutex
	current string
	issued  int
}

func (p *rotatingTokenProvider) AuthCodeURL(string) string { return "" }

func (p *rotatingTokenProvider) ExchangeCode(context.Context, string) (*mercadopago.TokenSet, error) {
	return nil, errors.New("not supported")
}

func (p *rotatingTokenProvider) GetUser(context.Context, string) (*mercadopago.User, error) {
	return nil, errors.New("not supported")
}

func (p *rotatingTokenProvider) RefreshToken(_ context.Context, refreshToken string) (*mercadopago.TokenSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if refreshToken != p.current {
		return nil, apperrors.NewProviderError(http.StatusBadRequest, apperrors.InvalidGrant, "invalid refresh_token", nil)
	}
	p.issued++
	p.current = fmt.Sprintf("TG-%d", p.issued)
	return &mercadopago.TokenSet{
		AccessToken:  fmt.Sprintf("APP_USR-%d", p.issued),
		RefreshToken: p.current,
	}, nil
}
