package services

import (
	"context"

	"github.com/agendateonline/agendate/domain"
	"github.com/agendateonline/agendate/mercadopago"
	"github.com/stretchr/testify/mock"
)

// --- Mock Implementations ---

type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) Get(ctx context.Context, tenantID string) (*domain.Credential, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}
func (m *MockCredentialRepository) Put(ctx context.Context, tenantID string, cred *domain.Credential) error {
	args := m.Called(ctx, tenantID, cred)
	return args.Error(0)
}
func (m *MockCredentialRepository) Delete(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}
func (m *MockTenantRepository) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	args := m.Called(ctx, tenantID)
	return args.Bool(0), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) GetBooking(ctx context.Context, tenantID, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, tenantID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepository) ApplyPayment(ctx context.Context, tenantID, bookingID string, state domain.PaymentState, meta domain.PaymentMeta) (bool, error) {
	args := m.Called(ctx, tenantID, bookingID, state, meta)
	return args.Bool(0), args.Error(1)
}

type MockPaymentAuditRepository struct {
	mock.Mock
}

func (m *MockPaymentAuditRepository) UpsertPaymentAudit(ctx context.Context, entry *domain.PaymentAudit) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreatePayment(ctx context.Context, accessToken string, req *mercadopago.PaymentRequest) (*mercadopago.Payment, error) {
	args := m.Called(ctx, accessToken, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mercadopago.Payment), args.Error(1)
}
func (m *MockPaymentProvider) GetPayment(ctx context.Context, accessToken, paymentID string) (*mercadopago.Payment, error) {
	args := m.Called(ctx, accessToken, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mercadopago.Payment), args.Error(1)
}
func (m *MockPaymentProvider) CreatePreference(ctx context.Context, accessToken string, req *mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	args := m.Called(ctx, accessToken, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mercadopago.Preference), args.Error(1)
}

type MockTokenProvider struct {
	mock.Mock
}

func (m *MockTokenProvider) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}
func (m *MockTokenProvider) ExchangeCode(ctx context.Context, code string) (*mercadopago.TokenSet, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mercadopago.TokenSet), args.Error(1)
}
func (m *MockTokenProvider) RefreshToken(ctx context.Context, refreshToken string) (*mercadopago.TokenSet, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mercadopago.TokenSet), args.Error(1)
}
func (m *MockTokenProvider) GetUser(ctx context.Context, accessToken string) (*mercadopago.User, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mercadopago.User), args.Error(1)
}

type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) Refresh(ctx context.Context, tenantID string) (*domain.Credential, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}
