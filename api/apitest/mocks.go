// Package apitest provides testify mocks of the services behind the HTTP routes.
package apitest

import (
	"context"

	"github.com/agendateonline/agendate/domain"
	"github.com/agendateonline/agendate/services"
	"github.com/stretchr/testify/mock"
)

type MockPaymentCreator struct {
	mock.Mock
}

func (m *MockPaymentCreator) CreatePayment(ctx context.Context, intent *domain.PaymentIntent) (*domain.PaymentResult, error) {
	args := m.Called(ctx, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}

func (m *MockPaymentCreator) CreatePreference(ctx context.Context, intent *domain.PaymentIntent) (*domain.PaymentResult, error) {
	args := m.Called(ctx, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, n services.Notification) (*services.ReconcileResult, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ReconcileResult), args.Error(1)
}

type MockAccountLinker struct {
	mock.Mock
}

func (m *MockAccountLinker) AuthorizationURL(ctx context.Context, tenantID string) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockAccountLinker) CompleteAuthorization(ctx context.Context, tenantID, code string) (*domain.Credential, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}
