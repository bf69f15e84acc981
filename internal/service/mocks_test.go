package service

import (
	"context"

	"checkout-engine/internal/catalog"
	"checkout-engine/internal/model"
	"checkout-engine/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCatalogLoader is a mock implementation of CatalogLoader.
type MockCatalogLoader struct {
	mock.Mock
}

func (m *MockCatalogLoader) Load(ctx context.Context, items []model.CheckoutItemRequest) (*catalog.Lookup, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Lookup), args.Error(1)
}

// MockCustomerRepository is a mock implementation of CustomerRepository.
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Upsert(ctx context.Context, email, name string, phone *string) (*model.Customer, error) {
	args := m.Called(ctx, email, name, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *model.Order) (uuid.UUID, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, id uuid.UUID, patch model.OrderPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListAwaitingPreference(ctx context.Context, limit int) ([]model.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePreference(ctx context.Context, req payment.PreferenceRequest) (*payment.Preference, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Preference), args.Error(1)
}
