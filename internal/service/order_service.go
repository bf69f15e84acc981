package service

import (
	"context"
	"fmt"

	"checkout-engine/internal/model"
	"checkout-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// ListAwaitingPreference lists gateway orders in the recoverable partial-success state.
// The limit is clamped to [1, 500]; zero or negative selects the default of 50.
func (s *orderService) ListAwaitingPreference(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	orders, err := s.orderRepo.ListAwaitingPreference(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Msg("failed to list orders awaiting preference")
		return nil, fmt.Errorf("failed to list orders awaiting preference: %w", err)
	}

	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}
