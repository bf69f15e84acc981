package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"checkout-engine/internal/config"
	"checkout-engine/internal/fulfillment"
	"checkout-engine/internal/metrics"
	"checkout-engine/internal/model"
	"checkout-engine/internal/payment"
	"checkout-engine/internal/pricing"
	"checkout-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService as a short saga:
// upsert_customer, create_order, then create_preference and attach_preference for
// gateway payments. Completed steps are never compensated.
type checkoutService struct {
	loader    CatalogLoader
	pricer    *pricing.Resolver
	fulfiller *fulfillment.Resolver
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	gateway   payment.Gateway
	cfg       config.CheckoutConfig
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	loader CatalogLoader,
	pricer *pricing.Resolver,
	fulfiller *fulfillment.Resolver,
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	gateway payment.Gateway,
	cfg config.CheckoutConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		loader:    loader,
		pricer:    pricer,
		fulfiller: fulfiller,
		customers: customers,
		orders:    orders,
		gateway:   gateway,
		cfg:       cfg,
		metrics:   m,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout runs the full checkout for a request.
func (s *checkoutService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*CheckoutResult, error) {
	if err := validateCheckoutRequest(req); err != nil {
		s.logger.Warn().Err(err).Msg("rejected checkout request")
		s.countCheckout(req, "invalid")
		return nil, err
	}

	saga := &checkoutSaga{req: req}

	lookup, err := s.loader.Load(ctx, req.Items)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load catalog records")
		s.countCheckout(req, "error")
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	saga.lookup = lookup

	cart, err := s.pricer.Resolve(req, lookup)
	if err != nil {
		s.logger.Warn().Err(err).Int("item_count", len(req.Items)).Msg("no requested item could be priced")
		s.countSkipped(len(req.Items))
		s.countCheckout(req, "empty_cart")
		return nil, err
	}
	s.countSkipped(len(cart.Skipped))
	saga.cart = cart

	saga.fulfillment = s.fulfiller.Resolve(cart.Items, lookup, fulfillment.Hints{
		Sede:      req.Sede,
		OrderType: req.OrderType,
	})

	if err := s.runStep(ctx, saga, StepUpsertCustomer, s.upsertCustomer); err != nil {
		s.countCheckout(req, "error")
		return nil, err
	}
	if err := s.runStep(ctx, saga, StepCreateOrder, s.createOrder); err != nil {
		s.countCheckout(req, "error")
		return nil, err
	}
	saga.state = StateOrderCreated

	if !req.PaymentMethod.IsElectronic() {
		saga.state = StateCompleted
		s.countCheckout(req, "pickup")
		return s.pickupResult(saga), nil
	}

	result, err := s.dispatchToGateway(ctx, saga)
	if err != nil {
		s.countCheckout(req, "preference_failed")
		return nil, err
	}
	s.countCheckout(req, "gateway")
	return result, nil
}

// RetryPreference resumes a gateway order from StatePreferencePending.
// An order that already has a preference is returned as is.
func (s *checkoutService) RetryPreference(ctx context.Context, orderID uuid.UUID) (*CheckoutResult, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order for retry")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if !order.PaymentMethod.IsElectronic() || order.Status != model.OrderStatusPending || order.PaymentStatus != model.PaymentStatusPending {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("payment_method", string(order.PaymentMethod)).
			Str("status", order.Status).
			Str("payment_status", order.PaymentStatus).
			Msg("order cannot be retried")
		return nil, model.ErrOrderNotRetryable
	}

	if order.PreferenceID != nil && order.PaymentURL != nil {
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("preference_id", *order.PreferenceID).
			Msg("preference already attached")
		return gatewayResult(order.ID, *order.PreferenceID, *order.PaymentURL), nil
	}

	saga := &checkoutSaga{
		order:       order,
		fulfillment: order.Fulfillment,
		state:       StatePreferencePending,
	}
	return s.dispatchToGateway(ctx, saga)
}

func (s *checkoutService) dispatchToGateway(ctx context.Context, saga *checkoutSaga) (*CheckoutResult, error) {
	saga.state = StatePreferencePending

	if err := s.runStep(ctx, saga, StepCreatePreference, s.createPreference); err != nil {
		return nil, model.PreferenceCreationFailed(saga.order.ID, err)
	}
	if err := s.runStep(ctx, saga, StepAttachPreference, s.attachPreference); err != nil {
		return nil, model.PreferenceCreationFailed(saga.order.ID, err)
	}
	saga.state = StateCompleted

	s.logger.Info().
		Str("order_id", saga.orderID()).
		Str("preference_id", saga.preference.ID).
		Msg("checkout completed through payment gateway")

	return gatewayResult(saga.order.ID, saga.preference.ID, saga.preference.InitPoint), nil
}

// runStep executes one saga step, logging and counting failures.
func (s *checkoutService) runStep(ctx context.Context, saga *checkoutSaga, name string, step func(context.Context, *checkoutSaga) error) error {
	if err := step(ctx, saga); err != nil {
		event := s.logger.Error().
			Err(err).
			Str("step", name).
			Str("state", string(saga.state))
		if id := saga.orderID(); id != "" {
			event = event.Str("order_id", id)
		}
		if saga.req != nil {
			event = event.Str("payment_method", string(saga.req.PaymentMethod))
		}
		event.Msg("checkout step failed")

		if s.metrics != nil {
			s.metrics.StepFailures.WithLabelValues(name).Inc()
		}

		var de *model.DomainError
		if errors.As(err, &de) {
			return err
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (s *checkoutService) upsertCustomer(ctx context.Context, saga *checkoutSaga) error {
	c := saga.req.Customer
	customer, err := s.customers.Upsert(ctx,
		strings.ToLower(strings.TrimSpace(c.Email)),
		strings.TrimSpace(c.Name),
		c.Phone,
	)
	if err != nil {
		return err
	}
	saga.customer = customer
	return nil
}

func (s *checkoutService) createOrder(ctx context.Context, saga *checkoutSaga) error {
	order := &model.Order{
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: saga.req.PaymentMethod,
		CustomerID:    saga.customer.ID,
		Customer: model.CustomerSnapshot{
			Name:  saga.customer.Name,
			Email: saga.customer.Email,
			Phone: saga.req.Customer.Phone,
		},
		Items:       saga.cart.Items,
		Total:       saga.cart.Total,
		Currency:    s.cfg.Currency,
		Fulfillment: saga.fulfillment,
	}

	id, err := s.orders.Create(ctx, order)
	if err != nil {
		return err
	}
	order.ID = id
	saga.order = order

	s.logger.Info().
		Str("order_id", id.String()).
		Str("payment_method", string(order.PaymentMethod)).
		Str("total", order.Total.String()).
		Int("item_count", len(order.Items)).
		Msg("order created")

	return nil
}

func (s *checkoutService) createPreference(ctx context.Context, saga *checkoutSaga) error {
	var site *model.Site
	if saga.fulfillment != nil {
		site = saga.fulfillment.Sede
	}

	pref, err := s.gateway.CreatePreference(ctx, payment.PreferenceRequest{
		OrderID: saga.order.ID,
		Items:   saga.order.Items,
		Payer: payment.Payer{
			Name:  saga.order.Customer.Name,
			Email: saga.order.Customer.Email,
			Phone: saga.order.Customer.Phone,
		},
		Site:     site,
		Currency: saga.order.Currency,
	})
	if err != nil {
		return err
	}
	saga.preference = pref
	return nil
}

func (s *checkoutService) attachPreference(ctx context.Context, saga *checkoutSaga) error {
	ref := saga.order.ID.String()
	return s.orders.Update(ctx, saga.order.ID, model.OrderPatch{
		PreferenceID:      &saga.preference.ID,
		ExternalReference: &ref,
		PaymentURL:        &saga.preference.InitPoint,
	})
}

func (s *checkoutService) pickupResult(saga *checkoutSaga) *CheckoutResult {
	order := saga.order

	var site *model.Site
	if order.Fulfillment != nil {
		site = order.Fulfillment.Sede
	}

	return &CheckoutResult{
		OrderID: order.ID,
		State:   saga.state,
		Pickup: &model.PickupCheckoutResponse{
			OrderID: order.ID.String(),
			Order: model.OrderSummary{
				Items:         order.Items,
				Total:         order.Total.StringFixed(2),
				Currency:      order.Currency,
				PaymentMethod: order.PaymentMethod,
				Fulfillment:   order.Fulfillment,
			},
			Instructions: payment.Instructions(order.PaymentMethod, site, s.cfg.ReservationWindow),
		},
	}
}

func gatewayResult(orderID uuid.UUID, preferenceID, paymentURL string) *CheckoutResult {
	return &CheckoutResult{
		OrderID: orderID,
		State:   StateCompleted,
		Gateway: &model.GatewayCheckoutResponse{
			OrderID:      orderID.String(),
			PaymentURL:   paymentURL,
			PreferenceID: preferenceID,
		},
	}
}

func (s *checkoutService) countCheckout(req *model.CheckoutRequest, outcome string) {
	if s.metrics == nil {
		return
	}
	method := "unknown"
	if req != nil && req.PaymentMethod.IsValid() {
		method = string(req.PaymentMethod)
	}
	s.metrics.Checkouts.WithLabelValues(method, outcome).Inc()
}

func (s *checkoutService) countSkipped(n int) {
	if s.metrics != nil && n > 0 {
		s.metrics.SkippedItems.Add(float64(n))
	}
}
