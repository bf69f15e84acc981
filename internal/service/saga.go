package service

import (
	"checkout-engine/internal/catalog"
	"checkout-engine/internal/model"
	"checkout-engine/internal/payment"
	"checkout-engine/internal/pricing"

	"github.com/google/uuid"
)

// SagaState is the furthest point a checkout reached.
type SagaState string

const (
	// StateOrderCreated means the order is persisted and no gateway work is needed or done yet.
	StateOrderCreated SagaState = "order_created"
	// StatePreferencePending means the order exists but has no payment preference.
	// RetryPreference can resume from here.
	StatePreferencePending SagaState = "preference_pending"
	StateCompleted         SagaState = "completed"
)

// Saga step names, used in logs, errors and metrics.
const (
	StepUpsertCustomer   = "upsert_customer"
	StepCreateOrder      = "create_order"
	StepCreatePreference = "create_preference"
	StepAttachPreference = "attach_preference"
)

// CheckoutResult is the outcome of a successful checkout or retry.
// Exactly one of Gateway and Pickup is set.
type CheckoutResult struct {
	OrderID uuid.UUID
	State   SagaState
	Gateway *model.GatewayCheckoutResponse
	Pickup  *model.PickupCheckoutResponse
}

// checkoutSaga carries the data produced by each step.
type checkoutSaga struct {
	req         *model.CheckoutRequest
	lookup      *catalog.Lookup
	cart        *pricing.PricedCart
	fulfillment *model.FulfillmentMetadata
	customer    *model.Customer
	order       *model.Order
	preference  *payment.Preference
	state       SagaState
}

func (s *checkoutSaga) orderID() string {
	if s.order == nil {
		return ""
	}
	return s.order.ID.String()
}
