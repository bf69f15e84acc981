package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order and payment statuses.
const (
	OrderStatusPending   = "pending"
	PaymentStatusPending = "pending"
)

// Order represents a customer order.
type Order struct {
	ID                uuid.UUID            `json:"id"`
	Status            string               `json:"status"`
	PaymentStatus     string               `json:"paymentStatus"`
	PaymentMethod     PaymentMethod        `json:"paymentMethod"`
	CustomerID        uuid.UUID            `json:"customerId"`
	Customer          CustomerSnapshot     `json:"customer"`
	Items             []OrderLineItem      `json:"items"`
	Total             decimal.Decimal      `json:"total"`
	Currency          string               `json:"currency"`
	Fulfillment       *FulfillmentMetadata `json:"fulfillment,omitempty"`
	PreferenceID      *string              `json:"preferenceId,omitempty"`
	ExternalReference *string              `json:"externalReference,omitempty"`
	PaymentURL        *string              `json:"paymentUrl,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// CustomerSnapshot is the customer identity as it was at purchase time.
// It is never refreshed from the customer profile.
type CustomerSnapshot struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// OrderLineItem represents a priced line in an order.
type OrderLineItem struct {
	ItemType  ItemType        `json:"itemType"`
	RefID     string          `json:"refId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	Image     *string         `json:"image,omitempty"`
}

// FulfillmentMetadata describes how and where an order will be fulfilled.
type FulfillmentMetadata struct {
	OrderType             *OrderType `json:"orderType,omitempty"`
	Sede                  *Site      `json:"sede,omitempty"`
	PickupLocations       []string   `json:"pickupLocations,omitempty"`
	HasGifts              bool       `json:"hasGifts,omitempty"`
	HasProductsWithPickup bool       `json:"hasProductsWithPickup,omitempty"`
}

// IsEmpty reports whether no fulfillment signal was inferred.
func (m *FulfillmentMetadata) IsEmpty() bool {
	if m == nil {
		return true
	}
	return m.OrderType == nil &&
		m.Sede == nil &&
		len(m.PickupLocations) == 0 &&
		!m.HasGifts &&
		!m.HasProductsWithPickup
}

// OrderPatch holds the fields that may change after creation.
// Nil fields are left untouched.
type OrderPatch struct {
	PreferenceID      *string
	ExternalReference *string
	PaymentURL        *string
}

// AwaitsPreference reports whether the order is a gateway order still missing its
// payment preference.
func (o *Order) AwaitsPreference() bool {
	return o.PaymentMethod.IsElectronic() &&
		o.Status == OrderStatusPending &&
		o.PaymentStatus == PaymentStatusPending &&
		o.PreferenceID == nil
}
