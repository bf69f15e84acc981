package model

import "strings"

// PaymentMethod identifies how the customer intends to pay.
type PaymentMethod string

const (
	PaymentMethodMercadoPago PaymentMethod = "mercadopago"
	PaymentMethodCash        PaymentMethod = "cash"
	PaymentMethodTransfer    PaymentMethod = "transfer"
)

// IsValid reports whether m is one of the recognised payment methods.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodMercadoPago, PaymentMethodCash, PaymentMethodTransfer:
		return true
	}
	return false
}

// IsElectronic reports whether m goes through the external payment gateway.
func (m PaymentMethod) IsElectronic() bool {
	return m == PaymentMethodMercadoPago
}

// ItemType distinguishes the two purchasable catalog collections.
type ItemType string

const (
	ItemTypePhysical      ItemType = "physical"
	ItemTypeDigitalCourse ItemType = "digitalCourse"
)

// IsValid reports whether t is a known item type.
func (t ItemType) IsValid() bool {
	return t == ItemTypePhysical || t == ItemTypeDigitalCourse
}

// Site is one of the physical pickup locations (sede).
type Site string

const (
	SiteAlmagro      Site = "almagro"
	SiteCiudadJardin Site = "ciudad-jardin"
)

// KnownSites lists the recognised sites in canonical order.
var KnownSites = []Site{SiteAlmagro, SiteCiudadJardin}

// IsValid reports whether s is a recognised site.
func (s Site) IsValid() bool {
	for _, known := range KnownSites {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSite normalises raw catalog or request input into a Site.
// The second return value is false when the input is not a recognised site.
func ParseSite(raw string) (Site, bool) {
	s := Site(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", false
	}
	return s, true
}

// OrderType classifies how an order is fulfilled.
type OrderType string

const (
	OrderTypePresentialCourse OrderType = "presentialCourse"
)

// CheckoutRequest represents the request payload for a checkout.
type CheckoutRequest struct {
	Customer      *CustomerInfo         `json:"customer"`
	Items         []CheckoutItemRequest `json:"items"`
	PaymentMethod PaymentMethod         `json:"paymentMethod"`
	// Sede and OrderType are caller hints; catalog-derived values take precedence.
	Sede      *string `json:"sede,omitempty"`
	OrderType *string `json:"orderType,omitempty"`
}

// CustomerInfo carries the buyer identity submitted with a checkout.
type CustomerInfo struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// CheckoutItemRequest represents a single requested item.
type CheckoutItemRequest struct {
	ItemType  ItemType `json:"itemType"`
	CatalogID string   `json:"catalogId"`
	Quantity  int      `json:"quantity"`
}

// GatewayCheckoutResponse is returned when the customer pays through the payment gateway.
type GatewayCheckoutResponse struct {
	OrderID      string `json:"orderId"`
	PaymentURL   string `json:"paymentUrl"`
	PreferenceID string `json:"preferenceId"`
}

// PickupCheckoutResponse is returned for cash and transfer payments.
type PickupCheckoutResponse struct {
	OrderID      string       `json:"orderId"`
	Order        OrderSummary `json:"order"`
	Instructions string       `json:"instructions"`
}

// OrderSummary is the customer-facing view of a freshly created order.
type OrderSummary struct {
	Items         []OrderLineItem      `json:"items"`
	Total         string               `json:"total"`
	Currency      string               `json:"currency"`
	PaymentMethod PaymentMethod        `json:"paymentMethod"`
	Fulfillment   *FulfillmentMetadata `json:"fulfillment,omitempty"`
}
