package service

import (
	"fmt"
	"net/mail"
	"strings"

	"checkout-engine/internal/model"
)

// validateCheckoutRequest rejects malformed requests before any read or write.
func validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return model.InvalidCheckoutRequest("checkout request is required")
	}

	if req.Customer == nil {
		return model.InvalidCheckoutRequest("customer is required")
	}
	if strings.TrimSpace(req.Customer.Name) == "" {
		return model.InvalidCheckoutRequest("customer name is required")
	}
	email := strings.TrimSpace(req.Customer.Email)
	if email == "" {
		return model.InvalidCheckoutRequest("customer email is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return model.InvalidCheckoutRequest("customer email is invalid")
	}

	if len(req.Items) == 0 {
		return model.InvalidCheckoutRequest("at least one item is required")
	}
	for i, item := range req.Items {
		if !item.ItemType.IsValid() {
			return model.InvalidCheckoutRequest(fmt.Sprintf("item %d: unknown item type %q", i, item.ItemType))
		}
		if strings.TrimSpace(item.CatalogID) == "" {
			return model.InvalidCheckoutRequest(fmt.Sprintf("item %d: catalog id is required", i))
		}
		if item.Quantity < 1 {
			return model.InvalidCheckoutRequest(fmt.Sprintf("item %d: quantity must be at least 1", i))
		}
	}

	if !req.PaymentMethod.IsValid() {
		return model.InvalidCheckoutRequest(fmt.Sprintf("unknown payment method %q", req.PaymentMethod))
	}

	return nil
}
