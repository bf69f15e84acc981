package payment

import (
	"fmt"
	"time"

	"checkout-engine/internal/model"
)

var siteLabels = map[model.Site]string{
	model.SiteAlmagro:      "Almagro",
	model.SiteCiudadJardin: "Ciudad Jardín",
}

// Instructions returns the customer-facing text for an offline payment method.
// It returns an empty string for the electronic gateway.
func Instructions(method model.PaymentMethod, site *model.Site, window time.Duration) string {
	hours := int(window.Hours())
	where := "at the studio"
	if site != nil {
		if label, ok := siteLabels[*site]; ok {
			where = "at our " + label + " site"
		}
	}

	switch method {
	case model.PaymentMethodCash:
		return fmt.Sprintf("Your order is reserved for %d hours. Pay in cash %s to confirm it; unpaid orders are released after that.", hours, where)
	case model.PaymentMethodTransfer:
		return fmt.Sprintf("Your order is reserved for %d hours. Send the bank transfer and share the receipt quoting your order number; pick up %s once it is confirmed.", hours, where)
	}
	return ""
}
