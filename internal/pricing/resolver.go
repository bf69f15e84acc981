package pricing

import (
	"checkout-engine/internal/catalog"
	"checkout-engine/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SkippedItem is a requested item whose catalog record could not be resolved.
type SkippedItem struct {
	Index     int
	ItemType  model.ItemType
	CatalogID string
}

// PricedCart is the result of pricing a checkout request.
type PricedCart struct {
	Items   []model.OrderLineItem
	Total   decimal.Decimal
	Skipped []SkippedItem
}

// Resolver computes unit prices and line totals.
type Resolver struct {
	rules  *QuantityRules
	logger zerolog.Logger
}

// NewResolver creates a pricing resolver. A nil rule table falls back to the defaults.
func NewResolver(rules *QuantityRules, logger zerolog.Logger) *Resolver {
	if rules == nil {
		rules = DefaultQuantityRules()
	}
	return &Resolver{
		rules:  rules,
		logger: logger.With().Str("component", "pricing").Logger(),
	}
}

// Resolve prices every requested item in submission order.
// Items missing from the lookup are skipped; when nothing remains the cart is rejected
// with model.ErrCartEmptyAfterResolution.
func (r *Resolver) Resolve(req *model.CheckoutRequest, lookup *catalog.Lookup) (*PricedCart, error) {
	cart := &PricedCart{
		Items: make([]model.OrderLineItem, 0, len(req.Items)),
		Total: decimal.Zero,
	}

	for i, item := range req.Items {
		line, ok := r.priceItem(item, req.PaymentMethod, lookup)
		if !ok {
			r.logger.Warn().
				Int("item_index", i).
				Str("item_type", string(item.ItemType)).
				Str("catalog_id", item.CatalogID).
				Msg("catalog record not found, skipping item")
			cart.Skipped = append(cart.Skipped, SkippedItem{
				Index:     i,
				ItemType:  item.ItemType,
				CatalogID: item.CatalogID,
			})
			continue
		}

		cart.Items = append(cart.Items, line)
		cart.Total = cart.Total.Add(line.LineTotal)
	}

	if len(cart.Items) == 0 {
		return nil, model.ErrCartEmptyAfterResolution
	}

	return cart, nil
}

func (r *Resolver) priceItem(item model.CheckoutItemRequest, method model.PaymentMethod, lookup *catalog.Lookup) (model.OrderLineItem, bool) {
	qty := decimal.NewFromInt(int64(item.Quantity))

	switch item.ItemType {
	case model.ItemTypePhysical:
		rec, ok := lookup.Physical[item.CatalogID]
		if !ok {
			return model.OrderLineItem{}, false
		}

		unit := UnitPrice(rec, method)
		total := unit.Mul(qty)
		if r.rules.IncludesQuantity(rec.Category, rec.Unit) {
			total = unit
		}

		return model.OrderLineItem{
			ItemType:  model.ItemTypePhysical,
			RefID:     rec.ID,
			Name:      rec.Name,
			Quantity:  item.Quantity,
			UnitPrice: unit,
			LineTotal: total,
			Image:     rec.FirstImage(),
		}, true

	case model.ItemTypeDigitalCourse:
		rec, ok := lookup.Courses[item.CatalogID]
		if !ok {
			return model.OrderLineItem{}, false
		}

		// Courses carry no price field yet; they are recorded at zero.
		return model.OrderLineItem{
			ItemType:  model.ItemTypeDigitalCourse,
			RefID:     rec.ID,
			Name:      rec.Title,
			Quantity:  item.Quantity,
			UnitPrice: decimal.Zero,
			LineTotal: decimal.Zero,
		}, true
	}

	return model.OrderLineItem{}, false
}

// UnitPrice returns the tier price for the payment method, falling back to the base
// price, then the legacy price, then zero.
func UnitPrice(rec model.PhysicalItem, method model.PaymentMethod) decimal.Decimal {
	tier := rec.PriceOther
	if method == model.PaymentMethodCash {
		tier = rec.PriceCash
	}

	for _, p := range []*decimal.Decimal{tier, rec.Price, rec.LegacyPrice} {
		if p != nil {
			return *p
		}
	}
	return decimal.Zero
}
