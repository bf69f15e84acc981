// Package fulfillment infers how and where an order will be fulfilled from the
// catalog records of its physical items.
package fulfillment

import (
	"slices"

	"checkout-engine/internal/catalog"
	"checkout-engine/internal/model"
)

// Hints are the caller-supplied fulfillment values. They only fill gaps left by catalog
// data and never override it.
type Hints struct {
	Sede      *string
	OrderType *string
}

// Resolver runs an ordered rule list over a priced cart.
type Resolver struct {
	rules []Rule
}

// NewResolver creates a resolver. Without rules it uses DefaultRules.
func NewResolver(rules ...Rule) *Resolver {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b Rule) int { return a.Priority() - b.Priority() })
	return &Resolver{rules: sorted}
}

// Rules returns the rules in the order they run.
func (r *Resolver) Rules() []Rule {
	return slices.Clone(r.rules)
}

// Resolve returns the fulfillment metadata for the given lines, or nil when none applies.
// Any digital-course line suppresses inference entirely.
func (r *Resolver) Resolve(lines []model.OrderLineItem, lookup *catalog.Lookup, hints Hints) *model.FulfillmentMetadata {
	for _, line := range lines {
		if line.ItemType == model.ItemTypeDigitalCourse {
			return nil
		}
	}

	acc := NewAccumulator()
	for _, line := range lines {
		item, ok := lookup.Physical[line.RefID]
		if !ok {
			continue
		}
		for _, rule := range r.rules {
			rule.Apply(item, acc)
		}
	}

	if !acc.hasSignal() {
		return nil
	}

	meta := &model.FulfillmentMetadata{
		OrderType:             acc.OrderType,
		Sede:                  acc.CanonicalSite(hintSite(hints.Sede)),
		HasGifts:              acc.HasGifts,
		HasProductsWithPickup: acc.HasProductsWithPickup,
	}
	if locs := acc.PickupLocations(); len(locs) > 0 {
		meta.PickupLocations = locs
	}
	if meta.OrderType == nil && hints.OrderType != nil && model.OrderType(*hints.OrderType) == model.OrderTypePresentialCourse {
		t := model.OrderTypePresentialCourse
		meta.OrderType = &t
	}

	if meta.IsEmpty() {
		return nil
	}
	return meta
}

func hintSite(raw *string) *model.Site {
	if raw == nil {
		return nil
	}
	site, ok := model.ParseSite(*raw)
	if !ok {
		return nil
	}
	return &site
}
