package fulfillment

import (
	"strings"

	"checkout-engine/internal/model"
)

// Rule inspects one physical catalog record and records what it implies.
type Rule interface {
	Name() string
	// Priority orders rules; lower runs first.
	Priority() int
	Apply(item model.PhysicalItem, acc *Accumulator)
}

// DefaultRules returns the built-in rule list in priority order.
func DefaultRules() []Rule {
	return []Rule{
		GiftNameRule{Keywords: DefaultGiftKeywords},
		SiteAffinityRule{},
		PickupTextRule{},
	}
}

// DefaultGiftKeywords are matched against the lower-cased product name.
var DefaultGiftKeywords = []string{"gift", "regalo", "obsequio"}

// GiftNameRule flags gifts by product name.
type GiftNameRule struct {
	Keywords []string
}

func (GiftNameRule) Name() string  { return "gift_name" }
func (GiftNameRule) Priority() int { return 10 }

func (r GiftNameRule) Apply(item model.PhysicalItem, acc *Accumulator) {
	name := strings.ToLower(item.Name)
	for _, kw := range r.Keywords {
		if strings.Contains(name, kw) {
			acc.HasGifts = true
			return
		}
	}
}

// SiteAffinityRule handles records bound to a recognised site.
// It marks the order as a presential course and keeps any pickup text alongside.
type SiteAffinityRule struct{}

func (SiteAffinityRule) Name() string  { return "site_affinity" }
func (SiteAffinityRule) Priority() int { return 20 }

func (SiteAffinityRule) Apply(item model.PhysicalItem, acc *Accumulator) {
	site, ok := affineSite(item)
	if !ok {
		return
	}

	acc.MarkPresentialCourse()
	acc.AddAffineSite(site)
	if item.LocationText != nil {
		acc.AddPickupLocation(*item.LocationText)
	}
}

// PickupTextRule handles pickup text on records without a recognised site affinity.
// Site names found in the text are added as inferred sites.
type PickupTextRule struct{}

func (PickupTextRule) Name() string  { return "pickup_text" }
func (PickupTextRule) Priority() int { return 30 }

func (PickupTextRule) Apply(item model.PhysicalItem, acc *Accumulator) {
	if _, ok := affineSite(item); ok {
		return
	}
	if item.LocationText == nil || strings.TrimSpace(*item.LocationText) == "" {
		return
	}

	acc.HasProductsWithPickup = true
	acc.AddPickupLocation(*item.LocationText)
	for _, site := range SitesInText(*item.LocationText) {
		acc.AddInferredSite(site)
	}
}

func affineSite(item model.PhysicalItem) (model.Site, bool) {
	if item.Sede == nil {
		return "", false
	}
	return model.ParseSite(*item.Sede)
}

var siteNames = map[model.Site][]string{
	model.SiteAlmagro:      {"almagro"},
	model.SiteCiudadJardin: {"ciudad jardin", "ciudad jardín", "ciudad-jardin", "ciudad-jardín"},
}

// SitesInText returns the known sites mentioned in free text, in canonical site order.
func SitesInText(text string) []model.Site {
	lower := strings.ToLower(text)

	var found []model.Site
	for _, site := range model.KnownSites {
		for _, name := range siteNames[site] {
			if strings.Contains(lower, name) {
				found = append(found, site)
				break
			}
		}
	}
	return found
}
