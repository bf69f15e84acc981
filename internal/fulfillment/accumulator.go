package fulfillment

import (
	"slices"
	"strings"

	"checkout-engine/internal/model"
)

// Accumulator collects fulfillment signals while rules run over the cart.
// Sites from explicit affinity rank ahead of sites inferred from free text; within each
// tier insertion order is kept.
type Accumulator struct {
	OrderType             *model.OrderType
	HasGifts              bool
	HasProductsWithPickup bool

	affine   []model.Site
	inferred []model.Site
	pickup   map[string]struct{}
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{pickup: make(map[string]struct{})}
}

// MarkPresentialCourse sets the order type to presentialCourse.
func (a *Accumulator) MarkPresentialCourse() {
	t := model.OrderTypePresentialCourse
	a.OrderType = &t
}

// AddAffineSite records a site taken from a record's site affinity field.
func (a *Accumulator) AddAffineSite(s model.Site) {
	if slices.Contains(a.affine, s) {
		return
	}
	a.affine = append(a.affine, s)
	a.inferred = slices.DeleteFunc(a.inferred, func(x model.Site) bool { return x == s })
}

// AddInferredSite records a site found by scanning pickup text.
func (a *Accumulator) AddInferredSite(s model.Site) {
	if slices.Contains(a.affine, s) || slices.Contains(a.inferred, s) {
		return
	}
	a.inferred = append(a.inferred, s)
}

// AddPickupLocation adds a trimmed, non-empty pickup location.
func (a *Accumulator) AddPickupLocation(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	a.pickup[text] = struct{}{}
}

// Sites returns the accumulated sites, affine ones first. The tie-break is therefore
// not pure insertion order: a text-inferred site seen earlier ranks after a later affine one.
func (a *Accumulator) Sites() []model.Site {
	out := make([]model.Site, 0, len(a.affine)+len(a.inferred))
	out = append(out, a.affine...)
	return append(out, a.inferred...)
}

// PickupLocations returns the pickup locations sorted lexically.
func (a *Accumulator) PickupLocations() []string {
	out := make([]string, 0, len(a.pickup))
	for loc := range a.pickup {
		out = append(out, loc)
	}
	slices.Sort(out)
	return out
}

// CanonicalSite picks one site: the sole accumulated site, else a valid hint, else the
// first accumulated site.
func (a *Accumulator) CanonicalSite(hint *model.Site) *model.Site {
	sites := a.Sites()
	if len(sites) == 1 {
		return &sites[0]
	}
	if hint != nil && hint.IsValid() {
		h := *hint
		return &h
	}
	if len(sites) > 0 {
		return &sites[0]
	}
	return nil
}

func (a *Accumulator) hasSignal() bool {
	return a.OrderType != nil || a.HasGifts || a.HasProductsWithPickup
}
