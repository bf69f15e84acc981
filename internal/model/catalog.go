package model

import "github.com/shopspring/decimal"

// PhysicalItem is a catalog record for a shippable or pickup product.
// Price fields are nullable because catalog data predates the tiered pricing.
type PhysicalItem struct {
	ID           string
	Name         string
	Category     string
	Unit         string
	Price        *decimal.Decimal
	PriceCash    *decimal.Decimal
	PriceOther   *decimal.Decimal
	LegacyPrice  *decimal.Decimal
	Images       []string
	Sede         *string
	LocationText *string
}

// FirstImage returns the first image URL, if any.
func (p PhysicalItem) FirstImage() *string {
	if len(p.Images) == 0 || p.Images[0] == "" {
		return nil
	}
	img := p.Images[0]
	return &img
}

// DigitalCourse is a catalog record for an online course.
type DigitalCourse struct {
	ID    string
	Title string
}
