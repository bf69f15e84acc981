package pricing

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleKey identifies a (category, unit) pair in the quantity rule table.
type RuleKey struct {
	Category string `yaml:"category"`
	Unit     string `yaml:"unit"`
}

func (k RuleKey) normalise() RuleKey {
	return RuleKey{
		Category: strings.ToLower(strings.TrimSpace(k.Category)),
		Unit:     strings.ToLower(strings.TrimSpace(k.Unit)),
	}
}

// QuantityRules records the catalog conventions whose stored price already covers the
// requested quantity, so the line total must not be multiplied again.
type QuantityRules struct {
	included map[RuleKey]struct{}
}

// NewQuantityRules builds a rule table from the given keys.
func NewQuantityRules(keys ...RuleKey) *QuantityRules {
	r := &QuantityRules{included: make(map[RuleKey]struct{}, len(keys))}
	for _, k := range keys {
		r.included[k.normalise()] = struct{}{}
	}
	return r
}

// DefaultQuantityRules returns the built-in table.
// Bulk clay and glaze lots are priced for the whole requested amount.
func DefaultQuantityRules() *QuantityRules {
	return NewQuantityRules(
		RuleKey{Category: "arcillas", Unit: "kg"},
		RuleKey{Category: "esmaltes", Unit: "lote"},
	)
}

// IncludesQuantity reports whether a record's price already embeds the quantity.
func (r *QuantityRules) IncludesQuantity(category, unit string) bool {
	if r == nil {
		return false
	}
	_, ok := r.included[RuleKey{Category: category, Unit: unit}.normalise()]
	return ok
}

// Len returns the number of entries in the table.
func (r *QuantityRules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.included)
}

// ruleFile is the YAML document format of a quantity rule file.
type ruleFile struct {
	QuantityIncluded []RuleKey `yaml:"quantity_included"`
}

// ParseQuantityRules decodes a YAML rule file.
func ParseQuantityRules(data []byte) (*QuantityRules, error) {
	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode quantity rules: %w", err)
	}

	for i, k := range doc.QuantityIncluded {
		n := k.normalise()
		if n.Category == "" || n.Unit == "" {
			return nil, fmt.Errorf("quantity rule %d: category and unit are required", i)
		}
	}

	return NewQuantityRules(doc.QuantityIncluded...), nil
}
