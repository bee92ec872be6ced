// Package enrichment attaches price estimates to quality-accepted items
// using a static rule table keyed by item category.
package enrichment

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// PriceRule holds the two price bands for one item category.
type PriceRule struct {
	LuxuryRange    string   `json:"luxury_range"`
	RegularRange   string   `json:"regular_range"`
	LuxuryKeywords []string `json:"luxury_keywords,omitempty"`
}

// RuleTable maps lowercase item categories to price rules.
type RuleTable map[string]PriceRule

// DefaultRules returns the baked-in fallback table used when no rules file
// is configured or the configured file cannot be read.
func DefaultRules() RuleTable {
	return RuleTable{
		"watch": {
			LuxuryRange:    "$15,000 – $300,000",
			RegularRange:   "$500 – $5,000",
			LuxuryKeywords: []string{"rolex", "patek", "audemars", "richard mille"},
		},
		"shoe": {
			LuxuryRange:    "$1,000 – $10,000",
			RegularRange:   "$150 – $800",
			LuxuryKeywords: []string{"louboutin", "gucci", "balenciaga"},
		},
		"necklace": {
			LuxuryRange:    "$5,000 – $250,000",
			RegularRange:   "$200 – $3,000",
			LuxuryKeywords: []string{"cartier", "tiffany", "bvlgari"},
		},
		"ring": {
			LuxuryRange:    "$8,000 – $500,000",
			RegularRange:   "$300 – $4,000",
			LuxuryKeywords: []string{"cartier", "harry winston"},
		},
		"bracelet": {
			LuxuryRange:    "$3,000 – $120,000",
			RegularRange:   "$150 – $2,500",
			LuxuryKeywords: []string{"cartier", "van cleef"},
		},
	}
}

// LoadRules reads a rule table from a JSON file. Category keys are
// normalized to lowercase.
func LoadRules(path string) (RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var raw map[string]PriceRule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	table := make(RuleTable, len(raw))
	for category, rule := range raw {
		table[strings.ToLower(category)] = rule
	}
	return table, nil
}

// Lookup finds the rule for a category, case-insensitively.
func (t RuleTable) Lookup(category string) (PriceRule, bool) {
	rule, ok := t[strings.ToLower(category)]
	return rule, ok
}
