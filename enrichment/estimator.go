package enrichment

import (
	"fashioncam/crops"
	"fashioncam/logging"
)

// Estimation reasons. Confidence stands in for prominence here: a high
// confidence detection is assumed luxury. This is a documented heuristic,
// not brand recognition.
const (
	ReasonNoRules        = "no_rules_for_item"
	ReasonHighConfidence = "high_confidence_detection"
	ReasonLowConfidence  = "low_confidence_detection"
)

// PricedItem is an accepted cropped item plus its price estimate.
// Immutable once produced.
type PricedItem struct {
	crops.CroppedItem

	PriceRange       string
	Luxury           bool
	EstimationReason string
}

// Estimator attaches price estimates from an explicitly constructed rule
// table. There is no ambient global table: callers pass the rules in.
type Estimator struct {
	rules         RuleTable
	defaultRange  string
	confidenceMin float64
	log           *logging.Logger
}

// NewEstimator builds an estimator. A nil rules table falls back to the
// baked-in defaults.
func NewEstimator(rules RuleTable, defaultRange string, confidenceMin float64, log *logging.Logger) *Estimator {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Estimator{
		rules:         rules,
		defaultRange:  defaultRange,
		confidenceMin: confidenceMin,
		log:           log,
	}
}

// EstimatePrices attaches a price estimate to every item. The result
// preserves input order and never drops or adds items.
func (e *Estimator) EstimatePrices(items []crops.CroppedItem) []PricedItem {
	priced := make([]PricedItem, 0, len(items))

	for _, item := range items {
		priceRange, luxury, reason := e.estimate(item.ItemClass, item.Confidence)
		priced = append(priced, PricedItem{
			CroppedItem:      item,
			PriceRange:       priceRange,
			Luxury:           luxury,
			EstimationReason: reason,
		})
	}

	e.log.Info("price-estimator", "estimated prices for %d items", len(priced))
	return priced
}

func (e *Estimator) estimate(category string, confidence float64) (string, bool, string) {
	rule, ok := e.rules.Lookup(category)
	if !ok {
		e.log.Warn("price-estimator", "no price rules for category %q, using default range", category)
		return e.defaultRange, false, ReasonNoRules
	}

	if confidence >= e.confidenceMin {
		return rule.LuxuryRange, true, ReasonHighConfidence
	}
	return rule.RegularRange, false, ReasonLowConfidence
}
