package enrichment

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"fashioncam/crops"
	"fashioncam/logging"
)

const testDefaultRange = "$500 – $5,000"

func testEstimator() *Estimator {
	return NewEstimator(nil, testDefaultRange, 0.6, logging.New(logging.SILENT, io.Discard, false))
}

func TestEstimateHighConfidenceLuxury(t *testing.T) {
	priced := testEstimator().EstimatePrices([]crops.CroppedItem{
		{ID: "watch_0", ItemClass: "watch", Confidence: 0.75},
	})
	if len(priced) != 1 {
		t.Fatalf("got %d items, want 1", len(priced))
	}
	p := priced[0]
	if !p.Luxury {
		t.Error("confidence 0.75 should be luxury")
	}
	if p.PriceRange != DefaultRules()["watch"].LuxuryRange {
		t.Errorf("range = %q, want the watch luxury range", p.PriceRange)
	}
	if p.EstimationReason != ReasonHighConfidence {
		t.Errorf("reason = %q, want %q", p.EstimationReason, ReasonHighConfidence)
	}
}

func TestEstimateLowConfidenceRegular(t *testing.T) {
	priced := testEstimator().EstimatePrices([]crops.CroppedItem{
		{ID: "watch_0", ItemClass: "watch", Confidence: 0.3},
	})
	p := priced[0]
	if p.Luxury {
		t.Error("confidence 0.3 should not be luxury")
	}
	if p.PriceRange != DefaultRules()["watch"].RegularRange {
		t.Errorf("range = %q, want the watch regular range", p.PriceRange)
	}
	if p.EstimationReason != ReasonLowConfidence {
		t.Errorf("reason = %q, want %q", p.EstimationReason, ReasonLowConfidence)
	}
}

func TestEstimateUnknownCategory(t *testing.T) {
	priced := testEstimator().EstimatePrices([]crops.CroppedItem{
		{ID: "hat_0", ItemClass: "hat", Confidence: 0.9},
	})
	p := priced[0]
	if p.Luxury {
		t.Error("unknown category is never luxury")
	}
	if p.PriceRange != testDefaultRange {
		t.Errorf("range = %q, want default range", p.PriceRange)
	}
	if p.EstimationReason != ReasonNoRules {
		t.Errorf("reason = %q, want %q", p.EstimationReason, ReasonNoRules)
	}
}

func TestEstimateCaseInsensitiveLookup(t *testing.T) {
	priced := testEstimator().EstimatePrices([]crops.CroppedItem{
		{ID: "watch_0", ItemClass: "Watch", Confidence: 0.9},
	})
	if priced[0].EstimationReason == ReasonNoRules {
		t.Error("lookup should be case-insensitive")
	}
}

func TestEstimatePreservesOrderAndCount(t *testing.T) {
	items := []crops.CroppedItem{
		{ID: "watch_0", ItemClass: "watch", Confidence: 0.9},
		{ID: "shoe_0", ItemClass: "shoe", Confidence: 0.2},
		{ID: "hat_0", ItemClass: "hat", Confidence: 0.5},
	}
	priced := testEstimator().EstimatePrices(items)
	if len(priced) != len(items) {
		t.Fatalf("got %d items, want %d", len(priced), len(items))
	}
	for i := range items {
		if priced[i].ID != items[i].ID {
			t.Errorf("item %d reordered: %q", i, priced[i].ID)
		}
	}
}

func TestEstimateBoundaryConfidence(t *testing.T) {
	// Exactly at the threshold counts as luxury.
	priced := testEstimator().EstimatePrices([]crops.CroppedItem{
		{ID: "ring_0", ItemClass: "ring", Confidence: 0.6},
	})
	if !priced[0].Luxury {
		t.Error("confidence equal to the threshold should be luxury")
	}
}

func TestLoadRulesOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	data := `{"Hat": {"luxury_range": "$2,000 – $20,000", "regular_range": "$20 – $200"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	rule, ok := rules.Lookup("HAT")
	if !ok {
		t.Fatal("expected rule for hat after lowercase normalization")
	}
	if rule.RegularRange != "$20 – $200" {
		t.Errorf("regular range = %q", rule.RegularRange)
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing rules file")
	}
}
