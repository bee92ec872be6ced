package overlay

import (
	"image"
	"testing"
	"time"

	"fashioncam/crops"
	"fashioncam/enrichment"
)

func pricedFixture(n int) []enrichment.PricedItem {
	items := make([]enrichment.PricedItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, enrichment.PricedItem{
			CroppedItem: crops.CroppedItem{
				ItemClass: "watch",
				BBox:      image.Rect(10*i, 20, 10*i+40, 60),
			},
			PriceRange: "$500 – $5,000",
		})
	}
	return items
}

func TestScheduleWindowPlacement(t *testing.T) {
	d := 1800 * time.Millisecond
	windows := Schedule(pricedFixture(4), d)
	if len(windows) != 4 {
		t.Fatalf("got %d windows, want 4", len(windows))
	}
	for i, w := range windows {
		wantStart := time.Duration(i) * d
		if w.Start != wantStart || w.End != wantStart+d {
			t.Errorf("window %d = [%v,%v), want [%v,%v)", i, w.Start, w.End, wantStart, wantStart+d)
		}
	}
}

func TestScheduleWindowsDisjoint(t *testing.T) {
	windows := Schedule(pricedFixture(5), 1800*time.Millisecond)
	for i := range windows {
		for j := range windows {
			if i == j {
				continue
			}
			if windows[i].Start < windows[j].End && windows[j].Start < windows[i].End {
				t.Errorf("windows %d and %d overlap", i, j)
			}
		}
	}
}

func TestScheduleAnchorAndHighlight(t *testing.T) {
	items := pricedFixture(1)
	w := Schedule(items, time.Second)[0]
	if w.Highlight != items[0].BBox {
		t.Errorf("highlight = %v, want item bbox %v", w.Highlight, items[0].BBox)
	}
	wantAnchor := image.Pt(20, 40)
	if w.Anchor != wantAnchor {
		t.Errorf("anchor = %v, want bbox center %v", w.Anchor, wantAnchor)
	}
}

func TestScheduleLabelText(t *testing.T) {
	w := Schedule(pricedFixture(1), time.Second)[0]
	want := "Watch: $500 – $5,000"
	if w.Label != want {
		t.Errorf("label = %q, want %q", w.Label, want)
	}
}

func TestScheduleEmptyInput(t *testing.T) {
	if windows := Schedule(nil, time.Second); len(windows) != 0 {
		t.Errorf("expected no windows, got %d", len(windows))
	}
}
