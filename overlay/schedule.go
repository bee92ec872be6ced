// Package overlay turns priced items into a time-sequenced annotation track
// and renders it onto the output video.
package overlay

import (
	"fmt"
	"image"
	"strings"
	"time"

	"fashioncam/enrichment"
	"fashioncam/pkg/geometry"
)

// Window is one scheduled overlay instance: a time extent plus the geometry
// and text needed to draw it.
type Window struct {
	Start     time.Duration
	End       time.Duration
	Anchor    image.Point     // bbox center of the priced item
	Label     string          // display text
	Highlight image.Rectangle // the item's bbox
}

// Schedule assigns each item a sequential, non-overlapping slot of
// displayDuration on the output timeline, in input order. Item i occupies
// [i*D, (i+1)*D); the track is not trimmed to the source video's length.
func Schedule(items []enrichment.PricedItem, displayDuration time.Duration) []Window {
	windows := make([]Window, 0, len(items))

	for i, item := range items {
		start := time.Duration(i) * displayDuration
		windows = append(windows, Window{
			Start:     start,
			End:       start + displayDuration,
			Anchor:    geometry.Center(item.BBox),
			Label:     buildLabel(item),
			Highlight: item.BBox,
		})
	}

	return windows
}

func buildLabel(item enrichment.PricedItem) string {
	return fmt.Sprintf("%s: %s", titleCase(item.ItemClass), item.PriceRange)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
