// Package tracking merges per-frame detections of the same physical item
// into unique items. This is deliberate deduplication, not motion tracking:
// there is no motion model and no track identity across gaps.
package tracking

import (
	"fmt"
	"image"

	"fashioncam/detection"
	"fashioncam/logging"
	"fashioncam/pkg/geometry"
)

// Strategy names the clustering algorithm in use so an alternative can be
// substituted without touching callers.
type Strategy string

const (
	// StrategyGreedyAnchorIOU matches each detection against the first
	// (anchor) member of each existing cluster, joining the first cluster
	// whose anchor overlaps at or above the IOU threshold.
	StrategyGreedyAnchorIOU Strategy = "greedy-anchor-iou"
)

// UniqueItem is the deduplicated representative of one or more detections
// believed to be the same physical object. Identity fields (ID, ItemClass,
// BBox) are fixed at creation; auxiliary stages extend the record via
// WithFaceCrop rather than mutating it.
type UniqueItem struct {
	ID         string // "{class}_{clusterIndex}", stable for a given input order
	ItemClass  string
	BestFrame  string // frame of the max-confidence cluster member
	Confidence float64
	BBox       image.Rectangle
	FramesSeen int // cluster size, always >= 1

	FaceCrop string // optional, attached for person items
}

// WithFaceCrop returns a copy of the item with a face crop path attached.
func (u UniqueItem) WithFaceCrop(path string) UniqueItem {
	u.FaceCrop = path
	return u
}

// Clusterer groups detections of the same class into unique items.
type Clusterer struct {
	strategy     Strategy
	iouThreshold float64
	log          *logging.Logger
}

// NewClusterer builds a clusterer for the named strategy. Only
// StrategyGreedyAnchorIOU is implemented today.
func NewClusterer(strategy Strategy, iouThreshold float64, log *logging.Logger) (*Clusterer, error) {
	if strategy != StrategyGreedyAnchorIOU {
		return nil, fmt.Errorf("unknown clustering strategy %q", strategy)
	}
	if iouThreshold <= 0 || iouThreshold > 1 {
		return nil, fmt.Errorf("iou threshold %f outside (0,1]", iouThreshold)
	}
	return &Clusterer{
		strategy:     strategy,
		iouThreshold: iouThreshold,
		log:          log,
	}, nil
}

// Cluster merges detections into unique items. Input order is significant:
// the same input order always yields the same cluster assignment and IDs.
// A malformed detection is a fatal contract breach.
func (c *Clusterer) Cluster(detections []detection.Detection) ([]UniqueItem, error) {
	for _, det := range detections {
		if err := det.Validate(); err != nil {
			return nil, fmt.Errorf("upstream contract violation: %w", err)
		}
	}

	// Partition by class, preserving both class-first-seen order and
	// detection order inside each partition.
	var classOrder []string
	grouped := make(map[string][]detection.Detection)
	for _, det := range detections {
		if _, ok := grouped[det.ItemClass]; !ok {
			classOrder = append(classOrder, det.ItemClass)
		}
		grouped[det.ItemClass] = append(grouped[det.ItemClass], det)
	}

	var items []UniqueItem

	for _, class := range classOrder {
		clusters := c.clusterClass(grouped[class])

		for idx, cluster := range clusters {
			best := cluster[0]
			for _, det := range cluster[1:] {
				if det.Confidence > best.Confidence {
					best = det
				}
			}

			items = append(items, UniqueItem{
				ID:         fmt.Sprintf("%s_%d", class, idx),
				ItemClass:  class,
				BestFrame:  best.Frame,
				Confidence: best.Confidence,
				BBox:       best.BBox,
				FramesSeen: len(cluster),
			})
		}
	}

	c.log.Info("tracking", "reduced %d detections to %d unique items", len(detections), len(items))
	return items, nil
}

// clusterClass runs the greedy anchor pass over one class partition.
// Each detection is compared against cluster anchors only (the first member),
// earliest-created cluster wins.
func (c *Clusterer) clusterClass(dets []detection.Detection) [][]detection.Detection {
	var clusters [][]detection.Detection

	for _, det := range dets {
		matched := false
		for i := range clusters {
			anchor := clusters[i][0]
			if geometry.IOU(det.BBox, anchor.BBox) >= c.iouThreshold {
				clusters[i] = append(clusters[i], det)
				matched = true
				break
			}
		}
		if !matched {
			clusters = append(clusters, []detection.Detection{det})
		}
	}

	return clusters
}
