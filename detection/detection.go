// Package detection defines the per-frame observation model and the detector
// boundary. The detector consumes sampled frame images and emits one
// Detection per item sighting; everything downstream treats it as a black box.
package detection

import (
	"fmt"
	"image"
)

// Detection is one observation of a fashion item in one frame.
// Immutable once produced by the detector.
type Detection struct {
	ItemClass  string          // category label, e.g. "watch"
	Frame      string          // path to the source frame image
	Confidence float64         // in [0,1]
	BBox       image.Rectangle // pixel coordinates within the source frame
}

// Validate reports a contract violation for a malformed detection.
// A bad bbox here means the upstream detector is broken; callers should
// treat the error as fatal rather than coercing the box.
func (d Detection) Validate() error {
	if d.BBox.Min.X > d.BBox.Max.X || d.BBox.Min.Y > d.BBox.Max.Y {
		return fmt.Errorf("detection %q has inverted bbox %v", d.ItemClass, d.BBox)
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("detection %q has confidence %f outside [0,1]", d.ItemClass, d.Confidence)
	}
	if d.ItemClass == "" {
		return fmt.Errorf("detection with empty item class at %v", d.BBox)
	}
	return nil
}

// Detector is the upstream collaborator contract: sampled frames in,
// detections out. An empty result is valid. Implementations must never
// emit a bbox outside its source frame's pixel bounds.
type Detector interface {
	Detect(framePaths []string) ([]Detection, error)
	Close() error
}
