// Package crops materializes image regions around unique items and gates
// them on quality before enrichment.
package crops

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"fashioncam/logging"
	"fashioncam/pkg/geometry"
	"fashioncam/tracking"
)

// CroppedItem is a unique item plus a materialized image region. BBox is the
// expanded box actually used to produce the crop, clamped to the frame.
type CroppedItem struct {
	ID         string
	ItemClass  string
	Confidence float64
	CropPath   string
	BBox       image.Rectangle
	FaceCrop   string

	// Quality is populated on items accepted by the Gate.
	Quality QualityScores
}

// Cropper cuts padded item regions out of their best frames and stores them
// under <cropsDir>/<videoID>/.
type Cropper struct {
	cropsDir     string
	paddingRatio float64
	log          *logging.Logger
}

// NewCropper builds a cropper writing under cropsDir.
func NewCropper(cropsDir string, paddingRatio float64, log *logging.Logger) *Cropper {
	return &Cropper{
		cropsDir:     cropsDir,
		paddingRatio: paddingRatio,
		log:          log,
	}
}

// Crop materializes one crop per unique item. Unreadable frames and crops
// that collapse to zero area are skipped with a warning; they never abort
// the batch. The returned slice preserves input order.
func (c *Cropper) Crop(items []tracking.UniqueItem, videoID string) ([]CroppedItem, error) {
	outputDir := filepath.Join(c.cropsDir, videoID)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create crops dir: %w", err)
	}

	var cropped []CroppedItem

	for idx, item := range items {
		img, err := imaging.Open(item.BestFrame)
		if err != nil {
			c.log.Warn("cropper", "could not read frame %s: %v", item.BestFrame, err)
			continue
		}

		bounds := img.Bounds()
		expanded := geometry.ExpandAndClamp(item.BBox, bounds.Dx(), bounds.Dy(), c.paddingRatio)
		if expanded.Dx() == 0 || expanded.Dy() == 0 {
			c.log.Warn("cropper", "empty crop skipped for %s", item.ID)
			continue
		}

		crop := imaging.Crop(img, expanded)

		cropName := fmt.Sprintf("%s_%02d_%s.jpg", item.ItemClass, idx, frameStem(item.BestFrame))
		cropPath := filepath.Join(outputDir, cropName)

		if err := imaging.Save(crop, cropPath); err != nil {
			c.log.Warn("cropper", "could not save crop for %s: %v", item.ID, err)
			continue
		}

		cropped = append(cropped, CroppedItem{
			ID:         item.ID,
			ItemClass:  item.ItemClass,
			Confidence: item.Confidence,
			CropPath:   cropPath,
			BBox:       expanded,
			FaceCrop:   item.FaceCrop,
		})
	}

	c.log.Info("cropper", "saved %d cropped items", len(cropped))
	return cropped, nil
}

func frameStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
