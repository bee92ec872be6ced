package crops

import (
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"fashioncam/logging"
)

// FaceRegion derives a face box from a person bounding box using fixed
// proportions: the face occupies the top slice of the person box with a
// horizontal inset on both sides. Returns a zero rectangle when the person
// box is too degenerate to yield one.
func FaceRegion(personBBox image.Rectangle, imgWidth, imgHeight int) image.Rectangle {
	pw := personBBox.Dx()
	ph := personBBox.Dy()

	faceH := int(float64(ph) * 0.28)
	y1 := personBBox.Min.Y + int(float64(ph)*0.05)
	y2 := y1 + faceH

	x1 := personBBox.Min.X + int(float64(pw)*0.15)
	x2 := personBBox.Max.X - int(float64(pw)*0.15)

	face := image.Rect(
		clampInt(x1, 0, imgWidth),
		clampInt(y1, 0, imgHeight),
		clampInt(x2, 0, imgWidth),
		clampInt(y2, 0, imgHeight),
	)
	if face.Dx() <= 0 || face.Dy() <= 0 {
		return image.Rectangle{}
	}
	return face
}

// CropFace extracts a geometry-based face crop from a person detection's
// frame and writes it to outputPath. An empty string result means no face
// crop could be produced; that is a recoverable per-item condition.
func CropFace(framePath string, personBBox image.Rectangle, outputPath string, log *logging.Logger) string {
	img, err := imaging.Open(framePath)
	if err != nil {
		log.Warn("face-cropper", "could not read frame %s: %v", framePath, err)
		return ""
	}

	bounds := img.Bounds()
	region := FaceRegion(personBBox, bounds.Dx(), bounds.Dy())
	if region.Empty() {
		return ""
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		log.Warn("face-cropper", "could not create face dir: %v", err)
		return ""
	}

	face := imaging.Crop(img, region)
	if err := imaging.Save(face, outputPath); err != nil {
		log.Warn("face-cropper", "could not save face crop: %v", err)
		return ""
	}

	return outputPath
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
