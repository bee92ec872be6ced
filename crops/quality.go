package crops

import (
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"fashioncam/logging"
)

// RejectReason is the fixed taxonomy of quality-gate failures.
type RejectReason string

const (
	ReasonUnreadable  RejectReason = "unreadable_image"
	ReasonTooSmall    RejectReason = "too_small"
	ReasonTooBlurry   RejectReason = "too_blurry"
	ReasonLowContrast RejectReason = "low_contrast"
	ReasonMostlyDark  RejectReason = "mostly_dark"
)

// QualityScores are the three measured metrics carried by accepted items.
type QualityScores struct {
	Blur       float64 // variance of Laplacian
	Contrast   float64 // grayscale standard deviation
	BlackRatio float64 // fraction of near-black pixels
}

// Rejected pairs a failed crop with its reason and, when one was measured
// before the failing check, the offending metric value.
type Rejected struct {
	Item   CroppedItem
	Reason RejectReason
	Metric float64
}

// Thresholds holds the quality-gate tuning knobs.
type Thresholds struct {
	MinWidth       int
	MinHeight      int
	MinArea        int
	BlurThreshold  float64 // minimum variance of Laplacian
	MinContrastStd float64
	MaxBlackRatio  float64
}

// DefaultThresholds returns the standard gate tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinWidth:       64,
		MinHeight:      64,
		MinArea:        64 * 64,
		BlurThreshold:  90.0,
		MinContrastStd: 15.0,
		MaxBlackRatio:  0.6,
	}
}

// Gate filters cropped items on size, sharpness, contrast and darkness.
type Gate struct {
	t   Thresholds
	log *logging.Logger
}

// NewGate builds a quality gate with the given thresholds.
func NewGate(t Thresholds, log *logging.Logger) *Gate {
	return &Gate{t: t, log: log}
}

// Filter splits the batch into accepted and rejected items. Checks run in a
// fixed order and stop at the first failure: unreadable, size, blur,
// contrast, darkness. Accepted items carry all three measured scores.
// Image handles are released before each item returns.
func (g *Gate) Filter(items []CroppedItem) ([]CroppedItem, []Rejected) {
	var accepted []CroppedItem
	var rejected []Rejected

	for _, item := range items {
		scores, reason, metric := g.evaluate(item.CropPath)
		if reason != "" {
			g.log.Debug("quality", "%s rejected: %s (%.2f)", item.ID, reason, metric)
			rejected = append(rejected, Rejected{Item: item, Reason: reason, Metric: metric})
			continue
		}

		item.Quality = scores
		accepted = append(accepted, item)
	}

	g.log.Info("quality", "accepted %d / rejected %d crops", len(accepted), len(rejected))
	return accepted, rejected
}

// evaluate computes the quality verdict for one crop image. An empty reason
// means the crop passed every check.
func (g *Gate) evaluate(cropPath string) (QualityScores, RejectReason, float64) {
	img := gocv.IMRead(cropPath, gocv.IMReadColor)
	if img.Empty() {
		return QualityScores{}, ReasonUnreadable, 0
	}
	defer img.Close()

	w := img.Cols()
	h := img.Rows()
	if w < g.t.MinWidth || h < g.t.MinHeight || w*h < g.t.MinArea {
		return QualityScores{}, ReasonTooSmall, float64(w * h)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	blur := laplacianVariance(gray)
	if blur < g.t.BlurThreshold {
		return QualityScores{}, ReasonTooBlurry, blur
	}

	grayVals := graySamples(gray)
	contrast := stat.PopStdDev(grayVals, nil)
	if contrast < g.t.MinContrastStd {
		return QualityScores{}, ReasonLowContrast, contrast
	}

	blackRatio := nearBlackRatio(gray)
	if blackRatio > g.t.MaxBlackRatio {
		return QualityScores{}, ReasonMostlyDark, blackRatio
	}

	return QualityScores{
		Blur:       blur,
		Contrast:   contrast,
		BlackRatio: blackRatio,
	}, "", 0
}

// laplacianVariance measures sharpness as the population variance of the
// Laplacian response over the grayscale image.
func laplacianVariance(gray gocv.Mat) float64 {
	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	vals, err := lap.DataPtrFloat64()
	if err != nil || len(vals) == 0 {
		return 0
	}
	return stat.PopVariance(vals, nil)
}

func graySamples(gray gocv.Mat) []float64 {
	bytes := gray.ToBytes()
	vals := make([]float64, len(bytes))
	for i, b := range bytes {
		vals[i] = float64(b)
	}
	return vals
}

func nearBlackRatio(gray gocv.Mat) float64 {
	bytes := gray.ToBytes()
	if len(bytes) == 0 {
		return 0
	}
	black := 0
	for _, b := range bytes {
		if b < 15 {
			black++
		}
	}
	return float64(black) / float64(len(bytes))
}
