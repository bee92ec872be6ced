package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"fashioncam/logging"
)

// FrameBatch summarizes one extraction pass.
type FrameBatch struct {
	VideoID         string
	TotalFrames     int
	ExtractedFrames int
	Frames          []string
}

// Extractor samples every Nth frame of a video, drops visibly blurry ones
// and writes the keepers as JPEGs under <framesDir>/<videoID>/.
type Extractor struct {
	framesDir     string
	sampleRate    int
	blurThreshold float64
	log           *logging.Logger
}

// NewExtractor builds a frame extractor.
func NewExtractor(framesDir string, sampleRate int, blurThreshold float64, log *logging.Logger) *Extractor {
	if sampleRate < 1 {
		sampleRate = 1
	}
	return &Extractor{
		framesDir:     framesDir,
		sampleRate:    sampleRate,
		blurThreshold: blurThreshold,
		log:           log,
	}
}

// Extract walks the video and saves sampled, non-blurry frames.
func (e *Extractor) Extract(videoPath, videoID string) (FrameBatch, error) {
	e.log.Section("Frame Extraction")
	e.log.Info("extractor", "video: %s", filepath.Base(videoPath))

	capture, err := gocv.OpenVideoCapture(videoPath)
	if err != nil {
		return FrameBatch{}, fmt.Errorf("cannot open video %s: %w", videoPath, err)
	}
	defer capture.Close()

	outputDir := filepath.Join(e.framesDir, videoID)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return FrameBatch{}, fmt.Errorf("create frames dir: %w", err)
	}

	frame := gocv.NewMat()
	defer frame.Close()

	batch := FrameBatch{VideoID: videoID}
	frameIdx := 0

	for capture.Read(&frame) {
		if frame.Empty() {
			continue
		}

		if frameIdx%e.sampleRate == 0 && !e.isBlurry(frame) {
			framePath := filepath.Join(outputDir, fmt.Sprintf("frame_%06d.jpg", frameIdx))
			if gocv.IMWrite(framePath, frame) {
				batch.Frames = append(batch.Frames, framePath)
				batch.ExtractedFrames++
			} else {
				e.log.Warn("extractor", "could not write frame %d", frameIdx)
			}
		}
		frameIdx++
	}
	batch.TotalFrames = frameIdx

	e.log.Info("extractor", "extracted %d frames from %d total frames",
		batch.ExtractedFrames, batch.TotalFrames)
	return batch, nil
}

// isBlurry applies a variance-of-Laplacian floor to a whole frame. This is
// a coarse pre-filter; the quality gate re-measures individual crops later.
func (e *Extractor) isBlurry(frame gocv.Mat) bool {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	vals, err := lap.DataPtrFloat64()
	if err != nil || len(vals) == 0 {
		return true
	}
	return stat.PopVariance(vals, nil) < e.blurThreshold
}
