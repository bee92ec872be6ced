package detection

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"fashioncam/logging"
)

// YOLOConfig carries everything needed to bring up the DNN detector.
type YOLOConfig struct {
	ModelPath      string   // preferred ONNX weights
	FallbackPath   string   // generic weights used when the preferred file is absent
	NamesPath      string   // newline-separated class names
	Confidence     float64  // minimum confidence to keep a detection
	InputSize      int      // square DNN input size, e.g. 640
	AllowedClasses []string // class names the pipeline cares about
}

// YOLODetector runs YOLO inference through the OpenCV DNN backend.
// Instantiate once per pipeline run.
type YOLODetector struct {
	net        gocv.Net
	classNames []string
	allowed    map[int]bool
	confidence float64
	inputSize  int
	log        *logging.Logger
}

// NewYOLODetector loads the network and class names. When the preferred
// weights file is missing it falls back to the generic weights; only when
// neither exists does construction fail.
func NewYOLODetector(cfg YOLOConfig, log *logging.Logger) (*YOLODetector, error) {
	modelPath := cfg.ModelPath
	if _, err := os.Stat(modelPath); err != nil {
		if cfg.FallbackPath == "" {
			return nil, fmt.Errorf("model weights not found at %s", modelPath)
		}
		log.Warn("detector", "custom weights not found at %s, falling back to %s",
			modelPath, cfg.FallbackPath)
		modelPath = cfg.FallbackPath
		if _, err := os.Stat(modelPath); err != nil {
			return nil, fmt.Errorf("no usable model weights (%s, %s)", cfg.ModelPath, cfg.FallbackPath)
		}
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", modelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	namesBytes, err := os.ReadFile(cfg.NamesPath)
	if err != nil {
		net.Close()
		return nil, fmt.Errorf("could not read class names: %w", err)
	}
	classNames := strings.Split(strings.TrimSpace(string(namesBytes)), "\n")
	for i := range classNames {
		classNames[i] = strings.TrimSpace(classNames[i])
	}

	allowed := make(map[int]bool)
	want := make(map[string]bool, len(cfg.AllowedClasses))
	for _, c := range cfg.AllowedClasses {
		want[strings.ToLower(c)] = true
	}
	for idx, name := range classNames {
		if want[strings.ToLower(name)] {
			allowed[idx] = true
		}
	}
	if len(allowed) == 0 {
		log.Warn("detector", "no matching detection classes found, detector will return no results")
	} else {
		var enabled []string
		for idx, name := range classNames {
			if allowed[idx] {
				enabled = append(enabled, name)
			}
		}
		log.Info("detector", "enabled classes: %v", enabled)
	}

	inputSize := cfg.InputSize
	if inputSize == 0 {
		inputSize = 640
	}

	return &YOLODetector{
		net:        net,
		classNames: classNames,
		allowed:    allowed,
		confidence: cfg.Confidence,
		inputSize:  inputSize,
		log:        log,
	}, nil
}

// Detect runs inference on every frame image. A frame that fails to decode
// is skipped with a warning; it is not fatal to the batch.
func (d *YOLODetector) Detect(framePaths []string) ([]Detection, error) {
	var detections []Detection

	for _, framePath := range framePaths {
		frame := gocv.IMRead(framePath, gocv.IMReadColor)
		if frame.Empty() {
			d.log.Warn("detector", "could not read frame: %s", framePath)
			continue
		}

		frameDetections := d.detectFrame(frame, framePath)
		detections = append(detections, frameDetections...)
		frame.Close()
	}

	d.log.Info("detector", "detected %d items across %d frames", len(detections), len(framePaths))
	return detections, nil
}

func (d *YOLODetector) detectFrame(frame gocv.Mat, framePath string) []Detection {
	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(d.inputSize, d.inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	raw := d.net.Forward("")
	defer raw.Close()

	// Collapse the leading batch dimension.
	output := raw
	if len(raw.Size()) > 2 {
		output = raw.Reshape(1, raw.Size()[1])
		defer output.Close()
	}

	out := d.parseOutput(output, float32(frame.Cols()), float32(frame.Rows()), framePath)

	if len(out) > 0 {
		d.log.Debug("detector", "%s: %d detections", filepath.Base(framePath), len(out))
	}
	return out
}

// parseOutput decodes a 2D DNN result into detections. Two export layouts
// exist: v8-style ONNX is feature-major ([4+classes] x anchors, no
// objectness column, coordinates in DNN input pixels), older exports are
// candidate-major (candidates x [4+1+classes], objectness at column 4,
// normalized coordinates). Feature-major tensors are much wider than tall,
// which is how the two are told apart.
func (d *YOLODetector) parseOutput(output gocv.Mat, frameW, frameH float32, framePath string) []Detection {
	scoresCol := 5
	scaleX := frameW
	scaleY := frameH

	if output.Rows() < output.Cols() {
		transposed := gocv.NewMat()
		gocv.Transpose(output, &transposed)
		defer transposed.Close()
		output = transposed

		scoresCol = 4
		scaleX = frameW / float32(d.inputSize)
		scaleY = frameH / float32(d.inputSize)
	}

	bounds := image.Rect(0, 0, int(frameW), int(frameH))

	var out []Detection

	for i := 0; i < output.Rows(); i++ {
		row := output.RowRange(i, i+1)
		data := row.Clone()
		scores := data.ColRange(scoresCol, data.Cols())
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(scores)
		classID := maxLoc.X
		confidence := float64(maxVal)

		if confidence >= d.confidence && classID < len(d.classNames) && d.allowed[classID] {
			cx := data.GetFloatAt(0, 0) * scaleX
			cy := data.GetFloatAt(0, 1) * scaleY
			w := data.GetFloatAt(0, 2) * scaleX
			h := data.GetFloatAt(0, 3) * scaleY

			rect := image.Rect(
				int(cx-w/2), int(cy-h/2),
				int(cx+w/2), int(cy+h/2),
			).Intersect(bounds)

			if !rect.Empty() {
				out = append(out, Detection{
					ItemClass:  d.classNames[classID],
					Frame:      framePath,
					Confidence: confidence,
					BBox:       rect,
				})
			}
		}

		scores.Close()
		data.Close()
		row.Close()
	}

	return out
}

// Close releases the DNN network.
func (d *YOLODetector) Close() error {
	return d.net.Close()
}
