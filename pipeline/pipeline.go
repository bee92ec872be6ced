// Package pipeline wires the stages together for one video run: download,
// frame extraction, detection, deduplication, cropping, quality gating,
// enrichment, scheduling and rendering. Every stage consumes the complete
// output of the previous one; a stage producing zero results halts the run
// as a valid "nothing further to do" outcome, not an error.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fashioncam/config"
	"fashioncam/crops"
	"fashioncam/detection"
	"fashioncam/enrichment"
	"fashioncam/ingest"
	"fashioncam/logging"
	"fashioncam/overlay"
	"fashioncam/tracking"
)

// Classifier is the external classification add-on boundary: given an item
// ID and its face crop, return an attribute label. Implementations live
// outside the core; the pipeline only records the labels it gets back.
type Classifier interface {
	Classify(itemID, faceCropPath string) (string, error)
}

// Pipeline runs the full detection-to-overlay flow for single videos.
type Pipeline struct {
	cfg        config.Config
	log        *logging.Logger
	detector   detection.Detector
	classifier Classifier
}

// New builds a pipeline. The detector is constructed lazily on the first
// run unless one is injected with SetDetector.
func New(cfg config.Config, log *logging.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log}
}

// SetDetector injects a detector, replacing the default YOLO construction.
func (p *Pipeline) SetDetector(d detection.Detector) { p.detector = d }

// SetClassifier attaches an optional face-attribute classifier.
func (p *Pipeline) SetClassifier(c Classifier) { p.classifier = c }

// Run processes one video URL end to end. It returns the tagged video path,
// or an empty path when a stage legitimately produced nothing (the report
// records where the run stopped). Errors indicate real failures.
func (p *Pipeline) Run(url string, skipOverlay bool) (string, error) {
	p.log.Section("PIPELINE START")
	report := Report{URL: url, StartedAt: time.Now(), RejectionReasons: map[string]int{}}

	downloader := ingest.NewDownloader(p.cfg.RawVideoDir, p.cfg.YtDlpBin,
		p.cfg.MaxVideoDurationSec, p.cfg.MinVideoResolution, p.log)
	meta, err := downloader.Download(url)
	if err != nil {
		return "", fmt.Errorf("ingestion: %w", err)
	}
	report.VideoID = meta.VideoID
	report.Title = meta.Title

	extractor := ingest.NewExtractor(p.cfg.FramesDir, p.cfg.FrameSampleRate,
		p.cfg.FrameBlurThreshold, p.log)
	batch, err := extractor.Extract(meta.Path, meta.VideoID)
	if err != nil {
		return "", fmt.Errorf("frame extraction: %w", err)
	}
	report.TotalFrames = batch.TotalFrames
	report.ExtractedFrames = batch.ExtractedFrames
	if len(batch.Frames) == 0 {
		return p.halt(report, "no frames extracted")
	}

	detector, err := p.getDetector()
	if err != nil {
		return "", fmt.Errorf("detector init: %w", err)
	}
	detections, err := detector.Detect(batch.Frames)
	if err != nil {
		return "", fmt.Errorf("detection: %w", err)
	}
	report.Detections = len(detections)
	if len(detections) == 0 {
		return p.halt(report, "no fashion items detected")
	}

	clusterer, err := tracking.NewClusterer(tracking.Strategy(p.cfg.ClusterStrategy),
		p.cfg.IOUThreshold, p.log)
	if err != nil {
		return "", err
	}
	items, err := clusterer.Cluster(detections)
	if err != nil {
		return "", fmt.Errorf("deduplication: %w", err)
	}
	report.UniqueItems = len(items)
	if len(items) == 0 {
		return p.halt(report, "all detections deduplicated away")
	}

	items = p.attachFaceCrops(items)

	cropper := crops.NewCropper(p.cfg.CropsDir, p.cfg.PaddingRatio, p.log)
	cropped, err := cropper.Crop(items, meta.VideoID)
	if err != nil {
		return "", fmt.Errorf("cropping: %w", err)
	}
	report.Crops = len(cropped)
	if len(cropped) == 0 {
		return p.halt(report, "no crops created")
	}

	gate := crops.NewGate(p.qualityThresholds(), p.log)
	accepted, rejected := gate.Filter(cropped)
	report.Accepted = len(accepted)
	for _, r := range rejected {
		report.RejectionReasons[string(r.Reason)]++
	}
	if len(accepted) == 0 {
		return p.halt(report, "all crops failed quality checks")
	}

	report.FaceLabels = p.classifyFaces(accepted)

	estimator := enrichment.NewEstimator(p.loadRules(), p.cfg.DefaultPriceRange,
		p.cfg.PriceConfidenceMin, p.log)
	priced := estimator.EstimatePrices(accepted)
	report.Priced = len(priced)

	if skipOverlay {
		p.log.Info("pipeline", "overlay skipped, run ends after price estimation")
		return p.halt(report, "")
	}

	windows := overlay.Schedule(priced, p.cfg.DisplayDuration)
	report.Windows = len(windows)

	labels := overlay.NewLabelRenderer(p.cfg.FontPath, p.cfg.FontSize, p.log)
	renderer := overlay.NewRenderer(labels, p.log)
	compositor := overlay.NewCompositor(renderer, p.cfg.FFmpegBin, p.log)

	outputPath, err := compositor.Render(meta.Path, meta.VideoID, p.cfg.TaggedVideoDir, windows)
	if err != nil {
		return "", fmt.Errorf("overlay render: %w", err)
	}
	report.OutputPath = outputPath

	p.writeReport(report)
	p.log.Section("PIPELINE COMPLETE")
	p.log.Info("pipeline", "final video: %s", outputPath)
	return outputPath, nil
}

// attachFaceCrops extends person items with a geometry-based face crop.
// Non-person items pass through untouched.
func (p *Pipeline) attachFaceCrops(items []tracking.UniqueItem) []tracking.UniqueItem {
	out := make([]tracking.UniqueItem, 0, len(items))
	for _, item := range items {
		if item.ItemClass != "person" {
			out = append(out, item)
			continue
		}
		facePath := filepath.Join(p.cfg.FacesDir, item.ID+"_face.jpg")
		if saved := crops.CropFace(item.BestFrame, item.BBox, facePath, p.log); saved != "" {
			item = item.WithFaceCrop(saved)
		}
		out = append(out, item)
	}
	return out
}

// classifyFaces runs the optional external classifier over accepted items
// that carry a face crop, keyed by item ID.
func (p *Pipeline) classifyFaces(accepted []crops.CroppedItem) map[string]string {
	if p.classifier == nil {
		return nil
	}
	labels := make(map[string]string)
	for _, item := range accepted {
		if item.FaceCrop == "" {
			continue
		}
		label, err := p.classifier.Classify(item.ID, item.FaceCrop)
		if err != nil {
			p.log.Warn("pipeline", "classification failed for %s: %v", item.ID, err)
			continue
		}
		labels[item.ID] = label
	}
	return labels
}

func (p *Pipeline) getDetector() (detection.Detector, error) {
	if p.detector != nil {
		return p.detector, nil
	}
	det, err := detection.NewYOLODetector(detection.YOLOConfig{
		ModelPath:      p.cfg.ModelPath,
		FallbackPath:   filepath.Join(p.cfg.ModelDir, "yolo", "weights", "yolov8n.onnx"),
		NamesPath:      p.cfg.NamesPath,
		Confidence:     p.cfg.DetectConfidence,
		InputSize:      p.cfg.DetectInputSize,
		AllowedClasses: p.cfg.DetectClasses,
	}, p.log)
	if err != nil {
		return nil, err
	}
	p.detector = det
	return det, nil
}

func (p *Pipeline) qualityThresholds() crops.Thresholds {
	return crops.Thresholds{
		MinWidth:       p.cfg.MinCropWidth,
		MinHeight:      p.cfg.MinCropHeight,
		MinArea:        p.cfg.MinCropArea,
		BlurThreshold:  p.cfg.BlurThreshold,
		MinContrastStd: p.cfg.MinContrastStd,
		MaxBlackRatio:  p.cfg.MaxBlackRatio,
	}
}

// loadRules reads the configured rule table, falling back to the baked-in
// defaults when the file is absent or malformed.
func (p *Pipeline) loadRules() enrichment.RuleTable {
	if p.cfg.PriceRulesPath == "" {
		return nil
	}
	if _, err := os.Stat(p.cfg.PriceRulesPath); err != nil {
		return nil
	}
	rules, err := enrichment.LoadRules(p.cfg.PriceRulesPath)
	if err != nil {
		p.log.Warn("pipeline", "could not load price rules (%v), using defaults", err)
		return nil
	}
	return rules
}

// halt ends the run without error after a stage produced nothing.
func (p *Pipeline) halt(report Report, reason string) (string, error) {
	if reason != "" {
		p.log.Warn("pipeline", "%s, stopping pipeline", reason)
		report.HaltReason = reason
	}
	p.writeReport(report)
	return "", nil
}

func (p *Pipeline) writeReport(report Report) {
	report.FinishedAt = time.Now()
	path, err := WriteReport(p.cfg.ReportsDir, report)
	if err != nil {
		p.log.Warn("pipeline", "could not write run report: %v", err)
		return
	}
	p.log.Info("pipeline", "run report: %s", path)
}
