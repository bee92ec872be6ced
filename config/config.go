// Package config assembles the runtime configuration for a pipeline run.
// Values come from baked-in defaults, overridden by FASHIONCAM_* environment
// variables, overridden again by command-line flags in main.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds every tunable for one pipeline run. It is a plain value:
// stages receive the fields they need at construction time and never read
// ambient global state.
type Config struct {
	// Directory layout
	DataDir        string
	RawVideoDir    string
	FramesDir      string
	CropsDir       string
	FacesDir       string
	TaggedVideoDir string
	ReportsDir     string
	ModelDir       string

	// Ingestion
	MaxVideoDurationSec int
	MinVideoResolution  int
	FrameSampleRate     int     // keep every Nth frame
	FrameBlurThreshold  float64 // variance-of-Laplacian floor for sampled frames

	// Detection
	ModelPath         string
	NamesPath         string
	DetectConfidence  float64
	DetectClasses     []string
	DetectInputSize   int

	// Deduplication
	IOUThreshold    float64
	ClusterStrategy string

	// Cropping & quality gate
	PaddingRatio    float64
	MinCropWidth    int
	MinCropHeight   int
	MinCropArea     int
	BlurThreshold   float64
	MinContrastStd  float64
	MaxBlackRatio   float64

	// Enrichment
	PriceConfidenceMin float64
	DefaultPriceRange  string
	PriceRulesPath     string

	// Overlay
	DisplayDuration time.Duration
	FontPath        string
	FontSize        float64

	// Binaries for external collaborators
	YtDlpBin  string
	FFmpegBin string

	LogLevel string
}

// Default returns the baked-in configuration.
func Default() Config {
	dataDir := "data"
	outputDir := "outputs"
	modelDir := "models"

	return Config{
		DataDir:        dataDir,
		RawVideoDir:    filepath.Join(dataDir, "raw_videos"),
		FramesDir:      filepath.Join(dataDir, "frames"),
		CropsDir:       filepath.Join(dataDir, "crops"),
		FacesDir:       filepath.Join(dataDir, "faces"),
		TaggedVideoDir: filepath.Join(outputDir, "tagged_videos"),
		ReportsDir:     filepath.Join(outputDir, "reports"),
		ModelDir:       modelDir,

		MaxVideoDurationSec: 90,
		MinVideoResolution:  720,
		FrameSampleRate:     5,
		FrameBlurThreshold:  100.0,

		ModelPath:        filepath.Join(modelDir, "yolo", "weights", "yolov8-fashion.onnx"),
		NamesPath:        filepath.Join(modelDir, "yolo", "fashion.names"),
		DetectConfidence: 0.5,
		DetectClasses:    []string{"shoe", "watch", "necklace", "ring", "bracelet", "person"},
		DetectInputSize:  640,

		IOUThreshold:    0.5,
		ClusterStrategy: "greedy-anchor-iou",

		PaddingRatio:   0.15,
		MinCropWidth:   64,
		MinCropHeight:  64,
		MinCropArea:    64 * 64,
		BlurThreshold:  90.0,
		MinContrastStd: 15.0,
		MaxBlackRatio:  0.6,

		PriceConfidenceMin: 0.6,
		DefaultPriceRange:  "$500 – $5,000",
		PriceRulesPath:     filepath.Join(modelDir, "brand_rules.json"),

		DisplayDuration: 1800 * time.Millisecond,
		FontPath:        filepath.Join("assets", "fonts", "Inter-Bold.ttf"),
		FontSize:        28,

		YtDlpBin:  "yt-dlp",
		FFmpegBin: "ffmpeg",

		LogLevel: "info",
	}
}

// FromEnv returns the default configuration with environment overrides applied.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("FASHIONCAM_DATA_DIR"); v != "" {
		cfg = cfg.WithDataDir(v)
	}
	envStr(&cfg.ModelPath, "FASHIONCAM_MODEL_PATH")
	envStr(&cfg.NamesPath, "FASHIONCAM_NAMES_PATH")
	envStr(&cfg.PriceRulesPath, "FASHIONCAM_PRICE_RULES")
	envStr(&cfg.FontPath, "FASHIONCAM_FONT")
	envStr(&cfg.YtDlpBin, "FASHIONCAM_YTDLP_BIN")
	envStr(&cfg.FFmpegBin, "FASHIONCAM_FFMPEG_BIN")
	envStr(&cfg.LogLevel, "FASHIONCAM_LOG_LEVEL")

	envInt(&cfg.MaxVideoDurationSec, "FASHIONCAM_MAX_VIDEO_DURATION_SEC")
	envInt(&cfg.MinVideoResolution, "FASHIONCAM_MIN_VIDEO_RESOLUTION")
	envInt(&cfg.FrameSampleRate, "FASHIONCAM_FRAME_SAMPLE_RATE")

	envFloat(&cfg.DetectConfidence, "FASHIONCAM_DETECT_CONFIDENCE")
	envFloat(&cfg.IOUThreshold, "FASHIONCAM_IOU_THRESHOLD")
	envFloat(&cfg.PriceConfidenceMin, "FASHIONCAM_PRICE_CONFIDENCE_MIN")

	return cfg
}

// WithDataDir rebases every derived data directory under dir.
func (c Config) WithDataDir(dir string) Config {
	c.DataDir = dir
	c.RawVideoDir = filepath.Join(dir, "raw_videos")
	c.FramesDir = filepath.Join(dir, "frames")
	c.CropsDir = filepath.Join(dir, "crops")
	c.FacesDir = filepath.Join(dir, "faces")
	return c
}

// EnsureDirectories creates every output directory the pipeline writes to.
func (c Config) EnsureDirectories() error {
	for _, dir := range []string{
		c.RawVideoDir, c.FramesDir, c.CropsDir, c.FacesDir,
		c.TaggedVideoDir, c.ReportsDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
