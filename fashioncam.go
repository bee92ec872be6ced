package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"fashioncam/config"
	"fashioncam/logging"
	"fashioncam/pipeline"
)

var (
	videoURL    = flag.String("url", "", "Video URL to process (required)\n\t\tExample: -url=https://example.com/watch?v=abc123")
	dataDir     = flag.String("data-dir", "", "Base directory for downloaded videos, frames and crops (default: ./data)")
	skipOverlay = flag.Bool("skip-overlay", false, "Stop after price estimation without rendering the tagged video")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error, silent (default: info)")
	noColor     = flag.Bool("no-color", false, "Disable colored log output")

	iouThreshold = flag.Float64("iou", 0, "IOU threshold for deduplication clustering (0 uses the default 0.5)")
	displaySecs  = flag.Float64("display-duration", 0, "Seconds each price annotation stays on screen (0 uses the default 1.8)")
	fontPath     = flag.String("font", "", "Preferred label typeface (falls back to a built-in face when missing)")
	rulesPath    = flag.String("price-rules", "", "JSON price-rule table overriding the built-in defaults")
	modelPath    = flag.String("model", "", "YOLO ONNX weights path")
)

func main() {
	flag.Parse()

	if *videoURL == "" {
		fmt.Fprintln(os.Stderr, "usage: fashioncam -url <video_url> [options]")
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.FromEnv()
	if *dataDir != "" {
		cfg = cfg.WithDataDir(*dataDir)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *iouThreshold > 0 {
		cfg.IOUThreshold = *iouThreshold
	}
	if *displaySecs > 0 {
		cfg.DisplayDuration = time.Duration(*displaySecs * float64(time.Second))
	}
	if *fontPath != "" {
		cfg.FontPath = *fontPath
	}
	if *rulesPath != "" {
		cfg.PriceRulesPath = *rulesPath
	}
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logging.Init(level, os.Stderr, !*noColor)
	log := logging.Default()

	if err := cfg.EnsureDirectories(); err != nil {
		log.Error("main", "could not create data directories: %v", err)
		os.Exit(1)
	}

	p := pipeline.New(cfg, log)
	result, err := p.Run(*videoURL, *skipOverlay)
	if err != nil {
		log.Error("main", "pipeline failed: %v", err)
		os.Exit(1)
	}
	if result == "" {
		log.Warn("main", "pipeline finished with no output")
		return
	}
	log.Info("main", "pipeline finished successfully: %s", result)
}
