// Package ingest acquires the source video and samples frames out of it.
package ingest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"fashioncam/logging"
	"fashioncam/pkg/subproc"
)

// VideoMeta describes a downloaded (or cache-hit) source video.
type VideoMeta struct {
	VideoID    string
	Title      string
	Source     string // extractor/platform name
	Path       string
	Duration   float64 // seconds
	Resolution int     // height in pixels
}

// probeInfo is the subset of yt-dlp --dump-json output we care about.
type probeInfo struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	ExtractorKey string  `json:"extractor_key"`
	Duration     float64 `json:"duration"`
	Height       int     `json:"height"`
}

// Downloader fetches source videos through yt-dlp with a local cache keyed
// by video ID.
type Downloader struct {
	rawVideoDir    string
	ytDlpBin       string
	maxDurationSec int
	minResolution  int
	log            *logging.Logger
}

// NewDownloader builds a downloader writing into rawVideoDir.
func NewDownloader(rawVideoDir, ytDlpBin string, maxDurationSec, minResolution int, log *logging.Logger) *Downloader {
	return &Downloader{
		rawVideoDir:    rawVideoDir,
		ytDlpBin:       ytDlpBin,
		maxDurationSec: maxDurationSec,
		minResolution:  minResolution,
		log:            log,
	}
}

// Download resolves a URL to a local video file. Metadata is probed first so
// overlong or low-resolution videos are rejected before any bytes move; a
// cached file for the same video ID short-circuits the download.
func (d *Downloader) Download(url string) (VideoMeta, error) {
	d.log.Section("Video Download")
	d.log.Info("downloader", "source URL: %s", url)

	info, err := d.probe(url)
	if err != nil {
		return VideoMeta{}, err
	}
	if info.ID == "" {
		return VideoMeta{}, fmt.Errorf("could not extract video ID from %s", url)
	}

	if info.Duration > float64(d.maxDurationSec) {
		return VideoMeta{}, fmt.Errorf("video too long (%.0fs > %ds)", info.Duration, d.maxDurationSec)
	}
	if info.Height > 0 && info.Height < d.minResolution {
		return VideoMeta{}, fmt.Errorf("video resolution too low (%dp < %dp)", info.Height, d.minResolution)
	}

	meta := VideoMeta{
		VideoID:    info.ID,
		Title:      info.Title,
		Source:     info.ExtractorKey,
		Duration:   info.Duration,
		Resolution: info.Height,
	}

	if cached := d.cachedPath(info.ID); cached != "" {
		d.log.Info("downloader", "video already downloaded, using cached file")
		meta.Path = cached
		return meta, nil
	}

	path, err := d.fetch(url, info.ID)
	if err != nil {
		return VideoMeta{}, err
	}
	meta.Path = path

	d.log.Info("downloader", "download complete: %s", path)
	return meta, nil
}

func (d *Downloader) probe(url string) (probeInfo, error) {
	out, err := subproc.RunCapture(d.ytDlpBin,
		"--dump-json", "--no-warnings", "--skip-download", url)
	if err != nil {
		return probeInfo{}, fmt.Errorf("probe video metadata: %w", err)
	}

	var info probeInfo
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &info); err != nil {
		return probeInfo{}, fmt.Errorf("parse video metadata: %w", err)
	}
	return info, nil
}

func (d *Downloader) fetch(url, videoID string) (string, error) {
	template := filepath.Join(d.rawVideoDir, "%(id)s.%(ext)s")

	err := subproc.Run(d.ytDlpBin,
		"-f", "bv*[ext=mp4]/b[ext=mp4]/bv*/b",
		"--merge-output-format", "mp4",
		"--no-warnings",
		"-o", template,
		url)
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}

	path := d.cachedPath(videoID)
	if path == "" {
		return "", fmt.Errorf("download finished but no file found for video %s", videoID)
	}
	return path, nil
}

// cachedPath returns the stored file for a video ID, preferring mp4 when
// several containers exist.
func (d *Downloader) cachedPath(videoID string) string {
	matches, _ := filepath.Glob(filepath.Join(d.rawVideoDir, videoID+".*"))
	if len(matches) == 0 {
		return ""
	}
	for _, m := range matches {
		if strings.HasSuffix(m, ".mp4") {
			return m
		}
	}
	return matches[0]
}
