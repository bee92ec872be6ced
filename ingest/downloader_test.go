package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"fashioncam/logging"
)

func silentLog() *logging.Logger {
	return logging.New(logging.SILENT, io.Discard, false)
}

// fakeYtDlp writes an executable script that prints the given JSON on any
// invocation, standing in for a metadata probe.
func fakeYtDlp(t *testing.T, dir, probeJSON string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub not available on windows")
	}
	path := filepath.Join(dir, "yt-dlp")
	script := fmt.Sprintf("#!/bin/sh\ncat <<'EOF'\n%s\nEOF\n", probeJSON)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDownloadRejectsOverlongVideo(t *testing.T) {
	dir := t.TempDir()
	bin := fakeYtDlp(t, dir,
		`{"id": "abc123", "title": "gala", "extractor_key": "Youtube", "duration": 300, "height": 1080}`)

	d := NewDownloader(dir, bin, 90, 720, silentLog())
	if _, err := d.Download("https://example.com/v/abc123"); err == nil {
		t.Error("expected rejection for a 300s video with a 90s cap")
	}
}

func TestDownloadRejectsLowResolution(t *testing.T) {
	dir := t.TempDir()
	bin := fakeYtDlp(t, dir,
		`{"id": "abc123", "title": "gala", "extractor_key": "Youtube", "duration": 60, "height": 480}`)

	d := NewDownloader(dir, bin, 90, 720, silentLog())
	if _, err := d.Download("https://example.com/v/abc123"); err == nil {
		t.Error("expected rejection for a 480p video with a 720p floor")
	}
}

func TestDownloadUsesCachedFile(t *testing.T) {
	dir := t.TempDir()
	bin := fakeYtDlp(t, dir,
		`{"id": "abc123", "title": "gala", "extractor_key": "Youtube", "duration": 60, "height": 1080}`)

	cached := filepath.Join(dir, "abc123.mp4")
	if err := os.WriteFile(cached, []byte("video bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := NewDownloader(dir, bin, 90, 720, silentLog())
	meta, err := d.Download("https://example.com/v/abc123")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if meta.Path != cached {
		t.Errorf("path = %q, want cached file %q", meta.Path, cached)
	}
	if meta.VideoID != "abc123" || meta.Title != "gala" || meta.Source != "Youtube" {
		t.Errorf("meta = %+v", meta)
	}
}

func TestDownloadMissingVideoID(t *testing.T) {
	dir := t.TempDir()
	bin := fakeYtDlp(t, dir, `{"title": "no id here", "duration": 10}`)

	d := NewDownloader(dir, bin, 90, 720, silentLog())
	if _, err := d.Download("https://example.com/v/x"); err == nil {
		t.Error("expected error when probe output has no video ID")
	}
}

func TestCachedPathPrefersMP4(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"vid1.webm", "vid1.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	d := NewDownloader(dir, "yt-dlp", 90, 720, silentLog())
	got := d.cachedPath("vid1")
	if filepath.Base(got) != "vid1.mp4" {
		t.Errorf("cachedPath = %q, want the mp4 container", got)
	}
}

func TestCachedPathMiss(t *testing.T) {
	d := NewDownloader(t.TempDir(), "yt-dlp", 90, 720, silentLog())
	if got := d.cachedPath("nope"); got != "" {
		t.Errorf("cachedPath = %q, want empty on miss", got)
	}
}
