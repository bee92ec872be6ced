package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteReportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	r := Report{
		URL:             "https://example.com/v/abc123",
		VideoID:         "abc123",
		Title:           "red carpet arrivals",
		TotalFrames:     900,
		ExtractedFrames: 180,
		Detections:      42,
		UniqueItems:     5,
		Crops:           5,
		Accepted:        3,
		RejectionReasons: map[string]int{
			"too_blurry": 1,
			"too_small":  1,
		},
		Priced:     3,
		Windows:    3,
		OutputPath: filepath.Join(dir, "abc123_tagged.mp4"),
		StartedAt:  started,
		FinishedAt: started.Add(40 * time.Second),
	}

	path, err := WriteReport(dir, r)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if filepath.Base(path) != "abc123_20260314-092653.json" {
		t.Errorf("report name = %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back Report
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if back.VideoID != r.VideoID || back.Accepted != r.Accepted {
		t.Errorf("round-trip mismatch: %+v", back)
	}
	if back.RejectionReasons["too_blurry"] != 1 {
		t.Errorf("rejection reasons not preserved: %v", back.RejectionReasons)
	}
}

func TestWriteReportHaltedRun(t *testing.T) {
	dir := t.TempDir()
	r := Report{
		URL:        "https://example.com/v/empty1",
		VideoID:    "empty1",
		HaltReason: "no detections",
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}

	path, err := WriteReport(dir, r)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"halt_reason": "no detections"`) {
		t.Error("halt reason missing from report")
	}
	if strings.Contains(string(data), `"output_path"`) {
		t.Error("empty output path should be omitted")
	}
}

func TestWriteReportMissingVideoID(t *testing.T) {
	dir := t.TempDir()
	r := Report{StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	path, err := WriteReport(dir, r)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "unknown_") {
		t.Errorf("report name = %q, want unknown_ prefix", filepath.Base(path))
	}
}
