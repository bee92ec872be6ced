package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Report summarizes one pipeline run: stage-by-stage counts, rejection
// reasons and where the run stopped if it halted early.
type Report struct {
	URL              string            `json:"url"`
	VideoID          string            `json:"video_id"`
	Title            string            `json:"title,omitempty"`
	TotalFrames      int               `json:"total_frames"`
	ExtractedFrames  int               `json:"extracted_frames"`
	Detections       int               `json:"detections"`
	UniqueItems      int               `json:"unique_items"`
	Crops            int               `json:"crops"`
	Accepted         int               `json:"accepted"`
	RejectionReasons map[string]int    `json:"rejection_reasons,omitempty"`
	Priced           int               `json:"priced"`
	Windows          int               `json:"windows"`
	FaceLabels       map[string]string `json:"face_labels,omitempty"`
	OutputPath       string            `json:"output_path,omitempty"`
	HaltReason       string            `json:"halt_reason,omitempty"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       time.Time         `json:"finished_at"`
}

// WriteReport stores the report as JSON under dir, named by video ID and
// start time.
func WriteReport(dir string, r Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	videoID := r.VideoID
	if videoID == "" {
		videoID = "unknown"
	}
	name := fmt.Sprintf("%s_%s.json", videoID, r.StartedAt.Format("20060102-150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
