package ingest

import (
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

// writeTestVideo encodes frameCount frames into a small MJPG AVI. Frames
// whose index is in blurryAt are uniform gray so the sharpness floor drops
// them; all others carry a high-contrast checkerboard.
func writeTestVideo(t *testing.T, path string, frameCount int, blurryAt map[int]bool) {
	t.Helper()

	const size = 64
	writer, err := gocv.VideoWriterFile(path, "MJPG", 10, size, size, true)
	if err != nil {
		t.Skipf("video writer unavailable: %v", err)
	}
	defer writer.Close()

	sharp := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8UC3)
	defer sharp.Close()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := uint8(32)
			if (x/8+y/8)%2 == 0 {
				v = 224
			}
			for ch := 0; ch < 3; ch++ {
				sharp.SetUCharAt(y, x*3+ch, v)
			}
		}
	}

	flat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 128, 128, 0),
		size, size, gocv.MatTypeCV8UC3)
	defer flat.Close()

	for i := 0; i < frameCount; i++ {
		frame := sharp
		if blurryAt[i] {
			frame = flat
		}
		if err := writer.Write(frame); err != nil {
			t.Fatalf("write frame %d: %v", i, err)
		}
	}
}

func TestExtractSamplesEveryNthFrame(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.avi")
	writeTestVideo(t, videoPath, 12, nil)

	e := NewExtractor(filepath.Join(dir, "frames"), 3, 100.0, silentLog())
	batch, err := e.Extract(videoPath, "vid1")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if batch.TotalFrames != 12 {
		t.Errorf("TotalFrames = %d, want 12", batch.TotalFrames)
	}
	if batch.ExtractedFrames != 4 {
		t.Fatalf("ExtractedFrames = %d, want indexes 0, 3, 6, 9", batch.ExtractedFrames)
	}

	wantNames := []string{"frame_000000.jpg", "frame_000003.jpg", "frame_000006.jpg", "frame_000009.jpg"}
	for i, want := range wantNames {
		if got := filepath.Base(batch.Frames[i]); got != want {
			t.Errorf("frame %d = %q, want %q", i, got, want)
		}
	}
}

func TestExtractDropsBlurryFrames(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.avi")
	// Frame 6 lands on a sampling index but is too flat to keep.
	writeTestVideo(t, videoPath, 12, map[int]bool{6: true})

	e := NewExtractor(filepath.Join(dir, "frames"), 3, 100.0, silentLog())
	batch, err := e.Extract(videoPath, "vid2")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if batch.TotalFrames != 12 {
		t.Errorf("TotalFrames = %d, want 12", batch.TotalFrames)
	}
	if batch.ExtractedFrames != 3 {
		t.Fatalf("ExtractedFrames = %d, want 3 after the blur drop", batch.ExtractedFrames)
	}
	for _, f := range batch.Frames {
		if filepath.Base(f) == "frame_000006.jpg" {
			t.Error("blurry frame 6 was kept")
		}
	}
}

func TestExtractClampsSampleRate(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.avi")
	writeTestVideo(t, videoPath, 5, nil)

	// A sample rate below 1 degrades to keeping every frame.
	e := NewExtractor(filepath.Join(dir, "frames"), 0, 100.0, silentLog())
	batch, err := e.Extract(videoPath, "vid3")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if batch.ExtractedFrames != 5 {
		t.Errorf("ExtractedFrames = %d, want every frame kept", batch.ExtractedFrames)
	}
}

func TestExtractMissingVideo(t *testing.T) {
	dir := t.TempDir()
	e := NewExtractor(filepath.Join(dir, "frames"), 3, 100.0, silentLog())
	if _, err := e.Extract(filepath.Join(dir, "absent.mp4"), "vid4"); err == nil {
		t.Error("expected error for a video that cannot be opened")
	}
}
