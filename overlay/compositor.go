package overlay

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"fashioncam/logging"
	"fashioncam/pkg/subproc"
)

// Compositor walks the source video, applies active draw instructions per
// timestamp and writes the tagged output. Audio is remuxed back from the
// source with ffmpeg; when ffmpeg is unavailable the output is video-only.
type Compositor struct {
	renderer  *Renderer
	ffmpegBin string
	log       *logging.Logger
}

// NewCompositor builds a compositor around a renderer.
func NewCompositor(renderer *Renderer, ffmpegBin string, log *logging.Logger) *Compositor {
	return &Compositor{
		renderer:  renderer,
		ffmpegBin: ffmpegBin,
		log:       log,
	}
}

// Render produces <outputDir>/<videoID>_tagged.mp4 from the source video and
// the scheduled windows. Windows extending past the end of the video are
// silently cut off with the video; windows are never trimmed beforehand.
func (c *Compositor) Render(videoPath, videoID, outputDir string, windows []Window) (string, error) {
	capture, err := gocv.OpenVideoCapture(videoPath)
	if err != nil {
		return "", fmt.Errorf("open video %s: %w", videoPath, err)
	}
	defer capture.Close()

	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = 30
	}
	frameW := int(capture.Get(gocv.VideoCaptureFrameWidth))
	frameH := int(capture.Get(gocv.VideoCaptureFrameHeight))

	instructions := c.renderer.Layout(windows, frameW, frameH)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	outputPath := filepath.Join(outputDir, videoID+"_tagged.mp4")
	videoOnlyPath := filepath.Join(outputDir, videoID+"_video_only.mp4")

	writer, err := gocv.VideoWriterFile(videoOnlyPath, "avc1", fps, frameW, frameH, true)
	if err != nil {
		return "", fmt.Errorf("open video writer: %w", err)
	}
	defer writer.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	frameIdx := 0
	for capture.Read(&frame) {
		if frame.Empty() {
			continue
		}

		t := time.Duration(float64(frameIdx) / fps * float64(time.Second))
		for i, instr := range instructions {
			if t >= instr.Window.Start && t < instr.Window.End {
				c.renderer.Draw(&frame, instr, i)
			}
		}

		if err := writer.Write(frame); err != nil {
			return "", fmt.Errorf("write frame %d: %w", frameIdx, err)
		}
		frameIdx++
	}

	c.log.Info("overlay", "rendered %d frames with %d annotation windows", frameIdx, len(windows))

	if err := c.remuxAudio(videoOnlyPath, videoPath, outputPath); err != nil {
		c.log.Warn("overlay", "audio remux failed (%v), output will be video-only", err)
		if err := os.Rename(videoOnlyPath, outputPath); err != nil {
			return "", fmt.Errorf("finalize video-only output: %w", err)
		}
		return outputPath, nil
	}

	os.Remove(videoOnlyPath)
	return outputPath, nil
}

// remuxAudio copies the rendered video stream and the source audio stream
// into the final container.
func (c *Compositor) remuxAudio(videoOnlyPath, sourcePath, outputPath string) error {
	if !subproc.Available(c.ffmpegBin) {
		return fmt.Errorf("%s not found on PATH", c.ffmpegBin)
	}

	return subproc.Run(c.ffmpegBin,
		"-y",
		"-i", videoOnlyPath,
		"-i", sourcePath,
		"-map", "0:v:0",
		"-map", "1:a:0?",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	)
}
