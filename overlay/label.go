package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"fashioncam/logging"
)

const labelPadding = 10

var (
	labelTextColor = color.RGBA{255, 255, 255, 255}
	labelBackColor = color.RGBA{20, 20, 20, 255}
)

// LabelRenderer rasterizes overlay text with the preferred typeface,
// falling back to a built-in face when the font file is unavailable.
// Construction never fails: a missing font must not break rendering.
type LabelRenderer struct {
	face font.Face
}

// NewLabelRenderer loads the typeface at fontPath at the given point size.
// On any failure it logs a warning and uses basicfont.Face7x13.
func NewLabelRenderer(fontPath string, size float64, log *logging.Logger) *LabelRenderer {
	face, err := loadFace(fontPath, size)
	if err != nil {
		log.Warn("overlay", "could not load font %s (%v), using built-in face", fontPath, err)
		face = basicfont.Face7x13
	}
	return &LabelRenderer{face: face}
}

func loadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Render draws text onto an opaque padded panel image. The returned image's
// dimensions define the on-screen label panel size.
func (lr *LabelRenderer) Render(text string) *image.RGBA {
	drawer := &font.Drawer{Face: lr.face}
	advance := drawer.MeasureString(text).Ceil()
	metrics := lr.face.Metrics()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()

	width := advance + 2*labelPadding
	height := textHeight + 2*labelPadding

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(labelBackColor), image.Point{}, draw.Src)

	drawer.Dst = img
	drawer.Src = image.NewUniform(labelTextColor)
	drawer.Dot = fixed.Point26_6{
		X: fixed.I(labelPadding),
		Y: fixed.I(labelPadding) + metrics.Ascent,
	}
	drawer.DrawString(text)

	return img
}
