package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"fashioncam/logging"
)

const (
	panelMarginRight = 40
	panelMarginTop   = 120
	panelAlpha       = 0.8
)

var (
	highlightColor = color.RGBA{255, 215, 0, 255} // gold outline around the item
	leaderColor    = color.RGBA{255, 215, 0, 255}
)

// DrawInstruction is a fully specified overlay for one window on one frame
// size: panel placement, leader line endpoints and the highlight box.
// Producing instructions is separated from pixel compositing so the
// compositor stays a dumb executor.
type DrawInstruction struct {
	Window Window
	Panel  image.Rectangle // where the label panel lands
	Leader [2]image.Point  // from item anchor to panel edge
}

// Renderer lays out and draws annotation windows onto video frames.
type Renderer struct {
	labels *LabelRenderer
	log    *logging.Logger

	// rasterized label panel per window, keyed by window index
	panels []*image.RGBA
}

// NewRenderer prepares a renderer for the given windows.
func NewRenderer(labels *LabelRenderer, log *logging.Logger) *Renderer {
	return &Renderer{labels: labels, log: log}
}

// Layout computes draw instructions for every window against a frame size.
// Labels land in the upper-right quadrant, offset from the top margin; the
// leader line runs from the item's center to the panel's left edge.
func (r *Renderer) Layout(windows []Window, frameW, frameH int) []DrawInstruction {
	instructions := make([]DrawInstruction, 0, len(windows))
	r.panels = make([]*image.RGBA, 0, len(windows))

	for _, win := range windows {
		panelImg := r.labels.Render(win.Label)
		pw := panelImg.Bounds().Dx()
		ph := panelImg.Bounds().Dy()

		x2 := frameW - panelMarginRight
		x1 := x2 - pw
		if x1 < 0 {
			x1 = 0
			x2 = pw
		}
		panel := image.Rect(x1, panelMarginTop, x2, panelMarginTop+ph)

		instructions = append(instructions, DrawInstruction{
			Window: win,
			Panel:  panel,
			Leader: [2]image.Point{
				win.Anchor,
				image.Pt(panel.Min.X, (panel.Min.Y+panel.Max.Y)/2),
			},
		})
		r.panels = append(r.panels, panelImg)
	}

	return instructions
}

// Draw renders one instruction onto a frame in place.
func (r *Renderer) Draw(frame *gocv.Mat, instr DrawInstruction, index int) {
	// Highlight box around the item
	gocv.Rectangle(frame, instr.Window.Highlight, highlightColor, 2)

	// Leader line from item to panel
	gocv.Line(frame, instr.Leader[0], instr.Leader[1], leaderColor, 2)

	// Semi-transparent label panel
	if index < 0 || index >= len(r.panels) {
		return
	}
	panel := instr.Panel.Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
	if panel.Empty() || panel.Dx() != instr.Panel.Dx() || panel.Dy() != instr.Panel.Dy() {
		// Panel does not fit this frame geometry; skip the text rather
		// than drawing a clipped label.
		r.log.Debug("overlay", "label panel clipped at %v, skipping text", instr.Panel)
		return
	}

	labelMat, err := gocv.ImageToMatRGB(r.panels[index])
	if err != nil {
		r.log.Warn("overlay", "could not convert label image: %v", err)
		return
	}
	defer labelMat.Close()

	roi := frame.Region(panel)
	gocv.AddWeighted(labelMat, panelAlpha, roi, 1-panelAlpha, 0, &roi)
	roi.Close()
}
