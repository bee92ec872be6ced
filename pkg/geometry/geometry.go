// Package geometry provides bounding-box math shared by the detection,
// deduplication and overlay stages. All functions are pure.
package geometry

import "image"

// IOU computes the Intersection-over-Union of two boxes.
// The result is always in [0,1]; disjoint or degenerate boxes score 0.
func IOU(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0.0
	}

	interArea := float64(inter.Dx() * inter.Dy())
	union := float64(a.Dx()*a.Dy()) + float64(b.Dx()*b.Dy()) - interArea
	if union <= 0 {
		return 0.0
	}
	return interArea / union
}

// ExpandAndClamp grows box outward by ratio of its width/height on each side,
// then clamps the result to [0,width]x[0,height]. The returned box is never
// inverted but may have zero area when the input sits at an image edge.
func ExpandAndClamp(box image.Rectangle, width, height int, ratio float64) image.Rectangle {
	padW := int(float64(box.Dx()) * ratio)
	padH := int(float64(box.Dy()) * ratio)

	x1 := box.Min.X - padW
	y1 := box.Min.Y - padH
	x2 := box.Max.X + padW
	y2 := box.Max.Y + padH

	return image.Rect(
		clamp(x1, 0, width),
		clamp(y1, 0, height),
		clamp(x2, 0, width),
		clamp(y2, 0, height),
	)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Center returns the center point of a box.
func Center(box image.Rectangle) image.Point {
	return image.Pt((box.Min.X+box.Max.X)/2, (box.Min.Y+box.Max.Y)/2)
}
