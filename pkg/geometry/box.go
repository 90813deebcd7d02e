// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"fmt"
	"math"
)

// NormalizedBox is a detector bounding box in normalized image coordinates:
// center x/y and width/height, all expected in [0, 1].
type NormalizedBox struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	W  float64 `json:"w"`
	H  float64 `json:"h"`
}

// Valid reports whether every component is a finite number.
func (b NormalizedBox) Valid() bool {
	for _, v := range [4]float64{b.CX, b.CY, b.W, b.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// PixelRect is an axis-aligned rectangle in image pixel space.
// X1 <= X2 and Y1 <= Y2 hold for rectangles produced by FromNormalized
// with non-negative box width/height; coordinates may lie outside the
// image bounds, callers must clip before indexing pixels.
type PixelRect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width returns the rectangle width in pixels.
func (r PixelRect) Width() int {
	return r.X2 - r.X1
}

// Height returns the rectangle height in pixels.
func (r PixelRect) Height() int {
	return r.Y2 - r.Y1
}

// Empty reports whether the rectangle covers no pixels.
func (r PixelRect) Empty() bool {
	return r.X2 <= r.X1 || r.Y2 <= r.Y1
}

// Clip intersects the rectangle with the image area [0,width) x [0,height).
func (r PixelRect) Clip(width, height int) PixelRect {
	out := r
	if out.X1 < 0 {
		out.X1 = 0
	}
	if out.Y1 < 0 {
		out.Y1 = 0
	}
	if out.X2 > width {
		out.X2 = width
	}
	if out.Y2 > height {
		out.Y2 = height
	}
	return out
}

// FromNormalized converts a normalized center/size box to absolute pixel
// corners for an image of the given dimensions. Components are truncated
// toward zero, matching an integer cast, not rounded to nearest. The
// result is not clipped to the image bounds.
func FromNormalized(box NormalizedBox, width, height int) (PixelRect, error) {
	if !box.Valid() {
		return PixelRect{}, fmt.Errorf("malformed box %+v", box)
	}
	if width <= 0 || height <= 0 {
		return PixelRect{}, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}
	return PixelRect{
		X1: int((box.CX - box.W/2) * float64(width)),
		Y1: int((box.CY - box.H/2) * float64(height)),
		X2: int((box.CX + box.W/2) * float64(width)),
		Y2: int((box.CY + box.H/2) * float64(height)),
	}, nil
}
