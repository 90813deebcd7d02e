// Package colors implements the color side of the shelf analysis
// pipeline: reducing a detection crop to its dominant color, grouping
// detections by color similarity, and aggregating groups into result
// records.
package colors

import (
	"fmt"

	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/pkg/colorutil"
)

// Color is one pixel color with 8-bit channels. Channel order matches
// the source pixel buffer: BGR, the OpenCV convention.
type Color [3]uint8

// Vec returns the color as a float vector for distance computations.
func (c Color) Vec() colorutil.Vec {
	return colorutil.Vec{float64(c[0]), float64(c[1]), float64(c[2])}
}

// String renders the color in the stored text encoding: "(b, g, r)"
// with decimal channel values, e.g. "(17, 34, 255)". This exact form is
// what the color column of colors_results holds.
func (c Color) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c[0], c[1], c[2])
}

// Record is one persisted result row: all detections of one color
// group, labeled with the class of the group's representative
// detection.
type Record struct {
	ClassName string
	Quantity  int
	Color     Color
}

// UnknownClass labels records whose class id has no entry in the
// detector's class-name map.
const UnknownClass = "Unknown"
