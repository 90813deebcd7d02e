// Package colorutil provides shared color utilities for the shelf analysis pipeline.
package colorutil

import (
	"gonum.org/v1/gonum/floats"
)

// Vec is a color as a 3-component vector of raw channel values.
// Channel order follows the source pixel buffer (BGR for OpenCV mats).
type Vec [3]float64

// Distance returns the Euclidean distance between two colors over raw
// channel values. No color-space conversion or channel weighting.
func Distance(a, b Vec) float64 {
	return floats.Distance(a[:], b[:], 2)
}

// Reference colors for human-readable naming, in BGR order.
var referenceColors = []struct {
	name string
	vec  Vec
}{
	{"black", Vec{0, 0, 0}},
	{"white", Vec{255, 255, 255}},
	{"gray", Vec{128, 128, 128}},
	{"red", Vec{0, 0, 255}},
	{"green", Vec{0, 255, 0}},
	{"blue", Vec{255, 0, 0}},
	{"yellow", Vec{0, 255, 255}},
	{"cyan", Vec{255, 255, 0}},
	{"magenta", Vec{255, 0, 255}},
	{"orange", Vec{0, 165, 255}},
	{"brown", Vec{42, 42, 165}},
	{"purple", Vec{128, 0, 128}},
	{"pink", Vec{203, 192, 255}},
}

// Name returns the name of the reference color nearest to v. Intended
// for logs and diagnostics, not for grouping decisions.
func Name(v Vec) string {
	best := referenceColors[0].name
	bestDist := Distance(v, referenceColors[0].vec)
	for _, ref := range referenceColors[1:] {
		if d := Distance(v, ref.vec); d < bestDist {
			best = ref.name
			bestDist = d
		}
	}
	return best
}
