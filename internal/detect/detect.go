// Package detect runs object detection on shelf images with a
// pretrained YOLO model served through ONNX Runtime.
package detect

import (
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/pkg/geometry"
)

// Detection is one object instance located by the detector.
type Detection struct {
	ClassID    int
	Box        geometry.NormalizedBox
	Confidence float32
}

// ClassNames maps class ids to their labels.
type ClassNames map[int]string
