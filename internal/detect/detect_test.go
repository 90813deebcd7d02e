package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClassNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.names")
	require.NoError(t, os.WriteFile(path, []byte("person\nbicycle\ncar\n"), 0o644))

	names, err := LoadClassNames(path)
	require.NoError(t, err)
	assert.Equal(t, ClassNames{0: "person", 1: "bicycle", 2: "car"}, names)
}

func TestLoadClassNamesErrors(t *testing.T) {
	_, err := LoadClassNames(filepath.Join(t.TempDir(), "missing.names"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.names")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = LoadClassNames(empty)
	assert.Error(t, err)
}

func TestDecodeNormalizesAndFilters(t *testing.T) {
	d := &YOLO{classes: 2, conf: 0.5}
	data := make([]float32, (boxRows+2)*numAnchors)

	// Anchor 0: a confident class-1 detection centered in the frame.
	data[0*numAnchors] = 320 // cx
	data[1*numAnchors] = 320 // cy
	data[2*numAnchors] = 64  // w
	data[3*numAnchors] = 64  // h
	data[4*numAnchors] = 0.2 // class 0 score
	data[5*numAnchors] = 0.9 // class 1 score

	// Anchor 1: below the confidence threshold, must be dropped.
	data[0*numAnchors+1] = 100
	data[1*numAnchors+1] = 100
	data[2*numAnchors+1] = 32
	data[3*numAnchors+1] = 32
	data[4*numAnchors+1] = 0.4

	dets := d.decode(data)
	require.Len(t, dets, 1)
	assert.Equal(t, 1, dets[0].ClassID)
	assert.InDelta(t, 0.9, float64(dets[0].Confidence), 1e-6)
	assert.InDelta(t, 0.5, dets[0].Box.CX, 1e-6)
	assert.InDelta(t, 0.5, dets[0].Box.CY, 1e-6)
	assert.InDelta(t, 0.1, dets[0].Box.W, 1e-6)
	assert.InDelta(t, 0.1, dets[0].Box.H, 1e-6)
}

func TestNonMaxSuppress(t *testing.T) {
	box := geometry.NormalizedBox{CX: 0.5, CY: 0.5, W: 0.2, H: 0.2}
	shifted := geometry.NormalizedBox{CX: 0.52, CY: 0.5, W: 0.2, H: 0.2}
	far := geometry.NormalizedBox{CX: 0.9, CY: 0.9, W: 0.1, H: 0.1}

	dets := []Detection{
		{ClassID: 0, Box: shifted, Confidence: 0.7},
		{ClassID: 0, Box: box, Confidence: 0.9},
		{ClassID: 0, Box: far, Confidence: 0.8},
	}
	kept := nonMaxSuppress(dets, 0.45)
	require.Len(t, kept, 2)
	// Highest confidence survives; its heavy overlapper is suppressed.
	assert.Equal(t, box, kept[0].Box)
	assert.Equal(t, far, kept[1].Box)
}

func TestNonMaxSuppressIsClassAware(t *testing.T) {
	box := geometry.NormalizedBox{CX: 0.5, CY: 0.5, W: 0.2, H: 0.2}
	dets := []Detection{
		{ClassID: 0, Box: box, Confidence: 0.9},
		{ClassID: 1, Box: box, Confidence: 0.8},
	}
	kept := nonMaxSuppress(dets, 0.45)
	assert.Len(t, kept, 2)
}

func TestIoU(t *testing.T) {
	a := geometry.NormalizedBox{CX: 0.5, CY: 0.5, W: 0.2, H: 0.2}
	assert.InDelta(t, 1.0, iou(a, a), 1e-9)

	disjoint := geometry.NormalizedBox{CX: 0.9, CY: 0.9, W: 0.1, H: 0.1}
	assert.Equal(t, 0.0, iou(a, disjoint))
}
