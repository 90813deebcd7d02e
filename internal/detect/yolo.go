package detect

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sort"
	"sync"

	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/pkg/geometry"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"
)

const (
	inputWidth  = 640
	inputHeight = 640
	numAnchors  = 8400 // YOLOv8 anchor count for 640x640 input
	boxRows     = 4    // cx, cy, w, h rows before the class score rows
)

// Config describes the model to load and the decode thresholds.
type Config struct {
	ModelPath      string
	LabelsPath     string
	OrtLibraryPath string  // optional path to the ONNX Runtime shared library
	ConfThreshold  float32 // minimum best-class score to keep a candidate
	IoUThreshold   float32 // same-class overlap above this is suppressed
}

// YOLO wraps an ONNX Runtime session for a YOLOv8 detection model.
// Sessions own preallocated input/output tensors and are not safe for
// concurrent Predict calls.
type YOLO struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	names   ClassNames
	classes int
	conf    float32
	iou     float32
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initRuntime brings up the process-wide ONNX Runtime environment once.
func initRuntime(libraryPath string) error {
	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// NewYOLO loads the labels file and creates an inference session sized
// to the model's class count.
func NewYOLO(cfg Config) (*YOLO, error) {
	names, err := LoadClassNames(cfg.LabelsPath)
	if err != nil {
		return nil, err
	}
	classes := len(names)

	if err := initRuntime(cfg.OrtLibraryPath); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer options.Destroy()
	options.SetIntraOpNumThreads(runtime.NumCPU())
	options.SetInterOpNumThreads(runtime.NumCPU())

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, inputHeight, inputWidth))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(boxRows+classes), numAnchors))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create session for %s: %w", cfg.ModelPath, err)
	}

	return &YOLO{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
		names:   names,
		classes: classes,
		conf:    cfg.ConfThreshold,
		iou:     cfg.IoUThreshold,
	}, nil
}

// Close releases the session and its tensors.
func (d *YOLO) Close() {
	if d.session != nil {
		d.session.Destroy()
	}
	if d.input != nil {
		d.input.Destroy()
	}
	if d.output != nil {
		d.output.Destroy()
	}
}

// Predict runs one inference pass and returns the detections with
// normalized boxes, plus the class-name map. A valid image with no
// objects yields an empty slice, not an error.
func (d *YOLO) Predict(ctx context.Context, img image.Image) ([]Detection, ClassNames, error) {
	resized := imaging.Resize(img, inputWidth, inputHeight, imaging.Linear)
	prepareInput(resized, d.input.GetData())

	// Session.Run blocks with no cancellation hook, so the deadline is
	// enforced from outside. An abandoned run finishes on its own
	// goroutine before the session can be reused or destroyed.
	done := make(chan error, 1)
	go func() {
		done <- d.session.Run()
	}()
	select {
	case <-ctx.Done():
		<-done
		return nil, nil, fmt.Errorf("inference: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, nil, fmt.Errorf("inference: %w", err)
		}
	}

	dets := d.decode(d.output.GetData())
	return nonMaxSuppress(dets, d.iou), d.names, nil
}

// prepareInput fills the NCHW input buffer with [0,1] channel planes.
func prepareInput(pic image.Image, data []float32) {
	channelSize := inputWidth * inputHeight
	for y := 0; y < inputHeight; y++ {
		for x := 0; x < inputWidth; x++ {
			r, g, b, _ := pic.At(x, y).RGBA()
			i := y*inputWidth + x
			data[i] = float32(r>>8) / 255.0
			data[channelSize+i] = float32(g>>8) / 255.0
			data[2*channelSize+i] = float32(b>>8) / 255.0
		}
	}
}

// decode walks the raw [4+classes][anchors] output. Per anchor the best
// class score is the confidence; boxes arrive in input-pixel units and
// are normalized to [0,1] so downstream code is independent of the
// model input size.
func (d *YOLO) decode(data []float32) []Detection {
	var dets []Detection
	for a := 0; a < numAnchors; a++ {
		bestScore := float32(0)
		bestClass := 0
		for c := 0; c < d.classes; c++ {
			if s := data[(boxRows+c)*numAnchors+a]; s > bestScore {
				bestScore = s
				bestClass = c
			}
		}
		if bestScore < d.conf {
			continue
		}
		dets = append(dets, Detection{
			ClassID:    bestClass,
			Confidence: bestScore,
			Box: geometry.NormalizedBox{
				CX: float64(data[0*numAnchors+a]) / inputWidth,
				CY: float64(data[1*numAnchors+a]) / inputHeight,
				W:  float64(data[2*numAnchors+a]) / inputWidth,
				H:  float64(data[3*numAnchors+a]) / inputHeight,
			},
		})
	}
	return dets
}

// nonMaxSuppress keeps the highest-confidence detection among
// same-class candidates whose overlap exceeds the IoU threshold.
func nonMaxSuppress(dets []Detection, iouThreshold float32) []Detection {
	sort.Slice(dets, func(i, j int) bool {
		return dets[i].Confidence > dets[j].Confidence
	})

	var kept []Detection
	for _, cand := range dets {
		suppressed := false
		for _, k := range kept {
			if k.ClassID == cand.ClassID && iou(k.Box, cand.Box) > float64(iouThreshold) {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, cand)
		}
	}
	return kept
}

// iou computes intersection over union of two normalized boxes.
func iou(a, b geometry.NormalizedBox) float64 {
	ax1, ay1, ax2, ay2 := corners(a)
	bx1, by1, bx2, by2 := corners(b)

	ix1, iy1 := maxf(ax1, bx1), maxf(ay1, by1)
	ix2, iy2 := minf(ax2, bx2), minf(ay2, by2)
	if ix2 <= ix1 || iy2 <= iy1 {
		return 0
	}

	inter := (ix2 - ix1) * (iy2 - iy1)
	areaA := (ax2 - ax1) * (ay2 - ay1)
	areaB := (bx2 - bx1) * (by2 - by1)
	return inter / (areaA + areaB - inter)
}

func corners(b geometry.NormalizedBox) (x1, y1, x2, y2 float64) {
	return b.CX - b.W/2, b.CY - b.H/2, b.CX + b.W/2, b.CY + b.H/2
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
