// Package pipeline orchestrates one analysis run over a single image:
// load, detect, per-detection crop and dominant color, group by color
// similarity, aggregate, persist.
package pipeline

import (
	"context"
	"fmt"
	stdimage "image"
	"time"

	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/colors"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/detect"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/pkg/colorutil"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/pkg/geometry"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Detector locates objects in an image. Implementations may back this
// with any model; coordinates must be normalized to [0,1].
type Detector interface {
	Predict(ctx context.Context, img stdimage.Image) ([]detect.Detection, detect.ClassNames, error)
}

// Frame is a loaded image the pipeline can crop regions out of.
type Frame interface {
	Size() (width, height int)
	Image() (stdimage.Image, error)
	Crop(r geometry.PixelRect) (gocv.Mat, error)
	Close()
}

// Codec loads an image file into a Frame.
type Codec interface {
	Load(path string) (Frame, error)
}

// CodecFunc adapts a plain load function to the Codec interface.
type CodecFunc func(path string) (Frame, error)

// Load implements Codec.
func (f CodecFunc) Load(path string) (Frame, error) { return f(path) }

// Store persists the aggregated records of one run.
type Store interface {
	SaveResults(ctx context.Context, records []colors.Record) error
}

// CropPolicy decides what a crop that yields zero pixels does to the run.
type CropPolicy int

const (
	// CropSkip drops the offending detection with a warning and keeps
	// going. The dropped detection is excluded from grouping, so group
	// counts cover fewer objects than the detector reported.
	CropSkip CropPolicy = iota

	// CropAbort fails the whole run on the first bad crop.
	CropAbort
)

// ParseCropPolicy maps the configuration strings "skip" and "abort".
func ParseCropPolicy(s string) (CropPolicy, error) {
	switch s {
	case "skip":
		return CropSkip, nil
	case "abort":
		return CropAbort, nil
	default:
		return 0, fmt.Errorf("unknown crop policy %q", s)
	}
}

// Options are the per-run tunables.
type Options struct {
	ColorThreshold float64            // grouping similarity threshold
	KMeans         colors.KMeansParams
	CropPolicy     CropPolicy
	DetectTimeout  time.Duration // 0 = no deadline on the detector call
}

// Pipeline wires the collaborators for repeated single-image runs. All
// per-run state lives in Run's locals; a Pipeline itself is stateless
// between invocations.
type Pipeline struct {
	detector Detector
	codec    Codec
	store    Store
	log      *logrus.Logger
	opts     Options
}

// New builds a pipeline.
func New(detector Detector, codec Codec, store Store, log *logrus.Logger, opts Options) *Pipeline {
	return &Pipeline{
		detector: detector,
		codec:    codec,
		store:    store,
		log:      log,
		opts:     opts,
	}
}

// Summary reports what one run did.
type Summary struct {
	RunID      string
	Detections int // detections returned by the detector
	Skipped    int // detections dropped under CropSkip
	Records    []colors.Record
}

// Run processes one image end to end. On persistence failure the
// returned Summary still carries the computed records so the caller can
// surface them; for every other failure the Summary is nil.
func (p *Pipeline) Run(ctx context.Context, imagePath string) (*Summary, error) {
	runID := uuid.NewString()
	log := p.log.WithFields(logrus.Fields{"run_id": runID, "image": imagePath})

	frame, err := p.codec.Load(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	defer frame.Close()

	width, height := frame.Size()
	img, err := frame.Image()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	log.WithFields(logrus.Fields{"width": width, "height": height}).Info("Loaded image")

	detectCtx := ctx
	if p.opts.DetectTimeout > 0 {
		var cancel context.CancelFunc
		detectCtx, cancel = context.WithTimeout(ctx, p.opts.DetectTimeout)
		defer cancel()
	}
	detections, classNames, err := p.detector.Predict(detectCtx, img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetection, err)
	}
	log.WithFields(logrus.Fields{"detections": len(detections)}).Info("Detection complete")

	summary := &Summary{RunID: runID, Detections: len(detections)}

	// Per-detection: map the normalized box to pixels, crop, reduce to
	// the dominant color. Failures follow the crop policy.
	kept := make([]colors.Color, 0, len(detections))
	keptClassIDs := make([]int, 0, len(detections))
	for i, det := range detections {
		c, err := p.detectionColor(frame, width, height, det)
		if err != nil {
			if p.opts.CropPolicy == CropAbort {
				return nil, fmt.Errorf("%w: detection %d: %v", ErrGeometry, i, err)
			}
			summary.Skipped++
			log.WithFields(logrus.Fields{
				"detection": i,
				"class_id":  det.ClassID,
				"error":     err.Error(),
			}).Warn("Skipping detection with unusable crop")
			continue
		}
		kept = append(kept, c)
		keptClassIDs = append(keptClassIDs, det.ClassID)
	}

	groups := colors.GroupColors(kept, p.opts.ColorThreshold)
	summary.Records = colors.Aggregate(groups, keptClassIDs, classNames)
	for _, rec := range summary.Records {
		log.WithFields(logrus.Fields{
			"class":    rec.ClassName,
			"quantity": rec.Quantity,
			"color":    rec.Color.String(),
			"shade":    colorutil.Name(rec.Color.Vec()),
		}).Info("Aggregated color group")
	}

	if err := p.store.SaveResults(ctx, summary.Records); err != nil {
		return summary, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return summary, nil
}

// detectionColor maps one detection to its dominant crop color.
func (p *Pipeline) detectionColor(frame Frame, width, height int, det detect.Detection) (colors.Color, error) {
	rect, err := geometry.FromNormalized(det.Box, width, height)
	if err != nil {
		return colors.Color{}, err
	}
	crop, err := frame.Crop(rect)
	if err != nil {
		return colors.Color{}, err
	}
	defer crop.Close()
	return colors.DominantColor(crop, p.opts.KMeans)
}
