package pipeline

import (
	"context"
	"errors"
	stdimage "image"
	"testing"

	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/colors"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/detect"
	img "github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/image"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/pkg/geometry"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type fakeDetector struct {
	detections []detect.Detection
	names      detect.ClassNames
	err        error
}

func (f *fakeDetector) Predict(_ context.Context, _ stdimage.Image) ([]detect.Detection, detect.ClassNames, error) {
	return f.detections, f.names, f.err
}

type fakeStore struct {
	saved [][]colors.Record
	err   error
}

func (f *fakeStore) SaveResults(_ context.Context, records []colors.Record) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, records)
	return nil
}

// testFrame builds a 100x100 frame: left half solid red, right half
// solid green (BGR).
func testFrame(t *testing.T) *img.Frame {
	t.Helper()
	mat := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
	left := mat.Region(stdimage.Rect(0, 0, 50, 100))
	left.SetTo(gocv.NewScalar(0, 0, 255, 0))
	left.Close()
	right := mat.Region(stdimage.Rect(50, 0, 100, 100))
	right.SetTo(gocv.NewScalar(0, 255, 0, 0))
	right.Close()
	return img.NewFrame(mat)
}

func frameCodec(frame *img.Frame) Codec {
	return CodecFunc(func(string) (Frame, error) { return frame, nil })
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func defaultOptions() Options {
	return Options{
		ColorThreshold: 10.0,
		KMeans:         colors.DefaultKMeansParams(),
		CropPolicy:     CropSkip,
	}
}

// Boxes inside the left (red) and right (green) halves of testFrame.
var (
	redBoxA   = geometry.NormalizedBox{CX: 0.15, CY: 0.3, W: 0.2, H: 0.2}
	redBoxB   = geometry.NormalizedBox{CX: 0.35, CY: 0.7, W: 0.2, H: 0.2}
	greenBox  = geometry.NormalizedBox{CX: 0.75, CY: 0.5, W: 0.2, H: 0.2}
	emptyBox  = geometry.NormalizedBox{CX: 0.5, CY: 0.5, W: 0, H: 0}
	names     = detect.ClassNames{0: "bottle"}
	threeDets = []detect.Detection{
		{ClassID: 0, Box: redBoxA},
		{ClassID: 0, Box: redBoxB},
		{ClassID: 0, Box: greenBox},
	}
)

func TestRunEndToEnd(t *testing.T) {
	detector := &fakeDetector{detections: threeDets, names: names}
	st := &fakeStore{}
	p := New(detector, frameCodec(testFrame(t)), st, testLogger(), defaultOptions())

	summary, err := p.Run(context.Background(), "shelf.png")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 3, summary.Detections)
	assert.Equal(t, 0, summary.Skipped)

	require.Len(t, summary.Records, 2)
	assert.Equal(t, "bottle", summary.Records[0].ClassName)
	assert.Equal(t, 2, summary.Records[0].Quantity)
	assert.Equal(t, colors.Color{0, 0, 255}, summary.Records[0].Color)
	assert.Equal(t, 1, summary.Records[1].Quantity)
	assert.Equal(t, colors.Color{0, 255, 0}, summary.Records[1].Color)

	require.Len(t, st.saved, 1)
	assert.Equal(t, summary.Records, st.saved[0])
}

func TestRunEmptyDetections(t *testing.T) {
	detector := &fakeDetector{names: names}
	st := &fakeStore{}
	p := New(detector, frameCodec(testFrame(t)), st, testLogger(), defaultOptions())

	summary, err := p.Run(context.Background(), "shelf.png")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Detections)
	assert.Empty(t, summary.Records)
	// Zero rows persisted, no error.
	require.Len(t, st.saved, 1)
	assert.Empty(t, st.saved[0])
}

func TestRunDetectorFailure(t *testing.T) {
	detector := &fakeDetector{err: errors.New("model exploded")}
	st := &fakeStore{}
	p := New(detector, frameCodec(testFrame(t)), st, testLogger(), defaultOptions())

	summary, err := p.Run(context.Background(), "shelf.png")
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, ErrDetection)
	assert.Empty(t, st.saved)
}

func TestRunInputFailure(t *testing.T) {
	codec := CodecFunc(func(string) (Frame, error) { return nil, errors.New("no such file") })
	p := New(&fakeDetector{}, codec, &fakeStore{}, testLogger(), defaultOptions())

	summary, err := p.Run(context.Background(), "missing.png")
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, ErrInput)
}

func TestRunSkipsDegenerateCrop(t *testing.T) {
	dets := append([]detect.Detection{{ClassID: 0, Box: emptyBox}}, threeDets...)
	detector := &fakeDetector{detections: dets, names: names}
	st := &fakeStore{}
	p := New(detector, frameCodec(testFrame(t)), st, testLogger(), defaultOptions())

	summary, err := p.Run(context.Background(), "shelf.png")
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Detections)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Records, 2)
	assert.Equal(t, 2, summary.Records[0].Quantity)
	assert.Equal(t, 1, summary.Records[1].Quantity)
}

func TestRunAbortsOnDegenerateCrop(t *testing.T) {
	dets := []detect.Detection{{ClassID: 0, Box: emptyBox}}
	detector := &fakeDetector{detections: dets, names: names}
	opts := defaultOptions()
	opts.CropPolicy = CropAbort
	p := New(detector, frameCodec(testFrame(t)), &fakeStore{}, testLogger(), opts)

	summary, err := p.Run(context.Background(), "shelf.png")
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, ErrGeometry)
}

func TestRunPersistenceFailureKeepsRecords(t *testing.T) {
	detector := &fakeDetector{detections: threeDets, names: names}
	st := &fakeStore{err: errors.New("disk full")}
	p := New(detector, frameCodec(testFrame(t)), st, testLogger(), defaultOptions())

	summary, err := p.Run(context.Background(), "shelf.png")
	assert.ErrorIs(t, err, ErrPersistence)
	// Computed records survive the failed write.
	require.NotNil(t, summary)
	assert.Len(t, summary.Records, 2)
}

func TestParseCropPolicy(t *testing.T) {
	p, err := ParseCropPolicy("skip")
	require.NoError(t, err)
	assert.Equal(t, CropSkip, p)

	p, err = ParseCropPolicy("abort")
	require.NoError(t, err)
	assert.Equal(t, CropAbort, p)

	_, err = ParseCropPolicy("explode")
	assert.Error(t, err)
}
