// Package image provides image loading and cropping for the analysis pipeline.
package image

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/pkg/geometry"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Frame is a decoded image held as a BGR pixel buffer. Close must be
// called when done; crops are views into the frame and must be closed
// before the frame itself.
type Frame struct {
	mat gocv.Mat
}

// NewFrame wraps an existing BGR Mat. The frame takes ownership.
func NewFrame(mat gocv.Mat) *Frame {
	return &Frame{mat: mat}
}

// Load reads an image file into a Frame. OpenCV handles the common
// formats directly; anything it rejects gets one more chance through
// the registered Go decoders (PNG, JPEG, TIFF, BMP).
func Load(path string) (*Frame, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if !mat.Empty() {
		return &Frame{mat: mat}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}

	decoded, err := imageToMat(img)
	if err != nil {
		return nil, fmt.Errorf("convert image %s: %w", path, err)
	}
	return &Frame{mat: decoded}, nil
}

// Size returns the frame dimensions in pixels.
func (f *Frame) Size() (width, height int) {
	return f.mat.Cols(), f.mat.Rows()
}

// Mat exposes the underlying BGR buffer.
func (f *Frame) Mat() gocv.Mat {
	return f.mat
}

// Image converts the frame to a Go image for consumers that don't
// speak Mats (the detector).
func (f *Frame) Image() (image.Image, error) {
	img, err := f.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	return img, nil
}

// Crop returns the frame pixels under r, clipped to the frame bounds.
// A rectangle that leaves no pixels after clipping is an error. The
// returned Mat is a view; the caller closes it.
func (f *Frame) Crop(r geometry.PixelRect) (gocv.Mat, error) {
	w, h := f.Size()
	clipped := r.Clip(w, h)
	if clipped.Empty() {
		return gocv.Mat{}, fmt.Errorf("crop (%d,%d)-(%d,%d) covers no pixels in %dx%d image",
			r.X1, r.Y1, r.X2, r.Y2, w, h)
	}
	return f.mat.Region(image.Rect(clipped.X1, clipped.Y1, clipped.X2, clipped.Y2)), nil
}

// Close releases the pixel buffer.
func (f *Frame) Close() {
	f.mat.Close()
}

// imageToMat converts a Go image to a BGR Mat.
func imageToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	mat, err := gocv.NewMatFromBytes(bounds.Dy(), bounds.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}
