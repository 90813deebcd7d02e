package colors

import (
	"fmt"

	"gocv.io/x/gocv"
)

// KMeansParams controls the k-means run behind dominant color
// extraction. The zero value is not useful; start from DefaultKMeansParams.
type KMeansParams struct {
	MaxIterations int     // iteration cap per attempt
	Epsilon       float64 // stop once centroid movement falls below this
	Attempts      int     // independent random initializations; best compactness wins
}

// DefaultKMeansParams returns the stock stopping rule: 200 iterations
// or centroid movement under 0.1, with 10 random restarts.
func DefaultKMeansParams() KMeansParams {
	return KMeansParams{
		MaxIterations: 200,
		Epsilon:       0.1,
		Attempts:      10,
	}
}

// DominantColor reduces a BGR region to its single dominant color, the
// centroid of a k=1 k-means run over all pixels. For k=1 the result is
// the pixel mean and is deterministic regardless of initialization.
// An empty region is an explicit error; the caller decides whether to
// skip or abort that detection.
func DominantColor(region gocv.Mat, params KMeansParams) (Color, error) {
	centers, err := DominantColors(region, 1, params)
	if err != nil {
		return Color{}, err
	}
	return centers[0], nil
}

// DominantColors clusters the region's pixels into k colors and returns
// the cluster centroids. k=1 is the pipeline's default; higher k is for
// diagnostics (cmd/colortest).
func DominantColors(region gocv.Mat, k int, params KMeansParams) ([]Color, error) {
	if region.Empty() {
		return nil, fmt.Errorf("empty region: no pixels to cluster")
	}
	if k < 1 {
		return nil, fmt.Errorf("invalid cluster count %d", k)
	}

	rows, cols := region.Rows(), region.Cols()
	n := rows * cols
	if n < k {
		return nil, fmt.Errorf("region has %d pixels, fewer than %d clusters", n, k)
	}

	// Flatten to an n x 3 float32 sample matrix.
	pixels := gocv.NewMatWithSize(n, 3, gocv.MatTypeCV32F)
	defer pixels.Close()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			idx := y*cols + x
			vec := region.GetVecbAt(y, x)
			pixels.SetFloatAt(idx, 0, float32(vec[0]))
			pixels.SetFloatAt(idx, 1, float32(vec[1]))
			pixels.SetFloatAt(idx, 2, float32(vec[2]))
		}
	}

	labels := gocv.NewMat()
	defer labels.Close()
	centers := gocv.NewMat()
	defer centers.Close()

	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, params.MaxIterations, params.Epsilon)
	gocv.KMeans(pixels, k, &labels, criteria, params.Attempts, gocv.KMeansRandomCenters, &centers)

	out := make([]Color, k)
	for i := 0; i < k; i++ {
		out[i] = Color{
			clampChannel(centers.GetFloatAt(i, 0)),
			clampChannel(centers.GetFloatAt(i, 1)),
			clampChannel(centers.GetFloatAt(i, 2)),
		}
	}
	return out, nil
}

// clampChannel truncates a centroid component to the 8-bit channel range.
func clampChannel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
