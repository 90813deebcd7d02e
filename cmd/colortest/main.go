// Command colortest extracts the dominant colors of a whole image and
// prints them, without running detection or touching the database.
// Useful for sanity-checking the k-means extraction on sample crops.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/colors"
	img "github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/image"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/pkg/colorutil"
)

func main() {
	imagePath := flag.String("image", "", "Path to image (PNG, JPEG, TIFF, or BMP)")
	k := flag.Int("k", 3, "Number of dominant colors to extract")
	maxIter := flag.Int("max-iter", 200, "K-means iteration cap")
	epsilon := flag.Float64("epsilon", 0.1, "K-means convergence epsilon")
	attempts := flag.Int("attempts", 10, "K-means random restarts")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: colortest -image <path> [-k 3] [-max-iter 200] [-epsilon 0.1] [-attempts 10]")
		os.Exit(1)
	}

	frame, err := img.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	defer frame.Close()

	w, h := frame.Size()
	fmt.Printf("Loaded image: %dx%d pixels\n", w, h)

	params := colors.KMeansParams{
		MaxIterations: *maxIter,
		Epsilon:       *epsilon,
		Attempts:      *attempts,
	}
	fmt.Printf("K-means: k=%d max-iter=%d epsilon=%.2f attempts=%d\n\n",
		*k, params.MaxIterations, params.Epsilon, params.Attempts)

	dominant, err := colors.DominantColors(frame.Mat(), *k, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-6s %16s %10s\n", "Rank", "Color (BGR)", "Shade")
	for i, c := range dominant {
		fmt.Printf("%-6d %16s %10s\n", i+1, c.String(), colorutil.Name(c.Vec()))
	}
}
