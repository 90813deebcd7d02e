// Package main provides the entry point for the shelf color analyzer.
// Usage: shelf-colors <image>. The run detects products in the image,
// groups them by dominant color, and writes one row per color group to
// the configured database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/colors"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/config"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/detect"
	img "github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/image"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/pipeline"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/store"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/internal/version"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/pkg/colorutil"
	"github.com/Abdullah-Mazhar-Arhamsoft/retail-store-shelf-product-detection/pkg/log"
)

// Exit codes, one per failure category.
const (
	exitOK          = 0
	exitUsage       = 1
	exitInput       = 2
	exitDetection   = 3
	exitGeometry    = 4
	exitPersistence = 5
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <image>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Detects products in the image, groups them by dominant color,\n")
		fmt.Fprintf(os.Stderr, "and saves per-group results to the configured database.\n")
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		return exitUsage
	}
	imagePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	logger := log.New(cfg.LogLevel)
	logger.WithFields(log.Fields{"version": version.Version}).Info("Starting shelf color analyzer")

	cropPolicy, err := pipeline.ParseCropPolicy(cfg.CropPolicy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	detector, err := detect.NewYOLO(detect.Config{
		ModelPath:      cfg.ModelPath,
		LabelsPath:     cfg.LabelsPath,
		OrtLibraryPath: cfg.OrtLibraryPath,
		ConfThreshold:  float32(cfg.ConfThreshold),
		IoUThreshold:   float32(cfg.IoUThreshold),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: initialize detector: %v\n", err)
		return exitDetection
	}
	defer detector.Close()

	ctx := context.Background()
	repo, err := store.Open(cfg.DBDriver, cfg.DBDSN, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitPersistence
	}
	defer repo.Close()
	if err := repo.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitPersistence
	}

	p := pipeline.New(
		detector,
		pipeline.CodecFunc(func(path string) (pipeline.Frame, error) { return img.Load(path) }),
		repo,
		logger,
		pipeline.Options{
			ColorThreshold: cfg.ColorThreshold,
			KMeans: colors.KMeansParams{
				MaxIterations: cfg.KMeansMaxIter,
				Epsilon:       cfg.KMeansEpsilon,
				Attempts:      cfg.KMeansAttempts,
			},
			CropPolicy:    cropPolicy,
			DetectTimeout: cfg.DetectTimeout,
		},
	)

	summary, err := p.Run(ctx, imagePath)
	if summary != nil {
		printSummary(summary)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		switch {
		case errors.Is(err, pipeline.ErrInput):
			return exitInput
		case errors.Is(err, pipeline.ErrDetection):
			return exitDetection
		case errors.Is(err, pipeline.ErrGeometry):
			return exitGeometry
		case errors.Is(err, pipeline.ErrPersistence):
			return exitPersistence
		default:
			return exitUsage
		}
	}
	return exitOK
}

func printSummary(s *pipeline.Summary) {
	fmt.Printf("\nDetections: %d", s.Detections)
	if s.Skipped > 0 {
		fmt.Printf(" (%d skipped)", s.Skipped)
	}
	fmt.Printf("\n%d color groups:\n", len(s.Records))
	fmt.Printf("%-20s %8s %16s %10s\n", "Class", "Quantity", "Color (BGR)", "Shade")
	for _, rec := range s.Records {
		fmt.Printf("%-20s %8d %16s %10s\n",
			rec.ClassName, rec.Quantity, rec.Color.String(), colorutil.Name(rec.Color.Vec()))
	}
}
