// Package config loads pipeline configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the analysis pipeline. All values have
// working defaults; a .env file or environment variables override them.
type Config struct {
	// Detector
	ModelPath      string        `validate:"required"`
	LabelsPath     string        `validate:"required"`
	OrtLibraryPath string        // empty = ONNX Runtime already loadable
	ConfThreshold  float64       `validate:"gte=0,lte=1"`
	IoUThreshold   float64       `validate:"gte=0,lte=1"`
	DetectTimeout  time.Duration `validate:"gt=0"`

	// Color extraction and grouping
	ColorThreshold float64 `validate:"gt=0"`
	KMeansMaxIter  int     `validate:"gt=0"`
	KMeansEpsilon  float64 `validate:"gt=0"`
	KMeansAttempts int     `validate:"gt=0"`

	// Per-detection crop failure policy: skip the detection or abort the run.
	CropPolicy string `validate:"oneof=skip abort"`

	// Persistence
	DBDriver string `validate:"oneof=sqlite3 postgres"`
	DBDSN    string `validate:"required"`

	LogLevel string
}

// Load reads an optional .env file, applies environment overrides on
// top of the defaults, and validates the result.
func Load() (Config, error) {
	// A missing .env is not an error; the environment alone is enough.
	_ = godotenv.Load()

	cfg := Config{
		ModelPath:      "model/yolov8m.onnx",
		LabelsPath:     "model/coco.names",
		ConfThreshold:  0.25,
		IoUThreshold:   0.45,
		DetectTimeout:  30 * time.Second,
		ColorThreshold: 10.0,
		KMeansMaxIter:  200,
		KMeansEpsilon:  0.1,
		KMeansAttempts: 10,
		CropPolicy:     "skip",
		DBDriver:       "sqlite3",
		DBDSN:          "colors_database.db",
		LogLevel:       "info",
	}

	var err error
	cfg.ModelPath = envString("MODEL_PATH", cfg.ModelPath)
	cfg.LabelsPath = envString("CLASS_NAMES_PATH", cfg.LabelsPath)
	cfg.OrtLibraryPath = envString("ORT_LIBRARY_PATH", cfg.OrtLibraryPath)
	if cfg.ConfThreshold, err = envFloat("CONF_THRESHOLD", cfg.ConfThreshold); err != nil {
		return Config{}, err
	}
	if cfg.IoUThreshold, err = envFloat("IOU_THRESHOLD", cfg.IoUThreshold); err != nil {
		return Config{}, err
	}
	if cfg.DetectTimeout, err = envDuration("DETECT_TIMEOUT", cfg.DetectTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ColorThreshold, err = envFloat("COLOR_SIMILARITY_THRESHOLD", cfg.ColorThreshold); err != nil {
		return Config{}, err
	}
	if cfg.KMeansMaxIter, err = envInt("KMEANS_MAX_ITERATIONS", cfg.KMeansMaxIter); err != nil {
		return Config{}, err
	}
	if cfg.KMeansEpsilon, err = envFloat("KMEANS_EPSILON", cfg.KMeansEpsilon); err != nil {
		return Config{}, err
	}
	if cfg.KMeansAttempts, err = envInt("KMEANS_ATTEMPTS", cfg.KMeansAttempts); err != nil {
		return Config{}, err
	}
	cfg.CropPolicy = envString("CROP_POLICY", cfg.CropPolicy)
	cfg.DBDriver = envString("DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = envString("DB_DSN", cfg.DBDSN)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
