package pipeline

import "errors"

// Failure categories. Run wraps every returned error in exactly one of
// these so callers can map categories with errors.Is — the CLI turns
// them into distinct exit codes.
var (
	// ErrInput covers unreadable or undecodable image files.
	ErrInput = errors.New("input error")

	// ErrDetection covers detector failures, including timeout.
	ErrDetection = errors.New("detection error")

	// ErrGeometry covers degenerate or out-of-range crops that yield
	// zero pixels. Only surfaced from Run under CropAbort; under
	// CropSkip the offending detection is logged and dropped.
	ErrGeometry = errors.New("geometry error")

	// ErrPersistence covers store failures. The computed records are
	// still returned alongside it.
	ErrPersistence = errors.New("persistence error")
)
