// Package detector provides material classification interfaces and types
// for the recycling kiosk.
package detector

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// ErrUnavailable is returned when the classifier backend cannot run.
var ErrUnavailable = errors.New("classifier unavailable")

// Detection is a single classified object in a frame.
type Detection struct {
	Label      string          `json:"label"`
	Confidence float64         `json:"confidence"`
	Box        image.Rectangle `json:"box"`
}

// Detector defines the interface for material classification implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected materials.
	// Returns an empty slice if nothing is detected.
	Detect(frame *gocv.Mat) ([]Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for material detection.
type Config struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// IoUThreshold is the non-max-suppression IoU threshold (0.0-1.0).
	IoUThreshold float64

	// Labels restricts detection to this label whitelist.
	Labels []string

	// ScriptPath overrides the location of the model service script.
	ScriptPath string

	// PythonPath overrides the Python interpreter used to run it.
	PythonPath string
}

// DefaultConfig returns a Config with the kiosk's standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 0.8,
		IoUThreshold:  0.7,
		Labels:        []string{"cardboard", "metal", "paper", "plastic"},
	}
}
