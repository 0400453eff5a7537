package detector

import "gocv.io/x/gocv"

// Detector defines the interface for body pose estimation implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected bodies.
	// Returns an empty slice if nobody is detected.
	Detect(frame *gocv.Mat) ([]Body, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// MaxBodies caps the bodies reported per frame, keeping the leftmost.
	// Zero (the default) reports every body and leaves the choice to the
	// player assigner.
	MaxBodies int

	// MinConfidence is the keypoint score below which a joint is treated as absent.
	MinConfidence float64

	// IdleTimeout shuts the pose service down after this long without frames.
	// Zero disables the idle shutdown.
	IdleTimeoutSec int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxBodies:      0,
		MinConfidence:  0.3,
		IdleTimeoutSec: 30,
	}
}
