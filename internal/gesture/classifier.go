// Package gesture classifies body poses into discrete racing-wheel controls.
package gesture

import (
	"fmt"

	"github.com/ayusman/volante/internal/detector"
)

// VerticalBand is the discrete arm height which drives throttle and brake.
type VerticalBand string

const (
	// High means the hands are raised (accelerate by default).
	High VerticalBand = "high"
	// Mid is the resting position and means no throttle or brake.
	Mid VerticalBand = "mid"
	// Low means the hands are lowered (brake by default).
	Low VerticalBand = "low"
)

// TiltDirection is the discrete steering direction.
type TiltDirection string

const (
	// Left means the wheel is turned counter-clockwise.
	Left TiltDirection = "left"
	// Neutral means the wheel is held level.
	Neutral TiltDirection = "neutral"
	// Right means the wheel is turned clockwise.
	Right TiltDirection = "right"
)

// Config holds the classification thresholds.
type Config struct {
	// MinConfidence is the keypoint score below which a joint is ignored.
	MinConfidence float64
	// Vertical splits the height metric; Upper is HIGH and Lower is LOW.
	Vertical Trigger
	// Tilt splits the steering angle in degrees; Upper is LEFT and Lower is RIGHT.
	Tilt Trigger
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 0.3,
		Vertical: Trigger{
			Upper: Boundary{Enter: 0.80, Exit: 0.75},
			Lower: Boundary{Enter: 0.20, Exit: 0.25},
		},
		Tilt: Trigger{
			Upper: Boundary{Enter: 22, Exit: 15},
			Lower: Boundary{Enter: -22, Exit: -15},
		},
	}
}

// Validate checks the thresholds.
func (c Config) Validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be between 0 and 1, got %f", c.MinConfidence)
	}
	if err := c.Vertical.Validate(); err != nil {
		return fmt.Errorf("vertical thresholds: %w", err)
	}
	if err := c.Tilt.Validate(); err != nil {
		return fmt.Errorf("tilt thresholds: %w", err)
	}
	return nil
}

// State is the hysteresis memory of one player slot.
// The zero value is the idle state.
type State struct {
	Vertical Band
	Tilt     Band
}

// Classification is the outcome of classifying one body on one tick.
type Classification struct {
	Band VerticalBand
	Tilt TiltDirection

	// Height and Angle are the raw metrics, valid only when the matching
	// HasHeight / HasAngle flag is set. An axis without its metric was not
	// detected: its band is the idle value but it must not trigger a key.
	Height    float64
	Angle     float64
	HasHeight bool
	HasAngle  bool
}

// Idle is the classification of a slot without a usable body. Neither axis
// is detected.
var Idle = Classification{Band: Mid, Tilt: Neutral}

// Classifier converts bodies into classifications.
// It holds only configuration; the per-slot memory is passed in explicitly.
type Classifier struct {
	config Config
}

// NewClassifier creates a new Classifier with the given configuration.
func NewClassifier(config Config) (*Classifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{config: config}, nil
}

// Classify computes the next state and classification for a slot.
// A nil body means the slot is unassigned this tick and yields Idle.
func (c *Classifier) Classify(prev State, body detector.Body) (State, Classification) {
	if body == nil {
		return State{}, Idle
	}

	next := State{}
	result := Idle

	if height, ok := HeightMetric(body, c.config.MinConfidence); ok {
		next.Vertical = c.config.Vertical.Next(prev.Vertical, height)
		result.Height = height
		result.HasHeight = true
	}

	if angle, ok := TiltMetric(body, c.config.MinConfidence); ok {
		next.Tilt = c.config.Tilt.Next(prev.Tilt, angle)
		result.Angle = angle
		result.HasAngle = true
	}

	result.Band = verticalBand(next.Vertical)
	result.Tilt = tiltDirection(next.Tilt)
	return next, result
}

// ClassifyHeight advances only the vertical axis for a raw metric.
func (c *Classifier) ClassifyHeight(prev Band, height float64) (Band, VerticalBand) {
	next := c.config.Vertical.Next(prev, height)
	return next, verticalBand(next)
}

// ClassifyAngle advances only the tilt axis for a raw angle in degrees.
func (c *Classifier) ClassifyAngle(prev Band, angle float64) (Band, TiltDirection) {
	next := c.config.Tilt.Next(prev, angle)
	return next, tiltDirection(next)
}

func verticalBand(b Band) VerticalBand {
	switch b {
	case BandUpper:
		return High
	case BandLower:
		return Low
	default:
		return Mid
	}
}

func tiltDirection(b Band) TiltDirection {
	switch b {
	case BandUpper:
		return Left
	case BandLower:
		return Right
	default:
		return Neutral
	}
}
