package gesture

import "fmt"

// Band is a position of a three-band Schmitt trigger.
type Band int

const (
	// BandMiddle is the resting band between the two boundaries.
	BandMiddle Band = iota
	// BandUpper lies above the upper boundary.
	BandUpper
	// BandLower lies below the lower boundary.
	BandLower
)

// String returns a human-readable band name.
func (b Band) String() string {
	switch b {
	case BandUpper:
		return "upper"
	case BandLower:
		return "lower"
	default:
		return "middle"
	}
}

// Boundary is one edge of the middle band, split into two thresholds.
// Enter must be crossed to leave the middle band; Exit must be crossed back to
// return to it. Exit lies between Enter and the middle band.
type Boundary struct {
	Enter float64
	Exit  float64
}

// Trigger splits a continuous metric into three bands with hysteresis.
type Trigger struct {
	Upper Boundary
	Lower Boundary
}

// Validate checks that the thresholds are ordered
// Lower.Enter <= Lower.Exit < Upper.Exit <= Upper.Enter.
func (t Trigger) Validate() error {
	if t.Lower.Exit < t.Lower.Enter {
		return fmt.Errorf("lower exit %.3f is below lower enter %.3f", t.Lower.Exit, t.Lower.Enter)
	}
	if t.Upper.Exit > t.Upper.Enter {
		return fmt.Errorf("upper exit %.3f is above upper enter %.3f", t.Upper.Exit, t.Upper.Enter)
	}
	if t.Lower.Exit >= t.Upper.Exit {
		return fmt.Errorf("lower exit %.3f must be below upper exit %.3f", t.Lower.Exit, t.Upper.Exit)
	}
	return nil
}

// Next returns the band for metric given the band of the previous tick.
// An outer band is kept until the metric crosses its exit threshold, at which
// point the metric is classified again from the middle band.
func (t Trigger) Next(prev Band, metric float64) Band {
	switch prev {
	case BandUpper:
		if metric >= t.Upper.Exit {
			return BandUpper
		}
	case BandLower:
		if metric <= t.Lower.Exit {
			return BandLower
		}
	}

	switch {
	case metric > t.Upper.Enter:
		return BandUpper
	case metric < t.Lower.Enter:
		return BandLower
	default:
		return BandMiddle
	}
}
