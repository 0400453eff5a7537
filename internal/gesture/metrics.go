package gesture

import (
	"math"

	"github.com/ayusman/volante/internal/detector"
)

// minTorsoSpan is the smallest nose-to-hip distance accepted for the
// torso-relative height metric.
const minTorsoSpan = 0.05

// HeightMetric computes how high the hands are held. Larger values mean
// physically higher hands.
//
// The pointer is the mean Y of the wrists, or of the shoulders when no wrist
// is visible. With the nose and a hip visible the pointer is expressed
// relative to the torso: 0 at hip level, 1 at nose level. Otherwise the metric
// is 1 - pointer in frame coordinates.
func HeightMetric(body detector.Body, minConfidence float64) (float64, bool) {
	pointer, ok := meanY(body, minConfidence, detector.LeftWrist, detector.RightWrist)
	if !ok {
		pointer, ok = meanY(body, minConfidence, detector.LeftShoulder, detector.RightShoulder)
	}
	if !ok {
		return 0, false
	}

	top, bottom := HeightScale(body, minConfidence)
	return (bottom - pointer) / (bottom - top), true
}

// HeightScale returns the frame Y coordinates where the height metric is 1
// (top) and 0 (bottom): the nose and hips when both are visible, otherwise
// the frame edges.
func HeightScale(body detector.Body, minConfidence float64) (top, bottom float64) {
	nose, noseOK := body.Get(detector.Nose, minConfidence)
	hip, hipOK := meanY(body, minConfidence, detector.LeftHip, detector.RightHip)
	if noseOK && hipOK && hip-nose.Y > minTorsoSpan {
		return nose.Y, hip
	}
	return 0, 1
}

// TiltMetric computes the steering angle in degrees within [-180, 180].
// Positive angles mean the screen-right hand is higher than the screen-left
// one, which turns the wheel counter-clockwise (left).
//
// Both wrists are required for the wheel angle; with a wrist missing the
// shoulder line is used as an estimate of the body lean.
func TiltMetric(body detector.Body, minConfidence float64) (float64, bool) {
	if angle, ok := lineAngle(body, minConfidence, detector.LeftWrist, detector.RightWrist); ok {
		return angle, true
	}
	return lineAngle(body, minConfidence, detector.LeftShoulder, detector.RightShoulder)
}

// lineAngle returns the angle of the line through two joints, measured from
// the screen-left joint to the screen-right joint with Y pointing up.
func lineAngle(body detector.Body, minConfidence float64, a, b detector.JointName) (float64, bool) {
	pa, okA := body.Get(a, minConfidence)
	pb, okB := body.Get(b, minConfidence)
	if !okA || !okB {
		return 0, false
	}

	left, right := pa, pb
	if right.X < left.X {
		left, right = right, left
	}

	dx := right.X - left.X
	dy := right.Y - left.Y
	if dx == 0 && dy == 0 {
		return 0, false
	}

	return math.Atan2(-dy, dx) * 180.0 / math.Pi, true
}

func meanY(body detector.Body, minConfidence float64, names ...detector.JointName) (float64, bool) {
	var sum float64
	var n int
	for _, name := range names {
		if p, ok := body.Get(name, minConfidence); ok {
			sum += p.Y
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
