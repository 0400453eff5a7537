package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	bodies   []Body
	sequence [][]Body
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetBodies sets the bodies that will be returned by every call to Detect.
func (m *MockDetector) SetBodies(bodies []Body) {
	m.bodies = bodies
	m.sequence = nil
}

// SetSequence makes Detect return the given results in order, one per call.
// Once the sequence is exhausted Detect returns no bodies.
func (m *MockDetector) SetSequence(seq [][]Body) {
	m.sequence = seq
	m.bodies = nil
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Detect returns the pre-configured bodies or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Body, error) {
	i := m.calls
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if m.sequence != nil {
		if i >= len(m.sequence) {
			return nil, nil
		}
		return m.sequence[i], nil
	}
	return m.bodies, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ArmsBody returns a body with shoulders at y=0.4 around centerX and the wrists
// at the given heights. The screen-left wrist is placed 0.1 left of the center.
// Without nose and hips the vertical metric of this body is 1 - mean wrist Y.
func ArmsBody(centerX, leftWristY, rightWristY float64) Body {
	return Body{
		LeftShoulder:  {Position: Point2D{X: centerX - 0.08, Y: 0.4}, Confidence: 0.9},
		RightShoulder: {Position: Point2D{X: centerX + 0.08, Y: 0.4}, Confidence: 0.9},
		LeftWrist:     {Position: Point2D{X: centerX - 0.1, Y: leftWristY}, Confidence: 0.9},
		RightWrist:    {Position: Point2D{X: centerX + 0.1, Y: rightWristY}, Confidence: 0.9},
	}
}

// StandingBody returns a full-torso body with the hands held level at chest height.
func StandingBody(centerX float64) Body {
	return Body{
		Nose:          {Position: Point2D{X: centerX, Y: 0.2}, Confidence: 0.95},
		LeftShoulder:  {Position: Point2D{X: centerX - 0.08, Y: 0.35}, Confidence: 0.9},
		RightShoulder: {Position: Point2D{X: centerX + 0.08, Y: 0.35}, Confidence: 0.9},
		LeftElbow:     {Position: Point2D{X: centerX - 0.1, Y: 0.48}, Confidence: 0.85},
		RightElbow:    {Position: Point2D{X: centerX + 0.1, Y: 0.48}, Confidence: 0.85},
		LeftWrist:     {Position: Point2D{X: centerX - 0.1, Y: 0.5}, Confidence: 0.85},
		RightWrist:    {Position: Point2D{X: centerX + 0.1, Y: 0.5}, Confidence: 0.85},
		LeftHip:       {Position: Point2D{X: centerX - 0.06, Y: 0.8}, Confidence: 0.8},
		RightHip:      {Position: Point2D{X: centerX + 0.06, Y: 0.8}, Confidence: 0.8},
	}
}
