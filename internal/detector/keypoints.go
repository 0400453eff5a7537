// Package detector provides body pose detection interfaces and types for the controller.
package detector

import "math"

// JointName identifies a body keypoint, following the COCO-17 convention.
type JointName string

// Body joints reported by the pose service.
const (
	Nose          JointName = "nose"
	LeftEye       JointName = "left_eye"
	RightEye      JointName = "right_eye"
	LeftEar       JointName = "left_ear"
	RightEar      JointName = "right_ear"
	LeftShoulder  JointName = "left_shoulder"
	RightShoulder JointName = "right_shoulder"
	LeftElbow     JointName = "left_elbow"
	RightElbow    JointName = "right_elbow"
	LeftWrist     JointName = "left_wrist"
	RightWrist    JointName = "right_wrist"
	LeftHip       JointName = "left_hip"
	RightHip      JointName = "right_hip"
	LeftKnee      JointName = "left_knee"
	RightKnee     JointName = "right_knee"
	LeftAnkle     JointName = "left_ankle"
	RightAnkle    JointName = "right_ankle"
)

// cocoOrder maps COCO keypoint indices to joint names.
var cocoOrder = [...]JointName{
	Nose, LeftEye, RightEye, LeftEar, RightEar,
	LeftShoulder, RightShoulder, LeftElbow, RightElbow,
	LeftWrist, RightWrist, LeftHip, RightHip,
	LeftKnee, RightKnee, LeftAnkle, RightAnkle,
}

// JointByIndex returns the joint name for a COCO keypoint index.
func JointByIndex(i int) (JointName, bool) {
	if i < 0 || i >= len(cocoOrder) {
		return "", false
	}
	return cocoOrder[i], true
}

// Point2D is a position normalized to the frame dimensions.
// The origin is the top-left corner and Y grows downward.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Joint is a detected keypoint with its confidence score in [0, 1].
type Joint struct {
	Position   Point2D `json:"position"`
	Confidence float64 `json:"confidence"`
}

// Body is a single detected person. It is created per frame and never mutated
// after detection.
type Body map[JointName]Joint

// Get returns the position of a joint if it was detected with at least
// minConfidence.
func (b Body) Get(name JointName, minConfidence float64) (Point2D, bool) {
	j, ok := b[name]
	if !ok || j.Confidence < minConfidence {
		return Point2D{}, false
	}
	return j.Position, true
}

// CenterX returns a representative horizontal coordinate for the body.
// It prefers the torso (shoulders and hips), then the wrists, then any joint.
func (b Body) CenterX(minConfidence float64) (float64, bool) {
	groups := [][]JointName{
		{LeftShoulder, RightShoulder, LeftHip, RightHip},
		{LeftWrist, RightWrist},
	}
	for _, names := range groups {
		if x, ok := b.meanX(names, minConfidence); ok {
			return x, true
		}
	}
	return b.meanX(cocoOrder[:], minConfidence)
}

func (b Body) meanX(names []JointName, minConfidence float64) (float64, bool) {
	var sum float64
	var n int
	for _, name := range names {
		if p, ok := b.Get(name, minConfidence); ok {
			sum += p.X
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Distance returns the mean Euclidean distance between the joints present in
// both bodies. If the bodies share no joint, it falls back to the distance
// between their centers. The second result is false when neither works.
func Distance(a, b Body, minConfidence float64) (float64, bool) {
	var total float64
	var n int
	for name := range a {
		pa, ok := a.Get(name, minConfidence)
		if !ok {
			continue
		}
		pb, ok := b.Get(name, minConfidence)
		if !ok {
			continue
		}
		total += distance2D(pa, pb)
		n++
	}
	if n > 0 {
		return total / float64(n), true
	}

	ax, okA := a.CenterX(minConfidence)
	bx, okB := b.CenterX(minConfidence)
	if !okA || !okB {
		return 0, false
	}
	return math.Abs(ax - bx), true
}

// distance2D calculates the Euclidean distance between two 2D points.
func distance2D(a, b Point2D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
