package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/volante/internal/detector"
)

func joint(x, y float64) detector.Joint {
	return detector.Joint{Position: detector.Point2D{X: x, Y: y}, Confidence: 0.9}
}

func TestHeightMetric(t *testing.T) {
	tests := []struct {
		name   string
		body   detector.Body
		want   float64
		wantOK bool
	}{
		{
			name:   "wrists in frame coordinates",
			body:   detector.ArmsBody(0.5, 0.2, 0.4),
			want:   0.7,
			wantOK: true,
		},
		{
			name: "torso relative with nose and hips",
			body: detector.Body{
				detector.Nose:       joint(0.5, 0.2),
				detector.LeftHip:    joint(0.45, 0.8),
				detector.RightHip:   joint(0.55, 0.8),
				detector.LeftWrist:  joint(0.4, 0.35),
				detector.RightWrist: joint(0.6, 0.35),
			},
			want:   0.75,
			wantOK: true,
		},
		{
			name: "shoulders when wrists are missing",
			body: detector.Body{
				detector.LeftShoulder:  joint(0.4, 0.4),
				detector.RightShoulder: joint(0.6, 0.4),
			},
			want:   0.6,
			wantOK: true,
		},
		{
			name: "low confidence wrists fall back to shoulders",
			body: detector.Body{
				detector.LeftShoulder: joint(0.4, 0.3),
				detector.LeftWrist: {
					Position:   detector.Point2D{X: 0.4, Y: 0.9},
					Confidence: 0.1,
				},
			},
			want:   0.7,
			wantOK: true,
		},
		{
			name:   "nothing usable",
			body:   detector.Body{detector.Nose: joint(0.5, 0.2)},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HeightMetric(tt.body, 0.3)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestTiltMetric(t *testing.T) {
	t.Run("wrist angle independent of keypoint side", func(t *testing.T) {
		body := detector.Body{
			// a mirrored frame may report the screen-right wrist as "left"
			detector.LeftWrist:  joint(0.6, 0.4),
			detector.RightWrist: joint(0.4, 0.6),
		}
		got, ok := TiltMetric(body, 0.3)
		assert.True(t, ok)
		assert.InDelta(t, 45.0, got, 1e-9)
	})

	t.Run("shoulder line when a wrist is missing", func(t *testing.T) {
		body := detector.Body{
			detector.LeftShoulder:  joint(0.4, 0.4),
			detector.RightShoulder: joint(0.6, 0.6),
			detector.LeftWrist:     joint(0.3, 0.5),
		}
		got, ok := TiltMetric(body, 0.3)
		assert.True(t, ok)
		assert.InDelta(t, -45.0, got, 1e-9)
	})

	t.Run("no pair available", func(t *testing.T) {
		_, ok := TiltMetric(detector.Body{detector.LeftWrist: joint(0.3, 0.5)}, 0.3)
		assert.False(t, ok)
	})

	t.Run("coincident joints", func(t *testing.T) {
		body := detector.Body{
			detector.LeftWrist:  joint(0.5, 0.5),
			detector.RightWrist: joint(0.5, 0.5),
		}
		_, ok := TiltMetric(body, 0.3)
		assert.False(t, ok)
	})
}

func TestHeightScale(t *testing.T) {
	top, bottom := HeightScale(detector.StandingBody(0.5), 0.3)
	assert.InDelta(t, 0.2, top, 1e-9)
	assert.InDelta(t, 0.8, bottom, 1e-9)

	top, bottom = HeightScale(detector.ArmsBody(0.5, 0.3, 0.3), 0.3)
	assert.Equal(t, 0.0, top)
	assert.Equal(t, 1.0, bottom)
}
