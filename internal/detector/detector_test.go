package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestBody_Get(t *testing.T) {
	body := Body{
		LeftWrist:  {Position: Point2D{X: 0.2, Y: 0.3}, Confidence: 0.9},
		RightWrist: {Position: Point2D{X: 0.4, Y: 0.3}, Confidence: 0.1},
	}

	t.Run("confident joint is present", func(t *testing.T) {
		p, ok := body.Get(LeftWrist, 0.3)
		if !ok {
			t.Fatal("expected left wrist to be present")
		}
		if p.X != 0.2 || p.Y != 0.3 {
			t.Errorf("unexpected position %+v", p)
		}
	})

	t.Run("low confidence joint is absent", func(t *testing.T) {
		if _, ok := body.Get(RightWrist, 0.3); ok {
			t.Error("expected right wrist below min confidence to be absent")
		}
	})

	t.Run("missing joint is absent", func(t *testing.T) {
		if _, ok := body.Get(Nose, 0.0); ok {
			t.Error("expected nose to be absent")
		}
	})

	t.Run("nil body has no joints", func(t *testing.T) {
		var b Body
		if _, ok := b.Get(Nose, 0); ok {
			t.Error("expected nil body to have no joints")
		}
	})
}

func TestBody_CenterX(t *testing.T) {
	tests := []struct {
		name   string
		body   Body
		want   float64
		wantOK bool
	}{
		{
			name:   "torso preferred over wrists",
			body:   ArmsBody(0.3, 0.5, 0.5),
			want:   0.3,
			wantOK: true,
		},
		{
			name: "wrists when torso missing",
			body: Body{
				LeftWrist:  {Position: Point2D{X: 0.6, Y: 0.5}, Confidence: 1},
				RightWrist: {Position: Point2D{X: 0.8, Y: 0.5}, Confidence: 1},
			},
			want:   0.7,
			wantOK: true,
		},
		{
			name: "any joint as last resort",
			body: Body{
				LeftKnee: {Position: Point2D{X: 0.9, Y: 0.9}, Confidence: 1},
			},
			want:   0.9,
			wantOK: true,
		},
		{
			name:   "empty body",
			body:   Body{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.body.CenterX(0.3)
			if ok != tt.wantOK {
				t.Fatalf("CenterX() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > epsilon {
				t.Errorf("CenterX() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	t.Run("identical bodies have zero distance", func(t *testing.T) {
		a := ArmsBody(0.5, 0.3, 0.3)
		d, ok := Distance(a, a, 0.3)
		if !ok {
			t.Fatal("expected distance to be computable")
		}
		if d > epsilon {
			t.Errorf("expected zero distance, got %f", d)
		}
	})

	t.Run("translated body", func(t *testing.T) {
		a := ArmsBody(0.3, 0.3, 0.3)
		b := ArmsBody(0.5, 0.3, 0.3)
		d, _ := Distance(a, b, 0.3)
		if math.Abs(d-0.2) > epsilon {
			t.Errorf("expected distance 0.2, got %f", d)
		}
	})

	t.Run("no shared joints falls back to centers", func(t *testing.T) {
		a := Body{Nose: {Position: Point2D{X: 0.1}, Confidence: 1}}
		b := Body{LeftKnee: {Position: Point2D{X: 0.4}, Confidence: 1}}
		d, ok := Distance(a, b, 0.3)
		if !ok {
			t.Fatal("expected fallback distance")
		}
		if math.Abs(d-0.3) > epsilon {
			t.Errorf("expected distance 0.3, got %f", d)
		}
	})
}

func TestJointByIndex(t *testing.T) {
	if name, ok := JointByIndex(9); !ok || name != LeftWrist {
		t.Errorf("JointByIndex(9) = %q, %v; want left_wrist", name, ok)
	}
	if _, ok := JointByIndex(17); ok {
		t.Error("JointByIndex(17) should be out of range")
	}
	if _, ok := JointByIndex(-1); ok {
		t.Error("JointByIndex(-1) should be out of range")
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("named and indexed keypoints", func(t *testing.T) {
		line := []byte(`{"bodies":[{"keypoints":[` +
			`{"name":"nose","x":0.5,"y":0.2,"score":0.9},` +
			`{"index":10,"x":0.6,"y":0.5,"score":0.8},` +
			`{"index":99,"x":0.6,"y":0.5,"score":0.8}]}]}` + "\n")

		bodies, err := parseResponse(line)
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(bodies) != 1 {
			t.Fatalf("expected 1 body, got %d", len(bodies))
		}
		if len(bodies[0]) != 2 {
			t.Errorf("expected 2 joints (unknown index skipped), got %d", len(bodies[0]))
		}
		if _, ok := bodies[0].Get(RightWrist, 0.5); !ok {
			t.Error("expected right wrist from index 10")
		}
	})

	t.Run("every body reported", func(t *testing.T) {
		line := []byte(`{"bodies":[{"keypoints":[]},{"keypoints":[]},{"keypoints":[]}]}`)
		bodies, err := parseResponse(line)
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(bodies) != 3 {
			t.Errorf("expected 3 bodies, got %d", len(bodies))
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{"error":"model not loaded"}`)); err == nil {
			t.Error("expected error from service error field")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := parseResponse([]byte(`not json`)); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLeftmost(t *testing.T) {
	right := ArmsBody(0.8, 0.5, 0.5)
	middle := ArmsBody(0.5, 0.5, 0.5)
	left := ArmsBody(0.2, 0.5, 0.5)
	bodies := []Body{right, middle, left}

	tests := []struct {
		name  string
		n     int
		wantX []float64
	}{
		{"no cap keeps all", 0, []float64{0.8, 0.5, 0.2}},
		{"cap above count", 5, []float64{0.8, 0.5, 0.2}},
		{"two leftmost in service order", 2, []float64{0.5, 0.2}},
		{"one", 1, []float64{0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := leftmost(bodies, tt.n, 0.3)
			if len(got) != len(tt.wantX) {
				t.Fatalf("got %d bodies, want %d", len(got), len(tt.wantX))
			}
			for i, want := range tt.wantX {
				x, _ := got[i].CenterX(0.3)
				if math.Abs(x-want) > epsilon {
					t.Errorf("body %d x = %f, want %f", i, x, want)
				}
			}
		})
	}

	t.Run("unusable bodies dropped first", func(t *testing.T) {
		ghost := Body{Nose: {Position: Point2D{X: 0.01, Y: 0.1}, Confidence: 0.1}}
		got := leftmost([]Body{ghost, right, middle}, 1, 0.3)
		if len(got) != 1 {
			t.Fatalf("got %d bodies, want 1", len(got))
		}
		if x, _ := got[0].CenterX(0.3); math.Abs(x-0.5) > epsilon {
			t.Errorf("kept body x = %f, want 0.5", x)
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty bodies by default", func(t *testing.T) {
		mock := NewMockDetector()

		bodies, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if bodies != nil {
			t.Errorf("expected nil bodies, got %v", bodies)
		}
	})

	t.Run("returns configured bodies", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetBodies([]Body{StandingBody(0.3), StandingBody(0.7)})

		bodies, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(bodies) != 2 {
			t.Errorf("expected 2 bodies, got %d", len(bodies))
		}
	})

	t.Run("plays back a sequence", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetSequence([][]Body{{StandingBody(0.5)}, nil})

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		if len(first) != 1 || len(second) != 0 || len(third) != 0 {
			t.Errorf("unexpected playback: %d, %d, %d", len(first), len(second), len(third))
		}
		if mock.Calls() != 3 {
			t.Errorf("expected 3 calls, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		bodies, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if bodies != nil {
			t.Errorf("expected nil bodies when error is set, got %v", bodies)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*PoseServiceDetector)(nil)
	})
}
