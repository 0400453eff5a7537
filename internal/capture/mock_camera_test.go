package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func closeAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}

func TestMockCamera_Playback(t *testing.T) {
	frames := BlankFrames(2)
	defer closeAll(frames)

	cam := NewMockCamera(frames, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Fatalf("ReadFrame() before Open() error = %v, want ErrCameraNotOpen", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		if f.Rows() != DefaultHeight || f.Cols() != DefaultWidth {
			t.Errorf("frame %d is %dx%d", i, f.Cols(), f.Rows())
		}
		f.Close()
	}

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("expected ErrEndOfStream after all frames consumed, got %v", err)
	}
}

func TestMockCamera_Loop(t *testing.T) {
	frames := BlankFrames(1)
	defer closeAll(frames)

	cam := NewMockCamera(frames, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_FailAt(t *testing.T) {
	frames := BlankFrames(3)
	defer closeAll(frames)

	boom := errors.New("dropped frame")
	cam := NewMockCamera(frames, false)
	cam.FailAt(1, boom)
	cam.Open()
	defer cam.Close()

	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() 0 error = %v", err)
	}
	f.Close()

	if _, err := cam.ReadFrame(); !errors.Is(err, boom) {
		t.Fatalf("ReadFrame() 1 error = %v, want %v", err, boom)
	}

	f, err = cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() 2 error = %v", err)
	}
	f.Close()
}
