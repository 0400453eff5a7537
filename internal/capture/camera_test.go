package capture

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		source  Source
		wantFPS int
	}{
		{"camera", NewCamera(0), DefaultFPS},
		{"camera 2", NewCamera(2), DefaultFPS},
		{"video file", NewVideoFile("clip.mp4"), DefaultFPS},
		{"custom fps", New(Config{FPS: 30}), 30},
		{"zero fps falls back", New(Config{}), DefaultFPS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.source.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			if tt.source.IsOpen() {
				t.Error("source should not be open initially")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Mirror {
		t.Error("camera frames should be mirrored by default")
	}
	if cfg.Path != "" {
		t.Errorf("default config should use a camera, got path %q", cfg.Path)
	}
}

func TestSource_ReadFrame_NotOpened(t *testing.T) {
	for _, src := range []Source{NewCamera(0), NewVideoFile("clip.mp4")} {
		if _, err := src.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
			t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
		}
	}
}

func TestSource_Close_NotOpened(t *testing.T) {
	if err := NewCamera(0).Close(); err != nil {
		t.Errorf("Close() on not opened camera should return nil, got: %v", err)
	}
}

func TestVideoFile_OpenMissing(t *testing.T) {
	src := NewVideoFile(filepath.Join(t.TempDir(), "missing.mp4"))
	if err := src.Open(); err == nil {
		src.Close()
		t.Fatal("expected error opening a missing file")
	}
	if src.IsOpen() {
		t.Error("source should not be open after a failed Open()")
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(0)
	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}
