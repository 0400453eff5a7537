// Package capture reads video frames from a camera or a video file using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when trying to read from a source that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEndOfStream is returned when a video file has no more frames.
	ErrEndOfStream = errors.New("end of video stream")
)

// Source defines the interface for frame sources.
type Source interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller closes the returned Mat.
	ReadFrame() (*gocv.Mat, error)
	FPS() int
	IsOpen() bool
}

// Config selects and configures a frame source.
type Config struct {
	// DeviceID is the camera index, used when Path is empty.
	DeviceID int
	// Path is a video file to play back instead of a camera.
	Path string
	// Mirror flips frames horizontally so the picture acts like a mirror.
	Mirror bool
	// FPS is the requested camera frame rate. Video files use their own rate.
	FPS int
}

// DefaultConfig returns a mirrored camera 0 at DefaultFPS.
func DefaultConfig() Config {
	return Config{
		DeviceID: 0,
		Mirror:   true,
		FPS:      DefaultFPS,
	}
}

// New creates the Source described by config. Nothing is opened yet.
func New(config Config) Source {
	if config.FPS <= 0 {
		config.FPS = DefaultFPS
	}
	return &videoSource{config: config}
}

// NewCamera creates a mirrored camera Source for the given device.
func NewCamera(deviceID int) Source {
	cfg := DefaultConfig()
	cfg.DeviceID = deviceID
	return New(cfg)
}

// NewVideoFile creates an unmirrored Source that plays back a video file.
func NewVideoFile(path string) Source {
	cfg := DefaultConfig()
	cfg.Path = path
	cfg.Mirror = false
	return New(cfg)
}

// videoSource wraps a gocv.VideoCapture for both devices and files.
type videoSource struct {
	config  Config
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
}

func (s *videoSource) isFile() bool {
	return s.config.Path != ""
}

// Open opens the device or file. Cameras are set to 640x480 for performance.
func (s *videoSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	if s.isFile() {
		capture, err = gocv.VideoCaptureFile(s.config.Path)
		if err != nil {
			return fmt.Errorf("open video %s: %w", s.config.Path, err)
		}
	} else {
		capture, err = gocv.OpenVideoCapture(s.config.DeviceID)
		if err != nil {
			return fmt.Errorf("open camera %d: %w", s.config.DeviceID, err)
		}
		capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
		capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
		capture.Set(gocv.VideoCaptureFPS, float64(s.config.FPS))
	}

	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open %s: %w", s.name(), ErrCameraNotOpen)
	}

	s.fps = s.config.FPS
	if s.isFile() {
		if fps := int(capture.Get(gocv.VideoCaptureFPS)); fps > 0 {
			s.fps = fps
		}
	}

	s.capture = capture
	s.running = true

	return nil
}

func (s *videoSource) name() string {
	if s.isFile() {
		return s.config.Path
	}
	return fmt.Sprintf("camera %d", s.config.DeviceID)
}

// Close releases the capture device.
func (s *videoSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.capture == nil {
		s.running = false
		return nil
	}

	err := s.capture.Close()
	s.capture = nil
	s.running = false

	return err
}

// ReadFrame reads and, if configured, mirrors the next frame.
func (s *videoSource) ReadFrame() (*gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := s.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		if s.isFile() {
			return nil, ErrEndOfStream
		}
		return nil, errors.New("failed to read frame from camera")
	}

	if s.config.Mirror {
		gocv.Flip(mat, &mat, 1)
	}

	return &mat, nil
}

// FPS returns the frame rate: the camera setting, or the file's own rate once open.
func (s *videoSource) FPS() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fps > 0 {
		return s.fps
	}
	return s.config.FPS
}

// IsOpen returns true if the source is currently open.
func (s *videoSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}
