// Package app runs the volante control loop: frames in, key events out.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/volante/internal/capture"
	"github.com/ayusman/volante/internal/detector"
)

// Config holds configuration options for the application loop.
type Config struct {
	// Interval is the tick period. Zero derives it from the source frame rate.
	Interval time.Duration
	// PublishFrames keeps the latest processed frame on Frames for a preview.
	PublishFrames bool
}

// Frame is a processed camera image with the snapshot of its tick.
// The receiver owns Image and must Close it.
type Frame struct {
	Image    *gocv.Mat
	Snapshot Snapshot
}

// App reads frames from a source, detects bodies and feeds them to the engine.
type App struct {
	config   Config
	source   capture.Source
	detector detector.Detector
	engine   *Engine
	frames   uint64
	failures uint64

	previews  chan Frame
	closeOnce sync.Once
}

// New creates a new App. The App does not own the source until Run.
func New(config Config, source capture.Source, det detector.Detector, engine *Engine) *App {
	a := &App{
		config:   config,
		source:   source,
		detector: det,
		engine:   engine,
	}
	if config.PublishFrames {
		a.previews = make(chan Frame, 1)
	}
	return a
}

// Frames returns the latest processed frame. Older frames are dropped when
// the reader falls behind and the channel is closed when Run returns. It is
// nil unless Config.PublishFrames is set.
func (a *App) Frames() <-chan Frame {
	return a.previews
}

// Engine returns the gesture-to-key engine.
func (a *App) Engine() *Engine {
	return a.engine
}

// SetPaused pauses or resumes key output.
func (a *App) SetPaused(paused bool) {
	a.engine.SetPaused(paused)
}

// IsPaused returns whether key output is paused.
func (a *App) IsPaused() bool {
	return a.engine.Paused()
}

// Run opens the source and ticks until ctx is cancelled or a video file
// ends. Every held key is released before Run returns, including when a
// tick panics.
func (a *App) Run(ctx context.Context) error {
	defer a.closeFrames()

	if err := a.source.Open(); err != nil {
		return fmt.Errorf("failed to open video source: %w", err)
	}
	defer func() {
		if err := a.source.Close(); err != nil {
			log.Printf("Error closing video source: %v", err)
		}
	}()
	defer a.engine.Shutdown()

	interval := a.config.Interval
	if interval <= 0 {
		fps := a.source.FPS()
		if fps <= 0 {
			fps = capture.DefaultFPS
		}
		interval = time.Second / time.Duration(fps)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Control loop started (%v per tick)", interval)
	defer func() {
		log.Printf("Control loop stopped after %d frames (%d failed)", a.frames, a.failures)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if done := a.step(); done {
				return nil
			}
		}
	}
}

// step processes one frame. It returns true when the source is exhausted.
// A failed read or detection counts as a frame without bodies.
func (a *App) step() bool {
	frame, err := a.source.ReadFrame()
	if errors.Is(err, capture.ErrEndOfStream) {
		log.Println("End of video stream")
		return true
	}
	if err != nil {
		a.failures++
		log.Printf("Error reading frame: %v", err)
		a.engine.Tick(nil)
		return false
	}
	a.frames++

	bodies, err := a.detector.Detect(frame)
	if err != nil {
		a.failures++
		log.Printf("Error detecting bodies: %v", err)
		bodies = nil
	}

	snap := a.engine.Tick(bodies)
	a.publishFrame(frame, snap)
	return false
}

// publishFrame hands the frame to the preview, replacing an unread one, or
// closes it when nobody watches.
func (a *App) publishFrame(img *gocv.Mat, snap Snapshot) {
	if a.previews == nil {
		img.Close()
		return
	}

	f := Frame{Image: img, Snapshot: snap}
	select {
	case a.previews <- f:
		return
	default:
	}
	select {
	case old := <-a.previews:
		old.Image.Close()
	default:
	}
	select {
	case a.previews <- f:
	default:
		img.Close()
	}
}

func (a *App) closeFrames() {
	if a.previews == nil {
		return
	}
	a.closeOnce.Do(func() {
		close(a.previews)
	})
}

// Close releases the detector.
func (a *App) Close() error {
	if a.detector == nil {
		return nil
	}
	return a.detector.Close()
}
