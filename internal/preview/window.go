package preview

import (
	"context"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/volante/internal/app"
)

// keyPoll is how often the window handles events when no frame arrives.
const keyPoll = 30 * time.Millisecond

// Window shows annotated frames in a desktop window.
type Window struct {
	title   string
	overlay *Overlay
}

// NewWindow creates a Window; nothing is shown until Run.
func NewWindow(title string, overlay *Overlay) *Window {
	return &Window{title: title, overlay: overlay}
}

// Run shows frames until ctx is done, the frames channel closes, the window
// is closed or the user presses q. GUI calls are bound to one OS thread, so
// Run must be called from the main goroutine with the thread locked.
func (w *Window) Run(ctx context.Context, frames <-chan app.Frame) {
	win := gocv.NewWindow(w.title)
	defer win.Close()

	ticker := time.NewTicker(keyPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			drain(frames)
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			w.overlay.Draw(f.Image, f.Snapshot)
			win.IMShow(*f.Image)
			f.Image.Close()
		case <-ticker.C:
		}

		if quitKey(win.WaitKey(1)) {
			log.Println("Received 'q', quitting")
			return
		}
		if !win.IsOpen() {
			return
		}
	}
}

func quitKey(key int) bool {
	return key == 'q' || key == 'Q'
}

// drain closes frames left in the channel without blocking.
func drain(frames <-chan app.Frame) {
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				return
			}
			f.Image.Close()
		default:
			return
		}
	}
}
