// Package tray provides a system tray menu to pause the controller and watch its state.
package tray

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/volante/internal/app"
)

// Tray represents the system tray application.
type Tray struct {
	onPause func(paused bool)
	onQuit  func()
	paused  bool
	slots   int
	mu      sync.RWMutex

	menuPause   *systray.MenuItem
	menuPlayers []*systray.MenuItem
	menuKeys    *systray.MenuItem
}

// New creates a Tray showing the given number of player slots.
func New(slots int) *Tray {
	return &Tray{slots: slots}
}

// OnPause sets the callback called when output is paused or resumed.
func (t *Tray) OnPause(fn func(paused bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPause = fn
}

// OnQuit sets the callback called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It blocks until Quit is called and must run on
// the main goroutine on macOS.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Volante")
	systray.SetTooltip("Volante virtual steering wheel")

	t.mu.Lock()
	t.menuPause = systray.AddMenuItem(pauseTitle(t.paused), "Pause or resume key output")
	systray.AddSeparator()
	for i := 1; i <= t.slots; i++ {
		item := systray.AddMenuItem(fmt.Sprintf("Player %d: not detected", i), "")
		item.Disable()
		t.menuPlayers = append(t.menuPlayers, item)
	}
	t.menuKeys = systray.AddMenuItem("Keys: none", "Keys currently held")
	t.menuKeys.Disable()
	t.mu.Unlock()

	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Volante")

	go func() {
		for {
			select {
			case <-t.menuPause.ClickedCh:
				t.handlePause()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handlePause() {
	t.mu.Lock()
	t.paused = !t.paused
	paused := t.paused
	if t.menuPause != nil {
		t.menuPause.SetTitle(pauseTitle(paused))
	}
	callback := t.onPause
	t.mu.Unlock()

	// outside the lock
	if callback != nil {
		callback(paused)
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// IsPaused returns the pause state shown in the menu.
func (t *Tray) IsPaused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

// Update shows a snapshot in the menu.
func (t *Tray) Update(snap app.Snapshot) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, s := range snap.Slots {
		if i < len(t.menuPlayers) {
			t.menuPlayers[i].SetTitle(SlotLine(s))
		}
	}
	if t.menuKeys != nil {
		t.menuKeys.SetTitle(KeysLine(snap))
	}
}

// Watch updates the menu from snapshots until ctx is done or the channel closes.
func (t *Tray) Watch(ctx context.Context, snapshots <-chan app.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			t.Update(snap)
		}
	}
}

func pauseTitle(paused bool) string {
	if paused {
		return "○ Paused"
	}
	return "● Active"
}

// SlotLine describes one player slot, e.g. "Player 1: high, left".
func SlotLine(s app.SlotState) string {
	if !s.Assigned {
		return fmt.Sprintf("Player %d: not detected", s.ID)
	}
	return fmt.Sprintf("Player %d: %s, %s", s.ID, s.Classification.Band, s.Classification.Tilt)
}

// KeysLine lists the held keys of a snapshot.
func KeysLine(snap app.Snapshot) string {
	if snap.Paused {
		return "Keys: paused"
	}
	if len(snap.Keys) == 0 {
		return "Keys: none"
	}
	names := make([]string, len(snap.Keys))
	for i, k := range snap.Keys {
		names[i] = string(k)
	}
	return "Keys: " + strings.Join(names, ", ")
}
