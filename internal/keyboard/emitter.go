// Package keyboard injects key press and release events into the OS.
package keyboard

import (
	"fmt"
	"log"

	"github.com/ayusman/volante/internal/binding"
)

// Emitter presses and releases keys. Implementations are called from the
// control loop goroutine only.
type Emitter interface {
	Press(key binding.Key) error
	Release(key binding.Key) error
}

// Action is the kind of a key event.
type Action string

const (
	Press   Action = "press"
	Release Action = "release"
)

// Event is a single key transition.
type Event struct {
	Action Action
	Key    binding.Key
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Action, e.Key)
}

// Emit sends a single event to an emitter.
func Emit(em Emitter, e Event) error {
	switch e.Action {
	case Press:
		return em.Press(e.Key)
	case Release:
		return em.Release(e.Key)
	}
	return fmt.Errorf("unknown key action %q", e.Action)
}

// LogEmitter logs key events instead of injecting them. It backs --dry-run
// and video simulation.
type LogEmitter struct {
	logger *log.Logger
}

// NewLogEmitter creates a LogEmitter. A nil logger uses the standard logger.
func NewLogEmitter(logger *log.Logger) *LogEmitter {
	if logger == nil {
		logger = log.Default()
	}
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) Press(key binding.Key) error {
	e.logger.Printf("key press: %s", key)
	return nil
}

func (e *LogEmitter) Release(key binding.Key) error {
	e.logger.Printf("key release: %s", key)
	return nil
}
