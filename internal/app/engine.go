package app

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/ayusman/volante/internal/binding"
	"github.com/ayusman/volante/internal/detector"
	"github.com/ayusman/volante/internal/gesture"
	"github.com/ayusman/volante/internal/keyboard"
	"github.com/ayusman/volante/internal/player"
)

// EngineConfig holds everything the gesture-to-key engine needs.
type EngineConfig struct {
	Players  player.Config
	Gestures gesture.Config
	Bindings binding.Table
}

// DefaultEngineConfig returns two players with the default thresholds and keys.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Players:  player.DefaultConfig(),
		Gestures: gesture.DefaultConfig(),
		Bindings: binding.DefaultTable(),
	}
}

// SlotState is the observable state of one player slot after a tick.
type SlotState struct {
	ID             int
	Assigned       bool
	X              float64
	Body           detector.Body
	Classification gesture.Classification
	Keys           []binding.Key
}

// Snapshot is a read-only copy of the engine state after a tick.
type Snapshot struct {
	Tick   uint64
	Time   time.Time
	Paused bool
	Slots  []SlotState
	// Keys are the keys held after the tick, sorted.
	Keys   []binding.Key
	Events []keyboard.Event
	Failed int
}

// Engine turns detected bodies into key events, one tick at a time. Tick and
// Shutdown must be called from a single goroutine; SetPaused and Snapshots
// are safe from any goroutine.
type Engine struct {
	assigner   *player.Assigner
	classifier *gesture.Classifier
	bindings   binding.Table
	emitter    keyboard.Emitter

	states    []gesture.State
	held      KeySet
	tick      uint64
	paused    atomic.Bool
	snapshots chan Snapshot
}

// NewEngine validates config and creates an Engine with no keys held.
func NewEngine(config EngineConfig, emitter keyboard.Emitter) (*Engine, error) {
	assigner, err := player.NewAssigner(config.Players)
	if err != nil {
		return nil, fmt.Errorf("player config: %w", err)
	}
	classifier, err := gesture.NewClassifier(config.Gestures)
	if err != nil {
		return nil, fmt.Errorf("gesture config: %w", err)
	}
	if err := config.Bindings.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		assigner:   assigner,
		classifier: classifier,
		bindings:   config.Bindings,
		emitter:    emitter,
		states:     make([]gesture.State, config.Players.Slots),
		held:       NewKeySet(),
		snapshots:  make(chan Snapshot, 1),
	}, nil
}

// Tick runs one control step for this frame's bodies and returns the
// resulting snapshot.
func (e *Engine) Tick(bodies []detector.Body) Snapshot {
	e.tick++
	paused := e.paused.Load()

	slots := e.assigner.Assign(bodies)
	desired := NewKeySet()
	states := make([]SlotState, len(slots))

	for i, slot := range slots {
		body := slot.Body
		if paused {
			body = nil
		}

		next, c := e.classifier.Classify(e.states[i], body)
		e.states[i] = next

		keys := e.bindings.KeysFor(slot.ID, c)
		for _, k := range keys {
			desired.Add(k)
		}

		states[i] = SlotState{
			ID:             slot.ID,
			Assigned:       slot.Assigned(),
			X:              slot.X,
			Body:           slot.Body,
			Classification: c,
			Keys:           keys,
		}
	}

	events := Diff(e.held, desired)
	failed := Apply(e.emitter, events)
	// the attempted state is recorded even when some events failed
	e.held = desired

	snap := Snapshot{
		Tick:   e.tick,
		Time:   time.Now(),
		Paused: paused,
		Slots:  states,
		Keys:   e.held.Sorted(),
		Events: events,
		Failed: failed,
	}
	e.publish(snap)
	return snap
}

// Shutdown releases every held key. It is safe to call more than once.
func (e *Engine) Shutdown() []keyboard.Event {
	events := Diff(e.held, NewKeySet())
	if len(events) > 0 {
		log.Printf("Releasing %d held keys", len(events))
	}
	Apply(e.emitter, events)
	e.held = NewKeySet()
	for i := range e.states {
		e.states[i] = gesture.State{}
	}
	return events
}

// SetPaused stops or resumes key output. While paused every key is released
// and classification restarts from idle on resume.
func (e *Engine) SetPaused(paused bool) {
	if e.paused.Swap(paused) != paused {
		log.Printf("Controller paused: %v", paused)
	}
}

// Paused reports whether key output is paused.
func (e *Engine) Paused() bool {
	return e.paused.Load()
}

// Held returns the keys currently believed held, sorted.
func (e *Engine) Held() []binding.Key {
	return e.held.Sorted()
}

// Snapshots returns a channel holding the most recent snapshot. Older
// snapshots are dropped when the reader falls behind.
func (e *Engine) Snapshots() <-chan Snapshot {
	return e.snapshots
}

func (e *Engine) publish(s Snapshot) {
	select {
	case e.snapshots <- s:
	default:
		select {
		case <-e.snapshots:
		default:
		}
		select {
		case e.snapshots <- s:
		default:
		}
	}
}
