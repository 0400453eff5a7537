package keyboard

import (
	"sync"

	"github.com/ayusman/volante/internal/binding"
)

// Recorder is an Emitter that records events for tests. Failing keys still
// get recorded so callers can see what was attempted.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	fail   map[binding.Key]error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{fail: make(map[binding.Key]error)}
}

// FailOn makes every event for key return err. A nil err clears the failure.
func (r *Recorder) FailOn(key binding.Key, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, key)
		return
	}
	r.fail[key] = err
}

func (r *Recorder) Press(key binding.Key) error {
	return r.record(Event{Action: Press, Key: key})
}

func (r *Recorder) Release(key binding.Key) error {
	return r.record(Event{Action: Release, Key: key})
}

func (r *Recorder) record(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.fail[e.Key]
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Held returns the keys pressed and not yet released, by replaying the log.
func (r *Recorder) Held() map[binding.Key]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	held := make(map[binding.Key]bool)
	for _, e := range r.events {
		if e.Action == Press {
			held[e.Key] = true
		} else {
			delete(held, e.Key)
		}
	}
	return held
}

// Reset clears the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
