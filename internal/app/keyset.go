package app

import (
	"log"
	"sort"

	"github.com/ayusman/volante/internal/binding"
	"github.com/ayusman/volante/internal/keyboard"
)

// KeySet is a set of keys, used for both the keys believed held and the keys
// wanted on a tick.
type KeySet map[binding.Key]struct{}

// NewKeySet builds a set from keys, ignoring NoKey.
func NewKeySet(keys ...binding.Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts k unless it is NoKey.
func (s KeySet) Add(k binding.Key) {
	if k.IsNone() {
		return
	}
	s[k] = struct{}{}
}

// Has reports whether k is in the set.
func (s KeySet) Has(k binding.Key) bool {
	_, ok := s[k]
	return ok
}

// Sorted returns the keys in lexical order.
func (s KeySet) Sorted() []binding.Key {
	out := make([]binding.Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Diff returns the events that move the keyboard from current to desired:
// releases of keys no longer wanted, then presses of newly wanted keys, each
// group in lexical order. Keys in both sets produce no event.
func Diff(current, desired KeySet) []keyboard.Event {
	var events []keyboard.Event
	for _, k := range current.Sorted() {
		if !desired.Has(k) {
			events = append(events, keyboard.Event{Action: keyboard.Release, Key: k})
		}
	}
	for _, k := range desired.Sorted() {
		if !current.Has(k) {
			events = append(events, keyboard.Event{Action: keyboard.Press, Key: k})
		}
	}
	return events
}

// Apply sends events in order. Failures are logged and do not stop the
// remaining events; the number of failures is returned.
func Apply(em keyboard.Emitter, events []keyboard.Event) int {
	failed := 0
	for _, e := range events {
		if err := keyboard.Emit(em, e); err != nil {
			log.Printf("Key %s failed: %v", e, err)
			failed++
		}
	}
	return failed
}
