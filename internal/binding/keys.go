// Package binding maps classified gestures to keyboard keys.
package binding

import (
	"errors"
	"fmt"
	"sort"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidKey is returned when a key identifier is neither a single
// printable character nor a known key name.
var ErrInvalidKey = errors.New("invalid key")

// Key identifies a keyboard key: a single printable character such as "w",
// or a named key such as "up" or "page_down". The empty Key means no key.
type Key string

// NoKey binds nothing.
const NoKey Key = ""

// namedKeys lists the special keys that can be bound by name.
var namedKeys = map[Key]struct{}{}

func init() {
	names := []Key{
		"up", "down", "left", "right",
		"space", "enter", "tab", "esc", "backspace", "delete", "insert",
		"home", "end", "page_up", "page_down",
		"shift", "shift_l", "shift_r",
		"ctrl", "ctrl_l", "ctrl_r",
		"alt", "alt_l", "alt_r", "alt_gr",
		"cmd", "cmd_l", "cmd_r",
		"caps_lock", "num_lock", "scroll_lock",
		"menu", "pause", "print_screen",
		"media_play_pause", "media_next", "media_previous",
		"media_volume_up", "media_volume_down", "media_volume_mute",
	}
	for _, n := range names {
		namedKeys[n] = struct{}{}
	}
	for i := 1; i <= 20; i++ {
		namedKeys[Key(fmt.Sprintf("f%d", i))] = struct{}{}
	}
}

// ParseKey validates a key identifier. The empty string parses to NoKey.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return NoKey, nil
	}

	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return NoKey, fmt.Errorf("%w: %q is not printable", ErrInvalidKey, s)
		}
		return Key(s), nil
	}

	if _, ok := namedKeys[Key(s)]; !ok {
		return NoKey, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return Key(s), nil
}

// IsNamed reports whether k is a named special key rather than a character.
func (k Key) IsNamed() bool {
	_, ok := namedKeys[k]
	return ok
}

// IsNone reports whether k binds nothing.
func (k Key) IsNone() bool {
	return k == NoKey
}

// NamedKeys returns the sorted list of key names accepted by ParseKey.
func NamedKeys() []string {
	out := make([]string, 0, len(namedKeys))
	for k := range namedKeys {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}
