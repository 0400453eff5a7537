package binding

import (
	"fmt"
	"strings"

	"github.com/ayusman/volante/internal/gesture"
)

// Players is the number of player slots a table holds bindings for.
const Players = 2

// Values lists the gesture values a key can be bound to, in flag order.
var Values = []string{"high", "mid", "low", "left", "neutral", "right"}

// PlayerBindings holds the keys of one player slot.
type PlayerBindings struct {
	High    Key `json:"high"`
	Mid     Key `json:"mid"`
	Low     Key `json:"low"`
	Left    Key `json:"left"`
	Neutral Key `json:"neutral"`
	Right   Key `json:"right"`
}

// Get returns the key bound to a gesture value.
func (p PlayerBindings) Get(value string) (Key, bool) {
	switch value {
	case "high":
		return p.High, true
	case "mid":
		return p.Mid, true
	case "low":
		return p.Low, true
	case "left":
		return p.Left, true
	case "neutral":
		return p.Neutral, true
	case "right":
		return p.Right, true
	}
	return NoKey, false
}

func (p *PlayerBindings) set(value string, k Key) bool {
	switch value {
	case "high":
		p.High = k
	case "mid":
		p.Mid = k
	case "low":
		p.Low = k
	case "left":
		p.Left = k
	case "neutral":
		p.Neutral = k
	case "right":
		p.Right = k
	default:
		return false
	}
	return true
}

// FlagName returns the command line flag that configures a binding.
func FlagName(player int, value string) string {
	return fmt.Sprintf("key-for-player%d-%s", player, value)
}

// InvalidKeysError lists every binding whose key could not be parsed.
type InvalidKeysError struct {
	// Invalid holds entries such as `--key-for-player1-high == "foo"`.
	Invalid []string
}

func (e *InvalidKeysError) Error() string {
	return "the following key names are invalid: " + strings.Join(e.Invalid, ", ")
}

func (e *InvalidKeysError) Unwrap() error {
	return ErrInvalidKey
}

// Override replaces a single binding.
type Override struct {
	Player int
	Value  string
	Key    string
}

// Table maps (player slot, gesture value) to a key. A Table is immutable once
// built; the With* methods return modified copies.
type Table struct {
	players [Players]PlayerBindings
}

// DefaultTable returns the arrow keys for player 1 and WASD for player 2.
// MID and NEUTRAL are unbound.
func DefaultTable() Table {
	return NewTable(
		PlayerBindings{High: "up", Low: "down", Left: "left", Right: "right"},
		PlayerBindings{High: "w", Low: "s", Left: "a", Right: "d"},
	)
}

// NewTable builds a table from per-player bindings. Call Validate before use
// when the keys come from user input.
func NewTable(player1, player2 PlayerBindings) Table {
	return Table{players: [Players]PlayerBindings{player1, player2}}
}

// Player returns the bindings of a slot (1 or 2).
func (t Table) Player(slot int) PlayerBindings {
	if slot < 1 || slot > Players {
		return PlayerBindings{}
	}
	return t.players[slot-1]
}

// WithOverrides returns a copy of the table with the given bindings replaced
// and validated. Every invalid entry is reported, not just the first.
func (t Table) WithOverrides(overrides []Override) (Table, error) {
	out := t
	for _, o := range overrides {
		if o.Player < 1 || o.Player > Players {
			return t, fmt.Errorf("player must be 1 or 2, got %d", o.Player)
		}
		if !out.players[o.Player-1].set(o.Value, Key(o.Key)) {
			return t, fmt.Errorf("unknown gesture value %q", o.Value)
		}
	}

	if invalid := out.check(); len(invalid) > 0 {
		return t, &InvalidKeysError{Invalid: invalid}
	}
	return out, nil
}

// Validate checks that every key in the table is valid.
func (t Table) Validate() error {
	if invalid := t.check(); len(invalid) > 0 {
		return &InvalidKeysError{Invalid: invalid}
	}
	return nil
}

func (t Table) check() []string {
	var invalid []string
	for i, p := range t.players {
		for _, v := range Values {
			k, _ := p.Get(v)
			if _, err := ParseKey(string(k)); err != nil {
				invalid = append(invalid, fmt.Sprintf("--%s == %q", FlagName(i+1, v), string(k)))
			}
		}
	}
	return invalid
}

// KeysFor returns the keys a slot wants held for a classification. Unbound
// values and undetected axes contribute nothing, so a MID or NEUTRAL key is
// only held while the pose is actually seen.
func (t Table) KeysFor(slot int, c gesture.Classification) []Key {
	p := t.Player(slot)

	var keys []Key
	if c.HasHeight {
		if k, _ := p.Get(string(c.Band)); !k.IsNone() {
			keys = append(keys, k)
		}
	}
	if c.HasAngle {
		if k, _ := p.Get(string(c.Tilt)); !k.IsNone() {
			keys = append(keys, k)
		}
	}
	return keys
}
