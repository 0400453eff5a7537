// Package player assigns detected bodies to stable player slots.
package player

import (
	"fmt"
	"math"
	"sort"

	"github.com/ayusman/volante/internal/detector"
)

// MaxSlots is the maximum number of simultaneous players.
const MaxSlots = 2

// Config holds configuration options for slot assignment.
type Config struct {
	// Slots is the number of player slots: 1 (single player) or 2.
	Slots int
	// MinConfidence is the keypoint score below which a joint is ignored.
	MinConfidence float64
	// SwapMargin is how far past the midpoint between the two candidates a
	// body must be before a crossing counts towards re-ordering the slots.
	SwapMargin float64
	// SwapTicks is the number of consecutive crossed ticks needed to re-order.
	SwapTicks int
}

// DefaultConfig returns the two-player defaults.
func DefaultConfig() Config {
	return Config{
		Slots:         2,
		MinConfidence: 0.3,
		SwapMargin:    0.05,
		SwapTicks:     2,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Slots < 1 || c.Slots > MaxSlots {
		return fmt.Errorf("slots must be 1 or 2, got %d", c.Slots)
	}
	if c.SwapMargin < 0 {
		return fmt.Errorf("swap margin must not be negative, got %f", c.SwapMargin)
	}
	if c.SwapTicks < 1 {
		return fmt.Errorf("swap ticks must be at least 1, got %d", c.SwapTicks)
	}
	return nil
}

// Slot is a stable player identity and the body bound to it this tick.
type Slot struct {
	// ID is 1 or 2.
	ID int
	// Body is nil when the slot is unassigned.
	Body detector.Body
	// X is the horizontal position of the bound body.
	X float64
}

// Assigned reports whether a body is bound to the slot.
func (s Slot) Assigned() bool {
	return s.Body != nil
}

// candidate is a detected body with its horizontal position.
type candidate struct {
	body detector.Body
	x    float64
}

// Assigner maps bodies to slots across ticks. It is not safe for concurrent use.
type Assigner struct {
	config Config
	slots  []Slot
	streak int
}

// NewAssigner creates a new Assigner with all slots unassigned.
func NewAssigner(config Config) (*Assigner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	slots := make([]Slot, config.Slots)
	for i := range slots {
		slots[i].ID = i + 1
	}

	return &Assigner{
		config: config,
		slots:  slots,
	}, nil
}

// Slots returns a copy of the current slot bindings.
func (a *Assigner) Slots() []Slot {
	out := make([]Slot, len(a.slots))
	copy(out, a.slots)
	return out
}

// Assign binds this tick's bodies to the slots and returns the new bindings.
//
// Bodies are ordered left to right and only the leftmost len(slots) are
// considered. A slot without a body this tick is unassigned immediately.
func (a *Assigner) Assign(bodies []detector.Body) []Slot {
	cands := a.order(bodies)

	next := make([]detector.Body, len(a.slots))
	switch {
	case len(cands) == 0:
		a.streak = 0
	case len(a.slots) == 1:
		next[0] = cands[0].body
		a.streak = 0
	case len(cands) == 1:
		next[a.slotForSingle(cands[0])] = cands[0].body
		a.streak = 0
	default:
		first, second := a.pair(cands[0], cands[1])
		next[0], next[1] = first.body, second.body
	}

	for i := range a.slots {
		a.slots[i].Body = next[i]
		a.slots[i].X = 0
		if next[i] != nil {
			a.slots[i].X, _ = next[i].CenterX(a.config.MinConfidence)
		}
	}

	return a.Slots()
}

// order returns the usable bodies sorted left to right, truncated to the
// number of slots.
func (a *Assigner) order(bodies []detector.Body) []candidate {
	cands := make([]candidate, 0, len(bodies))
	for _, b := range bodies {
		x, ok := b.CenterX(a.config.MinConfidence)
		if !ok {
			continue
		}
		cands = append(cands, candidate{body: b, x: x})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].x < cands[j].x
	})

	if len(cands) > len(a.slots) {
		cands = cands[:len(a.slots)]
	}
	return cands
}

// slotForSingle picks the slot for a lone body in two-player mode: the slot
// whose previous body is most similar, or by screen half when no slot was
// assigned on the previous tick.
func (a *Assigner) slotForSingle(c candidate) int {
	best := -1
	bestDist := math.Inf(1)
	for i, s := range a.slots {
		if !s.Assigned() {
			continue
		}
		d, ok := detector.Distance(s.Body, c.body, a.config.MinConfidence)
		if !ok {
			continue
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		return best
	}

	if c.x < 0.5 {
		return 0
	}
	return 1
}

// pair assigns two candidates ordered left to right. The left one goes to
// slot 1 unless the slots' previous bodies match the candidates in reverse
// order; then the previous binding is kept until the crossing has exceeded
// SwapMargin for SwapTicks consecutive ticks.
func (a *Assigner) pair(left, right candidate) (candidate, candidate) {
	ordered := a.cost(left, right)
	swapped := a.cost(right, left)

	if swapped >= ordered {
		a.streak = 0
		return left, right
	}

	mid := (left.x + right.x) / 2
	if right.x-mid <= a.config.SwapMargin {
		// too close to call a crossing
		a.streak = 0
		return right, left
	}

	a.streak++
	if a.streak >= a.config.SwapTicks {
		a.streak = 0
		return left, right
	}
	return right, left
}

// cost is the total pose distance of binding first to slot 1 and second to
// slot 2. Slots unassigned on the previous tick do not contribute.
func (a *Assigner) cost(first, second candidate) float64 {
	var total float64
	for i, c := range []candidate{first, second} {
		prev := a.slots[i]
		if !prev.Assigned() {
			continue
		}
		d, ok := detector.Distance(prev.Body, c.body, a.config.MinConfidence)
		if !ok {
			d = math.Abs(prev.X - c.x)
		}
		total += d
	}
	return total
}
