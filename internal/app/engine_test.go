package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/volante/internal/binding"
	"github.com/ayusman/volante/internal/detector"
	"github.com/ayusman/volante/internal/gesture"
	"github.com/ayusman/volante/internal/keyboard"
)

// level returns a body with both wrists at wristY, which gives a vertical
// metric of 1 - wristY and no tilt.
func level(x, wristY float64) detector.Body {
	return detector.ArmsBody(x, wristY, wristY)
}

func newTestEngine(t *testing.T, cfg EngineConfig) (*Engine, *keyboard.Recorder) {
	t.Helper()
	rec := keyboard.NewRecorder()
	e, err := NewEngine(cfg, rec)
	require.NoError(t, err)
	return e, rec
}

func singlePlayer() EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.Players.Slots = 1
	return cfg
}

func TestEngine_VerticalScenario(t *testing.T) {
	e, rec := newTestEngine(t, singlePlayer())

	steps := []struct {
		wristY float64
		band   gesture.VerticalBand
		events []keyboard.Event
	}{
		{0.50, gesture.Mid, nil},
		{0.15, gesture.High, []keyboard.Event{press("up")}},
		{0.22, gesture.High, nil},
		{0.30, gesture.Mid, []keyboard.Event{release("up")}},
	}

	for i, s := range steps {
		snap := e.Tick([]detector.Body{level(0.5, s.wristY)})
		assert.Equal(t, s.band, snap.Slots[0].Classification.Band, "tick %d", i)
		assert.Equal(t, s.events, snap.Events, "tick %d", i)
	}

	assert.Equal(t, []keyboard.Event{press("up"), release("up")}, rec.Events())
}

func TestEngine_NoRedundantEvents(t *testing.T) {
	e, rec := newTestEngine(t, DefaultEngineConfig())

	bodies := []detector.Body{level(0.3, 0.1), level(0.7, 0.9)}
	for i := 0; i < 10; i++ {
		e.Tick(bodies)
	}

	assert.Equal(t, []keyboard.Event{press("s"), press("up")}, rec.Events())
	assert.Equal(t, []binding.Key{"s", "up"}, e.Held())
}

func TestEngine_SharedKeyStaysHeld(t *testing.T) {
	cfg := DefaultEngineConfig()
	table, err := cfg.Bindings.WithOverrides([]binding.Override{
		{Player: 1, Value: "high", Key: "x"},
		{Player: 2, Value: "high", Key: "x"},
	})
	require.NoError(t, err)
	cfg.Bindings = table
	e, rec := newTestEngine(t, cfg)

	// both players high
	e.Tick([]detector.Body{level(0.3, 0.1), level(0.7, 0.1)})
	// player 1 drops to mid, player 2 still wants x
	snap := e.Tick([]detector.Body{level(0.3, 0.5), level(0.7, 0.1)})

	assert.Empty(t, snap.Events)
	assert.Equal(t, []keyboard.Event{press("x")}, rec.Events())

	// nobody wants x any more
	snap = e.Tick([]detector.Body{level(0.3, 0.5), level(0.7, 0.5)})
	assert.Equal(t, []keyboard.Event{release("x")}, snap.Events)
}

func TestEngine_HysteresisAvoidsFlicker(t *testing.T) {
	e, rec := newTestEngine(t, singlePlayer())

	// metric 0.81, then oscillating between 0.76 and 0.79
	e.Tick([]detector.Body{level(0.5, 0.19)})
	for i := 0; i < 6; i++ {
		y := 0.24
		if i%2 == 0 {
			y = 0.21
		}
		e.Tick([]detector.Body{level(0.5, y)})
	}

	assert.Equal(t, []keyboard.Event{press("up")}, rec.Events())
}

func TestEngine_OneTickCrossingKeepsKeys(t *testing.T) {
	e, rec := newTestEngine(t, DefaultEngineConfig())

	e.Tick([]detector.Body{level(0.3, 0.1), level(0.7, 0.9)})
	rec.Reset()

	snap := e.Tick([]detector.Body{level(0.6, 0.1), level(0.4, 0.9)})
	assert.Empty(t, snap.Events)
	assert.Equal(t, gesture.High, snap.Slots[0].Classification.Band)
	assert.Equal(t, gesture.Low, snap.Slots[1].Classification.Band)

	snap = e.Tick([]detector.Body{level(0.3, 0.1), level(0.7, 0.9)})
	assert.Empty(t, snap.Events)
	assert.Empty(t, rec.Events())
}

func TestEngine_PoseLossReleasesSameTick(t *testing.T) {
	e, _ := newTestEngine(t, DefaultEngineConfig())

	e.Tick([]detector.Body{level(0.3, 0.1), level(0.7, 0.9)})

	snap := e.Tick([]detector.Body{level(0.7, 0.9)})
	assert.Equal(t, []keyboard.Event{release("up")}, snap.Events)
	assert.False(t, snap.Slots[0].Assigned)
	assert.Equal(t, gesture.Idle, snap.Slots[0].Classification)

	snap = e.Tick(nil)
	assert.Equal(t, []keyboard.Event{release("s")}, snap.Events)
	assert.Empty(t, snap.Keys)
}

func TestEngine_BoundIdleValuesNeedADetectedPose(t *testing.T) {
	cfg := DefaultEngineConfig()
	table, err := cfg.Bindings.WithOverrides([]binding.Override{
		{Player: 1, Value: "mid", Key: "x"},
		{Player: 2, Value: "neutral", Key: "n"},
	})
	require.NoError(t, err)
	cfg.Bindings = table
	e, rec := newTestEngine(t, cfg)

	snap := e.Tick(nil)
	assert.Empty(t, snap.Events, "nobody in frame")
	assert.Empty(t, e.Held())

	// player 1 alone, hands level at mid height
	resting := []detector.Body{level(0.3, 0.5)}
	snap = e.Tick(resting)
	assert.Equal(t, []keyboard.Event{press("x")}, snap.Events)
	assert.False(t, snap.Slots[1].Assigned)

	snap = e.Tick(nil)
	assert.Equal(t, []keyboard.Event{release("x")}, snap.Events, "pose loss")
	assert.Empty(t, e.Held())

	e.Tick(resting)
	e.SetPaused(true)
	snap = e.Tick(resting)
	assert.Equal(t, []keyboard.Event{release("x")}, snap.Events, "paused")
	snap = e.Tick(nil)
	assert.Empty(t, snap.Events)
	assert.Empty(t, e.Held())

	assert.Empty(t, rec.Held())
}

func TestEngine_ReturningPlayerStartsFresh(t *testing.T) {
	e, _ := newTestEngine(t, singlePlayer())

	e.Tick([]detector.Body{level(0.5, 0.1)})
	e.Tick(nil)

	// 0.78 would stay HIGH with memory, but the memory was reset on loss
	snap := e.Tick([]detector.Body{level(0.5, 0.22)})
	assert.Equal(t, gesture.Mid, snap.Slots[0].Classification.Band)
	assert.Empty(t, snap.Events)
}

func TestEngine_Shutdown(t *testing.T) {
	e, rec := newTestEngine(t, DefaultEngineConfig())

	tilted := detector.ArmsBody(0.3, 0.35, 0.05) // right wrist higher: steer left, metric 0.8
	e.Tick([]detector.Body{tilted, level(0.7, 0.9)})
	require.NotEmpty(t, e.Held())

	events := e.Shutdown()

	assert.NotEmpty(t, events)
	for _, ev := range events {
		assert.Equal(t, keyboard.Release, ev.Action)
	}
	assert.Empty(t, rec.Held())
	assert.Empty(t, e.Held())

	assert.Empty(t, e.Shutdown(), "second shutdown is a no-op")
}

func TestEngine_FailedEmissionRecordedAsAttempted(t *testing.T) {
	e, rec := newTestEngine(t, singlePlayer())
	rec.FailOn("up", errors.New("injection denied"))

	snap := e.Tick([]detector.Body{level(0.5, 0.1)})
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, []binding.Key{"up"}, snap.Keys)

	snap = e.Tick([]detector.Body{level(0.5, 0.1)})
	assert.Empty(t, snap.Events, "no retry for an attempted press")

	snap = e.Tick([]detector.Body{level(0.5, 0.5)})
	assert.Equal(t, []keyboard.Event{release("up")}, snap.Events)
}

func TestEngine_Pause(t *testing.T) {
	e, _ := newTestEngine(t, singlePlayer())
	high := []detector.Body{level(0.5, 0.1)}

	e.Tick(high)
	e.SetPaused(true)
	assert.True(t, e.Paused())

	snap := e.Tick(high)
	assert.True(t, snap.Paused)
	assert.Equal(t, []keyboard.Event{release("up")}, snap.Events)

	snap = e.Tick(high)
	assert.Empty(t, snap.Events)

	e.SetPaused(false)
	snap = e.Tick(high)
	assert.Equal(t, []keyboard.Event{press("up")}, snap.Events)
}

func TestEngine_SnapshotsKeepLatest(t *testing.T) {
	e, _ := newTestEngine(t, singlePlayer())

	for i := 0; i < 3; i++ {
		e.Tick(nil)
	}

	select {
	case snap := <-e.Snapshots():
		assert.Equal(t, uint64(3), snap.Tick)
	default:
		t.Fatal("expected a snapshot")
	}

	select {
	case snap := <-e.Snapshots():
		t.Fatalf("expected one buffered snapshot, got tick %d", snap.Tick)
	default:
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	rec := keyboard.NewRecorder()

	cfg := DefaultEngineConfig()
	cfg.Players.Slots = 3
	_, err := NewEngine(cfg, rec)
	assert.Error(t, err)

	cfg = DefaultEngineConfig()
	cfg.Gestures.Vertical.Upper.Exit = 0.9
	_, err = NewEngine(cfg, rec)
	assert.Error(t, err)

	cfg = DefaultEngineConfig()
	cfg.Bindings = binding.NewTable(binding.PlayerBindings{High: "nope"}, binding.PlayerBindings{})
	_, err = NewEngine(cfg, rec)
	assert.ErrorIs(t, err, binding.ErrInvalidKey)
}
