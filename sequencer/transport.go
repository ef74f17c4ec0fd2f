package sequencer

import (
	"errors"
	"fmt"
	"math"

	"github.com/kmorrill/tonicmidi/debug"
	"github.com/kmorrill/tonicmidi/midi"
)

// PulsesPerQuarter is the MIDI clock rate: 24 pulses per quarter note.
const PulsesPerQuarter = 24

// DefaultPulsesPerStep gives sixteenth-note steps (16 steps per bar).
const DefaultPulsesPerStep = 6

// ErrProviderExists is returned by AddLoop when a second loop claims an
// exclusive provider role.
var ErrProviderExists = errors.New("provider role already registered")

// LoopStatus is a read-only view of one loop for monitoring.
type LoopStatus struct {
	Name      string
	Role      Role
	Channel   uint8
	Muted     bool
	Pending   int
	Sounding  int
	ChainDone bool
}

// Snapshot is a point-in-time view of the transport for the TUI.
type Snapshot struct {
	Running       bool
	Step          int
	Beats         float64
	PulsesPerStep int
	ActiveNotes   int
	Loops         []LoopStatus
}

// Transport turns an external MIDI clock byte stream into step
// advances and drives its loops. It never self-initiates: all state
// changes come from received bytes (0xFA start, 0xFC stop, 0xF8 clock,
// 0xF2 song position; everything else, including 0xFB continue, is
// ignored).
//
// Bytes are handled one at a time to completion; there is no
// concurrency inside the transport.
type Transport struct {
	bus           *midi.Bus
	pulsesPerStep int

	// loops partitioned by tick priority: kick providers run first,
	// then chord providers, then the rest, so foundation state is
	// published before dependents read it within the same step.
	loops [numPriorities][]*Loop

	hasChord bool
	hasKick  bool

	running      bool
	stepIndex    int
	pulseCounter int
	timeInBeats  float64

	updates chan Snapshot
}

// NewTransport creates a stopped transport. pulsesPerStep <= 0 uses
// DefaultPulsesPerStep.
func NewTransport(bus *midi.Bus, pulsesPerStep int) *Transport {
	if pulsesPerStep <= 0 {
		pulsesPerStep = DefaultPulsesPerStep
	}
	return &Transport{
		bus:           bus,
		pulsesPerStep: pulsesPerStep,
		updates:       make(chan Snapshot, 1),
	}
}

// AddLoop registers a loop. At most one chord provider and one kick
// provider may exist per transport; a second registration fails and
// leaves the existing provider untouched.
func (t *Transport) AddLoop(l *Loop) error {
	switch l.Role() {
	case RoleChordProvider:
		if t.hasChord {
			return fmt.Errorf("%w: chord provider %q rejected", ErrProviderExists, l.Name())
		}
		t.hasChord = true
	case RoleKickProvider:
		if t.hasKick {
			return fmt.Errorf("%w: kick provider %q rejected", ErrProviderExists, l.Name())
		}
		t.hasKick = true
	}
	p := l.Role().tickPriority()
	t.loops[p] = append(t.loops[p], l)
	debug.Log("transport", "added loop %q role=%s", l.Name(), l.Role())
	return nil
}

// Handle processes one incoming MIDI message, first byte significant
// (data bytes apply to song position only). Safe to call with any
// message; non-transport bytes are ignored.
func (t *Transport) Handle(data []byte) {
	if len(data) == 0 {
		return
	}
	switch data[0] {
	case midi.ByteStart:
		t.start()
	case midi.ByteStop:
		t.stop()
	case midi.ByteClock:
		t.pulse()
	case midi.ByteSongPosition:
		if len(data) >= 3 {
			t.songPosition(data[1], data[2])
		}
	}
}

// start resets timing and renders step 0 immediately, so patterns
// sound their first step without waiting for a pulse.
func (t *Transport) start() {
	t.running = true
	t.stepIndex = 0
	t.pulseCounter = 0
	t.timeInBeats = 0
	debug.Log("transport", "start")
	t.tickAll(0, 0, 0)
	t.publish()
}

func (t *Transport) stop() {
	t.running = false
	debug.Log("transport", "stop")
	t.bus.StopAllNotes()
	t.publish()
}

// pulse advances time by 1/24 beat, runs the per-pulse modulation
// update on every loop, and ticks a step when a boundary is crossed.
// Boundaries are detected two ways: exact pulse counting (keeps
// integer step sizes exact) and absolute-time comparison (prevents
// drift over long runs); whichever fires first wins.
func (t *Transport) pulse() {
	if !t.running {
		return
	}
	const pulseBeats = 1.0 / PulsesPerQuarter
	t.timeInBeats += pulseBeats

	for _, pass := range t.loops {
		for _, l := range pass {
			l.UpdateModulationOnly(pulseBeats, t.timeInBeats)
		}
	}

	t.pulseCounter++
	stepBeats := float64(t.pulsesPerStep) / PulsesPerQuarter
	candidate := int(math.Floor(t.timeInBeats / stepBeats))

	crossed := false
	if t.pulseCounter >= t.pulsesPerStep {
		t.pulseCounter -= t.pulsesPerStep
		t.stepIndex++
		crossed = true
	} else if candidate > t.stepIndex {
		t.stepIndex = candidate
		crossed = true
	}

	if crossed {
		// Delta 0: this pulse's elapsed time already went into the
		// modulation pass above.
		t.tickAll(t.stepIndex, 0, t.timeInBeats)
		t.publish()
	}
}

// songPosition jumps to a 14-bit song position (1 MIDI beat = 6
// clocks) without changing the run state.
func (t *Transport) songPosition(lsb, msb uint8) {
	pos := int(msb)<<7 | int(lsb)
	clocks := pos * 6
	t.timeInBeats = float64(clocks) / PulsesPerQuarter
	stepBeats := float64(t.pulsesPerStep) / PulsesPerQuarter
	t.stepIndex = int(math.Floor(t.timeInBeats / stepBeats))
	t.pulseCounter = clocks % t.pulsesPerStep
	debug.Log("transport", "song position %d -> step %d beats %.3f", pos, t.stepIndex, t.timeInBeats)
	t.publish()
}

func (t *Transport) tickAll(step int, deltaBeats, beats float64) {
	for _, pass := range t.loops {
		for _, l := range pass {
			l.Tick(step, deltaBeats, beats)
		}
	}
}

// Running reports the transport run state.
func (t *Transport) Running() bool { return t.running }

// Step returns the current step index.
func (t *Transport) Step() int { return t.stepIndex }

// Beats returns the absolute time in beats since the last start.
func (t *Transport) Beats() float64 { return t.timeInBeats }

// Updates delivers snapshots for monitoring. The channel has capacity
// one and stale snapshots are dropped, never blocking the clock path.
func (t *Transport) Updates() <-chan Snapshot { return t.updates }

func (t *Transport) snapshot() Snapshot {
	s := Snapshot{
		Running:       t.running,
		Step:          t.stepIndex,
		Beats:         t.timeInBeats,
		PulsesPerStep: t.pulsesPerStep,
		ActiveNotes:   t.bus.ActiveCount(),
	}
	for _, pass := range t.loops {
		for _, l := range pass {
			s.Loops = append(s.Loops, LoopStatus{
				Name:      l.Name(),
				Role:      l.Role(),
				Channel:   l.Channel(),
				Muted:     l.Muted(),
				Pending:   l.PendingOps(),
				Sounding:  l.SoundingNotes(),
				ChainDone: l.ChainComplete(),
			})
		}
	}
	return s
}

// publish pushes a snapshot without blocking the clock path; if the
// previous snapshot hasn't been consumed yet, this one is dropped.
func (t *Transport) publish() {
	select {
	case t.updates <- t.snapshot():
	default:
	}
}
