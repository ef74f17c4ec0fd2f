package sequencer

import (
	"math"

	"github.com/google/uuid"

	"github.com/kmorrill/tonicmidi/debug"
	"github.com/kmorrill/tonicmidi/midi"
)

// activeNote is one scheduled note in the loop's private shadow list.
// This is a scheduling aid private to the loop (when do *my* notes
// end), not the bus's authoritative ledger.
type activeNote struct {
	channel  uint8
	note     uint8
	velocity uint8
	endStep  int
}

// loopLFO is an LFO assignment with its continuous-time capability
// resolved once, at assignment time.
type loopLFO struct {
	src    LFO
	cont   ContinuousLFO // nil if src only supports delta updates
	target string
}

// LoopConfig configures a new Loop. Channel defaults to 1. Cycles > 0
// puts the loop in chain mode with the initial pattern as item 0.
type LoopConfig struct {
	Name      string
	Channel   uint8
	Output    string // MIDI port name; empty = default port
	Pattern   Pattern
	Role      Role
	Transpose int
	Muted     bool
	Cycles    int
	LFOs      []LFOAssignment
	Device    DeviceDefinition
	Chords    *ChordManager
	Rhythm    *RhythmManager
	Local     map[string]any
}

// Loop is one track's step sequencer: it asks its pattern for notes
// each step, manages their lifecycle (retrigger, duration, expiry),
// applies queued mutations at pattern boundaries, runs LFO modulation,
// and optionally walks a pattern chain.
type Loop struct {
	id   uuid.UUID
	name string
	bus  *midi.Bus

	pattern   Pattern
	channel   uint8
	output    string
	role      Role
	transpose int
	muted     bool

	lfos   []loopLFO
	device DeviceDefinition
	chords *ChordManager
	rhythm *RhythmManager
	local  map[string]any

	shadow  []activeNote
	pending []func()
	chain   *chainState
}

// NewLoop creates a loop publishing to the given bus.
func NewLoop(bus *midi.Bus, cfg LoopConfig) *Loop {
	if cfg.Channel == 0 {
		cfg.Channel = 1
	}
	l := &Loop{
		id:        uuid.New(),
		name:      cfg.Name,
		bus:       bus,
		pattern:   cfg.Pattern,
		channel:   cfg.Channel,
		output:    cfg.Output,
		role:      cfg.Role,
		transpose: cfg.Transpose,
		muted:     cfg.Muted,
		device:    cfg.Device,
		chords:    cfg.Chords,
		rhythm:    cfg.Rhythm,
		local:     cfg.Local,
	}
	for _, a := range cfg.LFOs {
		l.assignLFO(a)
	}
	if cfg.Cycles > 0 {
		l.chain = newChainState(ChainItem{
			Pattern: cfg.Pattern,
			Cycles:  cfg.Cycles,
			Channel: cfg.Channel,
		})
	}
	return l
}

func (l *Loop) assignLFO(a LFOAssignment) {
	entry := loopLFO{src: a.Source, target: a.Target}
	if c, ok := a.Source.(ContinuousLFO); ok {
		entry.cont = c
	}
	l.lfos = append(l.lfos, entry)
}

// Name returns the loop's display name.
func (l *Loop) Name() string { return l.name }

// Role returns the provider role the loop was registered with.
func (l *Loop) Role() Role { return l.role }

// Channel returns the MIDI channel notes go out on right now (the
// active chain item's channel while chaining).
func (l *Loop) Channel() uint8 { return l.currentChannel() }

// Muted reports whether new NoteOns are suppressed.
func (l *Loop) Muted() bool { return l.muted }

// SetMuted suppresses (or re-enables) new NoteOns. Notes already
// sounding keep their scheduled NoteOff.
func (l *Loop) SetMuted(muted bool) { l.muted = muted }

// SetTranspose changes the semitone offset applied to pattern pitches.
func (l *Loop) SetTranspose(semitones int) { l.transpose = semitones }

// currentPattern is the pattern playing right now: the active chain
// item's when chaining, the base pattern otherwise.
func (l *Loop) currentPattern() Pattern {
	if l.chain != nil {
		if item := l.chain.active(); item != nil {
			return item.Pattern
		}
	}
	return l.pattern
}

// currentChannel follows the active chain item's channel.
func (l *Loop) currentChannel() uint8 {
	if l.chain != nil {
		if item := l.chain.active(); item != nil {
			return item.Channel
		}
	}
	return l.channel
}

func (l *Loop) currentLength() int {
	p := l.currentPattern()
	if p == nil {
		return 0
	}
	return p.Length()
}

// SetPattern swaps the loop's base pattern. With immediate=false the
// swap is queued and applied at the next pattern boundary, so it never
// lands mid-cycle.
func (l *Loop) SetPattern(p Pattern, immediate bool) {
	if immediate {
		l.pattern = p
		return
	}
	l.pending = append(l.pending, func() { l.pattern = p })
}

// UpdateLFO mutates the LFO at index via update, either now or at the
// next pattern boundary. Out-of-range indexes are logged and dropped.
func (l *Loop) UpdateLFO(index int, update func(LFO), immediate bool) {
	if index < 0 || index >= len(l.lfos) {
		debug.Warn("loop", "%s: updateLFO index %d out of range (have %d)", l.name, index, len(l.lfos))
		return
	}
	if immediate {
		update(l.lfos[index].src)
		return
	}
	l.pending = append(l.pending, func() { update(l.lfos[index].src) })
}

// SetContext replaces the loop-local context values, either now or at
// the next pattern boundary.
func (l *Loop) SetContext(values map[string]any, immediate bool) {
	if immediate {
		l.local = values
		return
	}
	l.pending = append(l.pending, func() { l.local = values })
}

// AddChainItem appends a pattern to the loop's chain, activating chain
// mode if needed (the current pattern becomes item 0, one cycle). An
// item without a channel inherits the loop's.
func (l *Loop) AddChainItem(item ChainItem) {
	if item.Channel == 0 {
		item.Channel = l.channel
	}
	if l.chain == nil {
		l.chain = newChainState(ChainItem{
			Pattern: l.pattern,
			Cycles:  1,
			Channel: l.channel,
		})
	}
	l.chain.append(item)
}

// OnChainComplete registers a callback fired exactly once when the
// chain's last item finishes its cycles.
func (l *Loop) OnChainComplete(fn func()) {
	if l.chain == nil {
		debug.Warn("loop", "%s: onChainComplete without chain mode", l.name)
		return
	}
	l.chain.onComplete = fn
}

// ChainComplete reports whether a chain ran to its terminal state.
func (l *Loop) ChainComplete() bool {
	return l.chain != nil && l.chain.complete
}

// Tick runs one step of the loop: boundary mutations, note
// generation, expiry, modulation, and chain bookkeeping.
func (l *Loop) Tick(step int, deltaBeats, beats float64) {
	l.applyPendingAtBoundary(step)

	ctx := l.buildContext(step, beats)
	l.generateNotes(step, ctx)
	l.expireNotes(step)
	l.modulate(deltaBeats, beats)
	l.advanceChain(step)
}

// UpdateModulationOnly runs just the LFO pass. The transport calls
// this every clock pulse so modulation gets finer time resolution than
// the step grid.
func (l *Loop) UpdateModulationOnly(deltaBeats, beats float64) {
	l.modulate(deltaBeats, beats)
}

// applyPendingAtBoundary drains the mutation queue when the step lands
// on a pattern boundary. A zero/negative pattern length skips the
// drain rather than crashing.
func (l *Loop) applyPendingAtBoundary(step int) {
	if len(l.pending) == 0 {
		return
	}
	length := l.currentLength()
	if length <= 0 || step%length != 0 {
		return
	}
	debug.Log("loop", "%s: applying %d queued ops at step %d", l.name, len(l.pending), step)
	ops := l.pending
	l.pending = nil
	for _, op := range ops {
		op()
	}
}

func (l *Loop) buildContext(step int, beats float64) *Context {
	ctx := &Context{
		Step:   step,
		Beats:  beats,
		Device: l.device,
		Local:  l.local,
	}
	if l.chords != nil {
		ctx.Chord = l.chords.Current()
	}
	if l.rhythm != nil {
		ctx.Kick = l.rhythm.Current()
	}
	return ctx
}

func (l *Loop) generateNotes(step int, ctx *Context) {
	p := l.currentPattern()
	if p == nil {
		return
	}
	ch := l.currentChannel()
	for _, n := range p.NotesForStep(step, ctx) {
		pitch := clampPitch(resolvePitch(n) + l.transpose)
		vel := n.Velocity
		if vel == 0 {
			vel = DefaultVelocity
		}
		dur := n.Duration
		if dur < 1 {
			dur = 1
		}

		// Retrigger rule: at most one sounding instance per
		// channel+pitch per loop. Stop the old one first.
		for i, a := range l.shadow {
			if a.channel == ch && a.note == pitch {
				l.bus.NoteOff(a.channel, a.note, l.output, step)
				l.shadow = append(l.shadow[:i], l.shadow[i+1:]...)
				break
			}
		}

		if !l.muted {
			l.bus.NoteOn(ch, pitch, vel, l.output, step)
		}
		// Scheduled even while muted, so the expiry sweep stays
		// uniform and unmuting mid-note can't leave stale state.
		l.shadow = append(l.shadow, activeNote{
			channel:  ch,
			note:     pitch,
			velocity: vel,
			endStep:  step + dur,
		})
	}
}

// expireNotes stops every shadow note whose end step has arrived. Runs
// even while muted: a note triggered before muting still ends on time.
func (l *Loop) expireNotes(step int) {
	kept := l.shadow[:0]
	for _, a := range l.shadow {
		if a.endStep <= step {
			l.bus.NoteOff(a.channel, a.note, l.output, step)
			continue
		}
		kept = append(kept, a)
	}
	l.shadow = kept
}

func (l *Loop) modulate(deltaBeats, beats float64) {
	if len(l.lfos) == 0 {
		return
	}
	ch := l.currentChannel()
	for _, lfo := range l.lfos {
		var v float64
		if lfo.cont != nil && beats >= 0 {
			v = lfo.cont.UpdateAt(beats)
		} else {
			v = lfo.src.Update(deltaBeats)
		}
		value := uint8(math.Min(127, math.Max(0, math.Round(v))))

		cc := DefaultModulationCC
		if l.device != nil {
			if resolved, ok := l.device.ResolveCC(lfo.target, ch); ok {
				cc = resolved
			}
		}
		l.bus.ControlChange(ch, cc, value, l.output)
	}
}

// advanceChain counts a finished cycle when the step lands on the
// active item's last step, and mutes the loop once the chain is done.
func (l *Loop) advanceChain(step int) {
	if l.chain == nil {
		return
	}
	item := l.chain.active()
	if item == nil || item.Pattern == nil {
		return
	}
	length := item.Pattern.Length()
	if length <= 0 || step%length != length-1 {
		return
	}
	if _, completed := l.chain.cycleFinished(); completed {
		l.muted = true
	}
}

// PendingOps reports how many queued mutations await the next boundary.
func (l *Loop) PendingOps() int { return len(l.pending) }

// SoundingNotes reports how many notes the loop currently has
// scheduled in its shadow list.
func (l *Loop) SoundingNotes() int { return len(l.shadow) }
