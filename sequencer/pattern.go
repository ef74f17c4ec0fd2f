package sequencer

// PatternNote is one note a pattern wants played at a step. Pitch is
// given either as a note name like "C4" or "f#3", or, when Name is
// empty, as a MIDI note number. Velocity 0 means the default; Duration
// is in steps, 0 means one step.
type PatternNote struct {
	Name     string
	Number   int
	Velocity uint8
	Duration int
}

// DefaultVelocity is used when a pattern leaves Velocity at zero.
const DefaultVelocity uint8 = 100

// Pattern produces notes for a loop. Length must be > 0; the step
// passed to NotesForStep grows without bound, so patterns wrap it
// themselves (step % Length()).
type Pattern interface {
	NotesForStep(step int, ctx *Context) []PatternNote
	Length() int
}

// LFO is a modulation source advanced by elapsed beats. The returned
// value is interpreted as a CC value and clamped to 0-127 by the loop.
type LFO interface {
	Update(deltaBeats float64) float64
}

// ContinuousLFO is an LFO that can be evaluated at an absolute beat
// position instead of accumulating deltas. Whether a source has this
// capability is decided by its type, once, not probed per call.
type ContinuousLFO interface {
	LFO
	UpdateAt(beats float64) float64
}

// DeviceDefinition resolves a named parameter to a CC number for a
// channel. ok is false when the device has no mapping for the name.
type DeviceDefinition interface {
	ResolveCC(param string, channel uint8) (cc uint8, ok bool)
}

// LFOAssignment binds a modulation source to a device parameter name.
// The loop resolves Target through its DeviceDefinition, falling back
// to DefaultModulationCC when unresolved.
type LFOAssignment struct {
	Source LFO
	Target string
}

// DefaultModulationCC is the CC used when no device mapping resolves
// the LFO target (74 = filter cutoff per the GM2/MPE convention).
const DefaultModulationCC uint8 = 74
