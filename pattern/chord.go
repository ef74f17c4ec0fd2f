package pattern

import (
	"github.com/kmorrill/tonicmidi/debug"
	"github.com/kmorrill/tonicmidi/sequencer"
)

// ChordChange is one chord in a progression: a root note name and
// intervals in semitones above it (nil = major triad).
type ChordChange struct {
	Root      string
	Intervals []int
}

var majorTriad = []int{0, 4, 7}

// ChordPattern plays a progression, one chord per stepsPerChord steps,
// and publishes each chord through the shared ChordManager so
// dependent loops can voice against it. It holds the manager's write
// token; pair it with the loop registered as chord provider.
type ChordPattern struct {
	changes       []ChordChange
	stepsPerChord int
	duration      int // note duration in steps

	chords *sequencer.ChordManager
	token  *sequencer.Token
}

// NewChordPattern mints the chord write capability. stepsPerChord <= 0
// defaults to 4; chords sustain for the full slot.
func NewChordPattern(changes []ChordChange, stepsPerChord int, chords *sequencer.ChordManager) *ChordPattern {
	if stepsPerChord <= 0 {
		stepsPerChord = 4
	}
	if len(changes) == 0 {
		changes = []ChordChange{{Root: "C4"}}
	}
	return &ChordPattern{
		changes:       changes,
		stepsPerChord: stepsPerChord,
		duration:      stepsPerChord,
		chords:        chords,
		token:         chords.Authorize(),
	}
}

func (p *ChordPattern) chordNotes(c ChordChange) (uint8, []uint8) {
	root, ok := sequencer.ParseNote(c.Root)
	if !ok {
		debug.Warn("chordpattern", "bad root %q, using middle C", c.Root)
		root = sequencer.MiddleC
	}
	intervals := c.Intervals
	if len(intervals) == 0 {
		intervals = majorTriad
	}
	notes := make([]uint8, 0, len(intervals))
	for _, iv := range intervals {
		n := int(root) + iv
		if n < 0 || n > 127 {
			continue
		}
		notes = append(notes, uint8(n))
	}
	return root, notes
}

func (p *ChordPattern) NotesForStep(step int, _ *sequencer.Context) []sequencer.PatternNote {
	pos := step % p.Length()
	if pos%p.stepsPerChord != 0 {
		return nil
	}
	change := p.changes[pos/p.stepsPerChord]
	root, notes := p.chordNotes(change)

	// Publish before returning: the transport ticks this provider
	// loop ahead of dependents, so they see this step's chord.
	p.chords.SetChord(p.token, root, notes)

	out := make([]sequencer.PatternNote, len(notes))
	for i, n := range notes {
		out[i] = sequencer.PatternNote{Number: int(n), Duration: p.duration}
	}
	return out
}

func (p *ChordPattern) Length() int {
	return p.stepsPerChord * len(p.changes)
}

// ArpPattern walks the chord tones published in the shared context,
// one per step, accenting steps where the kick hits. It shows the
// consumer side of the provider ordering: by the time a plain loop
// ticks, the chord and kick state for the step are already current.
type ArpPattern struct {
	length int
	octave int // semitone lift applied to every tone
}

// NewArpPattern creates an arp of the given step length (<= 0 = 16).
func NewArpPattern(length, octave int) *ArpPattern {
	if length <= 0 {
		length = 16
	}
	return &ArpPattern{length: length, octave: octave}
}

func (p *ArpPattern) NotesForStep(step int, ctx *sequencer.Context) []sequencer.PatternNote {
	if ctx == nil || len(ctx.Chord.Notes) == 0 {
		return nil
	}
	tone := ctx.Chord.Notes[step%len(ctx.Chord.Notes)]
	vel := uint8(84)
	if ctx.Kick.OnStep(step) {
		vel = 112
	}
	return []sequencer.PatternNote{{
		Number:   int(tone) + p.octave*12,
		Velocity: vel,
		Duration: 1,
	}}
}

func (p *ArpPattern) Length() int {
	return p.length
}
