package pattern

import (
	"github.com/kmorrill/tonicmidi/debug"
	"github.com/kmorrill/tonicmidi/sequencer"
)

// MaxDrumSteps is the longest per-slot step row.
const MaxDrumSteps = 32

// DrumSlot is one instrument row: active steps with velocities, looping
// at its own Length (polymeters across slots are fine).
type DrumSlot struct {
	Steps      [MaxDrumSteps]bool
	Velocities [MaxDrumSteps]uint8
	Length     int // 0 = unused slot
}

// DrumPattern is a 16-slot step grid resolved to notes through a Kit.
// Hits last one step.
type DrumPattern struct {
	kit   Kit
	slots [16]DrumSlot
}

// NewDrumPattern creates an empty grid using the named kit.
func NewDrumPattern(kitName string) *DrumPattern {
	return &DrumPattern{kit: GetKit(kitName)}
}

// SetStep activates a step on a slot. Velocity 0 clears the step.
func (p *DrumPattern) SetStep(slot, step int, velocity uint8) {
	if slot < 0 || slot >= 16 || step < 0 || step >= MaxDrumSteps {
		return
	}
	s := &p.slots[slot]
	s.Steps[step] = velocity > 0
	s.Velocities[step] = velocity
	if s.Length <= step {
		s.Length = step + 1
	}
}

// SetRow programs a whole slot from a step string: 'x'/'X' hit,
// anything else rest ("x..x..x." style). Row length = string length.
func (p *DrumPattern) SetRow(slot int, row string) {
	if slot < 0 || slot >= 16 {
		return
	}
	if len(row) > MaxDrumSteps {
		debug.Warn("drum", "row on slot %d truncated to %d steps", slot, MaxDrumSteps)
		row = row[:MaxDrumSteps]
	}
	s := &p.slots[slot]
	*s = DrumSlot{Length: len(row)}
	for i := 0; i < len(row); i++ {
		switch row[i] {
		case 'X':
			s.Steps[i] = true
			s.Velocities[i] = 127
		case 'x':
			s.Steps[i] = true
			s.Velocities[i] = 100
		}
	}
}

// SlotRow returns the hit mask of one slot (nil when unused).
func (p *DrumPattern) SlotRow(slot int) []bool {
	if slot < 0 || slot >= 16 || p.slots[slot].Length == 0 {
		return nil
	}
	return p.slots[slot].Steps[:p.slots[slot].Length]
}

func (p *DrumPattern) NotesForStep(step int, _ *sequencer.Context) []sequencer.PatternNote {
	var notes []sequencer.PatternNote
	for i := range p.slots {
		s := &p.slots[i]
		if s.Length == 0 {
			continue
		}
		// Each slot loops at its own length
		pos := step % s.Length
		if !s.Steps[pos] {
			continue
		}
		notes = append(notes, sequencer.PatternNote{
			Number:   int(p.kit.Notes[i]),
			Velocity: s.Velocities[pos],
			Duration: 1,
		})
	}
	return notes
}

// Length is the master length: the longest programmed slot.
func (p *DrumPattern) Length() int {
	max := 1
	for i := range p.slots {
		if p.slots[i].Length > max {
			max = p.slots[i].Length
		}
	}
	return max
}

// KickDrumPattern is a DrumPattern that also publishes its kick row
// (slot 0) through the shared RhythmManager, for use by the one loop
// registered as kick provider. It holds the manager's write token.
type KickDrumPattern struct {
	*DrumPattern
	rhythm *sequencer.RhythmManager
	token  *sequencer.Token
}

// NewKickDrumPattern mints the rhythm write capability. Only one such
// pattern per manager will hold a valid token.
func NewKickDrumPattern(kitName string, rhythm *sequencer.RhythmManager) *KickDrumPattern {
	return &KickDrumPattern{
		DrumPattern: NewDrumPattern(kitName),
		rhythm:      rhythm,
		token:       rhythm.Authorize(),
	}
}

func (p *KickDrumPattern) NotesForStep(step int, ctx *sequencer.Context) []sequencer.PatternNote {
	// Republish the kick grid at each pattern boundary so edits land
	// before dependents read OnStep this cycle.
	if row := p.SlotRow(0); row != nil {
		if step%p.Length() == 0 {
			p.rhythm.SetKickPattern(p.token, row)
		}
		if row[step%len(row)] {
			p.rhythm.MarkHit(p.token, step)
		}
	}
	return p.DrumPattern.NotesForStep(step, ctx)
}
