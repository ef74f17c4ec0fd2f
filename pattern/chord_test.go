package pattern_test

import (
	"testing"

	"github.com/kmorrill/tonicmidi/pattern"
	"github.com/kmorrill/tonicmidi/sequencer"
)

func TestChordPatternPublishesProgression(t *testing.T) {
	chords := sequencer.NewChordManager()
	p := pattern.NewChordPattern([]pattern.ChordChange{
		{Root: "C4"},
		{Root: "A3", Intervals: []int{0, 3, 7}},
	}, 4, chords)

	if p.Length() != 8 {
		t.Fatalf("length = %d, want 8", p.Length())
	}

	notes := p.NotesForStep(0, nil)
	if len(notes) != 3 {
		t.Fatalf("chord size = %d, want 3", len(notes))
	}
	if notes[0].Number != 60 || notes[1].Number != 64 || notes[2].Number != 67 {
		t.Errorf("C major = %v", notes)
	}
	if notes[0].Duration != 4 {
		t.Errorf("duration = %d, want chord slot length 4", notes[0].Duration)
	}

	state := chords.Current()
	if state.Root != 60 || len(state.Notes) != 3 {
		t.Errorf("published = %+v", state)
	}

	// Mid-slot steps sustain: nothing new, published state unchanged
	if got := p.NotesForStep(1, nil); got != nil {
		t.Errorf("step 1 = %v, want nil", got)
	}
	if chords.Current().Root != 60 {
		t.Error("published root changed on a rest step")
	}

	// Second slot: A minor
	notes = p.NotesForStep(4, nil)
	if len(notes) != 3 || notes[0].Number != 57 || notes[1].Number != 60 {
		t.Errorf("A minor = %v", notes)
	}
	if chords.Current().Root != 57 {
		t.Errorf("published root = %d, want 57", chords.Current().Root)
	}
}

func TestChordPatternBadRootFallsBack(t *testing.T) {
	chords := sequencer.NewChordManager()
	p := pattern.NewChordPattern([]pattern.ChordChange{{Root: "Q9"}}, 4, chords)

	notes := p.NotesForStep(0, nil)
	if len(notes) != 3 || notes[0].Number != 60 {
		t.Errorf("fallback chord = %v, want triad on middle C", notes)
	}
}

func TestArpPatternFollowsContext(t *testing.T) {
	p := pattern.NewArpPattern(16, 0)
	ctx := &sequencer.Context{
		Chord: sequencer.ChordState{Root: 60, Notes: []uint8{60, 64, 67}},
		Kick:  sequencer.KickState{Steps: []bool{true, false, false, false}},
	}

	for _, c := range []struct {
		step int
		note int
		vel  uint8
	}{
		{0, 60, 112}, // kick step, accented
		{1, 64, 84},
		{2, 67, 84},
		{3, 60, 84},
		{4, 64, 112},
	} {
		notes := p.NotesForStep(c.step, ctx)
		if len(notes) != 1 {
			t.Fatalf("step %d: %v", c.step, notes)
		}
		if notes[0].Number != c.note || notes[0].Velocity != c.vel {
			t.Errorf("step %d = %+v, want note %d vel %d", c.step, notes[0], c.note, c.vel)
		}
	}
}

func TestArpPatternSilentWithoutChord(t *testing.T) {
	p := pattern.NewArpPattern(16, 1)
	if got := p.NotesForStep(0, &sequencer.Context{}); got != nil {
		t.Errorf("notes = %v, want nil before any chord", got)
	}
	if got := p.NotesForStep(0, nil); got != nil {
		t.Errorf("notes = %v, want nil with nil context", got)
	}
}

func TestArpPatternOctaveLift(t *testing.T) {
	p := pattern.NewArpPattern(8, 1)
	ctx := &sequencer.Context{Chord: sequencer.ChordState{Notes: []uint8{60}}}

	notes := p.NotesForStep(0, ctx)
	if len(notes) != 1 || notes[0].Number != 72 {
		t.Errorf("lifted tone = %v, want 72", notes)
	}
}

func TestExplicitPattern(t *testing.T) {
	p := pattern.FromNames("C4", "", "E4", "G4")

	if p.Length() != 4 {
		t.Fatalf("length = %d, want 4", p.Length())
	}
	if got := p.NotesForStep(0, nil); len(got) != 1 || got[0].Name != "C4" {
		t.Errorf("step 0 = %v", got)
	}
	if got := p.NotesForStep(1, nil); got != nil {
		t.Errorf("rest step = %v, want nil", got)
	}
	// Wraps past the end
	if got := p.NotesForStep(6, nil); len(got) != 1 || got[0].Name != "E4" {
		t.Errorf("step 6 = %v, want E4", got)
	}

	empty := pattern.NewExplicitPattern(nil)
	if empty.Length() != 1 {
		t.Errorf("empty pattern length = %d, want 1", empty.Length())
	}
}

func TestDeviceResolveCC(t *testing.T) {
	d := pattern.GetDevice("volca-keys")
	if d == nil {
		t.Fatal("volca-keys profile missing")
	}
	if cc, ok := d.ResolveCC("cutoff", 1); !ok || cc != 44 {
		t.Errorf("cutoff = %d, %v", cc, ok)
	}
	if _, ok := d.ResolveCC("flux", 1); ok {
		t.Error("unknown parameter resolved")
	}
	if got := pattern.GetDevice("no-such-device"); got != nil {
		t.Errorf("unknown device = %v, want nil", got)
	}

	perCh := &pattern.Device{
		Params:   map[string]uint8{"cutoff": 74},
		Channels: map[uint8]map[string]uint8{3: {"cutoff": 40}},
	}
	if cc, _ := perCh.ResolveCC("cutoff", 3); cc != 40 {
		t.Errorf("channel override = %d, want 40", cc)
	}
	if cc, _ := perCh.ResolveCC("cutoff", 1); cc != 74 {
		t.Errorf("base mapping = %d, want 74", cc)
	}
}
