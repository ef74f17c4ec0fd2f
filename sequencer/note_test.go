package sequencer_test

import (
	"testing"

	"github.com/kmorrill/tonicmidi/sequencer"
)

func TestParseNote(t *testing.T) {
	cases := []struct {
		name string
		want uint8
		ok   bool
	}{
		{"C4", 60, true},
		{"c4", 60, true},
		{"C#4", 61, true},
		{"Db4", 61, true},
		{"Eb2", 39, true},
		{"A0", 21, true},
		{"B-1", 11, true},
		{"C-1", 0, true},
		{"G9", 127, true},
		{" f3 ", 53, true},
		{"Bbb3", 57, true},
		{"", 0, false},
		{"H4", 0, false},
		{"C", 0, false},
		{"C10", 0, false},
		{"G#9", 0, false}, // 128, out of range
		{"4C", 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := sequencer.ParseNote(c.name)
			if ok != c.ok || got != c.want {
				t.Errorf("ParseNote(%q) = %d, %v; want %d, %v", c.name, got, ok, c.want, c.ok)
			}
		})
	}
}

func TestChordManagerAuthorizeOnce(t *testing.T) {
	m := sequencer.NewChordManager()

	tok := m.Authorize()
	if tok == nil {
		t.Fatal("first authorize returned nil")
	}
	if second := m.Authorize(); second != nil {
		t.Error("second authorize returned a token")
	}

	m.SetChord(tok, 60, []uint8{60, 64, 67})
	got := m.Current()
	if got.Root != 60 || len(got.Notes) != 3 {
		t.Errorf("chord = %+v", got)
	}
}

func TestChordManagerIgnoresForeignToken(t *testing.T) {
	m := sequencer.NewChordManager()
	_ = m.Authorize()

	other := sequencer.NewChordManager().Authorize()
	m.SetChord(other, 48, []uint8{48, 52, 55})
	m.SetChord(nil, 48, []uint8{48, 52, 55})

	if got := m.Current(); got.Root != 0 || got.Notes != nil {
		t.Errorf("unauthorized write landed: %+v", got)
	}
}

func TestRhythmManagerTokenGating(t *testing.T) {
	m := sequencer.NewRhythmManager()
	tok := m.Authorize()

	if m.Current().LastHit != -1 {
		t.Errorf("initial LastHit = %d, want -1", m.Current().LastHit)
	}

	m.SetKickPattern(tok, []bool{true, false, false, false})
	m.MarkHit(tok, 0)

	other := sequencer.NewRhythmManager().Authorize()
	m.SetKickPattern(other, []bool{true, true, true, true})
	m.MarkHit(nil, 7)

	got := m.Current()
	if got.LastHit != 0 {
		t.Errorf("LastHit = %d, want 0", got.LastHit)
	}
	if len(got.Steps) != 4 || got.Steps[1] {
		t.Errorf("steps = %v, unauthorized write landed", got.Steps)
	}
}

func TestKickStateOnStepWraps(t *testing.T) {
	k := sequencer.KickState{Steps: []bool{true, false, false, false}}

	for _, c := range []struct {
		step int
		want bool
	}{{0, true}, {1, false}, {4, true}, {7, false}, {16, true}} {
		if got := k.OnStep(c.step); got != c.want {
			t.Errorf("OnStep(%d) = %v, want %v", c.step, got, c.want)
		}
	}

	var empty sequencer.KickState
	if empty.OnStep(0) {
		t.Error("empty kick state reported a hit")
	}
}
