package pattern

import "github.com/kmorrill/tonicmidi/sequencer"

// ExplicitPattern plays a fixed list of notes per step, wrapping at its
// length. The zero step list plays nothing but still occupies a step.
type ExplicitPattern struct {
	steps [][]sequencer.PatternNote
}

// NewExplicitPattern builds a pattern from per-step note lists. An
// empty input becomes a single silent step so Length stays positive.
func NewExplicitPattern(steps [][]sequencer.PatternNote) *ExplicitPattern {
	if len(steps) == 0 {
		steps = make([][]sequencer.PatternNote, 1)
	}
	return &ExplicitPattern{steps: steps}
}

// FromNames builds a one-note-per-step pattern from note names. An
// empty name is a rest.
func FromNames(names ...string) *ExplicitPattern {
	steps := make([][]sequencer.PatternNote, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		steps[i] = []sequencer.PatternNote{{Name: name}}
	}
	return NewExplicitPattern(steps)
}

func (p *ExplicitPattern) NotesForStep(step int, _ *sequencer.Context) []sequencer.PatternNote {
	return p.steps[step%len(p.steps)]
}

func (p *ExplicitPattern) Length() int {
	return len(p.steps)
}
