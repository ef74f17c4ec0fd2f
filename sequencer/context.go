package sequencer

import (
	"github.com/google/uuid"

	"github.com/kmorrill/tonicmidi/debug"
)

// Context is what a pattern sees when asked for notes: where we are in
// time, the shared chord/rhythm state published by the provider loops
// this step, the loop's device mapping, and any loop-local values.
type Context struct {
	Step  int
	Beats float64

	Chord ChordState
	Kick  KickState

	Device DeviceDefinition
	Local  map[string]any
}

// ChordState is the harmonic foundation for the current step.
type ChordState struct {
	Root  uint8
	Notes []uint8
}

// KickState is the rhythmic foundation for the current step.
type KickState struct {
	Steps   []bool // kick hits per step, indexed step % len
	LastHit int    // step of the most recent published hit, -1 if none
}

// OnStep reports whether the kick pattern hits on the given step.
func (k KickState) OnStep(step int) bool {
	if len(k.Steps) == 0 {
		return false
	}
	return k.Steps[step%len(k.Steps)]
}

// Token is the capability handed out by a manager's Authorize. Only
// the holder of the minted token may publish; everyone else reads.
type Token struct {
	id uuid.UUID
}

func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.id.String()[:8]
}

// ChordManager holds the shared chord state. Authorize mints a single
// write capability, meant for the one chord-provider loop's pattern;
// writes with any other token are logged and ignored.
type ChordManager struct {
	token *Token
	state ChordState
}

func NewChordManager() *ChordManager {
	return &ChordManager{}
}

// Authorize returns the write token on first call and nil afterwards.
func (m *ChordManager) Authorize() *Token {
	if m.token != nil {
		debug.Warn("chords", "authorize called twice, keeping holder %s", m.token)
		return nil
	}
	m.token = &Token{id: uuid.New()}
	debug.Log("chords", "authorized writer %s", m.token)
	return m.token
}

// SetChord publishes a new chord. A nil or foreign token is ignored.
func (m *ChordManager) SetChord(tok *Token, root uint8, notes []uint8) {
	if tok == nil || tok != m.token {
		debug.Warn("chords", "unauthorized setChord from %s ignored", tok)
		return
	}
	m.state = ChordState{Root: root, Notes: append([]uint8(nil), notes...)}
}

// Current returns the published chord state.
func (m *ChordManager) Current() ChordState {
	return m.state
}

// RhythmManager holds the shared kick state, with the same single
// authorized writer contract as ChordManager.
type RhythmManager struct {
	token *Token
	state KickState
}

func NewRhythmManager() *RhythmManager {
	return &RhythmManager{state: KickState{LastHit: -1}}
}

// Authorize returns the write token on first call and nil afterwards.
func (m *RhythmManager) Authorize() *Token {
	if m.token != nil {
		debug.Warn("rhythm", "authorize called twice, keeping holder %s", m.token)
		return nil
	}
	m.token = &Token{id: uuid.New()}
	debug.Log("rhythm", "authorized writer %s", m.token)
	return m.token
}

// SetKickPattern publishes the kick grid. A nil or foreign token is
// ignored.
func (m *RhythmManager) SetKickPattern(tok *Token, steps []bool) {
	if tok == nil || tok != m.token {
		debug.Warn("rhythm", "unauthorized setKickPattern from %s ignored", tok)
		return
	}
	m.state.Steps = append([]bool(nil), steps...)
}

// MarkHit records that the kick sounded on the given step.
func (m *RhythmManager) MarkHit(tok *Token, step int) {
	if tok == nil || tok != m.token {
		debug.Warn("rhythm", "unauthorized markHit from %s ignored", tok)
		return
	}
	m.state.LastHit = step
}

// Current returns the published kick state.
func (m *RhythmManager) Current() KickState {
	return m.state
}
