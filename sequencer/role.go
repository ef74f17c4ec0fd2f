package sequencer

// Role marks a loop as the exclusive publisher of foundation state for
// each step. The transport ticks kick providers first, then chord
// providers, then everyone else, so dependent loops read chord/rhythm
// state that is already current for the step.
type Role uint8

const (
	RoleNone Role = iota
	RoleKickProvider
	RoleChordProvider
)

func (r Role) String() string {
	switch r {
	case RoleKickProvider:
		return "kick"
	case RoleChordProvider:
		return "chord"
	}
	return "none"
}

// tickPriority orders the per-step passes. Lower runs first.
func (r Role) tickPriority() int {
	switch r {
	case RoleKickProvider:
		return 0
	case RoleChordProvider:
		return 1
	}
	return 2
}

const numPriorities = 3
