package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme maps the monitor's color roles onto a palette gradient.
type Theme struct {
	Palette *Palette
}

// Palette positions per role, 0-1 along the gradient.
const (
	roleDim     = 0.15
	roleMuted   = 0.3
	roleHeader  = 0.55
	roleRunning = 1.0
	roleStopped = 0.75
)

func New(p *Palette) *Theme {
	if p == nil {
		p = Default()
	}
	return &Theme{Palette: p}
}

func (t *Theme) Header() lipgloss.Color  { return t.Color(roleHeader) }
func (t *Theme) Running() lipgloss.Color { return t.Color(roleRunning) }
func (t *Theme) Stopped() lipgloss.Color { return t.Color(roleStopped) }
func (t *Theme) Dim() lipgloss.Color     { return t.Color(roleDim) }
func (t *Theme) Muted() lipgloss.Color   { return t.Color(roleMuted) }

// Meter colors a 0-1 activity level, used for per-track note activity.
func (t *Theme) Meter(norm float64) lipgloss.Color {
	return t.Color(roleMuted + norm*(roleRunning-roleMuted))
}

// Color returns the lipgloss color at a normalized palette position.
func (t *Theme) Color(norm float64) lipgloss.Color {
	c := t.Palette.Lookup(norm)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
