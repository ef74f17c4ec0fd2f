// Package tui is a read-only monitor of a running transport. All
// sequencing happens on the MIDI input goroutine; the TUI just
// consumes snapshots.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kmorrill/tonicmidi/sequencer"
	"github.com/kmorrill/tonicmidi/theme"
)

type Model struct {
	Transport *sequencer.Transport
	Title     string

	theme    *theme.Theme
	snap     sequencer.Snapshot
	quitting bool
}

type snapshotMsg sequencer.Snapshot

func NewModel(t *sequencer.Transport, title string, th *theme.Theme) Model {
	if title == "" {
		title = "tonicmidi"
	}
	if th == nil {
		th = theme.New(nil)
	}
	return Model{Transport: t, Title: title, theme: th}
}

// listenForSnapshots waits for the next transport snapshot.
func listenForSnapshots(t *sequencer.Transport) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-t.Updates())
	}
}

func (m Model) Init() tea.Cmd {
	return listenForSnapshots(m.Transport)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case snapshotMsg:
		m.snap = sequencer.Snapshot(msg)
		return m, listenForSnapshots(m.Transport)
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.theme.Header()).Bold(true)
	runStyle := lipgloss.NewStyle().Foreground(m.theme.Running())
	stopStyle := lipgloss.NewStyle().Foreground(m.theme.Stopped())
	dimStyle := lipgloss.NewStyle().Foreground(m.theme.Dim())
	mutedStyle := lipgloss.NewStyle().Foreground(m.theme.Muted())

	s := m.snap
	state := stopStyle.Render("STOP")
	if s.Running {
		state = runStyle.Render(" RUN")
	}
	header := headerStyle.Render(fmt.Sprintf("%s  %s  step:%04d  beat:%7.3f  notes:%d",
		m.Title, state, s.Step, s.Beats, s.ActiveNotes))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	for _, l := range s.Loops {
		line := fmt.Sprintf("  %-12s ch:%-2d role:%-5s pending:%d sounding:%d",
			l.Name, l.Channel, l.Role, l.Pending, l.Sounding)
		switch {
		case l.Muted && l.ChainDone:
			line = mutedStyle.Render(line + "  [chain done]")
		case l.Muted:
			line = mutedStyle.Render(line + "  [muted]")
		default:
			// Hotter color the more notes the track is holding
			norm := float64(l.Sounding) / 4
			if norm > 1 {
				norm = 1
			}
			line = lipgloss.NewStyle().Foreground(m.theme.Meter(norm)).Render(line)
		}
		out.WriteString(line)
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(dimStyle.Render("waiting on external clock (0xFA start / 0xF8 pulse / 0xFC stop)  q:quit"))
	return out.String()
}
