// Package song loads YAML arrangement files and builds a configured
// transport from them: tracks with channels, roles, patterns, chains
// and LFOs, all referencing a shared pattern table.
package song

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kmorrill/tonicmidi/midi"
	"github.com/kmorrill/tonicmidi/pattern"
	"github.com/kmorrill/tonicmidi/sequencer"
)

// File is the top-level song document.
type File struct {
	Title         string                `yaml:"title"`
	PulsesPerStep int                   `yaml:"pulsesPerStep"`
	Patterns      map[string]PatternDef `yaml:"patterns"`
	Tracks        []TrackDef            `yaml:"tracks"`
}

// TrackDef declares one loop.
type TrackDef struct {
	Name      string     `yaml:"name"`
	Channel   uint8      `yaml:"channel"`
	Output    string     `yaml:"output"`
	Role      string     `yaml:"role"` // "", "kick", "chord"
	Pattern   string     `yaml:"pattern"`
	Transpose int        `yaml:"transpose"`
	Muted     bool       `yaml:"muted"`
	Cycles    int        `yaml:"cycles"`
	Device    string     `yaml:"device"`
	Chain     []ChainRef `yaml:"chain"`
	LFOs      []LFODef   `yaml:"lfos"`
}

// ChainRef appends a named pattern to a track's chain.
type ChainRef struct {
	Pattern string `yaml:"pattern"`
	Cycles  int    `yaml:"cycles"`
	Channel uint8  `yaml:"channel"`
}

// LFODef declares one modulation source on a track.
type LFODef struct {
	Target string  `yaml:"target"`
	Shape  string  `yaml:"shape"`
	Rate   float64 `yaml:"rate"`
	Depth  float64 `yaml:"depth"`
	Offset float64 `yaml:"offset"`
}

// PatternDef declares a pattern; exactly one section should be set.
type PatternDef struct {
	// Explicit: one entry per step, "name[:velocity[:duration]]",
	// empty string = rest.
	Notes []string `yaml:"notes"`

	// Drum grid: kit name plus per-slot step rows ("x..x..x.").
	Kit  string   `yaml:"kit"`
	Drum []string `yaml:"drum"`

	Chords *ChordsDef `yaml:"chords"`
	Arp    *ArpDef    `yaml:"arp"`
}

// ChordsDef declares a chord-provider progression.
type ChordsDef struct {
	StepsPerChord int         `yaml:"stepsPerChord"`
	Changes       []ChangeDef `yaml:"changes"`
}

// ChangeDef is one chord in a progression.
type ChangeDef struct {
	Root      string `yaml:"root"`
	Intervals []int  `yaml:"intervals"`
}

// ArpDef declares a chord-following arpeggio pattern.
type ArpDef struct {
	Length int `yaml:"length"`
	Octave int `yaml:"octave"`
}

// Load reads and parses a song file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading song: %w", err)
	}
	return Parse(data)
}

// Parse decodes a song document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing song: %w", err)
	}
	if len(f.Tracks) == 0 {
		return nil, fmt.Errorf("song has no tracks")
	}
	return &f, nil
}

// Build wires the song onto a new transport publishing to bus. The
// chord and rhythm managers are created here and shared by every
// track, so the song's provider patterns hold the write tokens.
func (f *File) Build(bus *midi.Bus) (*sequencer.Transport, error) {
	t := sequencer.NewTransport(bus, f.PulsesPerStep)
	chords := sequencer.NewChordManager()
	rhythm := sequencer.NewRhythmManager()

	built := make(map[string]sequencer.Pattern, len(f.Patterns))
	get := func(name string, role sequencer.Role) (sequencer.Pattern, error) {
		// The kick provider gets its own publishing instance; plain
		// tracks sharing the same name share one silent instance.
		key := name
		if role == sequencer.RoleKickProvider {
			key = "kick:" + name
		}
		if p, ok := built[key]; ok {
			return p, nil
		}
		def, ok := f.Patterns[name]
		if !ok {
			return nil, fmt.Errorf("unknown pattern %q", name)
		}
		p, err := def.build(name, role, chords, rhythm)
		if err != nil {
			return nil, err
		}
		built[key] = p
		return p, nil
	}

	for _, td := range f.Tracks {
		role, err := parseRole(td.Role)
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", td.Name, err)
		}
		p, err := get(td.Pattern, role)
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", td.Name, err)
		}

		var lfos []sequencer.LFOAssignment
		for _, ld := range td.LFOs {
			lfos = append(lfos, sequencer.LFOAssignment{
				Source: pattern.NewLFO(pattern.ParseShape(ld.Shape), ld.Rate, ld.Depth, ld.Offset),
				Target: ld.Target,
			})
		}

		var device sequencer.DeviceDefinition
		if td.Device != "" {
			if d := pattern.GetDevice(td.Device); d != nil {
				device = d
			} else {
				return nil, fmt.Errorf("track %q: unknown device %q", td.Name, td.Device)
			}
		}

		loop := sequencer.NewLoop(bus, sequencer.LoopConfig{
			Name:      td.Name,
			Channel:   td.Channel,
			Output:    td.Output,
			Pattern:   p,
			Role:      role,
			Transpose: td.Transpose,
			Muted:     td.Muted,
			Cycles:    td.Cycles,
			LFOs:      lfos,
			Device:    device,
			Chords:    chords,
			Rhythm:    rhythm,
		})

		for _, cr := range td.Chain {
			cp, err := get(cr.Pattern, role)
			if err != nil {
				return nil, fmt.Errorf("track %q chain: %w", td.Name, err)
			}
			loop.AddChainItem(sequencer.ChainItem{
				Pattern: cp,
				Cycles:  cr.Cycles,
				Channel: cr.Channel,
			})
		}

		if err := t.AddLoop(loop); err != nil {
			return nil, fmt.Errorf("track %q: %w", td.Name, err)
		}
	}
	return t, nil
}

func parseRole(s string) (sequencer.Role, error) {
	switch s {
	case "":
		return sequencer.RoleNone, nil
	case "kick":
		return sequencer.RoleKickProvider, nil
	case "chord":
		return sequencer.RoleChordProvider, nil
	}
	return sequencer.RoleNone, fmt.Errorf("unknown role %q", s)
}

func (d PatternDef) build(name string, role sequencer.Role, chords *sequencer.ChordManager, rhythm *sequencer.RhythmManager) (sequencer.Pattern, error) {
	switch {
	case len(d.Notes) > 0:
		steps := make([][]sequencer.PatternNote, len(d.Notes))
		for i, spec := range d.Notes {
			if spec == "" {
				continue
			}
			n, err := parseNoteSpec(spec)
			if err != nil {
				return nil, fmt.Errorf("pattern %q step %d: %w", name, i, err)
			}
			steps[i] = []sequencer.PatternNote{n}
		}
		return pattern.NewExplicitPattern(steps), nil

	case len(d.Drum) > 0:
		var p interface {
			sequencer.Pattern
			SetRow(slot int, row string)
		}
		if role == sequencer.RoleKickProvider {
			p = pattern.NewKickDrumPattern(d.Kit, rhythm)
		} else {
			p = pattern.NewDrumPattern(d.Kit)
		}
		for slot, row := range d.Drum {
			p.SetRow(slot, row)
		}
		return p, nil

	case d.Chords != nil:
		changes := make([]pattern.ChordChange, len(d.Chords.Changes))
		for i, c := range d.Chords.Changes {
			changes[i] = pattern.ChordChange{Root: c.Root, Intervals: c.Intervals}
		}
		return pattern.NewChordPattern(changes, d.Chords.StepsPerChord, chords), nil

	case d.Arp != nil:
		return pattern.NewArpPattern(d.Arp.Length, d.Arp.Octave), nil
	}
	return nil, fmt.Errorf("pattern %q: empty definition", name)
}

// parseNoteSpec parses "C4", "C4:110" or "C4:110:2" (name, velocity,
// duration in steps).
func parseNoteSpec(spec string) (sequencer.PatternNote, error) {
	parts := strings.Split(spec, ":")
	n := sequencer.PatternNote{Name: parts[0]}
	if len(parts) > 1 && parts[1] != "" {
		v, err := strconv.Atoi(parts[1])
		if err != nil || v < 1 || v > 127 {
			return n, fmt.Errorf("bad velocity %q", parts[1])
		}
		n.Velocity = uint8(v)
	}
	if len(parts) > 2 {
		d, err := strconv.Atoi(parts[2])
		if err != nil || d < 1 {
			return n, fmt.Errorf("bad duration %q", parts[2])
		}
		n.Duration = d
	}
	return n, nil
}
