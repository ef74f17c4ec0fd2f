package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/kmorrill/tonicmidi/config"
	"github.com/kmorrill/tonicmidi/debug"
	"github.com/kmorrill/tonicmidi/midi"
	"github.com/kmorrill/tonicmidi/song"
	"github.com/kmorrill/tonicmidi/theme"
	"github.com/kmorrill/tonicmidi/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log unavailable: %v\n", err)
		}
		defer debug.Disable()
	}

	songPath := cfg.Song
	if len(os.Args) > 1 {
		songPath = os.Args[1]
	}
	if songPath == "" {
		return fmt.Errorf("no song file (pass a path or set song in config.json)")
	}

	f, err := song.Load(songPath)
	if err != nil {
		return err
	}
	if f.PulsesPerStep <= 0 {
		f.PulsesPerStep = cfg.PulsesPerStep
	}

	bus := midi.NewBus()
	out := midi.NewOutput(cfg.DefaultOutput)
	out.Attach(bus)

	transport, err := f.Build(bus)
	if err != nil {
		return err
	}

	in, err := findInPort(cfg.ClockInput)
	if err != nil {
		return err
	}
	defer gomidi.CloseDriver()

	// The driver callback drives the whole engine: every clock byte
	// runs through transport and loops to completion before the next.
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		transport.Handle(msg.Bytes())
	}, gomidi.UseTimeCode())
	if err != nil {
		return fmt.Errorf("listening on %q: %w", in.String(), err)
	}
	defer stop()

	fmt.Printf("tonicmidi: clock from %q, playing %s\n", in.String(), songPath)

	palette := theme.Default()
	if cfg.Palette != "" {
		palette, err = theme.LoadGPL(cfg.Palette)
		if err != nil {
			return fmt.Errorf("loading palette: %w", err)
		}
	}

	m := tui.NewModel(transport, f.Title, theme.New(palette))
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// findInPort matches a config substring against MIDI input port names.
func findInPort(match string) (drivers.In, error) {
	ins := gomidi.GetInPorts()
	if len(ins) == 0 {
		return nil, fmt.Errorf("no MIDI input ports found")
	}
	if match == "" {
		return ins[0], nil
	}
	needle := strings.ToLower(match)
	for _, p := range ins {
		if strings.Contains(strings.ToLower(p.String()), needle) {
			return p, nil
		}
	}
	var names []string
	for _, p := range ins {
		names = append(names, p.String())
	}
	return nil, fmt.Errorf("no input port matching %q (have: %s)", match, strings.Join(names, ", "))
}
