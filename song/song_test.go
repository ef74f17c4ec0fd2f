package song_test

import (
	"strings"
	"testing"

	"github.com/kmorrill/tonicmidi/midi"
	"github.com/kmorrill/tonicmidi/song"
)

const demoSong = `
title: Demo
pulsesPerStep: 6
patterns:
  beat:
    kit: gm
    drum:
      - "x...x...x...x..."
      - "....x.......x..."
      - "x.x.x.x.x.x.x.x."
  pads:
    chords:
      stepsPerChord: 8
      changes:
        - root: C4
        - root: A3
          intervals: [0, 3, 7]
  lead:
    arp:
      length: 16
      octave: 1
  bass:
    notes: ["C2:110:2", "", "", "G2", "C2", "", "Eb2:90", ""]
tracks:
  - name: drums
    channel: 10
    role: kick
    pattern: beat
  - name: keys
    channel: 1
    role: chord
    pattern: pads
  - name: arp
    channel: 2
    pattern: lead
    device: volca-keys
    lfos:
      - target: cutoff
        shape: triangle
        rate: 0.5
        depth: 30
        offset: 70
  - name: bass
    channel: 3
    pattern: bass
    transpose: -12
`

func TestParse(t *testing.T) {
	f, err := song.Parse([]byte(demoSong))
	if err != nil {
		t.Fatal(err)
	}
	if f.Title != "Demo" || f.PulsesPerStep != 6 {
		t.Errorf("header = %q / %d", f.Title, f.PulsesPerStep)
	}
	if len(f.Patterns) != 4 || len(f.Tracks) != 4 {
		t.Errorf("got %d patterns, %d tracks", len(f.Patterns), len(f.Tracks))
	}
	if f.Tracks[3].Transpose != -12 {
		t.Errorf("bass transpose = %d", f.Tracks[3].Transpose)
	}
}

func TestParseRejectsEmptySong(t *testing.T) {
	if _, err := song.Parse([]byte("title: Nothing\n")); err == nil {
		t.Error("song without tracks parsed")
	}
	if _, err := song.Parse([]byte(":bad yaml:[")); err == nil {
		t.Error("malformed yaml parsed")
	}
}

func TestBuildAndRun(t *testing.T) {
	f, err := song.Parse([]byte(demoSong))
	if err != nil {
		t.Fatal(err)
	}
	bus := midi.NewBus()
	tr, err := f.Build(bus)
	if err != nil {
		t.Fatal(err)
	}

	var events []midi.Event
	bus.SubscribeAll(func(e midi.Event) { events = append(events, e) })

	tr.Handle([]byte{0xFA})
	for i := 0; i < 48; i++ {
		tr.Handle([]byte{0xF8})
	}

	byChannel := map[uint8]int{}
	for _, e := range events {
		if e.Kind == midi.KindNoteOn {
			byChannel[e.Channel]++
		}
	}
	// Every track sounded: drums on 10, chord on 1, arp on 2, bass on 3
	for _, ch := range []uint8{10, 1, 2, 3} {
		if byChannel[ch] == 0 {
			t.Errorf("no notes on channel %d (counts %v)", ch, byChannel)
		}
	}

	// The arp follows the published chord: its first note is middle C
	// lifted one octave.
	for _, e := range events {
		if e.Kind == midi.KindNoteOn && e.Channel == 2 {
			if e.Note != 72 {
				t.Errorf("first arp note = %d, want 72", e.Note)
			}
			break
		}
	}

	tr.Handle([]byte{0xFC})
	if bus.ActiveCount() != 0 {
		t.Errorf("active notes after stop = %d", bus.ActiveCount())
	}
}

func TestBuildSharesPatternsButNotProviders(t *testing.T) {
	src := `
patterns:
  beat:
    kit: gm
    drum: ["x...x..."]
tracks:
  - name: drums
    channel: 10
    role: kick
    pattern: beat
  - name: shadow
    channel: 11
    pattern: beat
`
	f, err := song.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Build(midi.NewBus()); err != nil {
		t.Fatalf("build: %v", err)
	}
}

func TestBuildChain(t *testing.T) {
	src := `
patterns:
  a:
    notes: ["C3", "", "E3", ""]
  b:
    notes: ["G3", "", "", ""]
tracks:
  - name: lead
    channel: 1
    pattern: a
    cycles: 2
    chain:
      - pattern: b
        cycles: 1
        channel: 5
`
	f, err := song.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	bus := midi.NewBus()
	tr, err := f.Build(bus)
	if err != nil {
		t.Fatal(err)
	}

	var channels []uint8
	bus.Subscribe(midi.KindNoteOn, func(e midi.Event) {
		channels = append(channels, e.Channel)
	})

	tr.Handle([]byte{0xFA})
	for i := 0; i < 72; i++ { // 12 steps: 2 cycles of a, then b
		tr.Handle([]byte{0xF8})
	}

	sawChainChannel := false
	for _, ch := range channels {
		if ch == 5 {
			sawChainChannel = true
		}
	}
	if !sawChainChannel {
		t.Errorf("chained pattern never sounded on its channel: %v", channels)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			"unknown pattern",
			"tracks:\n  - name: x\n    pattern: nope\n",
			"unknown pattern",
		},
		{
			"unknown role",
			"patterns:\n  a:\n    notes: [\"C4\"]\ntracks:\n  - name: x\n    role: lead\n    pattern: a\n",
			"unknown role",
		},
		{
			"unknown device",
			"patterns:\n  a:\n    notes: [\"C4\"]\ntracks:\n  - name: x\n    pattern: a\n    device: tb303\n",
			"unknown device",
		},
		{
			"empty pattern definition",
			"patterns:\n  a: {}\ntracks:\n  - name: x\n    pattern: a\n",
			"empty definition",
		},
		{
			"bad velocity",
			"patterns:\n  a:\n    notes: [\"C4:999\"]\ntracks:\n  - name: x\n    pattern: a\n",
			"bad velocity",
		},
		{
			"duplicate kick provider",
			"patterns:\n  a:\n    drum: [\"x...\"]\ntracks:\n  - name: x\n    role: kick\n    pattern: a\n  - name: y\n    role: kick\n    pattern: a\n",
			"provider role already registered",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f, err := song.Parse([]byte(c.src))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := f.Build(midi.NewBus()); err == nil || !strings.Contains(err.Error(), c.want) {
				t.Errorf("err = %v, want containing %q", err, c.want)
			}
		})
	}
}
