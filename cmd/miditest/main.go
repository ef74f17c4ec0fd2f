package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/kmorrill/tonicmidi/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	defer gomidi.CloseDriver()

	switch os.Args[1] {
	case "list":
		listPorts()
	case "clock":
		match := ""
		if len(os.Args) > 2 {
			match = os.Args[2]
		}
		monitorClock(match)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list            - List all MIDI ports")
	fmt.Println("  clock [match]   - Monitor transport bytes on an input port")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range gomidi.GetInPorts() {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range gomidi.GetOutPorts() {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

// monitorClock prints transport bytes and a rough BPM estimate from
// pulse spacing (24 pulses per quarter note).
func monitorClock(match string) {
	var inPort drivers.In
	for _, p := range gomidi.GetInPorts() {
		if match == "" || strings.Contains(strings.ToLower(p.String()), strings.ToLower(match)) {
			inPort = p
			break
		}
	}
	if inPort == nil {
		fmt.Println("No matching input port")
		return
	}
	fmt.Printf("Monitoring %s (Ctrl+C to exit)\n", inPort.String())

	var lastPulse time.Time
	pulses := 0

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, _ int32) {
		data := msg.Bytes()
		if len(data) == 0 {
			return
		}
		switch data[0] {
		case midi.ByteStart:
			fmt.Println("[start]")
			pulses = 0
		case midi.ByteStop:
			fmt.Println("[stop]")
		case midi.ByteContinue:
			fmt.Println("[continue] (ignored by the transport)")
		case midi.ByteSongPosition:
			if len(data) >= 3 {
				pos := int(data[2])<<7 | int(data[1])
				fmt.Printf("[song position] %d MIDI beats\n", pos)
			}
		case midi.ByteClock:
			now := time.Now()
			if lastPulse.IsZero() {
				lastPulse = now
				return
			}
			pulses++
			// 24 pulses = one quarter note
			if pulses%24 == 0 {
				bpm := 60.0 / now.Sub(lastPulse).Seconds()
				fmt.Printf("  pulse %d  ~%.1f bpm\n", pulses, bpm)
				lastPulse = now
			}
		}
	}, gomidi.UseTimeCode())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}
