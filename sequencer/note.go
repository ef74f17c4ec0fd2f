package sequencer

import (
	"strconv"
	"strings"

	"github.com/kmorrill/tonicmidi/debug"
)

// MiddleC is the fallback pitch for unparseable note names.
const MiddleC = 60

var noteOffsets = map[string]int{
	"c": 0, "d": 2, "e": 4, "f": 5, "g": 7, "a": 9, "b": 11,
}

// ParseNote converts a note name like "C4", "f#3" or "Eb2" to a MIDI
// note number. C4 = 60 (middle C). Octaves range -1 to 9.
func ParseNote(name string) (uint8, bool) {
	s := strings.TrimSpace(strings.ToLower(name))
	if s == "" {
		return 0, false
	}

	offset, ok := noteOffsets[s[:1]]
	if !ok {
		return 0, false
	}
	rest := s[1:]

	for len(rest) > 0 {
		if rest[0] == '#' {
			offset++
		} else if rest[0] == 'b' {
			offset--
		} else {
			break
		}
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil || octave < -1 || octave > 9 {
		return 0, false
	}

	// C4 = 60, so octave -1 starts at 0
	n := (octave+1)*12 + offset
	if n < 0 || n > 127 {
		return 0, false
	}
	return uint8(n), true
}

// resolvePitch turns a PatternNote into a note number before transpose.
// Bad names fall back to middle C so playback keeps going.
func resolvePitch(n PatternNote) int {
	if n.Name == "" {
		return n.Number
	}
	pitch, ok := ParseNote(n.Name)
	if !ok {
		debug.Warn("loop", "unparseable note name %q, using middle C", n.Name)
		return MiddleC
	}
	return int(pitch)
}

// clampPitch clips a transposed pitch into MIDI range.
func clampPitch(p int) uint8 {
	if p < 0 {
		return 0
	}
	if p > 127 {
		return 127
	}
	return uint8(p)
}
