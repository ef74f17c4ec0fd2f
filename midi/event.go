package midi

// MIDI status bytes (channel voice messages, upper nibble)
const (
	StatusNoteOn        uint8 = 0x90
	StatusNoteOff       uint8 = 0x80
	StatusControlChange uint8 = 0xB0
	StatusProgramChange uint8 = 0xC0
	StatusAftertouch    uint8 = 0xD0
	StatusPitchBend     uint8 = 0xE0
)

// System real-time / common bytes consumed by the transport
const (
	ByteClock        uint8 = 0xF8
	ByteStart        uint8 = 0xFA
	ByteContinue     uint8 = 0xFB
	ByteStop         uint8 = 0xFC
	ByteSongPosition uint8 = 0xF2
)

// Kind identifies an event variant on the bus.
type Kind uint8

const (
	KindNoteOn Kind = iota
	KindNoteOff
	KindControlChange
	KindPitchBend
	KindProgramChange
	KindAftertouch
	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "noteOn"
	case KindNoteOff:
		return "noteOff"
	case KindControlChange:
		return "controlChange"
	case KindPitchBend:
		return "pitchBend"
	case KindProgramChange:
		return "programChange"
	case KindAftertouch:
		return "aftertouch"
	}
	return "unknown"
}

// StepNone marks an event that did not originate from a sequencer step.
const StepNone = -1

// Event is a single message flowing through the Bus. Only the fields
// relevant to Kind are meaningful; the rest stay zero, so two events
// are comparable with ==.
//
// Output is a MIDI port name; empty means "no specific device" and the
// consumer routes it to its default port. Step is the originating step
// index, or StepNone.
type Event struct {
	Kind    Kind
	Channel uint8 // 1-16

	Note     uint8 // NoteOn, NoteOff
	Velocity uint8 // NoteOn

	Controller uint8 // ControlChange
	Value      uint8 // ControlChange

	Bend     int16 // PitchBend, -8192..8191
	Program  uint8 // ProgramChange
	Pressure uint8 // Aftertouch

	Output string
	Step   int
}
