package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/kmorrill/tonicmidi/debug"
)

// Output forwards bus events to hardware MIDI ports. Events carrying an
// Output port name go to that port; everything else goes to the default
// port. Ports are opened lazily the first time a name is seen.
//
// Bus channels are 1-16; gomidi wants 0-15.
type Output struct {
	defaultPort string
	senders     map[string]func(gomidi.Message) error

	// openPort is swappable so tests can capture messages without a
	// MIDI driver.
	openPort func(portName string) (func(gomidi.Message) error, error)
}

// NewOutput creates an Output routing unaddressed events to defaultPort.
func NewOutput(defaultPort string) *Output {
	return &Output{
		defaultPort: defaultPort,
		senders:     make(map[string]func(gomidi.Message) error),
		openPort:    openDriverPort,
	}
}

func openDriverPort(portName string) (func(gomidi.Message) error, error) {
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == portName {
			return gomidi.SendTo(port)
		}
	}
	return nil, nil
}

// Attach subscribes the output to every event kind on the bus.
func (o *Output) Attach(bus *Bus) {
	bus.SubscribeAll(o.handle)
}

// getSender returns a sender for the given port name, lazily opening it
func (o *Output) getSender(portName string) func(gomidi.Message) error {
	if portName == "" {
		return nil
	}
	if sender, ok := o.senders[portName]; ok {
		return sender
	}
	sender, err := o.openPort(portName)
	if err != nil || sender == nil {
		debug.Warn("output", "port %q unavailable: %v", portName, err)
		o.senders[portName] = nil // don't retry every event
		return nil
	}
	o.senders[portName] = sender
	return sender
}

func (o *Output) handle(e Event) {
	portName := e.Output
	if portName == "" {
		portName = o.defaultPort
	}
	sender := o.getSender(portName)
	if sender == nil {
		return
	}

	ch := e.Channel - 1
	switch e.Kind {
	case KindNoteOn:
		sender(gomidi.NoteOn(ch, e.Note, e.Velocity))
	case KindNoteOff:
		sender(gomidi.NoteOff(ch, e.Note))
	case KindControlChange:
		sender(gomidi.ControlChange(ch, e.Controller, e.Value))
	case KindPitchBend:
		sender(gomidi.Pitchbend(ch, e.Bend))
	case KindProgramChange:
		sender(gomidi.ProgramChange(ch, e.Program))
	case KindAftertouch:
		sender(gomidi.AfterTouch(ch, e.Pressure))
	}
	debug.LogEvery(32, "output", "port=%s ch=%d kind=%s note=%d", portName, ch+1, e.Kind, e.Note)
}
