package midi

import (
	"github.com/kmorrill/tonicmidi/debug"
)

// ActiveNote is one entry in the bus's sounding-note ledger.
type ActiveNote struct {
	Channel  uint8
	Note     uint8
	Velocity uint8
	Output   string
}

// noteKey identifies a sounding note: one note per (port, channel, pitch).
type noteKey struct {
	output  string
	channel uint8
	note    uint8
}

// Handler receives events from the bus.
type Handler func(Event)

type subscriber struct {
	id int
	fn Handler
}

// Bus is the synchronous publish/subscribe hub between loops and
// playback consumers. Besides dispatch it keeps the authoritative
// ledger of currently sounding notes: an entry exists iff a NoteOn went
// out without a matching NoteOff. Only NoteOn, NoteOff and
// StopAllNotes touch the ledger.
//
// The bus is not safe for concurrent use. The whole engine is driven
// one clock byte at a time, so every publish runs to completion before
// the next one starts.
type Bus struct {
	subs   [numKinds][]subscriber
	nextID int

	active map[noteKey]ActiveNote
	order  []noteKey // ledger keys in insertion order
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		active: make(map[noteKey]ActiveNote),
	}
}

// Subscribe registers a handler for one event kind and returns a token
// for Unsubscribe. Handlers run synchronously in registration order.
func (b *Bus) Subscribe(kind Kind, fn Handler) int {
	b.nextID++
	b.subs[kind] = append(b.subs[kind], subscriber{id: b.nextID, fn: fn})
	return b.nextID
}

// SubscribeAll registers a handler for every event kind.
func (b *Bus) SubscribeAll(fn Handler) []int {
	ids := make([]int, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		ids = append(ids, b.Subscribe(k, fn))
	}
	return ids
}

// Unsubscribe removes a previously registered handler. Unknown tokens
// are ignored.
func (b *Bus) Unsubscribe(kind Kind, id int) {
	subs := b.subs[kind]
	for i, s := range subs {
		if s.id == id {
			b.subs[kind] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) dispatch(e Event) {
	for _, s := range b.subs[e.Kind] {
		s.fn(e)
	}
}

// NoteOn records the note as sounding and notifies subscribers. A
// second NoteOn for the same (output, channel, note) overwrites the
// ledger entry.
func (b *Bus) NoteOn(channel, note, velocity uint8, output string, step int) {
	key := noteKey{output: output, channel: channel, note: note}
	if _, ok := b.active[key]; !ok {
		b.order = append(b.order, key)
	}
	b.active[key] = ActiveNote{Channel: channel, Note: note, Velocity: velocity, Output: output}
	b.dispatch(Event{
		Kind:     KindNoteOn,
		Channel:  channel,
		Note:     note,
		Velocity: velocity,
		Output:   output,
		Step:     step,
	})
}

// NoteOff drops the ledger entry if present (absent is a no-op, not an
// error) and notifies subscribers.
func (b *Bus) NoteOff(channel, note uint8, output string, step int) {
	key := noteKey{output: output, channel: channel, note: note}
	if _, ok := b.active[key]; ok {
		delete(b.active, key)
		for i, k := range b.order {
			if k == key {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
	b.dispatch(Event{
		Kind:    KindNoteOff,
		Channel: channel,
		Note:    note,
		Output:  output,
		Step:    step,
	})
}

// ControlChange dispatches a CC event. No ledger interaction.
func (b *Bus) ControlChange(channel, controller, value uint8, output string) {
	b.dispatch(Event{
		Kind:       KindControlChange,
		Channel:    channel,
		Controller: controller,
		Value:      value,
		Output:     output,
		Step:       StepNone,
	})
}

// PitchBend dispatches a pitch bend event.
func (b *Bus) PitchBend(channel uint8, bend int16, output string) {
	b.dispatch(Event{
		Kind:    KindPitchBend,
		Channel: channel,
		Bend:    bend,
		Output:  output,
		Step:    StepNone,
	})
}

// ProgramChange dispatches a program change event.
func (b *Bus) ProgramChange(channel, program uint8, output string) {
	b.dispatch(Event{
		Kind:    KindProgramChange,
		Channel: channel,
		Program: program,
		Output:  output,
		Step:    StepNone,
	})
}

// Aftertouch dispatches a channel pressure event.
func (b *Bus) Aftertouch(channel, pressure uint8, output string) {
	b.dispatch(Event{
		Kind:     KindAftertouch,
		Channel:  channel,
		Pressure: pressure,
		Output:   output,
		Step:     StepNone,
	})
}

// StopAllNotes emits a NoteOff for every ledger entry, oldest first,
// and leaves the ledger empty. The transport calls this on Stop so
// nothing is left sounding.
func (b *Bus) StopAllNotes() {
	if len(b.order) == 0 {
		return
	}
	debug.Log("bus", "stopAllNotes: flushing %d active notes", len(b.order))
	keys := b.order
	b.order = nil
	pending := b.active
	b.active = make(map[noteKey]ActiveNote)
	for _, key := range keys {
		n := pending[key]
		b.dispatch(Event{
			Kind:    KindNoteOff,
			Channel: n.Channel,
			Note:    n.Note,
			Output:  n.Output,
			Step:    StepNone,
		})
	}
}

// ActiveCount reports how many notes are currently sounding.
func (b *Bus) ActiveCount() int {
	return len(b.active)
}

// ActiveNotes returns a snapshot of the ledger in insertion order.
func (b *Bus) ActiveNotes() []ActiveNote {
	out := make([]ActiveNote, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, b.active[key])
	}
	return out
}
