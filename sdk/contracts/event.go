package contracts

import "fmt"

// EventKind identifies the type of a decoded MIDI message.
type EventKind uint8

const (
	// KindUnknown is never produced by the codec; it is the zero value.
	KindUnknown EventKind = iota
	NoteOff
	NoteOn
	PolyphonicPressure
	ControlChange
	ProgramChange
	ChannelPressure
	PitchBend
	SysEx
	TimeCode
	SongPosition
	SongSelect
	TuneRequest
	TimingClock
	Start
	Continue
	Stop
	ActiveSensing
	Reset
)

var kindNames = [...]string{
	KindUnknown:        "Unknown",
	NoteOff:            "NoteOff",
	NoteOn:             "NoteOn",
	PolyphonicPressure: "PolyphonicPressure",
	ControlChange:      "ControlChange",
	ProgramChange:      "ProgramChange",
	ChannelPressure:    "ChannelPressure",
	PitchBend:          "PitchBend",
	SysEx:              "SysEx",
	TimeCode:           "TimeCode",
	SongPosition:       "SongPosition",
	SongSelect:         "SongSelect",
	TuneRequest:        "TuneRequest",
	TimingClock:        "TimingClock",
	Start:              "Start",
	Continue:           "Continue",
	Stop:               "Stop",
	ActiveSensing:      "ActiveSensing",
	Reset:              "Reset",
}

func (k EventKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Controller numbers the performance model reacts to.
const (
	ControllerChannelVolume uint8 = 7
	ControllerExpression    uint8 = 11
	ControllerDamperPedal   uint8 = 64
)

// ClockTick is the single-byte timing clock status recognized on the wire.
const ClockTick byte = 0xF8

// Event is one decoded MIDI message. Fields that do not apply to Kind are zero.
type Event struct {
	Timestamp  uint64    // Timestamp is the receive time in Unix nanoseconds, zero when unknown.
	Kind       EventKind // Kind tells which of the remaining fields are meaningful.
	Channel    uint8     // Channel is 0..15 for channel voice messages.
	Note       uint8     // Note is the pitch for NoteOn, NoteOff and PolyphonicPressure.
	Controller uint8     // Controller is the CC number for ControlChange.
	Value      uint8     // Value is velocity, pressure, CC value, program or song number.
	Bend       int16     // Bend is the signed pitch bend relative to centre.
	Data       []byte    // Data holds the SysEx payload without F0/F7, or the raw message for system common.
}

// NewNoteOn builds a NoteOn event. The other New* helpers follow the same shape.
func NewNoteOn(channel, note, velocity uint8) Event {
	return Event{Kind: NoteOn, Channel: channel, Note: note, Value: velocity}
}

func NewNoteOff(channel, note, velocity uint8) Event {
	return Event{Kind: NoteOff, Channel: channel, Note: note, Value: velocity}
}

func NewControlChange(channel, controller, value uint8) Event {
	return Event{Kind: ControlChange, Channel: channel, Controller: controller, Value: value}
}

func NewChannelPressure(channel, pressure uint8) Event {
	return Event{Kind: ChannelPressure, Channel: channel, Value: pressure}
}

func NewPolyphonicPressure(channel, note, pressure uint8) Event {
	return Event{Kind: PolyphonicPressure, Channel: channel, Note: note, Value: pressure}
}

func NewTimingClock() Event {
	return Event{Kind: TimingClock}
}

func (e Event) String() string {
	switch e.Kind {
	case NoteOn, NoteOff, PolyphonicPressure:
		return fmt.Sprintf("%s(ch=%d note=%d v=%d)", e.Kind, e.Channel, e.Note, e.Value)
	case ControlChange:
		return fmt.Sprintf("%s(ch=%d cc=%d v=%d)", e.Kind, e.Channel, e.Controller, e.Value)
	case ProgramChange, ChannelPressure:
		return fmt.Sprintf("%s(ch=%d v=%d)", e.Kind, e.Channel, e.Value)
	case PitchBend:
		return fmt.Sprintf("%s(ch=%d bend=%d)", e.Kind, e.Channel, e.Bend)
	default:
		return e.Kind.String()
	}
}
