// Package codec decodes MIDI wire bytes into messages.
//
// Decode inspects a buffer that starts at a presumed status byte and reports
// whether it holds exactly one complete message, needs more bytes, or can
// never become valid. Running status is not supported.
package codec

import (
	"github.com/leandrodaf/panelmeter/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Result is the outcome of decoding a buffer.
type Result int

const (
	Incomplete Result = iota
	Complete
	Invalid
)

func (r Result) String() string {
	switch r {
	case Complete:
		return "complete"
	case Invalid:
		return "invalid"
	default:
		return "incomplete"
	}
}

// MaxSysEx bounds the length of a buffered system exclusive message.
const MaxSysEx = 4096

const (
	statusSysEx    = 0xF0
	statusSysExEnd = 0xF7
)

// Decode reports whether buf is one complete message. On Complete the
// returned message aliases buf; callers that keep it must copy.
func Decode(buf []byte) (gomidi.Message, Result) {
	if len(buf) == 0 {
		return nil, Incomplete
	}
	status := buf[0]
	if status < 0x80 {
		return nil, Invalid
	}
	if status == statusSysEx {
		return decodeSysEx(buf)
	}
	want := messageLength(status)
	if want == 0 {
		return nil, Invalid
	}
	for _, b := range buf[1:] {
		if b >= 0x80 {
			return nil, Invalid
		}
	}
	switch {
	case len(buf) < want:
		return nil, Incomplete
	case len(buf) > want:
		return nil, Invalid
	}
	return gomidi.Message(buf), Complete
}

func decodeSysEx(buf []byte) (gomidi.Message, Result) {
	for i, b := range buf[1:] {
		if b == statusSysExEnd {
			if i+2 != len(buf) {
				return nil, Invalid
			}
			return gomidi.Message(buf), Complete
		}
		if b >= 0x80 {
			return nil, Invalid
		}
	}
	if len(buf) >= MaxSysEx {
		return nil, Invalid
	}
	return nil, Incomplete
}

// messageLength returns the total length of a message starting with status,
// or 0 when the status byte is reserved or cannot start a message.
func messageLength(status byte) int {
	switch status & 0xF0 {
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0:
		return 3
	case 0xC0, 0xD0:
		return 2
	}
	switch status {
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	case 0xF6, 0xF8, 0xFA, 0xFB, 0xFC, 0xFE, 0xFF:
		return 1
	}
	return 0
}

// ToEvent converts a complete message into an Event. The returned event
// owns copies of any variable-length data.
func ToEvent(msg gomidi.Message) contracts.Event {
	var ch, a, b uint8
	var rel int16
	var abs uint16

	if len(msg) == 0 {
		return contracts.Event{}
	}
	status := msg[0]
	switch status & 0xF0 {
	case 0x80:
		msg.GetNoteOff(&ch, &a, &b)
		return contracts.NewNoteOff(ch, a, b)
	case 0x90:
		// Read the bytes directly so velocity 0 stays a NoteOn; the framer
		// decides what that means.
		return contracts.NewNoteOn(status&0x0F, msg[1], msg[2])
	case 0xA0:
		msg.GetPolyAfterTouch(&ch, &a, &b)
		return contracts.NewPolyphonicPressure(ch, a, b)
	case 0xB0:
		msg.GetControlChange(&ch, &a, &b)
		return contracts.NewControlChange(ch, a, b)
	case 0xC0:
		msg.GetProgramChange(&ch, &a)
		return contracts.Event{Kind: contracts.ProgramChange, Channel: ch, Value: a}
	case 0xD0:
		msg.GetAfterTouch(&ch, &a)
		return contracts.NewChannelPressure(ch, a)
	case 0xE0:
		msg.GetPitchBend(&ch, &rel, &abs)
		return contracts.Event{Kind: contracts.PitchBend, Channel: ch, Bend: rel}
	}

	switch status {
	case statusSysEx:
		payload := append([]byte(nil), msg[1:len(msg)-1]...)
		return contracts.Event{Kind: contracts.SysEx, Data: payload}
	case 0xF1:
		return contracts.Event{Kind: contracts.TimeCode, Value: msg[1], Data: []byte{msg[1]}}
	case 0xF2:
		return contracts.Event{Kind: contracts.SongPosition, Data: []byte{msg[1], msg[2]}}
	case 0xF3:
		return contracts.Event{Kind: contracts.SongSelect, Value: msg[1]}
	case 0xF6:
		return contracts.Event{Kind: contracts.TuneRequest}
	case contracts.ClockTick:
		return contracts.NewTimingClock()
	case 0xFA:
		return contracts.Event{Kind: contracts.Start}
	case 0xFB:
		return contracts.Event{Kind: contracts.Continue}
	case 0xFC:
		return contracts.Event{Kind: contracts.Stop}
	case 0xFE:
		return contracts.Event{Kind: contracts.ActiveSensing}
	case 0xFF:
		return contracts.Event{Kind: contracts.Reset}
	}
	return contracts.Event{}
}
