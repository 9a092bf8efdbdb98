package codec

import (
	"fmt"

	"github.com/leandrodaf/panelmeter/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Encode converts an Event back into wire bytes.
func Encode(e contracts.Event) (gomidi.Message, error) {
	if e.Channel > 15 {
		return nil, fmt.Errorf("channel %d out of range", e.Channel)
	}
	switch e.Kind {
	case contracts.NoteOn:
		return gomidi.NoteOn(e.Channel, e.Note, e.Value), nil
	case contracts.NoteOff:
		if e.Value != 0 {
			return gomidi.NoteOffVelocity(e.Channel, e.Note, e.Value), nil
		}
		return gomidi.NoteOff(e.Channel, e.Note), nil
	case contracts.PolyphonicPressure:
		return gomidi.PolyAfterTouch(e.Channel, e.Note, e.Value), nil
	case contracts.ControlChange:
		return gomidi.ControlChange(e.Channel, e.Controller, e.Value), nil
	case contracts.ProgramChange:
		return gomidi.ProgramChange(e.Channel, e.Value), nil
	case contracts.ChannelPressure:
		return gomidi.AfterTouch(e.Channel, e.Value), nil
	case contracts.PitchBend:
		return gomidi.Pitchbend(e.Channel, e.Bend), nil
	case contracts.SysEx:
		return gomidi.SysEx(e.Data), nil
	case contracts.TimeCode:
		return gomidi.Message{0xF1, e.Value & 0x7F}, nil
	case contracts.SongPosition:
		if len(e.Data) != 2 {
			return nil, fmt.Errorf("song position needs 2 data bytes, got %d", len(e.Data))
		}
		return gomidi.Message{0xF2, e.Data[0] & 0x7F, e.Data[1] & 0x7F}, nil
	case contracts.SongSelect:
		return gomidi.Message{0xF3, e.Value & 0x7F}, nil
	case contracts.TuneRequest:
		return gomidi.Message{0xF6}, nil
	case contracts.TimingClock:
		return gomidi.TimingClock(), nil
	case contracts.Start:
		return gomidi.Message{0xFA}, nil
	case contracts.Continue:
		return gomidi.Message{0xFB}, nil
	case contracts.Stop:
		return gomidi.Message{0xFC}, nil
	case contracts.ActiveSensing:
		return gomidi.Message{0xFE}, nil
	case contracts.Reset:
		return gomidi.Message{0xFF}, nil
	}
	return nil, fmt.Errorf("cannot encode %s", e.Kind)
}
