package performance

import "github.com/leandrodaf/panelmeter/sdk/contracts"

type handler func(*State, contracts.Event)

// handlers lists every kind the model reacts to. Kinds without an entry are
// accepted and ignored.
var handlers = map[contracts.EventKind]handler{
	contracts.TimingClock:        (*State).onClock,
	contracts.ControlChange:      (*State).onControlChange,
	contracts.NoteOn:             (*State).onNote,
	contracts.NoteOff:            (*State).onNoteOff,
	contracts.PolyphonicPressure: (*State).onNote,
	contracts.ChannelPressure:    (*State).onChannelPressure,
}

// Dispatch applies one event to the model. It never fails.
func (s *State) Dispatch(e contracts.Event) {
	if h, ok := handlers[e.Kind]; ok {
		h(s, e)
	}
}

// Handles reports whether Dispatch changes state for events of kind k.
func Handles(k contracts.EventKind) bool {
	_, ok := handlers[k]
	return ok
}

func (s *State) onClock(contracts.Event) {
	s.tick = (s.tick + 1) % s.ticksPerBeat
}

func (s *State) onControlChange(e contracts.Event) {
	if int(e.Channel) >= MIDIChannels {
		return
	}
	switch e.Controller {
	case contracts.ControllerDamperPedal:
		s.Controllers.Damper[e.Channel] = e.Value > 64
	case contracts.ControllerExpression:
		s.Controllers.Expression[e.Channel] = e.Value
	case contracts.ControllerChannelVolume:
		s.Controllers.Volume[e.Channel] = e.Value
	}
}

func (s *State) onNote(e contracts.Event) {
	s.Notes.SetNote(e.Note, e.Channel, e.Value)
}

func (s *State) onNoteOff(e contracts.Event) {
	s.Notes.SetNote(e.Note, e.Channel, 0)
}

func (s *State) onChannelPressure(e contracts.Event) {
	s.Notes.SetChannel(e.Channel, e.Value)
}
