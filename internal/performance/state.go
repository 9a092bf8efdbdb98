// Package performance holds the "currently sounding" model that events update.
package performance

import (
	"fmt"

	"github.com/leandrodaf/panelmeter/internal/slots"
)

// MIDIChannels is the number of channels on one link.
const MIDIChannels = 16

// Config sizes the performance model.
type Config struct {
	Slots        int   // Display columns for notes.
	Channels     int   // Channels tracked per note slot.
	TicksPerBeat int   // Timing clock pulses per beat.
	MinPitch     uint8 // Lowest pitch mapped onto the columns.
	MaxPitch     uint8 // Highest pitch mapped onto the columns.
}

// DefaultConfig matches the 32x16 panel: 24 note columns, 3 channels, 24 ppqn.
func DefaultConfig() Config {
	return Config{
		Slots:        24,
		Channels:     3,
		TicksPerBeat: 24,
		MinPitch:     slots.DefaultMinPitch,
		MaxPitch:     slots.DefaultMaxPitch,
	}
}

// Controllers holds per-channel continuous controller values.
type Controllers struct {
	Expression [MIDIChannels]uint8
	Volume     [MIDIChannels]uint8
	Damper     [MIDIChannels]bool
}

// State is the mutable performance model. It is owned by a single goroutine.
type State struct {
	Controllers Controllers
	Notes       *slots.Table

	tick         int
	ticksPerBeat int
}

// New creates a State from cfg.
func New(cfg Config) (*State, error) {
	if cfg.TicksPerBeat < 1 {
		return nil, fmt.Errorf("ticks per beat must be positive, got %d", cfg.TicksPerBeat)
	}
	notes, err := slots.New(cfg.Slots, cfg.Channels, slots.WithPitchRange(cfg.MinPitch, cfg.MaxPitch))
	if err != nil {
		return nil, err
	}
	return &State{Notes: notes, ticksPerBeat: cfg.TicksPerBeat}, nil
}

// Tick returns the beat phase, 0..TicksPerBeat-1.
func (s *State) Tick() int { return s.tick }

// TicksPerBeat returns the configured beat length in clock pulses.
func (s *State) TicksPerBeat() int { return s.ticksPerBeat }

// Reset clears controllers, the beat phase and all sounding notes.
func (s *State) Reset() {
	s.Controllers = Controllers{}
	s.tick = 0
	s.Notes.Reset()
}
