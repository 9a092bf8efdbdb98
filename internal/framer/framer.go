// Package framer turns a raw MIDI byte stream into events.
package framer

import (
	"time"

	"github.com/leandrodaf/panelmeter/internal/codec"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
)

// Options controls the rewrites applied by a Framer.
type Options struct {
	// IncludeClock keeps TimingClock messages. When false they are dropped
	// because a dedicated clock link supplies them.
	IncludeClock bool
	// RewriteZeroVelocity emits NoteOn with velocity 0 as NoteOff.
	RewriteZeroVelocity bool
	// Now stamps emitted events. Nil leaves Timestamp at zero.
	Now func() time.Time
}

// Framer buffers partial messages and emits one event per completed message.
// It is not safe for concurrent use; each link owns one.
type Framer struct {
	opts      Options
	buf       []byte
	discarded uint64
}

// New creates a Framer.
func New(opts Options) *Framer {
	return &Framer{opts: opts, buf: make([]byte, 0, 16)}
}

// Process appends one byte and returns the event it completes, if any.
func (f *Framer) Process(b byte) (contracts.Event, bool) {
	f.buf = append(f.buf, b)
	msg, res := codec.Decode(f.buf)
	switch res {
	case codec.Incomplete:
		return contracts.Event{}, false
	case codec.Invalid:
		f.discarded++
		f.reset()
		return contracts.Event{}, false
	}

	ev := codec.ToEvent(msg)
	f.reset()
	switch {
	case ev.Kind == contracts.TimingClock && !f.opts.IncludeClock:
		return contracts.Event{}, false
	case ev.Kind == contracts.NoteOn && ev.Value == 0 && f.opts.RewriteZeroVelocity:
		ev = contracts.NewNoteOff(ev.Channel, ev.Note, 0)
	}
	if f.opts.Now != nil {
		ev.Timestamp = uint64(f.opts.Now().UTC().UnixNano())
	}
	return ev, true
}

// Feed processes a chunk of bytes and appends completed events to dst.
func (f *Framer) Feed(dst []contracts.Event, p []byte) []contracts.Event {
	for _, b := range p {
		if ev, ok := f.Process(b); ok {
			dst = append(dst, ev)
		}
	}
	return dst
}

// Pending returns the number of buffered bytes of an unfinished message.
func (f *Framer) Pending() int {
	return len(f.buf)
}

// Discarded returns how many invalid byte runs have been dropped.
func (f *Framer) Discarded() uint64 {
	return f.discarded
}

func (f *Framer) reset() {
	// Large SysEx buffers are released rather than kept around.
	if cap(f.buf) > 256 {
		f.buf = make([]byte, 0, 16)
		return
	}
	f.buf = f.buf[:0]
}
