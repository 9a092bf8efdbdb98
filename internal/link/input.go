package link

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/panelmeter/internal/framer"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
)

const readChunk = 512

// Input is a read-side device link.
type Input struct {
	info   contracts.LinkInfo
	src    io.ReadCloser
	framer *framer.Framer
	logger contracts.Logger

	events chan contracts.Event
	quit   chan struct{}
	done   chan struct{}
	state  atomic.Int32
	err    error // written before done is closed

	closeOnce sync.Once
	closeErr  error
}

// InputConfig configures StartInput.
type InputConfig struct {
	Info   contracts.LinkInfo
	Framer framer.Options
	Buffer int
	// Prefix holds bytes already read from src, such as the remainder of a
	// clock validation read. They are framed before anything else.
	Prefix []byte
	Logger contracts.Logger
}

// StartInput takes ownership of src and starts the reading goroutine.
func StartInput(src io.ReadCloser, cfg InputConfig) *Input {
	if cfg.Buffer < 1 {
		cfg.Buffer = contracts.DefaultEventBuffer
	}
	in := &Input{
		info:   cfg.Info,
		src:    src,
		framer: framer.New(cfg.Framer),
		logger: cfg.Logger,
		events: make(chan contracts.Event, cfg.Buffer),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	in.logger.Info("MIDI link opened", linkFields(in.logger, in.info)...)
	go in.run(append([]byte(nil), cfg.Prefix...))
	return in
}

// Info describes the link.
func (in *Input) Info() contracts.LinkInfo { return in.info }

// Events delivers framed events in arrival order. It is closed when the
// link terminates.
func (in *Input) Events() <-chan contracts.Event { return in.events }

// Done is closed when the reading goroutine has terminated.
func (in *Input) Done() <-chan struct{} { return in.done }

// State reports whether the link is still connected.
func (in *Input) State() contracts.LinkState { return contracts.LinkState(in.state.Load()) }

// Connected is shorthand for State() == Connected.
func (in *Input) Connected() bool { return in.State() == contracts.Connected }

// Err returns why the link terminated: io.EOF, a read error, or nil when it
// was closed by Close. It is only meaningful after Done is closed.
func (in *Input) Err() error {
	select {
	case <-in.done:
		return in.err
	default:
		return nil
	}
}

// Discarded returns how many invalid byte runs the framer dropped. It is
// only meaningful after Done is closed.
func (in *Input) Discarded() uint64 {
	<-in.done
	return in.framer.Discarded()
}

// Close stops the link and closes the endpoint. It waits for the reading
// goroutine to exit.
func (in *Input) Close() error {
	in.closeOnce.Do(func() {
		close(in.quit)
		in.closeErr = in.src.Close()
		<-in.done
	})
	return in.closeErr
}

func (in *Input) run(prefix []byte) {
	defer close(in.done)
	defer close(in.events)

	if !in.deliver(prefix) {
		in.terminate(nil)
		return
	}
	buf := make([]byte, readChunk)
	for {
		n, err := in.src.Read(buf)
		if n > 0 && !in.deliver(buf[:n]) {
			in.terminate(nil)
			return
		}
		if err != nil {
			in.terminate(err)
			return
		}
	}
}

// deliver frames p and sends the resulting events. It returns false when
// the link is being closed.
func (in *Input) deliver(p []byte) bool {
	for _, b := range p {
		ev, ok := in.framer.Process(b)
		if !ok {
			continue
		}
		select {
		case in.events <- ev:
		case <-in.quit:
			return false
		}
	}
	return true
}

func (in *Input) terminate(err error) {
	select {
	case <-in.quit:
		// Reads fail once Close has closed the endpoint; that is not a disconnect.
		err = nil
	default:
	}
	in.err = err
	in.state.Store(int32(contracts.Disconnected))

	fields := linkFields(in.logger, in.info)
	switch {
	case err == nil:
		in.logger.Info("MIDI link closed", fields...)
	case errors.Is(err, io.EOF), errors.Is(err, os.ErrClosed), errors.Is(err, io.ErrClosedPipe):
		in.logger.Warn("MIDI link disconnected", fields...)
	default:
		in.logger.Warn("MIDI link read failed", append(fields, in.logger.Field().Error("error", err))...)
	}
	if d := in.framer.Discarded(); d > 0 {
		in.logger.Debug("invalid MIDI byte runs discarded", append(fields, in.logger.Field().Uint64("count", d))...)
	}
}
