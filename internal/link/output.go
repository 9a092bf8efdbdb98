package link

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/panelmeter/internal/codec"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
)

// Output is a write-side device link. Send is safe for concurrent use.
type Output struct {
	info   contracts.LinkInfo
	dst    io.WriteCloser
	logger contracts.Logger

	queue chan contracts.Event
	quit  chan struct{}
	done  chan struct{}
	state atomic.Int32
	err   error // written before done is closed

	closeOnce sync.Once
	closeErr  error
}

// StartOutput takes ownership of dst and starts the writing goroutine.
func StartOutput(dst io.WriteCloser, info contracts.LinkInfo, buffer int, logger contracts.Logger) *Output {
	if buffer < 1 {
		buffer = contracts.DefaultEventBuffer
	}
	o := &Output{
		info:   info,
		dst:    dst,
		logger: logger,
		queue:  make(chan contracts.Event, buffer),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	logger.Info("MIDI link opened", linkFields(logger, info)...)
	go o.run()
	return o
}

// Info describes the link.
func (o *Output) Info() contracts.LinkInfo { return o.info }

// Done is closed when the writing goroutine has terminated.
func (o *Output) Done() <-chan struct{} { return o.done }

// State reports whether the link is still connected.
func (o *Output) State() contracts.LinkState { return contracts.LinkState(o.state.Load()) }

// Connected is shorthand for State() == Connected.
func (o *Output) Connected() bool { return o.State() == contracts.Connected }

// Err returns the write error that terminated the link, if any.
func (o *Output) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Send queues e for writing. Sending on a link whose goroutine has
// terminated panics with *InvariantError.
func (o *Output) Send(e contracts.Event) {
	select {
	case <-o.done:
		panic(&InvariantError{Link: o.info, Op: "send", Err: o.err})
	default:
	}
	select {
	case o.queue <- e:
	case <-o.done:
		panic(&InvariantError{Link: o.info, Op: "send", Err: o.err})
	}
}

// Close stops the writer and closes the endpoint. Queued events that were
// not yet written are dropped.
func (o *Output) Close() error {
	o.closeOnce.Do(func() {
		close(o.quit)
		o.closeErr = o.dst.Close()
		<-o.done
	})
	return o.closeErr
}

func (o *Output) run() {
	defer close(o.done)
	fields := linkFields(o.logger, o.info)
	for {
		select {
		case <-o.quit:
			o.stop(nil)
			o.logger.Info("MIDI link closed", fields...)
			return
		case e := <-o.queue:
			msg, err := codec.Encode(e)
			if err != nil {
				o.logger.Warn("dropping unencodable event", append(fields, o.logger.Field().Error("error", err))...)
				continue
			}
			if _, err := o.dst.Write(msg); err != nil {
				select {
				case <-o.quit:
					err = nil
				default:
				}
				o.stop(err)
				if err != nil {
					o.logger.Warn("MIDI link write failed", append(fields, o.logger.Field().Error("error", err))...)
				}
				return
			}
		}
	}
}

func (o *Output) stop(err error) {
	o.err = err
	o.state.Store(int32(contracts.Disconnected))
}
