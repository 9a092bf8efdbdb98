//go:build darwin
// +build darwin

package link

import (
	"fmt"
	"io"
	"sync"

	"github.com/leandrodaf/panelmeter/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

var coreMIDIClients = newClientPool(func(name string) (coremidi.Client, error) {
	return coremidi.NewClient(name)
})

// CoreMIDIOpener opens CoreMIDI sources by name. Packets are delivered as a
// byte stream so they pass through the same framer as device nodes.
type CoreMIDIOpener struct {
	ClientName string
	Logger     contracts.Logger
}

// OpenReader connects to the source whose name equals name.
func (o CoreMIDIOpener) OpenReader(name string) (io.ReadCloser, error) {
	client, err := coreMIDIClients.get(o.ClientName)
	if err != nil {
		return nil, fmt.Errorf("creating CoreMIDI client: %w", err)
	}
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}

	var source *coremidi.Source
	for i := range sources {
		if sources[i].Name() == name {
			source = &sources[i]
			break
		}
	}
	if source == nil {
		return nil, fmt.Errorf("%w: CoreMIDI source %q", ErrEndpointNotFound, name)
	}

	r := &coreMIDIReader{
		packets: make(chan []byte, contracts.DefaultEventBuffer),
		closed:  make(chan struct{}),
		logger:  o.Logger,
	}
	port, err := coremidi.NewInputPort(client, "Input Port", r.handlePacket)
	if err != nil {
		return nil, fmt.Errorf("error creating input port: %w", err)
	}
	r.conn, err = port.Connect(*source)
	if err != nil {
		return nil, fmt.Errorf("error connecting to MIDI device: %w", err)
	}
	return r, nil
}

// OpenWriter is not supported; CoreMIDI destinations are not wired.
func (o CoreMIDIOpener) OpenWriter(name string) (io.WriteCloser, error) {
	return nil, fmt.Errorf("%w: CoreMIDI output %q", ErrUnsupportedEndpoint, name)
}

type coreMIDIReader struct {
	packets chan []byte
	pending []byte
	conn    internalPortConnection
	logger  contracts.Logger

	mu       sync.Mutex
	closed   chan struct{}
	isClosed bool
}

// handlePacket runs on a CoreMIDI thread and must not block.
func (r *coreMIDIReader) handlePacket(_ coremidi.Source, packet coremidi.Packet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isClosed {
		return
	}
	data := append([]byte(nil), packet.Data...)
	select {
	case r.packets <- data:
	default:
		r.logger.Warn("CoreMIDI packet buffer full; dropping packet")
	}
}

func (r *coreMIDIReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		select {
		case data := <-r.packets:
			r.pending = data
		case <-r.closed:
			return 0, io.EOF
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *coreMIDIReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isClosed {
		return nil
	}
	r.isClosed = true
	r.conn.Disconnect()
	close(r.closed)
	return nil
}
