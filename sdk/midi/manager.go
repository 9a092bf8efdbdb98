package midi

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/leandrodaf/panelmeter/internal/framer"
	"github.com/leandrodaf/panelmeter/internal/link"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
	"go.uber.org/multierr"
)

// Manager merges an input link and an optional dedicated clock link into a
// single event stream, and optionally owns an output link. Read is meant
// for a single consumer.
type Manager struct {
	opts   contracts.ManagerOptions
	logger contracts.Logger

	input  *link.Input
	clock  *link.Input
	output *link.Output

	closeOnce sync.Once
	closeErr  error
}

// NewManager opens the configured links.
// When a clock endpoint is configured, it blocks until a timing clock tick is
// read from it or the clock timeout elapses.
//
// opts ...contracts.Option: A variadic list of option functions to customize the manager.
//
// Returns:
//   - *Manager: A manager with every configured link connected.
//   - error: ErrNoInput, or a *contracts.OpenError describing the link that failed.
func NewManager(opts ...contracts.Option) (*Manager, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	m := &Manager{opts: options, logger: options.Logger}
	if err := m.open(); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

func (m *Manager) open() error {
	dual := m.opts.ClockPath != ""

	src, err := m.openReader(contracts.RoleInput, m.opts.InputPath)
	if err != nil {
		return err
	}
	m.input = link.StartInput(src, m.inputConfig(contracts.RoleInput, m.opts.InputPath, !dual, nil))

	if dual {
		src, err := m.openReader(contracts.RoleClock, m.opts.ClockPath)
		if err != nil {
			return err
		}
		rest, err := link.ValidateClock(src, m.opts.ClockTimeout)
		if err != nil {
			m.logger.Error("clock validation failed",
				m.logger.Field().String("path", m.opts.ClockPath),
				m.logger.Field().Duration("timeout", m.opts.ClockTimeout),
				m.logger.Field().Error("error", err))
			return &contracts.OpenError{Role: contracts.RoleClock, Path: m.opts.ClockPath, Err: err}
		}
		m.logger.Info("clock validated", m.logger.Field().String("path", m.opts.ClockPath))
		m.clock = link.StartInput(src, m.inputConfig(contracts.RoleClock, m.opts.ClockPath, true, rest))
	}

	if m.opts.OutputPath != "" {
		dst, err := m.openWriter(m.opts.OutputPath)
		if err != nil {
			return err
		}
		m.output = link.StartOutput(dst, link.NewInfo(contracts.RoleOutput, m.opts.OutputPath), m.opts.EventBuffer, m.logger)
	}
	return nil
}

func (m *Manager) inputConfig(role contracts.LinkRole, path string, includeClock bool, prefix []byte) link.InputConfig {
	return link.InputConfig{
		Info: link.NewInfo(role, path),
		Framer: framer.Options{
			IncludeClock:        includeClock,
			RewriteZeroVelocity: *m.opts.RewriteZeroVelocity,
			Now:                 time.Now,
		},
		Buffer: m.opts.EventBuffer,
		Prefix: prefix,
		Logger: m.logger,
	}
}

func (m *Manager) openReader(role contracts.LinkRole, path string) (io.ReadCloser, error) {
	opener, name, err := resolveEndpoint(&m.opts, path)
	if err != nil {
		return nil, &contracts.OpenError{Role: role, Path: path, Err: err}
	}
	src, err := opener.OpenReader(name)
	if err != nil {
		return nil, &contracts.OpenError{Role: role, Path: path, Err: err}
	}
	return src, nil
}

func (m *Manager) openWriter(path string) (io.WriteCloser, error) {
	opener, name, err := resolveEndpoint(&m.opts, path)
	if err != nil {
		return nil, &contracts.OpenError{Role: contracts.RoleOutput, Path: path, Err: err}
	}
	dst, err := opener.OpenWriter(name)
	if err != nil {
		return nil, &contracts.OpenError{Role: contracts.RoleOutput, Path: path, Err: err}
	}
	return dst, nil
}

// Read blocks until the merged stream yields an event. Events of one link
// keep their arrival order; events of different links are returned in the
// order they are received.
//
// Once any link has terminated, Read returns contracts.ErrDisconnected. Events
// still buffered on a surviving link may be returned before that.
func (m *Manager) Read(ctx context.Context) (contracts.Event, error) {
	var clockEvents <-chan contracts.Event
	if m.clock != nil {
		clockEvents = m.clock.Events()
	}
	var outputDone <-chan struct{}
	if m.output != nil {
		outputDone = m.output.Done()
	}

	select {
	case ev, ok := <-m.input.Events():
		if !ok {
			return contracts.Event{}, contracts.ErrDisconnected
		}
		return ev, nil
	case ev, ok := <-clockEvents:
		if !ok {
			return contracts.Event{}, contracts.ErrDisconnected
		}
		return ev, nil
	case <-outputDone:
		return contracts.Event{}, contracts.ErrDisconnected
	case <-ctx.Done():
		return contracts.Event{}, ctx.Err()
	}
}

// IsConnected reports whether every link is still connected.
func (m *Manager) IsConnected() bool {
	if m.input == nil || !m.input.Connected() {
		return false
	}
	if m.clock != nil && !m.clock.Connected() {
		return false
	}
	if m.output != nil && !m.output.Connected() {
		return false
	}
	return true
}

// HasOutput reports whether an output link was configured.
func (m *Manager) HasOutput() bool { return m.output != nil }

// Send queues e on the output link. It returns ErrNoOutput when no output was
// configured. Sending after the output link has terminated panics with
// *link.InvariantError; check IsConnected first.
func (m *Manager) Send(e contracts.Event) error {
	if m.output == nil {
		return ErrNoOutput
	}
	m.output.Send(e)
	return nil
}

// Links describes the open links in input, clock, output order.
func (m *Manager) Links() []contracts.LinkInfo {
	var infos []contracts.LinkInfo
	if m.input != nil {
		infos = append(infos, m.input.Info())
	}
	if m.clock != nil {
		infos = append(infos, m.clock.Info())
	}
	if m.output != nil {
		infos = append(infos, m.output.Info())
	}
	return infos
}

// Close closes every link and waits for their goroutines to exit.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		if m.input != nil {
			m.closeErr = multierr.Append(m.closeErr, m.input.Close())
		}
		if m.clock != nil {
			m.closeErr = multierr.Append(m.closeErr, m.clock.Close())
		}
		if m.output != nil {
			m.closeErr = multierr.Append(m.closeErr, m.output.Close())
		}
	})
	return m.closeErr
}
