package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/leandrodaf/panelmeter/internal/performance"
	"github.com/leandrodaf/panelmeter/internal/render"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
	"github.com/leandrodaf/panelmeter/sdk/midi"
)

// runner owns the performance state and the open/replay loop.
type runner struct {
	log     contracts.Logger
	state   *performance.State
	preview bool
	frameDt time.Duration
	retry   time.Duration // zero disables reconnecting
	input   string        // empty means discover a device
	options []contracts.Option
	screen  io.Writer
}

// run opens the links, plays events until they disconnect and reopens them
// until ctx is cancelled.
func (r *runner) run(ctx context.Context) error {
	if r.screen == nil {
		r.screen = os.Stdout
	}
	for {
		input, err := r.resolveInput(ctx)
		if err != nil {
			return err
		}

		m, err := midi.NewManager(append(r.options, contracts.WithInput(input))...)
		if err != nil {
			r.log.Warn("Cannot open MIDI links", r.log.Field().String("in", input), r.log.Field().Error("error", err))
			if r.retry <= 0 {
				return err
			}
			if err := waitForPath(ctx, input, r.retry, r.log); err != nil {
				return err
			}
			continue
		}

		err = r.play(ctx, m)
		if cerr := m.Close(); cerr != nil {
			r.log.Warn("Error closing MIDI links", r.log.Field().Error("error", cerr))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.log.Warn("MIDI links disconnected", r.log.Field().String("in", input), r.log.Field().Error("error", err))
		// Notes held when the device went away would otherwise stay lit.
		r.state.Reset()
		if r.retry <= 0 {
			return err
		}
		r.log.Info("Reconnecting", r.log.Field().Duration("interval", r.retry))
		if err := waitForPath(ctx, input, r.retry, r.log); err != nil {
			return err
		}
	}
}

// resolveInput returns the configured input or waits for a device to appear.
func (r *runner) resolveInput(ctx context.Context) (string, error) {
	if r.input != "" {
		return r.input, nil
	}
	for {
		devices, err := midi.ListDevices(midi.DefaultDeviceDir, midi.DefaultDevicePrefix)
		if err == nil && len(devices) > 0 {
			r.log.Info("Found MIDI device", r.log.Field().String("path", devices[0]))
			return devices[0], nil
		}
		if r.retry <= 0 {
			return "", fmt.Errorf("no MIDI device in %s: %w", midi.DefaultDeviceDir, midi.ErrNoInput)
		}
		r.log.Info("Waiting for MIDI device", r.log.Field().String("dir", midi.DefaultDeviceDir))
		if err := sleep(ctx, r.retry); err != nil {
			return "", err
		}
	}
}

// play dispatches events until the manager disconnects or ctx is done.
func (r *runner) play(ctx context.Context, m *midi.Manager) error {
	projector := render.NewProjector(r.state.Notes.Channels())
	frame := &render.Frame{}
	var drawn time.Time

	for {
		ev, err := m.Read(ctx)
		if err != nil {
			return err
		}
		r.state.Dispatch(ev)

		if m.HasOutput() {
			if !m.IsConnected() {
				return contracts.ErrDisconnected
			}
			if err := m.Send(ev); err != nil {
				return err
			}
		}

		if now := time.Now(); now.Sub(drawn) >= r.frameDt {
			projector.Draw(frame, r.state)
			if r.preview {
				fmt.Fprint(r.screen, "\x1b[H\x1b[2J", render.Preview(frame), "\n")
			}
			drawn = now
		}
	}
}
