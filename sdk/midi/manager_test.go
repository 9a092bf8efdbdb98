package midi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/panelmeter/internal/link"
	"github.com/leandrodaf/panelmeter/internal/logger"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// fakeOpener serves pipes and buffers registered by name.
type fakeOpener struct {
	mu      sync.Mutex
	readers map[string]io.ReadCloser
	writers map[string]io.WriteCloser
}

func (f *fakeOpener) OpenReader(name string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.readers[name]
	if !ok {
		return nil, link.ErrEndpointNotFound
	}
	return r, nil
}

func (f *fakeOpener) OpenWriter(name string) (io.WriteCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.writers[name]
	if !ok {
		return nil, link.ErrEndpointNotFound
	}
	return w, nil
}

// withFakeEndpoints registers the "fake" scheme for the duration of the test.
func withFakeEndpoints(t *testing.T) *fakeOpener {
	t.Helper()
	f := &fakeOpener{readers: map[string]io.ReadCloser{}, writers: map[string]io.WriteCloser{}}
	endpointOpeners["fake"] = func(*contracts.ManagerOptions) link.Opener { return f }
	t.Cleanup(func() { delete(endpointOpeners, "fake") })
	return f
}

func (f *fakeOpener) pipe(name string) *io.PipeWriter {
	pr, pw := io.Pipe()
	f.mu.Lock()
	f.readers[name] = pr
	f.mu.Unlock()
	return pw
}

type bufferWriter struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (b *bufferWriter) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, os.ErrClosed
	}
	return b.buf.Write(p)
}

func (b *bufferWriter) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *bufferWriter) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func testOptions(t *testing.T, opts ...contracts.Option) []contracts.Option {
	return append([]contracts.Option{
		contracts.WithLogger(logger.NewZapLoggerFrom(zaptest.NewLogger(t))),
		contracts.WithLogLevel(contracts.DebugLevel),
	}, opts...)
}

func readEvent(t *testing.T, m *Manager) contracts.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev, err := m.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return ev
}

func TestSingleLinkPassesClock(t *testing.T) {
	f := withFakeEndpoints(t)
	in := f.pipe("keys")

	m, err := NewManager(testOptions(t, contracts.WithInput("fake:keys"))...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	go in.Write([]byte{0x90, 60, 100, 0xF8, 0x90, 60, 0})

	if ev := readEvent(t, m); ev.Kind != contracts.NoteOn || ev.Note != 60 || ev.Value != 100 {
		t.Errorf("expected NoteOn 60/100, got %v", ev)
	}
	if ev := readEvent(t, m); ev.Kind != contracts.TimingClock {
		t.Errorf("expected TimingClock, got %v", ev)
	}
	ev := readEvent(t, m)
	if ev.Kind != contracts.NoteOff || ev.Note != 60 {
		t.Errorf("expected zero-velocity NoteOn rewritten to NoteOff, got %v", ev)
	}
	if ev.Timestamp == 0 {
		t.Error("expected events to be timestamped")
	}
	if !m.IsConnected() {
		t.Error("expected manager to be connected")
	}
	if links := m.Links(); len(links) != 1 || links[0].Role != contracts.RoleInput || links[0].Path != "fake:keys" {
		t.Errorf("unexpected links %v", links)
	}
}

func TestDualLinkValidatesClock(t *testing.T) {
	f := withFakeEndpoints(t)
	in := f.pipe("keys")
	clock := f.pipe("clock")

	go clock.Write([]byte{0xFE, 0xF8, 0xF8})

	m, err := NewManager(testOptions(t,
		contracts.WithInput("fake:keys"),
		contracts.WithClock("fake:clock"),
		contracts.WithClockTimeout(time.Second),
	)...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	// Clock ticks on the note link are suppressed in dual-link mode.
	go in.Write([]byte{0xF8, 0x91, 64, 90})

	counts := map[contracts.EventKind]int{}
	for i := 0; i < 2; i++ {
		counts[readEvent(t, m).Kind]++
	}
	if counts[contracts.TimingClock] != 1 || counts[contracts.NoteOn] != 1 {
		t.Errorf("expected one tick from the clock link and one note, got %v", counts)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if ev, err := m.Read(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected no further events, got %v (%v)", ev, err)
	}
	if links := m.Links(); len(links) != 2 || links[1].Role != contracts.RoleClock {
		t.Errorf("unexpected links %v", links)
	}
}

func TestClockValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		clock func(w *io.PipeWriter)
		want  error
	}{
		{name: "timeout", clock: func(*io.PipeWriter) {}, want: link.ErrClockTimeout},
		{name: "eof", clock: func(w *io.PipeWriter) { w.Close() }, want: link.ErrClockEOF},
		{name: "no tick before eof", clock: func(w *io.PipeWriter) {
			go func() {
				w.Write([]byte{0x90, 60, 1})
				w.Close()
			}()
		}, want: link.ErrClockEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := withFakeEndpoints(t)
			in := f.pipe("keys")
			clock := f.pipe("clock")
			defer clock.Close()
			tt.clock(clock)

			m, err := NewManager(testOptions(t,
				contracts.WithInput("fake:keys"),
				contracts.WithClock("fake:clock"),
				contracts.WithClockTimeout(30*time.Millisecond),
			)...)
			if m != nil {
				t.Fatal("expected no manager on clock failure")
			}
			var openErr *contracts.OpenError
			if !errors.As(err, &openErr) || openErr.Role != contracts.RoleClock {
				t.Fatalf("expected clock OpenError, got %v", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if _, err := in.Write([]byte{0xF8}); !errors.Is(err, io.ErrClosedPipe) {
				t.Errorf("expected input link to be closed, write returned %v", err)
			}
		})
	}
}

func TestReadReportsDisconnect(t *testing.T) {
	f := withFakeEndpoints(t)
	in := f.pipe("keys")

	m, err := NewManager(testOptions(t, contracts.WithInput("fake:keys"))...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	go func() {
		in.Write([]byte{0xB0, 64, 127})
		in.Close()
	}()

	if ev := readEvent(t, m); ev.Kind != contracts.ControlChange {
		t.Fatalf("expected the buffered event before disconnect, got %v", ev)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := m.Read(ctx); !errors.Is(err, contracts.ErrDisconnected) {
		t.Fatalf("expected ErrDisconnected, got %v", err)
	}
	if m.IsConnected() {
		t.Error("expected IsConnected to be false after EOF")
	}
	if _, err := m.Read(ctx); !errors.Is(err, contracts.ErrDisconnected) {
		t.Errorf("expected disconnect to be permanent, got %v", err)
	}
}

func TestReadHonoursContext(t *testing.T) {
	f := withFakeEndpoints(t)
	f.pipe("keys")

	m, err := NewManager(testOptions(t, contracts.WithInput("fake:keys"))...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSendToOutput(t *testing.T) {
	f := withFakeEndpoints(t)
	f.pipe("keys")
	out := &bufferWriter{}
	f.writers["synth"] = out

	m, err := NewManager(testOptions(t, contracts.WithInput("fake:keys"), contracts.WithOutput("fake:synth"))...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if err := m.Send(contracts.NewNoteOn(2, 67, 33)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	want := []byte{0x92, 67, 33}
	deadline := time.Now().Add(2 * time.Second)
	for !bytes.Equal(out.Bytes(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("got % X, want % X", out.Bytes(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if m.IsConnected() {
		t.Error("expected closed manager to report disconnected")
	}
}

func TestSendWithoutOutput(t *testing.T) {
	f := withFakeEndpoints(t)
	f.pipe("keys")

	m, err := NewManager(testOptions(t, contracts.WithInput("fake:keys"))...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if m.HasOutput() {
		t.Error("expected no output link")
	}
	if err := m.Send(contracts.NewTimingClock()); !errors.Is(err, ErrNoOutput) {
		t.Errorf("expected ErrNoOutput, got %v", err)
	}
}

func TestOpenErrors(t *testing.T) {
	withFakeEndpoints(t)

	tests := []struct {
		name string
		opts []contracts.Option
		role contracts.LinkRole
		want error
	}{
		{name: "missing device node", opts: []contracts.Option{contracts.WithInput("/nonexistent/midi9")}, role: contracts.RoleInput, want: os.ErrNotExist},
		{name: "unknown scheme", opts: []contracts.Option{contracts.WithInput("bogus:thing")}, role: contracts.RoleInput, want: ErrUnknownScheme},
		{name: "unknown fake input", opts: []contracts.Option{contracts.WithInput("fake:none")}, role: contracts.RoleInput, want: link.ErrEndpointNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager(testOptions(t, tt.opts...)...)
			var openErr *contracts.OpenError
			if !errors.As(err, &openErr) {
				t.Fatalf("expected *contracts.OpenError, got %v", err)
			}
			if openErr.Role != tt.role {
				t.Errorf("expected role %s, got %s", tt.role, openErr.Role)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v in chain, got %v", tt.want, err)
			}
		})
	}
}

func TestOutputOpenFailureClosesInput(t *testing.T) {
	f := withFakeEndpoints(t)
	in := f.pipe("keys")

	_, err := NewManager(testOptions(t, contracts.WithInput("fake:keys"), contracts.WithOutput("fake:nowhere"))...)
	var openErr *contracts.OpenError
	if !errors.As(err, &openErr) || openErr.Role != contracts.RoleOutput {
		t.Fatalf("expected output OpenError, got %v", err)
	}
	if _, err := in.Write([]byte{0xF8}); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("expected input link to be closed, write returned %v", err)
	}
}

func TestNoInput(t *testing.T) {
	if _, err := NewManager(testOptions(t)...); !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
}

func TestResolveEndpoint(t *testing.T) {
	opts, _ := applyDefaultOptions(testOptions(t, contracts.WithInput("x"))...)

	tests := []struct {
		path string
		name string
		typ  link.Opener
	}{
		{path: "/dev/snd/midiC1D0", name: "/dev/snd/midiC1D0", typ: link.FileOpener{}},
		{path: "file:/dev/midi1", name: "/dev/midi1", typ: link.FileOpener{}},
		{path: "./odd:name", name: "./odd:name", typ: link.FileOpener{}},
		{path: "coremidi:IAC Driver Bus 1", name: "IAC Driver Bus 1", typ: link.CoreMIDIOpener{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			opener, name, err := resolveEndpoint(&opts, tt.path)
			if err != nil {
				t.Fatalf("resolveEndpoint: %v", err)
			}
			if name != tt.name {
				t.Errorf("expected name %q, got %q", tt.name, name)
			}
			switch tt.typ.(type) {
			case link.FileOpener:
				if _, ok := opener.(link.FileOpener); !ok {
					t.Errorf("expected FileOpener, got %T", opener)
				}
			case link.CoreMIDIOpener:
				if _, ok := opener.(link.CoreMIDIOpener); !ok {
					t.Errorf("expected CoreMIDIOpener, got %T", opener)
				}
			}
		})
	}
}

func TestApplyDefaultOptions(t *testing.T) {
	opts, err := applyDefaultOptions(testOptions(t, contracts.WithInput("fake:keys"))...)
	if err != nil {
		t.Fatalf("applyDefaultOptions: %v", err)
	}
	if opts.ClockTimeout != contracts.DefaultClockTimeout {
		t.Errorf("expected default clock timeout, got %s", opts.ClockTimeout)
	}
	if opts.EventBuffer != contracts.DefaultEventBuffer {
		t.Errorf("expected default event buffer, got %d", opts.EventBuffer)
	}
	if opts.RewriteZeroVelocity == nil || !*opts.RewriteZeroVelocity {
		t.Error("expected zero-velocity rewrite to default on")
	}
	if opts.CoreMIDIConfig == nil || opts.CoreMIDIConfig.ClientName == "" {
		t.Error("expected a default CoreMIDI client name")
	}

	opts, _ = applyDefaultOptions(testOptions(t, contracts.WithInput("x"), contracts.WithZeroVelocityRewrite(false))...)
	if *opts.RewriteZeroVelocity {
		t.Error("expected explicit WithZeroVelocityRewrite(false) to be kept")
	}
}

func TestApplyDefaultOptionsKeepsLoggerLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := logger.NewZapLoggerFrom(zap.New(core))

	if _, err := applyDefaultOptions(contracts.WithLogger(l), contracts.WithInput("x")); err != nil {
		t.Fatalf("applyDefaultOptions: %v", err)
	}
	l.Debug("kept")
	if logs.FilterMessage("kept").Len() != 1 {
		t.Error("expected a caller's logger to keep its level without WithLogLevel")
	}

	if _, err := applyDefaultOptions(contracts.WithLogger(l), contracts.WithInput("x"), contracts.WithLogLevel(contracts.WarnLevel)); err != nil {
		t.Fatalf("applyDefaultOptions: %v", err)
	}
	l.Info("dropped")
	if logs.FilterMessage("dropped").Len() != 0 {
		t.Error("expected WithLogLevel to apply")
	}
}
