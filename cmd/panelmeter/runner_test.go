package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/panelmeter/internal/logger"
	"github.com/leandrodaf/panelmeter/internal/performance"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
	"github.com/leandrodaf/panelmeter/sdk/midi"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func testRunner(t *testing.T) *runner {
	t.Helper()
	state, err := performance.New(performance.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return &runner{
		log:     logger.NewZapLoggerFrom(zaptest.NewLogger(t)),
		state:   state,
		preview: true,
		screen:  &bytes.Buffer{},
	}
}

func writeCapture(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.mid")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlayDispatchesUntilDisconnect(t *testing.T) {
	r := testRunner(t)
	path := writeCapture(t, []byte{
		0xB0, 11, 127, // expression
		0x90, 60, 100,
		0xF8,
	})

	m, err := midi.NewManager(contracts.WithLogger(r.log), contracts.WithLogLevel(contracts.DebugLevel), contracts.WithInput(path))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.play(ctx, m); !errors.Is(err, contracts.ErrDisconnected) {
		t.Fatalf("expected ErrDisconnected at end of capture, got %v", err)
	}

	if r.state.Controllers.Expression[0] != 127 {
		t.Errorf("expected expression 127, got %d", r.state.Controllers.Expression[0])
	}
	if r.state.Notes.Index(60) < 0 {
		t.Error("expected pitch 60 to be sounding")
	}
	if r.state.Tick() != 1 {
		t.Errorf("expected one tick, got %d", r.state.Tick())
	}
	if !strings.Contains(r.screen.(*bytes.Buffer).String(), "■") {
		t.Error("expected a terminal preview with lit cells")
	}
}

func TestRunWithoutReconnectReturnsOpenError(t *testing.T) {
	r := testRunner(t)
	r.input = filepath.Join(t.TempDir(), "midi9")
	r.options = []contracts.Option{contracts.WithLogger(r.log)}

	err := r.run(context.Background())
	var openErr *contracts.OpenError
	if !errors.As(err, &openErr) || openErr.Role != contracts.RoleInput {
		t.Fatalf("expected input OpenError, got %v", err)
	}
}

func TestRunResetsStateAfterDisconnect(t *testing.T) {
	r := testRunner(t)
	r.input = writeCapture(t, []byte{0x90, 60, 100})
	r.options = []contracts.Option{contracts.WithLogger(r.log)}

	if err := r.run(context.Background()); !errors.Is(err, contracts.ErrDisconnected) {
		t.Fatalf("expected ErrDisconnected, got %v", err)
	}
	if r.state.Notes.Occupied() != 0 {
		t.Error("expected held notes to be cleared after a disconnect")
	}
}

func TestWaitForPath(t *testing.T) {
	log := logger.NewZapLoggerFrom(zaptest.NewLogger(t))
	path := filepath.Join(t.TempDir(), "midi1")

	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(path, nil, 0o644)
	}()

	start := time.Now()
	if err := waitForPath(context.Background(), path, 5*time.Second, log); err != nil {
		t.Fatalf("waitForPath: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("expected to wake on creation, waited %s", elapsed)
	}
}

func TestWaitForPathCancelled(t *testing.T) {
	log := logger.NewZapLoggerFrom(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := waitForPath(ctx, filepath.Join(t.TempDir(), "never"), time.Minute, log); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if err := waitForPath(ctx, "coremidi:IAC Bus 1", time.Minute, log); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled for a named endpoint, got %v", err)
	}
}

func TestRunWaitsBetweenReconnects(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := testRunner(t)
	r.log = logger.NewZapLoggerFrom(zap.New(core))
	r.retry = 100 * time.Millisecond
	// The capture stays on disk, so every reopen succeeds and hits EOF at once.
	r.input = writeCapture(t, []byte{0x90, 60, 100})
	r.options = []contracts.Option{contracts.WithLogger(r.log)}

	ctx, cancel := context.WithTimeout(context.Background(), 350*time.Millisecond)
	defer cancel()
	if err := r.run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the loop to run until the deadline, got %v", err)
	}

	n := logs.FilterMessage("Reconnecting").Len()
	if n < 1 || n > 5 {
		t.Errorf("expected one reconnect per retry interval (1..5), got %d", n)
	}
}

func TestWaitForPathSleepsWhenPathExists(t *testing.T) {
	log := logger.NewZapLoggerFrom(zaptest.NewLogger(t))
	path := writeCapture(t, nil)

	start := time.Now()
	if err := waitForPath(context.Background(), path, 100*time.Millisecond, log); err != nil {
		t.Fatalf("waitForPath: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("expected the full retry interval for an existing node, waited %s", elapsed)
	}
}
