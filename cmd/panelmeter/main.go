// Command panelmeter drives a 32x16 LED panel meter from live MIDI input.
//
// It opens a MIDI input (and optionally a dedicated clock input and a thru
// output), folds every event into the performance model and renders the
// panel. Without LED hardware the panel can be previewed in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leandrodaf/panelmeter/internal/logger"
	"github.com/leandrodaf/panelmeter/internal/performance"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
)

func main() {
	defaults := performance.DefaultConfig()

	// Command line flags
	in := flag.String("in", "", "MIDI input endpoint (default: first /dev/midi* device)")
	clock := flag.String("clock", "", "Dedicated MIDI clock endpoint (optional)")
	out := flag.String("out", "", "MIDI thru output endpoint (optional)")
	clockTimeout := flag.Duration("clock-timeout", contracts.DefaultClockTimeout, "How long to wait for a tick on the clock endpoint")
	slotCount := flag.Int("slots", defaults.Slots, "Number of note columns")
	channels := flag.Int("channels", defaults.Channels, "Number of MIDI channels tracked")
	ticks := flag.Int("ticks", defaults.TicksPerBeat, "Timing clock ticks per beat")
	fps := flag.Int("fps", 60, "Maximum panel refresh rate")
	preview := flag.Bool("preview", false, "Draw the panel in the terminal")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFile := flag.String("log-file", "", "Write JSON logs to this file instead of stderr")
	reconnect := flag.Duration("reconnect", 2*time.Second, "Retry interval after a disconnect (0 exits instead)")
	flag.Parse()

	level, err := contracts.ParseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logger.NewZapLogger()
	log.SetLevel(level)
	if *logFile != "" {
		log.SetDestination(contracts.FileLog, *logFile)
	}

	cfg := defaults
	cfg.Slots = *slotCount
	cfg.Channels = *channels
	cfg.TicksPerBeat = *ticks
	state, err := performance.New(cfg)
	if err != nil {
		log.Fatal("Invalid performance configuration", log.Field().Error("error", err))
	}
	if *fps < 1 {
		*fps = 1
	}

	log.Info("Configuration",
		log.Field().String("in", *in),
		log.Field().String("clock", *clock),
		log.Field().String("out", *out),
		log.Field().Int("slots", cfg.Slots),
		log.Field().Int("channels", cfg.Channels),
		log.Field().Int("ticks_per_beat", cfg.TicksPerBeat),
		log.Field().Bool("preview", *preview),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner{
		log:     log,
		state:   state,
		preview: *preview,
		frameDt: time.Second / time.Duration(*fps),
		retry:   *reconnect,
		input:   *in,
		options: []contracts.Option{
			contracts.WithLogger(log),
			contracts.WithLogLevel(level),
			contracts.WithClock(*clock),
			contracts.WithOutput(*out),
			contracts.WithClockTimeout(*clockTimeout),
		},
	}
	if err := r.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("panelmeter stopped", log.Field().Error("error", err))
		os.Exit(1)
	}
	log.Info("Shutting down")
}
