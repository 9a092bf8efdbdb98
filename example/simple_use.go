package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/leandrodaf/panelmeter/internal/logger"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
	"github.com/leandrodaf/panelmeter/sdk/midi"
)

func main() {
	log := logger.NewZapLogger()

	devices, err := midi.ListDevices(midi.DefaultDeviceDir, midi.DefaultDevicePrefix)
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:", devices)

	manager, err := midi.NewManager(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithInput(devices[0]),
	)
	if err != nil {
		log.Error("Failed to open MIDI device", log.Field().Error("error", err))
		return
	}
	defer manager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Capturing MIDI events... Press Ctrl+C to exit.")
	for {
		event, err := manager.Read(ctx)
		if errors.Is(err, contracts.ErrDisconnected) {
			log.Warn("MIDI device disconnected")
			return
		}
		if err != nil {
			return
		}
		if event.Kind == contracts.TimingClock {
			continue
		}
		log.Info("MIDI Event",
			log.Field().Uint64("Timestamp", event.Timestamp),
			log.Field().String("Kind", event.Kind.String()),
			log.Field().Uint8("Channel", event.Channel),
			log.Field().Uint8("Note", event.Note),
			log.Field().Uint8("Value", event.Value),
		)
	}
}
