package midi

import (
	"github.com/leandrodaf/panelmeter/internal/logger"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
)

// applyDefaultOptions sets default values for ManagerOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ManagerOptions.
//
// Returns:
//   - contracts.ManagerOptions: The finalized options with defaults applied.
//   - error: ErrNoInput when no input endpoint was configured.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ManagerOptions, error) {
	options := &contracts.ManagerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Set defaults if options are not provided
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.ClockTimeout <= 0 {
		options.ClockTimeout = contracts.DefaultClockTimeout
	}
	if options.EventBuffer <= 0 {
		options.EventBuffer = contracts.DefaultEventBuffer
	}
	if options.RewriteZeroVelocity == nil {
		enabled := true
		options.RewriteZeroVelocity = &enabled
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: "panelmeter"}
	}

	if options.LogLevel != nil {
		options.Logger.SetLevel(*options.LogLevel)
	}
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}

	if options.InputPath == "" {
		return *options, ErrNoInput
	}
	return *options, nil
}
