package contracts

import "time"

// DefaultClockTimeout bounds the wait for a first clock tick on a dedicated clock link.
const DefaultClockTimeout = 1000 * time.Millisecond

// DefaultEventBuffer is the capacity of each link's event channel or send queue.
const DefaultEventBuffer = 128

// CoreMIDIConfig holds configuration for CoreMIDI endpoints ("coremidi:<source name>").
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
}

// ManagerOptions defines the configuration options for a device link manager.
type ManagerOptions struct {
	Logger       Logger        // Logger for logging link lifecycle and discarded input.
	LogLevel     *LogLevel     // Level of logging to use. Nil leaves the logger's level unchanged.
	LogFilePath  string        // File path for logging if file logging is enabled.
	InputPath    string        // Endpoint carrying note and controller data. Required.
	ClockPath    string        // Optional dedicated clock endpoint. Empty means single-link mode.
	OutputPath   string        // Optional output endpoint.
	ClockTimeout time.Duration // How long to wait for a clock tick when opening ClockPath.
	EventBuffer  int           // Capacity of per-link event channels.

	CoreMIDIConfig *CoreMIDIConfig // Configuration specific to CoreMIDI.

	// RewriteZeroVelocity turns NoteOn with velocity 0 into NoteOff. Nil means enabled.
	RewriteZeroVelocity *bool
}

// Option is a function that modifies ManagerOptions.
type Option func(*ManagerOptions)

// WithLogger sets the logger for the manager and its links.
func WithLogger(l Logger) Option {
	return func(opts *ManagerOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ManagerOptions) {
		opts.LogLevel = &level
	}
}

// WithLogFile directs log output to the given file.
func WithLogFile(path string) Option {
	return func(opts *ManagerOptions) {
		opts.LogFilePath = path
	}
}

// WithInput sets the input endpoint.
func WithInput(path string) Option {
	return func(opts *ManagerOptions) {
		opts.InputPath = path
	}
}

// WithClock sets a dedicated clock endpoint, enabling dual-link mode.
func WithClock(path string) Option {
	return func(opts *ManagerOptions) {
		opts.ClockPath = path
	}
}

// WithOutput sets an output endpoint.
func WithOutput(path string) Option {
	return func(opts *ManagerOptions) {
		opts.OutputPath = path
	}
}

// WithClockTimeout overrides DefaultClockTimeout.
func WithClockTimeout(d time.Duration) Option {
	return func(opts *ManagerOptions) {
		opts.ClockTimeout = d
	}
}

// WithEventBuffer overrides DefaultEventBuffer.
func WithEventBuffer(n int) Option {
	return func(opts *ManagerOptions) {
		opts.EventBuffer = n
	}
}

// WithZeroVelocityRewrite enables or disables the NoteOn(velocity 0) to NoteOff rewrite.
func WithZeroVelocityRewrite(enabled bool) Option {
	return func(opts *ManagerOptions) {
		opts.RewriteZeroVelocity = &enabled
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *ManagerOptions) {
		opts.CoreMIDIConfig = &config
	}
}
