package contracts

import "time"

// MIDIConfig holds configuration for the pedal MIDI source.
type MIDIConfig struct {
	ClientName       string   // Name of the MIDI client.
	PortName         string   // Name of the input port.
	AutoConnect      bool     // Auto-select a preferred device after a scan when none is selected.
	PreferredDevices []string // Case-insensitive name fragments for auto-select, in priority order.
	PedalController  uint8    // Configured pedal controller; only 1 and 11 are decoded.
	BufferSize       int      // Capacity of the delivery-to-processing channel.
}

// TargetConfig holds configuration for the target application bridge.
type TargetConfig struct {
	BundleID     string        // Stable bundle identity of the target application.
	SettleDelay  time.Duration // Pause between foreground activation and key synthesis.
	TransportKey KeyStroke     // Key for Play and Stop.
	SoloKey      KeyStroke     // Key for Solo and Unsolo.
}

// DefaultMIDIConfig returns the MIDI configuration used when none is supplied.
func DefaultMIDIConfig() MIDIConfig {
	return MIDIConfig{
		ClientName:       "PedalBridge MIDI Client",
		PortName:         "PedalBridge Input Port",
		AutoConnect:      true,
		PreferredDevices: []string{"minilab", "arturia"},
		PedalController:  ExpressionController,
		BufferSize:       128,
	}
}

// DefaultTargetConfig returns the bridge configuration for Logic Pro.
func DefaultTargetConfig() TargetConfig {
	return TargetConfig{
		BundleID:     "com.apple.logic10",
		SettleDelay:  50 * time.Millisecond,
		TransportKey: KeyStroke{Code: KeySpace},
		SoloKey:      KeyStroke{Code: KeyS},
	}
}

// ClientOptions defines the configuration options for the pedal bridge.
type ClientOptions struct {
	Logger       Logger         // Logger for logging events and errors.
	LogLevel     LogLevel       // Level of logging to use.
	LogFilePath  string         // File path for logging if file logging is enabled.
	MIDIConfig   *MIDIConfig    // MIDI source configuration.
	TargetConfig *TargetConfig  // Target bridge configuration.
	Driver       DriverFactory  // Overrides the per-OS MIDI driver.
	Platform     TargetPlatform // Overrides the per-OS target platform.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile directs logging to a file.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithMIDIConfig sets the MIDI source configuration.
func WithMIDIConfig(config MIDIConfig) Option {
	return func(opts *ClientOptions) {
		opts.MIDIConfig = &config
	}
}

// WithTargetConfig sets the target bridge configuration.
func WithTargetConfig(config TargetConfig) Option {
	return func(opts *ClientOptions) {
		opts.TargetConfig = &config
	}
}

// WithDriver replaces the per-OS MIDI driver.
func WithDriver(factory DriverFactory) Option {
	return func(opts *ClientOptions) {
		opts.Driver = factory
	}
}

// WithPlatform replaces the per-OS target platform.
func WithPlatform(platform TargetPlatform) Option {
	return func(opts *ClientOptions) {
		opts.Platform = platform
	}
}
