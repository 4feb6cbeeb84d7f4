package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
	"gopkg.in/yaml.v3"
)

// Validation errors.
var (
	ErrInvalidController = errors.New("pedal controller must be one of 1, 11, 7, 64")
	ErrInvalidLogLevel   = errors.New("invalid log level")
)

// Config is the root configuration structure.
type Config struct {
	MIDI   MIDIConfig   `yaml:"midi"`
	Target TargetConfig `yaml:"target"`
	Log    LogConfig    `yaml:"log"`
	HTTP   HTTPConfig   `yaml:"http"`
}

// MIDIConfig contains MIDI input settings.
type MIDIConfig struct {
	AutoConnectOnLaunch bool     `yaml:"auto_connect_on_launch"`
	PedalController     int      `yaml:"pedal_controller"`
	ClientName          string   `yaml:"client_name"`
	PortName            string   `yaml:"port_name"`
	BufferSize          int      `yaml:"buffer_size"`
	PreferredDevices    []string `yaml:"preferred_devices"`
}

// TargetConfig contains settings for the controlled application.
type TargetConfig struct {
	BundleID     string        `yaml:"bundle_id"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	TransportKey uint16        `yaml:"transport_key"`
	SoloKey      uint16        `yaml:"solo_key"`
	Modifiers    uint64        `yaml:"modifiers"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// HTTPConfig contains settings for the optional status API.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	midi := contracts.DefaultMIDIConfig()
	target := contracts.DefaultTargetConfig()
	return &Config{
		MIDI: MIDIConfig{
			AutoConnectOnLaunch: midi.AutoConnect,
			PedalController:     int(midi.PedalController),
			ClientName:          midi.ClientName,
			PortName:            midi.PortName,
			BufferSize:          midi.BufferSize,
			PreferredDevices:    midi.PreferredDevices,
		},
		Target: TargetConfig{
			BundleID:     target.BundleID,
			SettleDelay:  target.SettleDelay,
			TransportKey: uint16(target.TransportKey.Code),
			SoloKey:      uint16(target.SoloKey.Code),
		},
		Log:  LogConfig{Level: "info"},
		HTTP: HTTPConfig{Addr: "127.0.0.1:7474"},
	}
}

// DefaultPath returns ~/.config/pedalbridge/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "pedalbridge.yaml"
	}
	return filepath.Join(dir, "pedalbridge", "config.yaml")
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return finish(cfg)
}

// LoadOptional behaves like Load but falls back to defaults when the file
// does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return finish(Default())
	}
	return cfg, err
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PEDALBRIDGE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PEDALBRIDGE_BUNDLE_ID"); v != "" {
		cfg.Target.BundleID = v
	}
	if v := os.Getenv("PEDALBRIDGE_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error

	switch c.MIDI.PedalController {
	case 1, 11, 7, 64:
	default:
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidController, c.MIDI.PedalController))
	}
	if c.MIDI.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("midi.buffer_size must be positive, got %d", c.MIDI.BufferSize))
	}
	if c.Target.BundleID == "" {
		errs = append(errs, errors.New("target.bundle_id is required"))
	}
	if c.Target.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("target.settle_delay must not be negative, got %s", c.Target.SettleDelay))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.Enabled && c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required when http is enabled"))
	}

	return errors.Join(errs...)
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (contracts.LogLevel, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return contracts.DebugLevel, nil
	case "", "info":
		return contracts.InfoLevel, nil
	case "warn", "warning":
		return contracts.WarnLevel, nil
	case "error":
		return contracts.ErrorLevel, nil
	default:
		return contracts.InfoLevel, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
}

// ControllerHonored reports whether the configured pedal controller is one
// the decoder accepts. Controllers 7 and 64 are valid settings but are not
// decoded.
func (c *Config) ControllerHonored() bool {
	return c.MIDI.PedalController == int(contracts.ModWheelController) ||
		c.MIDI.PedalController == int(contracts.ExpressionController)
}

// MIDIOptions converts the MIDI section for the SDK.
func (c *Config) MIDIOptions() contracts.MIDIConfig {
	return contracts.MIDIConfig{
		ClientName:       c.MIDI.ClientName,
		PortName:         c.MIDI.PortName,
		AutoConnect:      c.MIDI.AutoConnectOnLaunch,
		PreferredDevices: append([]string(nil), c.MIDI.PreferredDevices...),
		PedalController:  uint8(c.MIDI.PedalController),
		BufferSize:       c.MIDI.BufferSize,
	}
}

// TargetOptions converts the target section for the SDK.
func (c *Config) TargetOptions() contracts.TargetConfig {
	return contracts.TargetConfig{
		BundleID:     c.Target.BundleID,
		SettleDelay:  c.Target.SettleDelay,
		TransportKey: contracts.KeyStroke{Code: contracts.KeyCode(c.Target.TransportKey), Modifiers: c.Target.Modifiers},
		SoloKey:      contracts.KeyStroke{Code: contracts.KeyCode(c.Target.SoloKey), Modifiers: c.Target.Modifiers},
	}
}
