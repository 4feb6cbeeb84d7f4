package pedal

import (
	"github.com/leandrodaf/pedalbridge/internal/logger"
	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized client options with defaults applied.
//   - error: An error if the log file could not be opened.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		l, err := logger.New(options.LogLevel, options.LogFilePath)
		if err != nil {
			return contracts.ClientOptions{}, err
		}
		options.Logger = l
	} else {
		options.Logger.SetLevel(options.LogLevel)
		if options.LogFilePath != "" {
			options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
		}
	}

	if options.MIDIConfig == nil {
		midi := contracts.DefaultMIDIConfig()
		options.MIDIConfig = &midi
	}
	if options.TargetConfig == nil {
		target := contracts.DefaultTargetConfig()
		options.TargetConfig = &target
	}

	return *options, nil
}
