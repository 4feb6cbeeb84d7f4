package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/leandrodaf/pedalbridge/internal/logger"
	"github.com/leandrodaf/pedalbridge/sdk/contracts"
	"github.com/leandrodaf/pedalbridge/sdk/pedal"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	log := logger.NewZapLogger()

	bridge, err := pedal.NewPedalBridge(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithMIDIConfig(contracts.MIDIConfig{
			ClientName:       "PedalBridge Example",
			PortName:         "PedalBridge Example Input",
			AutoConnect:      true,
			PreferredDevices: []string{"minilab"},
			PedalController:  contracts.ExpressionController,
			BufferSize:       64,
		}),
	)
	if err != nil {
		log.Error("Failed to initialize pedal bridge", log.Field().Error("error", err))
		return
	}
	defer bridge.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	updates, unsubscribe := bridge.Subscribe()
	defer unsubscribe()
	go func() {
		for st := range updates {
			if st.LastTransition == nil {
				continue
			}
			log.Info("Pedal zone",
				log.Field().Stringer("zone", st.CurrentZone),
				log.Field().Int("value", int(st.CurrentPedalValue)),
				log.Field().Bool("target_running", st.TargetAppRunning),
			)
		}
	}()

	fmt.Println("Move the expression pedal... Press Ctrl+C to exit.")
	if err := bridge.Run(ctx); err != nil {
		log.Error("Bridge stopped", log.Field().Error("error", err))
	}
}
