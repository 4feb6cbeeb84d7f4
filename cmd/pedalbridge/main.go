// Package main is the entry point for the pedalbridge CLI
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/leandrodaf/pedalbridge/internal/api"
	"github.com/leandrodaf/pedalbridge/internal/config"
	"github.com/leandrodaf/pedalbridge/internal/logger"
	"github.com/leandrodaf/pedalbridge/internal/tui"
	"github.com/leandrodaf/pedalbridge/sdk/contracts"
	"github.com/leandrodaf/pedalbridge/sdk/pedal"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath    string
	logLevel      string
	bundleID      string
	httpAddr      string
	useTUI        bool
	enableHTTP    bool
	noAutoConnect bool
)

// Host notifications are delivered on the main thread; Run services them
// from the goroutine that owns it.
func init() {
	runtime.LockOSThread()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pedalbridge",
	Short: "Drive Logic Pro transport and solo from an expression pedal",
	Long: `pedalbridge listens to an expression pedal on a MIDI controller and turns
pedal zones into Logic Pro key commands:

  0-25    Stopped   (stop transport)
  26-101  Solo      (solo the selected track)
  102-127 Playing   (start transport)

Examples:
  pedalbridge
  pedalbridge --tui
  pedalbridge --http --http-addr 127.0.0.1:7474
  pedalbridge devices`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage: true,
	RunE:         runBridge,
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List MIDI input sources and exit",
	RunE:  runDevices,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.Flags().StringVar(&bundleID, "bundle-id", "", "Bundle identifier of the target application")
	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "Show the terminal dashboard")
	rootCmd.Flags().BoolVar(&enableHTTP, "http", false, "Serve the status API")
	rootCmd.Flags().StringVar(&httpAddr, "http-addr", "", "Listen address for the status API")
	rootCmd.Flags().BoolVar(&noAutoConnect, "no-auto-connect", false, "Do not auto-select a preferred device")

	rootCmd.AddCommand(devicesCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("bundle-id") {
		cfg.Target.BundleID = bundleID
	}
	if flags.Changed("http") {
		cfg.HTTP.Enabled = enableHTTP
	}
	if flags.Changed("http-addr") {
		cfg.HTTP.Addr = httpAddr
	}
	if noAutoConnect {
		cfg.MIDI.AutoConnectOnLaunch = false
	}
	// The dashboard owns the terminal.
	if useTUI && cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(os.TempDir(), "pedalbridge.log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (contracts.Logger, contracts.LogLevel, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, level, err
	}
	log, err := logger.New(level, cfg.Log.File)
	return log, level, err
}

func closeLogger(log contracts.Logger) {
	if c, ok := log.(io.Closer); ok {
		_ = c.Close()
	}
}

func runBridge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, level, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLogger(log)
	if !cfg.ControllerHonored() {
		log.Warn("pedal_controller is accepted but not decoded; CC 1 and CC 11 drive the pedal",
			log.Field().Int("pedal_controller", cfg.MIDI.PedalController))
	}

	pb, err := pedal.NewPedalBridge(
		contracts.WithLogger(log),
		contracts.WithLogLevel(level),
		contracts.WithMIDIConfig(cfg.MIDIOptions()),
		contracts.WithTargetConfig(cfg.TargetOptions()),
	)
	if err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}
	defer pb.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.HTTP.Enabled {
		router := api.NewRouter(pb, log)
		go func() {
			if err := api.Serve(ctx, cfg.HTTP.Addr, router, log); err != nil {
				log.Error("status API stopped", log.Field().Error("error", err))
			}
		}()
	}

	if useTUI {
		updates, unsubscribe := pb.Subscribe()
		go func() {
			defer unsubscribe()
			defer cancel()
			if err := tui.Run(ctx, pb, updates); err != nil {
				log.Error("dashboard stopped", log.Field().Error("error", err))
			}
		}()
	}

	log.Info("pedalbridge running",
		log.Field().String("version", version),
		log.Field().String("target", cfg.Target.BundleID),
		log.Field().Bool("auto_connect", cfg.MIDI.AutoConnectOnLaunch))

	if err := pb.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDevices(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, level, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLogger(log)

	devices, err := pedal.ListDevices(
		contracts.WithLogger(log),
		contracts.WithLogLevel(level),
		contracts.WithMIDIConfig(cfg.MIDIOptions()),
	)
	if err != nil {
		return fmt.Errorf("listing MIDI sources: %w", err)
	}
	if len(devices) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No MIDI input sources found.")
		return nil
	}
	for _, d := range devices {
		fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", d.Index, d.Name)
	}
	return nil
}
