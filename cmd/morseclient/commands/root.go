package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koscakluka/morse-client/internal/config"
)

var (
	configPath string
	flagConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   "morseclient",
	Short: "Desktop companion for the Morse trainer",
	Long: `morseclient - talks to a Morse trainer over USB serial.

It plays the sidetone for every character the trainer sends, forwards
your keystrokes, and keeps per-session statistics.

Examples:
  # Find the trainer
  morseclient ports

  # Interactive client
  morseclient run -p /dev/ttyUSB0

  # Headless, mirroring events to browsers on :8080
  morseclient monitor -p /dev/ttyUSB0 --relay :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ~/.morseclient/config.yaml)")
	flags.StringVarP(&flagConfig.Port, "port", "p", "", "serial port")
	flags.StringVar(&flagConfig.Audio.Backend, "audio", "", "audio backend: miniaudio, portaudio or none")
	flags.IntVar(&flagConfig.Audio.Frequency, "frequency", 0, "sidetone pitch in Hz")
	flags.IntVar(&flagConfig.Audio.Spacing, "spacing", 0, "symbol gap as a percentage of one unit")
	flags.StringVar(&flagConfig.Relay.Addr, "relay", "", "serve the browser relay on this address")
	flags.StringVar(&flagConfig.Session.ExportDir, "export-dir", "", "directory for session CSV files")

	rootCmd.AddCommand(portsCmd, runCmd, monitorCmd)
}

// loadConfig reads the config file and applies the command line flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config not available: %w", err)
	}
	if err := cfg.Overlay(flagConfig); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}
