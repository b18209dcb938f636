package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koscakluka/morse-client/core/events"
)

var monitorRaw bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print trainer events without a UI",
	Long: `Connects to the trainer and prints every event until interrupted.

The sidetone still plays. With --relay, events are also mirrored to
browsers connected to /ws.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Port == "" {
			return fmt.Errorf("no port given, use -p or set port in %s", cfg.Path())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a := newApp(cfg, func(event events.Event) {
			if raw, ok := event.(events.RawLine); ok {
				if monitorRaw {
					fmt.Println("<", raw.Text)
				}
				return
			}
			if line, _, ok := describe(event, true); ok {
				fmt.Println(line)
			}
		})
		defer a.close()

		if a.audioErr != nil {
			fmt.Fprintln(os.Stderr, "Warning:", a.audioErr)
		}

		errCh := a.start(ctx)
		if err := a.link.Connect(ctx, cfg.Port); err != nil {
			return fmt.Errorf("failed to open %s: %w", cfg.Port, err)
		}

		select {
		case <-ctx.Done():
		case err := <-errCh:
			return err
		}

		a.disconnect()
		return reportExport(a)
	},
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorRaw, "raw", false, "also print every line received")
}

func reportExport(a *app) error {
	path, err := a.exportSession()
	if err != nil {
		return fmt.Errorf("failed to save session log: %w", err)
	}
	if path != "" {
		fmt.Println("Session log saved:", path)
	}
	return nil
}

