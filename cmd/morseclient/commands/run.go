package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/koscakluka/morse-client/core/events"
)

const eventChannelCapacity = 256

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Interactive terminal client",
	Long: `Opens the terminal client. Typed characters go straight to the trainer.

Keys:
  ctrl+o        connect / disconnect
  ctrl+n/ctrl+p next / previous port
  ctrl+r        refresh ports
  ctrl+s        start / stop session
  ctrl+a        show / hide sent characters
  up/down       sidetone pitch
  left/right    symbol spacing
  pgup/pgdown   scroll the feed
  esc, ctrl+c   quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		eventCh := make(chan events.Event, eventChannelCapacity)
		a := newApp(cfg, func(event events.Event) {
			select {
			case eventCh <- event:
			case <-ctx.Done():
			}
		})
		defer a.close()

		errCh := a.start(ctx)
		m := newModel(ctx, a, eventCh, errCh)

		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("terminal UI failed: %w", err)
		}

		cancel()
		a.disconnect()
		return reportExport(a)
	},
}
