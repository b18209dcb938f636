package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koscakluka/morse-client/core/link/serialport"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serialport.NewDriver().ListPorts()
		if err != nil {
			return fmt.Errorf("failed to list ports: %w", err)
		}

		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return nil
		}
		for _, port := range ports {
			fmt.Println(port)
		}
		return nil
	},
}
