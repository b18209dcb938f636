// Package main provides the Morse trainer desktop companion.
//
// Usage:
//
//	morseclient [flags] <command>
//
// Commands:
//
//	ports   - List serial ports
//	run     - Interactive terminal client with sidetone
//	monitor - Headless event log with optional browser relay
//
// Configuration:
//
//	Settings are stored in ~/.morseclient/config.yaml. Flags override the
//	file for a single run.
package main

import (
	"fmt"
	"os"

	"github.com/koscakluka/morse-client/cmd/morseclient/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
