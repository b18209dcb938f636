package protocol

import (
	"strconv"
	"strings"
)

// Commands understood by the trainer firmware. They are sent as one line;
// the link appends the terminator.
const (
	CommandStart   = "/start"
	CommandStop    = "/stop"
	CommandStatus  = "/status"
	CommandSpeed   = "/speed"
	CommandProfile = "/profile"
	CommandProbs   = "/probs"
	CommandHelp    = "/help"
)

// Enter is sent on its own when the operator confirms a typed line.
const Enter byte = '\n'

// Firmware limits and defaults for command arguments.
const (
	MinSpeed   = 20
	MaxSpeed   = 200
	MinProfile = 0
	MaxProfile = 9

	DefaultSpeed   = 25
	DefaultProfile = 1
)

// FormatCommand joins a command and its integer arguments with single
// spaces, e.g. FormatCommand(CommandStart, 3, 25) == "/start 3 25".
func FormatCommand(command string, args ...int) string {
	if len(args) == 0 {
		return command
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, command)
	for _, arg := range args {
		parts = append(parts, strconv.Itoa(arg))
	}
	return strings.Join(parts, " ")
}

// Line terminates a command for the wire.
func Line(command string) []byte {
	return []byte(command + "\n")
}
