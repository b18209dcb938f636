package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type controller interface {
	Start()
	Stop()
	Status()
	Probabilities()
	SetSpeed(wpm int) error
	SetProfile(profile int) error
}

const consoleHelp = "commands: start, stop, status, probs, speed <wpm>, profile <n>"

// runConsole executes one console line such as "speed 40" or "/profile 3"
// against c.
func runConsole(c controller, input string) error {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(input), "/"))
	if len(fields) == 0 {
		return nil
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "start", "stop", "status", "probs":
		if len(args) != 0 {
			return fmt.Errorf("%s takes no arguments", name)
		}
	case "speed", "profile":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <n>", name)
		}
	default:
		return fmt.Errorf("unknown command %q (%s)", name, consoleHelp)
	}

	switch name {
	case "start":
		c.Start()
	case "stop":
		c.Stop()
	case "status":
		c.Status()
	case "probs":
		c.Probabilities()
	case "speed", "profile":
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid %s %q", name, args[0])
		}
		if name == "speed" {
			return c.SetSpeed(n)
		}
		return c.SetProfile(n)
	}
	return nil
}
