package commands

import (
	"fmt"

	"github.com/koscakluka/morse-client/core/events"
)

type lineStyle int

const (
	styleNormal lineStyle = iota
	styleGood
	styleBad
	styleNotice
)

// describe renders event as a feed line. ok is false for events that are
// not shown.
func describe(event events.Event, showAnswers bool) (line string, style lineStyle, ok bool) {
	switch e := event.(type) {
	case events.Tx:
		if !showAnswers {
			return "", styleNormal, false
		}
		return fmt.Sprintf("TX  %c  (%s)  dist=%d", e.Char, e.Pattern, e.Distance), styleNormal, true

	case events.Result:
		if e.Correct {
			return fmt.Sprintf("OK  %c", e.Typed), styleGood, true
		}
		return fmt.Sprintf("ERR %c (expected %c)", e.Typed, e.Expected), styleBad, true

	case events.Speed:
		switch e.Direction {
		case events.DirectionUp:
			return fmt.Sprintf("Speed ↑ %d WPM", e.WPM), styleNotice, true
		case events.DirectionDown:
			return fmt.Sprintf("Speed ↓ %d WPM", e.WPM), styleNotice, true
		}
		return "", styleNormal, false

	case events.SessionState:
		if e.Running {
			return "--- Session started ---", styleNotice, true
		}
		return "--- Session stopped ---", styleNotice, true

	case events.ContextLost:
		return "! Context lost - resynchronizing...", styleBad, true

	case events.ConnectionChanged:
		if e.Connected {
			return "Connected to " + e.Port, styleGood, true
		}
		return "Disconnected", styleBad, true
	}

	return "", styleNormal, false
}
