// Package protocol decodes the line-oriented text protocol spoken by the
// trainer firmware and names the commands the host can send back.
package protocol

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/koscakluka/morse-client/core/events"
)

// Line prefixes, checked in this order. Matching is case-sensitive.
const (
	PrefixTx          = "[TX] "
	PrefixOK          = "[OK] "
	PrefixErr         = "[ERR] "
	PrefixSpeed       = "[SPEED] "
	PrefixSession     = "[SESSION] "
	PrefixContextLost = "[CONTEXT LOST]"
	PrefixRunning     = "Running: "
	PrefixStatusSpeed = "Speed: "
)

type decoder struct {
	prefix string
	decode func(rest string) (events.Event, bool)
}

var decoders = []decoder{
	{PrefixTx, decodeTx},
	{PrefixOK, decodeOK},
	{PrefixErr, decodeErr},
	{PrefixSpeed, decodeSpeed},
	{PrefixSession, decodeSession},
	{PrefixContextLost, func(string) (events.Event, bool) { return events.NewContextLost(), true }},
	{PrefixRunning, decodeRunning},
	{PrefixStatusSpeed, decodeStatusSpeed},
}

// Parse decodes one trimmed line.
//
// A line under a recognized prefix yields its typed event. Any other
// non-empty line yields events.RawLine. ok is false for an empty line and for
// a line that starts with a recognized prefix but cannot be decoded; such a
// line produces no event at all, not even RawLine.
func Parse(line string) (event events.Event, ok bool) {
	if line == "" {
		return nil, false
	}

	for _, d := range decoders {
		if strings.HasPrefix(line, d.prefix) {
			return d.decode(line[len(d.prefix):])
		}
	}

	return events.NewRawLine(line), true
}

// [TX] <ch> (<pattern>) dist=<int>
func decodeTx(rest string) (events.Event, bool) {
	char, ok := firstRune(rest)
	if !ok {
		return nil, false
	}

	pattern := ""
	if inner, found := parenthesised(rest[utf8.RuneLen(char):]); found {
		pattern = inner
	}

	dist := 0
	if idx := strings.Index(rest, "dist="); idx >= 0 {
		n, err := strconv.Atoi(strings.TrimSpace(rest[idx+len("dist="):]))
		if err != nil {
			return nil, false
		}
		dist = n
	}

	return events.NewTx(char, pattern, dist), true
}

// [OK] <ch> prob=<int>
func decodeOK(rest string) (events.Event, bool) {
	char, ok := firstRune(rest)
	if !ok {
		return nil, false
	}

	prob := 0
	if idx := strings.Index(rest, "prob="); idx >= 0 {
		n, err := strconv.Atoi(strings.TrimSpace(rest[idx+len("prob="):]))
		if err != nil {
			return nil, false
		}
		prob = n
	}

	return events.NewResult(true, char, char, prob), true
}

// [ERR] typed=<ch> expected=<ch> prob=<int>, tokens in any order
func decodeErr(rest string) (events.Event, bool) {
	typed, expected, prob := ' ', ' ', 0

	for _, token := range strings.Fields(rest) {
		key, value, found := strings.Cut(token, "=")
		if !found {
			continue
		}

		switch key {
		case "typed":
			r, ok := firstRune(value)
			if !ok {
				return nil, false
			}
			typed = r
		case "expected":
			r, ok := firstRune(value)
			if !ok {
				return nil, false
			}
			expected = r
		case "prob":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, false
			}
			prob = n
		}
	}

	return events.NewResult(false, typed, expected, prob), true
}

// [SPEED] <int> WPM (<direction>)?
//
// The firmware also answers /speed with "(set)". Any direction other than
// up or down maps to DirectionNone so the speed is still tracked.
func decodeSpeed(rest string) (events.Event, bool) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return nil, false
	}
	wpm, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, false
	}

	direction := events.DirectionNone
	if inner, found := parenthesised(rest); found {
		switch events.Direction(inner) {
		case events.DirectionUp, events.DirectionDown:
			direction = events.Direction(inner)
		}
	}

	return events.NewSpeed(wpm, direction), true
}

// [SESSION] started|stopped
func decodeSession(rest string) (events.Event, bool) {
	switch strings.TrimSpace(rest) {
	case "started":
		return events.NewSessionState(true), true
	case "stopped":
		return events.NewSessionState(false), true
	}
	return nil, false
}

// Running: yes|no
func decodeRunning(rest string) (events.Event, bool) {
	switch strings.TrimSpace(rest) {
	case "yes":
		return events.NewSessionState(true), true
	case "no":
		return events.NewSessionState(false), true
	}
	return nil, false
}

// Speed: <int> WPM
func decodeStatusSpeed(rest string) (events.Event, bool) {
	value, unit, found := strings.Cut(strings.TrimSpace(rest), " ")
	if !found || strings.TrimSpace(unit) != "WPM" {
		return nil, false
	}
	wpm, err := strconv.Atoi(value)
	if err != nil {
		return nil, false
	}
	return events.NewSpeed(wpm, events.DirectionNone), true
}

func firstRune(s string) (rune, bool) {
	if s == "" {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return 0, false
	}
	return r, true
}

// parenthesised returns the text between the first '(' and the first ')'
// that follows it.
func parenthesised(s string) (string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", false
	}
	closing := strings.IndexByte(s[open+1:], ')')
	if closing < 0 {
		return "", false
	}
	return s[open+1 : open+1+closing], true
}
