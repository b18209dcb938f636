package commands

import (
	"errors"
	"slices"
	"testing"
)

type recordingController struct {
	calls []string
}

func (c *recordingController) Start() { c.calls = append(c.calls, "start") }
func (c *recordingController) Stop() { c.calls = append(c.calls, "stop") }
func (c *recordingController) Status() { c.calls = append(c.calls, "status") }
func (c *recordingController) Probabilities() { c.calls = append(c.calls, "probs") }

func (c *recordingController) SetSpeed(wpm int) error {
	if wpm > 200 {
		return errors.New("out of range")
	}
	c.calls = append(c.calls, "speed")
	return nil
}

func (c *recordingController) SetProfile(profile int) error {
	c.calls = append(c.calls, "profile")
	return nil
}

func TestRunConsole(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		calls   []string
		wantErr bool
	}{
		{name: "start", input: "start", calls: []string{"start"}},
		{name: "slash prefix", input: "/stop", calls: []string{"stop"}},
		{name: "status", input: "  STATUS ", calls: []string{"status"}},
		{name: "probs", input: "probs", calls: []string{"probs"}},
		{name: "speed", input: "/speed 40", calls: []string{"speed"}},
		{name: "profile", input: "profile 3", calls: []string{"profile"}},
		{name: "empty", input: "   "},
		{name: "speed out of range", input: "speed 500", wantErr: true},
		{name: "speed not a number", input: "speed fast", wantErr: true},
		{name: "missing argument", input: "profile", wantErr: true},
		{name: "extra argument", input: "start now", wantErr: true},
		{name: "unknown", input: "reboot", wantErr: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			c := &recordingController{}
			err := runConsole(c, testCase.input)
			if (err != nil) != testCase.wantErr {
				t.Fatalf("expected error %v, got %v", testCase.wantErr, err)
			}
			if !slices.Equal(c.calls, testCase.calls) {
				t.Fatalf("expected calls %v, got %v", testCase.calls, c.calls)
			}
		})
	}
}
