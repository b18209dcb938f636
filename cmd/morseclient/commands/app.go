package commands

import (
	"context"
	"errors"
	"fmt"

	trainer "github.com/koscakluka/morse-client/core"
	"github.com/koscakluka/morse-client/core/audio"
	"github.com/koscakluka/morse-client/core/audio/miniaudio"
	"github.com/koscakluka/morse-client/core/audio/portaudio"
	"github.com/koscakluka/morse-client/core/events"
	"github.com/koscakluka/morse-client/core/link"
	"github.com/koscakluka/morse-client/core/link/serialport"
	"github.com/koscakluka/morse-client/core/relay"
	"github.com/koscakluka/morse-client/core/session"
	"github.com/koscakluka/morse-client/core/sidetone"
	"github.com/koscakluka/morse-client/internal/config"
)

// app is everything one client run owns.
type app struct {
	cfg     *config.Config
	link    *link.Link
	tone    *sidetone.Engine
	log     *session.Log
	hub     *relay.Hub
	trainer *trainer.Trainer

	// audioErr is set when the sidetone runs without sound
	audioErr error
}

func openerFor(backend string) audio.Opener {
	switch backend {
	case config.BackendMiniaudio:
		return miniaudio.Open
	case config.BackendPortaudio:
		return portaudio.Open
	}
	return nil
}

func newApp(cfg *config.Config, onEvent func(events.Event)) *app {
	a := &app{
		cfg:  cfg,
		link: link.New(serialport.NewDriver()),
		log:  session.NewLog(),
	}

	tone, err := sidetone.NewEngine(openerFor(cfg.Audio.Backend),
		sidetone.WithFrequency(cfg.Audio.Frequency),
		sidetone.WithSpacing(cfg.Audio.Spacing),
	)
	if err != nil && cfg.Audio.Backend != config.BackendNone {
		a.audioErr = err
	}
	a.tone = tone

	if cfg.Relay.Addr != "" {
		a.hub = relay.NewHub(a.link)
	}

	a.trainer = trainer.New(a.link, a.tone,
		trainer.WithSessionLog(a.log),
		trainer.WithEventCallback(func(event events.Event) {
			if a.hub != nil {
				a.hub.Publish(event)
			}
			if onEvent != nil {
				onEvent(event)
			}
		}),
	)

	return a
}

// start runs the dispatch loop and, if configured, the relay server. Errors
// from the relay are sent on the returned channel.
func (a *app) start(ctx context.Context) <-chan error {
	errCh := make(chan error, 2)

	go func() {
		if err := a.trainer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("trainer stopped: %w", err)
		}
	}()

	if a.hub != nil {
		go func() {
			if err := relay.Serve(ctx, a.cfg.Relay.Addr, a.hub); err != nil {
				errCh <- err
			}
		}()
	}

	return errCh
}

// disconnect asks the device to stop a running session before the link
// goes away.
func (a *app) disconnect() {
	if a.trainer.Running() {
		a.trainer.Stop()
	}
	a.link.Disconnect()
}

// exportSession writes the session log if anything was recorded.
func (a *app) exportSession() (string, error) {
	if !a.log.HasEntries() {
		return "", nil
	}
	return a.log.ExportFile(a.cfg.Session.ExportDir)
}

func (a *app) close() {
	a.disconnect()
	a.link.Close()
	a.tone.Shutdown()
	if a.hub != nil {
		a.hub.Close()
	}
}
