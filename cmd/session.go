package cmd

import (
	"context"
	"errors"
	"fmt"

	"LiveCanvas/internal/board"
	"LiveCanvas/internal/channel"
	"LiveCanvas/internal/config"
	"LiveCanvas/internal/logging"
	"LiveCanvas/internal/render"
	"LiveCanvas/internal/state"
	"LiveCanvas/internal/ui"
)

// session joins a board window to a relay.
type session struct {
	board  *board.Board
	client *channel.Client
	cfg    config.Config
}

func newSession(cfg config.Config, relayURL string) *session {
	b := board.New()
	b.Attach(render.NewSurface(cfg.CanvasWidth, cfg.CanvasHeight, cfg.Background))

	ccfg := channel.DefaultConfig()
	ccfg.URL = relayURL
	ccfg.HandshakeTimeout = cfg.HandshakeTimeout
	ccfg.WriteTimeout = cfg.WriteTimeout
	ccfg.ReadLimit = cfg.MaxMessageBytes
	return &session{board: b, client: channel.NewClient(ccfg), cfg: cfg}
}

// wire connects board output to the relay and relay input to the board.
// status receives human readable connection updates.
func (s *session) wire(notify func(string), status func(string)) {
	s.board.OnEmit = func(ev state.DrawEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		defer cancel()
		if err := s.client.SendDraw(ctx, ev); err != nil {
			logging.L().Warn("[BOARD] event not sent", "kind", ev.Kind.String(), "err", err)
		}
	}
	s.client.OnDraw(s.board.ApplyRemote)
	s.client.OnUserConnected(func() { notify("Someone joined the canvas") })
	s.client.OnError(func(err error) {
		logging.L().Error("[CLIENT] channel error", "err", err)
	})
	s.client.OnStateChange(func(ev channel.StateEvent) {
		status(statusText(ev))
	})
}

func statusText(ev channel.StateEvent) string {
	switch ev.NewState {
	case channel.StateConnecting:
		return "Connecting..."
	case channel.StateConnected:
		return "Connected"
	case channel.StateDisconnected:
		if ev.Error != nil {
			return fmt.Sprintf("Disconnected: %v", ev.Error)
		}
		return "Disconnected"
	case channel.StateClosed:
		return "Closed"
	default:
		return ev.NewState.String()
	}
}

// run opens the window and blocks until it is closed.
func (s *session) run(ctx context.Context, link string) error {
	win := ui.NewWindow(s.board, ui.Options{ShareLink: link})
	s.wire(win.Notify, win.SetStatus)

	go func() {
		if err := s.client.Connect(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.L().Error("[CLIENT] connect failed", "err", err)
			win.SetStatus(fmt.Sprintf("Connection failed: %v", err))
		}
	}()

	win.ShowAndRun()
	if err := s.client.Close(); err != nil {
		logging.L().Debug("[CLIENT] close", "err", err)
	}
	return nil
}
