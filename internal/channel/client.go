// Package channel is the board's connection to the relay: it announces the
// participant, sends finished drawing events and hands remote ones back.
//
// A client connects once. When the relay goes away the client reports it and
// stops; nothing is retried or replayed.
package channel

import (
	"context"
	"errors"
	"io"
	"net/url"
	"sync"

	"github.com/coder/websocket"

	"LiveCanvas/internal/logging"
	"LiveCanvas/internal/protocol"
	"LiveCanvas/internal/state"
)

type Client struct {
	cfg        Config
	conn       *conn
	writeCh    chan protocol.Envelope
	dispatcher Dispatcher

	mu     sync.Mutex
	state  ConnectionState
	cancel context.CancelFunc
	runCtx context.Context
}

// NewClient constructs a client. Use DefaultConfig() as a starting point.
func NewClient(cfg Config) *Client {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultConfig().SendBuffer
	}
	return &Client{
		cfg:     cfg,
		writeCh: make(chan protocol.Envelope, cfg.SendBuffer),
	}
}

// OnDraw registers the callback for drawing events from other participants.
func (c *Client) OnDraw(fn func(state.DrawEvent)) { c.dispatcher.SetOnDraw(fn) }

// OnUserConnected registers the callback for someone joining the canvas.
func (c *Client) OnUserConnected(fn func()) { c.dispatcher.SetOnUserConnected(fn) }

func (c *Client) OnError(fn func(error)) { c.dispatcher.SetOnError(fn) }

func (c *Client) OnStateChange(fn func(StateEvent)) { c.dispatcher.SetOnState(fn) }

func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the relay, announces the configured path and starts the
// read and write loops.
func (c *Client) Connect(ctx context.Context) error {
	if c.State() != StateIdle {
		return NewError(ErrorInvalidConfig, "client already used")
	}
	u, err := url.Parse(c.cfg.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return WrapError(ErrorInvalidConfig, "relay URL must be ws:// or wss://", err)
	}
	c.setState(StateConnecting, nil)

	dialCtx := ctx
	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}
	ws, _, err := websocket.Dial(dialCtx, u.String(), nil)
	if err != nil {
		ce := WrapError(ErrorConnection, "failed to reach relay", err)
		if errors.Is(err, context.DeadlineExceeded) {
			ce.Code = ErrorTimeout
		}
		c.setState(StateDisconnected, ce)
		return ce
	}
	if c.cfg.ReadLimit > 0 {
		ws.SetReadLimit(c.cfg.ReadLimit)
	}
	c.mu.Lock()
	c.conn = newConn(ws, c.cfg.ReadTimeout, c.cfg.WriteTimeout)
	c.mu.Unlock()

	if err := c.conn.write(ctx, protocol.Presence(c.cfg.Path)); err != nil {
		_ = c.conn.close(websocket.StatusInternalError, "handshake error")
		ce := WrapError(ErrorConnection, "failed to announce presence", err)
		c.setState(StateDisconnected, ce)
		return ce
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.runCtx, c.cancel = runCtx, cancel
	c.mu.Unlock()
	c.setState(StateConnected, nil)
	logging.L().Info("[CLIENT] connected", "url", u.String(), "path", c.cfg.Path)

	go c.readLoop(runCtx)
	go c.writeLoop(runCtx)
	return nil
}

// SendDraw queues ev for the relay. It blocks while the queue is full, until
// ctx is done.
func (c *Client) SendDraw(ctx context.Context, ev state.DrawEvent) error {
	env, err := protocol.Draw(ev)
	if err != nil {
		return WrapError(ErrorSerialization, "failed to encode draw event", err)
	}
	return c.send(ctx, env)
}

// Close shuts the connection down. It is safe to call more than once.
func (c *Client) Close() error {
	c.setState(StateClosed, nil)
	c.mu.Lock()
	cn, cancel := c.conn, c.cancel
	c.mu.Unlock()

	var err error
	if cn != nil {
		err = cn.close(websocket.StatusNormalClosure, "client close")
	}
	if cancel != nil {
		cancel()
	}
	return err
}

func (c *Client) send(ctx context.Context, env protocol.Envelope) error {
	c.mu.Lock()
	st, runCtx := c.state, c.runCtx
	c.mu.Unlock()
	if st != StateConnected {
		return NewError(ErrorNotConnected, "not connected")
	}

	select {
	case c.writeCh <- env:
		return nil
	case <-runCtx.Done():
		return NewError(ErrorDisconnected, "connection closed")
	case <-ctx.Done():
		return WrapError(ErrorTimeout, "send queue full", ctx.Err())
	}
}

func (c *Client) readLoop(ctx context.Context) {
	for {
		var env protocol.Envelope
		if err := c.conn.read(ctx, &env); err != nil {
			c.lost(ctx, "read", err)
			return
		}
		c.dispatcher.Dispatch(env)
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	for {
		select {
		case env := <-c.writeCh:
			if err := c.conn.write(ctx, env); err != nil {
				c.lost(ctx, "write", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// lost ends the session after a loop failed. Failures caused by Close are
// not reported.
func (c *Client) lost(ctx context.Context, op string, err error) {
	if ctx.Err() != nil || c.State() == StateClosed {
		return
	}
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	var cause error
	if !isExpectedDisconnect(err) {
		cause = WrapError(ErrorDisconnected, op+" failed", err)
		logging.L().Warn("[CLIENT] "+op+" loop exit", "error", err)
		c.dispatcher.fireError(cause)
	} else {
		logging.L().Info("[CLIENT] relay closed the connection")
	}
	c.setState(StateDisconnected, cause)
	_ = c.conn.close(websocket.StatusNormalClosure, "")
}

// setState moves to next and notifies. Closed is final.
func (c *Client) setState(next ConnectionState, err error) {
	c.mu.Lock()
	prev := c.state
	if prev == next || prev == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = next
	c.mu.Unlock()
	c.dispatcher.fireState(StateEvent{OldState: prev, NewState: next, Error: err})
}

func isExpectedDisconnect(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
