package channel

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// conn wraps websocket.Conn with per-call timeouts.
type conn struct {
	ws           *websocket.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func newConn(ws *websocket.Conn, readTimeout, writeTimeout time.Duration) *conn {
	return &conn{ws: ws, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

func (c *conn) read(ctx context.Context, v any) error {
	if c.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.readTimeout)
		defer cancel()
	}
	return wsjson.Read(ctx, c.ws, v)
}

func (c *conn) write(ctx context.Context, v any) error {
	if c.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}
	return wsjson.Write(ctx, c.ws, v)
}

func (c *conn) close(code websocket.StatusCode, reason string) error {
	return c.ws.Close(code, reason)
}
