package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"LiveCanvas/internal/config"
	"LiveCanvas/internal/logging"
	"LiveCanvas/internal/protocol"
)

// Server exposes a Hub over websockets.
type Server struct {
	cfg      config.Config
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewServer(cfg config.Config) *Server {
	return &Server{
		cfg: cfg,
		hub: NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Boards connect from file:// pages and other hosts on the LAN.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// Handler routes the socket and health endpoints, logging every request.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			m := httpsnoop.CaptureMetrics(handler, writer, request)
			logging.L().Debug("handled", "method", request.Method, "url", request.URL, "duration", m.Duration, "status", m.Code)
		})
	})
	r.Methods(http.MethodGet).Path(protocol.RouteSocket).HandlerFunc(s.serveSocket)
	r.Methods(http.MethodGet).Path(protocol.RouteHealth).HandlerFunc(s.serveHealth)
	return r
}

// Serve runs the hub and accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.hub.Run(ctx)
	}()

	httpServer := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: s.cfg.HandshakeTimeout}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	logging.L().Info("[RELAY] listening", "addr", ln.Addr().String())

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}
	cancel()
	// Hijacked websocket connections are not closed by Close; the hub closes
	// their queues and the write pumps hang up.
	_ = httpServer.Close()
	wg.Wait()

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", serveErr)
	}
	return nil
}

func (s *Server) serveHealth(writer http.ResponseWriter, _ *http.Request) {
	writer.Header().Set("Content-Type", "application/json")
	body := protocol.Health{Status: "ok", Connections: s.hub.Count()}
	if err := json.NewEncoder(writer).Encode(body); err != nil {
		logging.L().Error("failed to write health", "err", err)
	}
}

func (s *Server) serveSocket(writer http.ResponseWriter, request *http.Request) {
	conn, err := s.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		logging.L().Error("[RELAY] failed to upgrade", "err", err)
		return
	}

	p := NewPeer(s.cfg.SendBuffer)
	if !s.hub.Register(p) {
		_ = conn.Close()
		return
	}
	go s.writePump(conn, p)
	s.readPump(conn, p)
}

// readPump feeds frames from the connection into the hub until the peer
// goes away.
func (s *Server) readPump(conn *websocket.Conn, p *Peer) {
	defer func() {
		s.hub.Unregister(p)
		_ = conn.Close()
	}()

	if s.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(s.cfg.MaxMessageBytes)
	}
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	})

	for {
		kind, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.L().Warn("[RELAY] read failed", "peer", p.ID, "err", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		s.hub.Receive(p, raw)
	}
}

// writePump drains the peer's queue in order and keeps the connection alive
// with pings.
func (s *Server) writePump(conn *websocket.Conn, p *Peer) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case raw, ok := <-p.Outbox():
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "relay closing"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				logging.L().Warn("[RELAY] write failed", "peer", p.ID, "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
