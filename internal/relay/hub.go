// Package relay fans drawing and presence messages out to every connected
// board except the one that sent them.
package relay

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"LiveCanvas/internal/logging"
	"LiveCanvas/internal/protocol"
)

// PeerState tracks a connection through its life in the hub.
type PeerState int32

const (
	StateConnecting PeerState = iota
	StateConnected
	StateDisconnected
)

func (s PeerState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Peer is one board connected to the relay.
type Peer struct {
	ID uuid.UUID

	// send is the FIFO of frames waiting to be written. Only the hub
	// writes to it and closes it.
	send  chan []byte
	state atomic.Int32
}

func NewPeer(buffer int) *Peer {
	return &Peer{ID: uuid.New(), send: make(chan []byte, buffer)}
}

// Outbox yields frames in the order the hub queued them. It is closed once
// the peer is removed.
func (p *Peer) Outbox() <-chan []byte { return p.send }

func (p *Peer) State() PeerState { return PeerState(p.state.Load()) }

type message struct {
	from *Peer
	raw  []byte
}

// Hub owns the connection set. All membership changes and fan-out happen on
// the goroutine running Run, so per-sender order is the order of Receive
// calls. Every request channel is unbuffered: once a call returns, the hub
// has finished acting on it.
type Hub struct {
	peers map[*Peer]struct{}

	register   chan *Peer
	unregister chan *Peer
	inbound    chan message
	count      chan chan int
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		peers:      make(map[*Peer]struct{}),
		register:   make(chan *Peer),
		unregister: make(chan *Peer),
		inbound:    make(chan message),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every peer.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case p := <-h.register:
			h.peers[p] = struct{}{}
			p.state.Store(int32(StateConnected))
			logging.L().Info("[RELAY] peer connected", "peer", p.ID, "peers", len(h.peers))
		case p := <-h.unregister:
			h.remove(p)
		case m := <-h.inbound:
			h.dispatch(m)
		case reply := <-h.count:
			reply <- len(h.peers)
		case <-ctx.Done():
			for p := range h.peers {
				h.remove(p)
			}
			return
		}
	}
}

// Register adds p to the connection set. It reports false when the hub has
// stopped.
func (h *Hub) Register(p *Peer) bool {
	select {
	case h.register <- p:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes p. Removing an unknown or already removed peer is a
// no-op.
func (h *Hub) Unregister(p *Peer) {
	select {
	case h.unregister <- p:
	case <-h.done:
	}
}

// Receive hands a frame read from p to the hub.
func (h *Hub) Receive(p *Peer, raw []byte) {
	select {
	case h.inbound <- message{from: p, raw: raw}:
	case <-h.done:
	}
}

// Count returns the number of connected peers, 0 once the hub has stopped.
func (h *Hub) Count() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) remove(p *Peer) {
	if _, ok := h.peers[p]; !ok {
		return
	}
	delete(h.peers, p)
	p.state.Store(int32(StateDisconnected))
	close(p.send)
	logging.L().Info("[RELAY] peer disconnected", "peer", p.ID, "peers", len(h.peers))
}

func (h *Hub) dispatch(m message) {
	if _, ok := h.peers[m.from]; !ok {
		return
	}
	env, err := protocol.Decode(m.raw)
	if err != nil {
		logging.L().Debug("[RELAY] dropping malformed frame", "peer", m.from.ID, "error", err)
		return
	}

	switch env.Event {
	case protocol.EventDraw:
		h.broadcast(m.from, m.raw)
	case protocol.EventUserConnected:
		logging.L().Info("[RELAY] user joined", "peer", m.from.ID, "path", env.Path())
		out, err := protocol.Encode(protocol.Joined())
		if err != nil {
			logging.L().Error("[RELAY] encode presence", "error", err)
			return
		}
		h.broadcast(m.from, out)
	default:
		logging.L().Debug("[RELAY] ignoring event", "peer", m.from.ID, "event", env.Event)
	}
}

// broadcast queues raw for every peer but the sender. A peer whose queue is
// full misses the frame.
func (h *Hub) broadcast(sender *Peer, raw []byte) {
	for p := range h.peers {
		if p == sender {
			continue
		}
		select {
		case p.send <- raw:
		default:
			logging.L().Warn("[RELAY] send queue full, dropping frame", "peer", p.ID)
		}
	}
}
