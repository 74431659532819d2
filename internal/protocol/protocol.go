// Package protocol is the message envelope spoken between boards and the relay.
package protocol

import (
	"encoding/json"
	"fmt"

	"LiveCanvas/internal/state"
)

const (
	RouteSocket = "/socket"
	RouteHealth = "/healthz"
)

const (
	EventDraw          = "draw"
	EventUserConnected = "user_connected"
)

// Envelope is one websocket text frame. Data is kept raw so the relay can
// forward draw payloads without decoding them.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Health is the body served on RouteHealth.
type Health struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing event name")
	}
	return env, nil
}

func Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// Draw wraps a drawing event.
func Draw(ev state.DrawEvent) (Envelope, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode draw event: %w", err)
	}
	return Envelope{Event: EventDraw, Data: data}, nil
}

// Presence announces the sender joined the canvas at path.
func Presence(path string) Envelope {
	data, _ := json.Marshal(path)
	return Envelope{Event: EventUserConnected, Data: data}
}

// Joined is the payload-free notice the relay sends on someone's arrival.
func Joined() Envelope {
	return Envelope{Event: EventUserConnected}
}

// DrawEvent decodes the payload of a draw envelope.
func (e Envelope) DrawEvent() (state.DrawEvent, error) {
	if e.Event != EventDraw {
		return state.DrawEvent{}, fmt.Errorf("envelope carries %q, not %q", e.Event, EventDraw)
	}
	var ev state.DrawEvent
	if err := json.Unmarshal(e.Data, &ev); err != nil {
		return state.DrawEvent{}, fmt.Errorf("decode draw event: %w", err)
	}
	return ev, nil
}

// Path returns the presence path, empty when the relay stripped it.
func (e Envelope) Path() string {
	var p string
	if len(e.Data) == 0 || json.Unmarshal(e.Data, &p) != nil {
		return ""
	}
	return p
}
