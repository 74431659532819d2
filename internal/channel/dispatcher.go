package channel

import (
	"sync"

	"LiveCanvas/internal/protocol"
	"LiveCanvas/internal/state"
)

// Dispatcher routes envelopes from the relay to registered callbacks.
type Dispatcher struct {
	mu              sync.RWMutex
	onDraw          func(state.DrawEvent)
	onUserConnected func()
	onError         func(error)
	onState         func(StateEvent)
}

func (d *Dispatcher) SetOnDraw(fn func(state.DrawEvent)) { d.set(func() { d.onDraw = fn }) }
func (d *Dispatcher) SetOnUserConnected(fn func())      { d.set(func() { d.onUserConnected = fn }) }
func (d *Dispatcher) SetOnError(fn func(error))         { d.set(func() { d.onError = fn }) }
func (d *Dispatcher) SetOnState(fn func(StateEvent))    { d.set(func() { d.onState = fn }) }

func (d *Dispatcher) set(fn func()) {
	d.mu.Lock()
	fn()
	d.mu.Unlock()
}

// Dispatch delivers one envelope. Undecodable draw payloads are reported to
// the error callback and otherwise skipped; unknown events are ignored.
func (d *Dispatcher) Dispatch(env protocol.Envelope) {
	d.mu.RLock()
	onDraw, onUserConnected := d.onDraw, d.onUserConnected
	d.mu.RUnlock()

	switch env.Event {
	case protocol.EventDraw:
		if onDraw == nil {
			return
		}
		ev, err := env.DrawEvent()
		if err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to decode draw event", err))
			return
		}
		onDraw(ev)
	case protocol.EventUserConnected:
		if onUserConnected != nil {
			onUserConnected()
		}
	}
}

func (d *Dispatcher) fireError(err error) {
	d.mu.RLock()
	fn := d.onError
	d.mu.RUnlock()
	if fn != nil && err != nil {
		fn(err)
	}
}

func (d *Dispatcher) fireState(ev StateEvent) {
	d.mu.RLock()
	fn := d.onState
	d.mu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}
