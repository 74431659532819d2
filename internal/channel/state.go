package channel

// ConnectionState is where the client is in its single connection attempt.
// There is no reconnect: Disconnected and Closed are final.
type ConnectionState int

const (
	StateIdle ConnectionState = iota
	StateConnecting
	StateConnected
	StateDisconnected
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateEvent describes one state change.
type StateEvent struct {
	OldState ConnectionState
	NewState ConnectionState
	Error    error
}
