package channel

import "time"

// Config controls how the client reaches the relay.
type Config struct {
	URL string
	// Path is announced to other participants on connect.
	Path             string
	HandshakeTimeout time.Duration
	// ReadTimeout bounds each read. Zero waits forever, which suits a quiet
	// canvas.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// SendBuffer is the outbound queue length.
	SendBuffer int
	// ReadLimit caps one inbound frame in bytes. It must be at least the
	// relay's frame limit or long strokes close the connection.
	ReadLimit int64
}

func DefaultConfig() Config {
	return Config{
		Path:             "/canvas",
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		SendBuffer:       64,
		ReadLimit:        4 << 20,
	}
}
