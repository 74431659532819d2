// Package config holds the settings shared by the relay, the board window and
// the command line.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// Scheme prefixes share links handed to other participants.
	Scheme      = "livecanvas://"
	DefaultPort = 8888
	// MDNSService is the service type the relay advertises on the LAN.
	MDNSService = "_livecanvas._tcp"
)

type Config struct {
	// Addr is the relay listen address.
	Addr string

	CanvasWidth  int
	CanvasHeight int
	Background   string

	// SendBuffer is the per-peer outbound queue length. A full queue drops.
	SendBuffer      int
	MaxMessageBytes int64

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PongTimeout      time.Duration
	PingInterval     time.Duration
}

func Default() Config {
	return Config{
		Addr:             fmt.Sprintf(":%d", DefaultPort),
		CanvasWidth:      1280,
		CanvasHeight:     800,
		Background:       "#ffffff",
		SendBuffer:       256,
		MaxMessageBytes:  4 << 20,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		PongTimeout:      60 * time.Second,
		PingInterval:     54 * time.Second,
	}
}

// FromEnv applies LIVECANVAS_ADDR and BACKEND_PORT on top of c. An address
// wins over a bare port.
func FromEnv(c Config) (Config, error) {
	if port, ok := os.LookupEnv("BACKEND_PORT"); ok && port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return c, fmt.Errorf("invalid BACKEND_PORT %q", port)
		}
		c.Addr = fmt.Sprintf(":%d", n)
	}
	if addr, ok := os.LookupEnv("LIVECANVAS_ADDR"); ok && addr != "" {
		c.Addr = addr
	}
	return c, nil
}

// Validate rejects settings the relay or board cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("empty listen address")
	case c.CanvasWidth <= 0 || c.CanvasHeight <= 0:
		return fmt.Errorf("invalid canvas size %dx%d", c.CanvasWidth, c.CanvasHeight)
	case c.SendBuffer <= 0:
		return fmt.Errorf("send buffer must be positive, got %d", c.SendBuffer)
	case c.PingInterval >= c.PongTimeout:
		return fmt.Errorf("ping interval %s must be shorter than pong timeout %s", c.PingInterval, c.PongTimeout)
	}
	return nil
}
