package net

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"

	"LiveCanvas/internal/config"
	"LiveCanvas/internal/logging"
)

// Advertise announces a relay listening on port to the LAN. Shut the
// returned server down to withdraw it.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(
		host,
		config.MDNSService,
		"",
		"",
		port,
		nil,
		[]string{"LiveCanvas"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	logging.L().Info("[NET] advertising relay", "service", config.MDNSService, "instance", host, "port", port)
	return server, nil
}

// Discover browses the LAN for relays for up to timeout and returns their
// host:port addresses in the order they answered.
func Discover(timeout time.Duration) ([]string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	var found []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		seen := make(map[string]bool)
		for e := range entries {
			addr, ok := entryAddr(e)
			if !ok || seen[addr] {
				continue
			}
			seen[addr] = true
			found = append(found, addr)
		}
	}()

	params := mdns.DefaultParams(config.MDNSService)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return nil, fmt.Errorf("mDNS query: %w", err)
	}
	return found, nil
}

func entryAddr(e *mdns.ServiceEntry) (string, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return "", false
	}
	return net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port)), true
}
