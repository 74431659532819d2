package net

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"LiveCanvas/internal/config"
	"LiveCanvas/internal/logging"
	"LiveCanvas/internal/protocol"
)

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route to the internet; pick an interface address instead.
		return firstIPv4().String()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String()
}

// firstIPv4 returns the first up, non-loopback IPv4 address, or loopback.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	logging.L().Warn("[NET] no LAN address found, share link points at loopback")
	return net.IPv4(127, 0, 0, 1)
}

// ShareLink formats the link other participants open to join.
func ShareLink(host string, port int) string {
	return config.Scheme + net.JoinHostPort(host, strconv.Itoa(port))
}

// PortOf extracts the port from a listen address such as ":8888".
func PortOf(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("parse address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return 0, fmt.Errorf("parse port in %q: %w", addr, err)
	}
	return port, nil
}

// RelayURL turns a share link, a bare host:port or a ws:// URL into the
// websocket URL of the relay socket.
func RelayURL(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", fmt.Errorf("empty link")
	}
	if strings.HasPrefix(link, "ws://") || strings.HasPrefix(link, "wss://") {
		u, err := url.Parse(link)
		if err != nil || u.Host == "" {
			return "", fmt.Errorf("invalid relay URL %q", link)
		}
		if u.Path == "" || u.Path == "/" {
			u.Path = protocol.RouteSocket
		}
		return u.String(), nil
	}

	hostPort := strings.TrimSuffix(strings.TrimPrefix(link, config.Scheme), "/")
	host, port, err := net.SplitHostPort(hostPort)
	if err != nil {
		return "", fmt.Errorf("invalid share link %q: %w", link, err)
	}
	if host == "" {
		host = "localhost"
	}
	return (&url.URL{Scheme: "ws", Host: net.JoinHostPort(host, port), Path: protocol.RouteSocket}).String(), nil
}
