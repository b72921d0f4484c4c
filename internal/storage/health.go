package storage

import (
	"context"
	"fmt"
	"net"
	"net/url"
)

// EndpointHealthChecker implements api.HealthChecker by dialing the storage
// endpoint. The gateway serves arbitrary bucket names, so there is no single
// bucket to stat; a TCP connection confirms the backend is reachable without
// needing list permissions. The context deadline controls the timeout.
type EndpointHealthChecker struct {
	addr string // host:port to dial
}

// NewEndpointHealthChecker creates a health checker that dials the given
// address. The addr can be a URL (https://host:port) or a raw host:port.
func NewEndpointHealthChecker(addr string) *EndpointHealthChecker {
	// Strip scheme if addr is a URL (e.g. "https://minio:9000" → "minio:9000").
	if u, err := url.Parse(addr); err == nil && u.Host != "" {
		addr = u.Host
	}
	// Bare hostnames (e.g. "s3.amazonaws.com") need a port to dial.
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "443")
	}
	return &EndpointHealthChecker{addr: addr}
}

// HealthCheck attempts a TCP connection to the storage endpoint.
// Returns nil if reachable.
func (h *EndpointHealthChecker) HealthCheck(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", h.addr)
	if err != nil {
		return fmt.Errorf("storage endpoint %s unreachable: %w", h.addr, err)
	}
	conn.Close()
	return nil
}
