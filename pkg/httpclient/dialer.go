package httpclient

import (
	"context"
	"fmt"
	"net"
)

// secureDialContext resolves the target host and refuses to connect when any
// of its addresses is private, loopback, link-local or a metadata endpoint.
// The connection is made to the validated address so a second resolution
// cannot rebind the host.
func secureDialContext(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid address: %w", err)
		}

		ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve host: %w", err)
		}
		if len(ips) == 0 {
			return nil, fmt.Errorf("no addresses for host %s", host)
		}

		for _, ip := range ips {
			if err := checkIP(ip); err != nil {
				return nil, err
			}
		}

		return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0].String(), port))
	}
}

func checkIP(ip net.IP) error {
	if isMetadataIP(ip) {
		return fmt.Errorf("metadata service IP blocked: %s", ip)
	}
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsPrivate() || ip.IsUnspecified() {
		return fmt.Errorf("private/local IP addresses are blocked: %s", ip)
	}
	return nil
}

// isMetadataIP checks if an IP is a cloud metadata service.
func isMetadataIP(ip net.IP) bool {
	for _, meta := range []string{"169.254.169.254", "fd00:ec2::254"} {
		if ip.Equal(net.ParseIP(meta)) {
			return true
		}
	}
	return false
}
