// Package resolver implements the Endpoint Resolver of spec.md §4.7: split
// host[:port], default port 2055, resolve the host to an IPv4 UDP address.
package resolver

import (
	"net"
	"strconv"
	"strings"

	"github.com/davidch/flow/internal/flowerr"
)

// DefaultPort is used when the collector address carries no port.
const DefaultPort = 2055

// Resolve splits endpoint at the last ':' (so a bare IPv6 literal is not
// accepted: its last group is taken as the port, and the endpoint fails
// either as a malformed port or as an unresolvable host — IPv6 is a
// non-goal, spec.md §1), resolves the host to an IPv4 address, and returns the collector's
// UDP address. A present-but-invalid port (non-numeric, or zero) is an
// InvalidOptionError.
func Resolve(endpoint string) (*net.UDPAddr, error) {
	host, portStr, hasPort := splitHostPort(endpoint)

	port := DefaultPort
	if hasPort {
		p, err := strconv.Atoi(portStr)
		if err != nil || p <= 0 || p > 65535 {
			return nil, &flowerr.InvalidOptionError{Cause: &invalidPortError{portStr}}
		}
		port = p
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, &flowerr.SocketError{Cause: err}
	}

	var ipv4 net.IP
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			ipv4 = v4
			break
		}
	}
	if ipv4 == nil {
		return nil, &flowerr.SocketError{Cause: &noIPv4AddressError{host}}
	}

	return &net.UDPAddr{IP: ipv4, Port: port}, nil
}

// splitHostPort splits endpoint at the last ':'. Unlike net.SplitHostPort
// it does not require a port to be present, per spec.md §4.7.
func splitHostPort(endpoint string) (host, port string, hasPort bool) {
	idx := strings.LastIndex(endpoint, ":")
	if idx == -1 {
		return endpoint, "", false
	}
	return endpoint[:idx], endpoint[idx+1:], true
}

type invalidPortError struct{ value string }

func (e *invalidPortError) Error() string { return "invalid port: " + e.value }

type noIPv4AddressError struct{ host string }

func (e *noIPv4AddressError) Error() string { return "no IPv4 address found for host: " + e.host }
