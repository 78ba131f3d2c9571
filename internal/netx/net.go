// Package netx holds small address helpers shared by the transports.
package netx

import "net"

// Host strips the port from a "host:port" peer address. Addresses without a
// port are returned as given.
func Host(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
