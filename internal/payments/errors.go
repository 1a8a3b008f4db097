package payments

import (
	"errors"
	"net"
	"syscall"
)

// ErrUpstreamUnreachable marks transport-level failures reaching the skill
// server: connection refused, DNS resolution failure, or the gateway relaying
// such a failure. Callers classify it separately from payment or protocol
// errors so the offending backend can be pointed at.
var ErrUpstreamUnreachable = errors.New("payments: upstream unreachable")

// IsUnreachable reports whether err is a network-unreachable failure.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUpstreamUnreachable) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}
