package util

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/rambollwong/rainbowsock/core/ioerr"
)

// NetError checks if the provided error implements the net.Error interface.
// It returns the net.Error value and true if the error implements the interface.
// Otherwise, it returns nil and false.
func NetError(err error) (net.Error, bool) {
	var ne net.Error
	ok := errors.As(err, &ne)
	if ok {
		return ne, true
	}
	return nil, false
}

// IsNetErrorTimeout checks if the provided error is a network error and specifically a timeout error.
func IsNetErrorTimeout(err error) bool {
	ne, ok := NetError(err)
	if ok {
		return ne.Timeout()
	}
	return false
}

// IsConnClosedError checks if the provided error reports use of a closed network connection.
func IsConnClosedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}

// IsConnRefusedError checks if the provided error reports a refused connection, an unreachable
// peer or a host name that could not be resolved.
func IsConnRefusedError(err error) bool {
	if err == nil {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.ECONNRESET)
}

// ConnectionKind classifies a dial/accept failure into a timeout, a refused/unreachable or a
// generic connection kind.
func ConnectionKind(err error) ioerr.Kind {
	switch {
	case IsNetErrorTimeout(err):
		return ioerr.KindTimeout
	case IsConnRefusedError(err):
		return ioerr.KindRefused
	default:
		return ioerr.KindConnection
	}
}
