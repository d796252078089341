//go:build !windows
// +build !windows

package reuse

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Control returns a dial/listen control function that enables SO_REUSEADDR and, when reusePort
// is set, SO_REUSEPORT on the fresh handle before it is bound.
func Control(reuseAddr, reusePort bool) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var err error
		cerr := c.Control(func(fd uintptr) {
			if reuseAddr {
				err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
				if err != nil {
					return
				}
			}
			if reusePort {
				err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			}
		})
		if cerr != nil {
			return cerr
		}
		return err
	}
}
