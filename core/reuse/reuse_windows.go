//go:build windows
// +build windows

package reuse

import (
	"syscall"
)

// Control returns a control function enabling SO_REUSEADDR. SO_REUSEPORT does not exist on windows.
func Control(reuseAddr, _ bool) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var err error
		cerr := c.Control(func(fd uintptr) {
			if reuseAddr {
				err = syscall.SetsockoptInt(syscall.Handle(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
			}
		})
		if cerr != nil {
			return cerr
		}
		return err
	}
}
