package tcp

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// availableRaw asks the kernel how many received bytes are waiting (SIOCINQ).
func availableRaw(rc syscall.RawConn) (int, error) {
	var n int
	err := control(rc, func(fd uintptr) error {
		var err error
		n, err = unix.IoctlGetInt(int(fd), unix.SIOCINQ)
		return err
	})
	return n, err
}
