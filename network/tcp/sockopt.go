package tcp

import (
	"syscall"

	"github.com/rambollwong/rainbowsock/core/network"
)

// sysConn is a handle exposing its raw file descriptor.
type sysConn = syscall.Conn

func setOption(h sysConn, id network.OptionID, value int, ipv6 bool) error {
	rc, err := h.SyscallConn()
	if err != nil {
		return err
	}
	return setRawOption(rc, id, value, ipv6)
}

func getOption(h sysConn, id network.OptionID, ipv6 bool) (int, error) {
	rc, err := h.SyscallConn()
	if err != nil {
		return 0, err
	}
	return getRawOption(rc, id, ipv6)
}

func availableBytes(h sysConn) (int, error) {
	rc, err := h.SyscallConn()
	if err != nil {
		return 0, err
	}
	return availableRaw(rc)
}

func setListenBacklog(h sysConn, backlog int) error {
	rc, err := h.SyscallConn()
	if err != nil {
		return err
	}
	return listenRaw(rc, backlog)
}

// control runs f against the raw descriptor and returns the first failure.
func control(rc syscall.RawConn, f func(fd uintptr) error) error {
	var opErr error
	if err := rc.Control(func(fd uintptr) {
		opErr = f(fd)
	}); err != nil {
		return err
	}
	return opErr
}
