//go:build windows
// +build windows

package tcp

import (
	"syscall"

	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/network"
)

func setRawOption(rc syscall.RawConn, id network.OptionID, value int, _ bool) error {
	return control(rc, func(fd uintptr) error {
		h := syscall.Handle(fd)
		switch id {
		case network.TCPNoDelay:
			return syscall.SetsockoptInt(h, syscall.IPPROTO_TCP, syscall.TCP_NODELAY, boolValue(value))
		case network.ReuseAddr:
			return syscall.SetsockoptInt(h, syscall.SOL_SOCKET, syscall.SO_REUSEADDR, boolValue(value))
		case network.Linger:
			l := &syscall.Linger{}
			if value >= 0 {
				l.Onoff, l.Linger = 1, int32(value)
			}
			return syscall.SetsockoptLinger(h, syscall.SOL_SOCKET, syscall.SO_LINGER, l)
		case network.SendBuffer:
			return syscall.SetsockoptInt(h, syscall.SOL_SOCKET, syscall.SO_SNDBUF, value)
		case network.ReceiveBuffer:
			return syscall.SetsockoptInt(h, syscall.SOL_SOCKET, syscall.SO_RCVBUF, value)
		case network.KeepAlive:
			return syscall.SetsockoptInt(h, syscall.SOL_SOCKET, syscall.SO_KEEPALIVE, boolValue(value))
		}
		return nil
	})
}

func getRawOption(syscall.RawConn, network.OptionID, bool) (int, error) {
	return 0, ioerr.New(ioerr.KindUnsupported, "get option", "reading socket options is not supported on windows")
}

func availableRaw(syscall.RawConn) (int, error) {
	return 0, nil
}

func listenRaw(syscall.RawConn, int) error {
	return nil
}
