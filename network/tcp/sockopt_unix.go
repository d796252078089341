//go:build !windows
// +build !windows

package tcp

import (
	"syscall"

	"github.com/rambollwong/rainbowsock/core/network"
	"golang.org/x/sys/unix"
)

func setRawOption(rc syscall.RawConn, id network.OptionID, value int, ipv6 bool) error {
	return control(rc, func(fd uintptr) error {
		h := int(fd)
		switch id {
		case network.TCPNoDelay:
			return unix.SetsockoptInt(h, unix.IPPROTO_TCP, unix.TCP_NODELAY, boolValue(value))
		case network.ReuseAddr:
			return unix.SetsockoptInt(h, unix.SOL_SOCKET, unix.SO_REUSEADDR, boolValue(value))
		case network.Linger:
			l := &unix.Linger{}
			if value >= 0 {
				l.Onoff, l.Linger = 1, int32(value)
			}
			return unix.SetsockoptLinger(h, unix.SOL_SOCKET, unix.SO_LINGER, l)
		case network.SendBuffer:
			return unix.SetsockoptInt(h, unix.SOL_SOCKET, unix.SO_SNDBUF, value)
		case network.ReceiveBuffer:
			return unix.SetsockoptInt(h, unix.SOL_SOCKET, unix.SO_RCVBUF, value)
		case network.KeepAlive:
			return unix.SetsockoptInt(h, unix.SOL_SOCKET, unix.SO_KEEPALIVE, boolValue(value))
		case network.OOBInline:
			return unix.SetsockoptInt(h, unix.SOL_SOCKET, unix.SO_OOBINLINE, boolValue(value))
		case network.TrafficClass:
			if ipv6 {
				return unix.SetsockoptInt(h, unix.IPPROTO_IPV6, unix.IPV6_TCLASS, value)
			}
			return unix.SetsockoptInt(h, unix.IPPROTO_IP, unix.IP_TOS, value)
		}
		return nil
	})
}

func getRawOption(rc syscall.RawConn, id network.OptionID, ipv6 bool) (int, error) {
	var value int
	err := control(rc, func(fd uintptr) error {
		h := int(fd)
		var err error
		switch id {
		case network.TCPNoDelay:
			value, err = unix.GetsockoptInt(h, unix.IPPROTO_TCP, unix.TCP_NODELAY)
			value = boolValue(value)
		case network.ReuseAddr:
			value, err = unix.GetsockoptInt(h, unix.SOL_SOCKET, unix.SO_REUSEADDR)
			value = boolValue(value)
		case network.SendBuffer:
			value, err = unix.GetsockoptInt(h, unix.SOL_SOCKET, unix.SO_SNDBUF)
		case network.ReceiveBuffer:
			value, err = unix.GetsockoptInt(h, unix.SOL_SOCKET, unix.SO_RCVBUF)
		case network.KeepAlive:
			value, err = unix.GetsockoptInt(h, unix.SOL_SOCKET, unix.SO_KEEPALIVE)
			value = boolValue(value)
		case network.OOBInline:
			value, err = unix.GetsockoptInt(h, unix.SOL_SOCKET, unix.SO_OOBINLINE)
			value = boolValue(value)
		case network.TrafficClass:
			if ipv6 {
				value, err = unix.GetsockoptInt(h, unix.IPPROTO_IPV6, unix.IPV6_TCLASS)
			} else {
				value, err = unix.GetsockoptInt(h, unix.IPPROTO_IP, unix.IP_TOS)
			}
		}
		return err
	})
	return value, err
}

// listenRaw re-issues listen(2) on the bound descriptor with the requested queue depth.
func listenRaw(rc syscall.RawConn, backlog int) error {
	return control(rc, func(fd uintptr) error {
		return unix.Listen(int(fd), backlog)
	})
}
