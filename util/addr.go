package util

import (
	"net"
	"strconv"

	ma "github.com/multiformats/go-multiaddr"
	mafmt "github.com/multiformats/go-multiaddr-fmt"
	manet "github.com/multiformats/go-multiaddr/net"
	"github.com/rambollwong/rainbowsock/core/ioerr"
)

// MaxPort is the largest valid port number.
const MaxPort = 65535

// ValidPort reports whether port is in 0-65535.
func ValidPort(port int) bool {
	return port >= 0 && port <= MaxPort
}

// HostPortToMultiAddr converts a host name or IP literal and a port to a tcp multiaddress.
// For example, "127.0.0.1" and 8080 become "/ip4/127.0.0.1/tcp/8080", "example.com" and 443
// become "/dns/example.com/tcp/443".
func HostPortToMultiAddr(host string, port int) (ma.Multiaddr, error) {
	if host == "" {
		return nil, ioerr.New(ioerr.KindArgument, "multiaddr", "empty host")
	}
	if !ValidPort(port) {
		return nil, ioerr.Newf(ioerr.KindArgument, "multiaddr", "port %d out of range", port)
	}
	var prefix string
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			prefix = "/ip4/" + ip.String()
		} else {
			prefix = "/ip6/" + ip.String()
		}
	} else {
		prefix = "/dns/" + host
	}
	addr, err := ma.NewMultiaddr(prefix + "/tcp/" + strconv.Itoa(port))
	if err != nil {
		return nil, ioerr.Wrap(ioerr.KindArgument, "multiaddr", err)
	}
	return addr, nil
}

// MultiAddrToHostPort resolves the dialable host and port of a tcp multiaddress.
// For example, "/ip4/127.0.0.1/tcp/8080" returns "127.0.0.1" and 8080.
func MultiAddrToHostPort(addr ma.Multiaddr) (string, int, error) {
	if addr == nil {
		return "", 0, ioerr.New(ioerr.KindNull, "multiaddr", "nil multiaddr")
	}
	if !CanDial(addr) {
		return "", 0, ioerr.Newf(ioerr.KindArgument, "multiaddr", "not a tcp address: %s", addr)
	}
	_, hostPort, err := manet.DialArgs(addr)
	if err != nil {
		return "", 0, ioerr.Wrap(ioerr.KindArgument, "multiaddr", err)
	}
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return "", 0, ioerr.Wrap(ioerr.KindArgument, "multiaddr", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, ioerr.Wrap(ioerr.KindArgument, "multiaddr", err)
	}
	return host, port, nil
}

// CanDial reports whether addr is an ip or dns tcp multiaddress.
func CanDial(addr ma.Multiaddr) bool {
	return mafmt.TCP.Matches(addr) || mafmt.And(mafmt.DNS, mafmt.Base(ma.P_TCP)).Matches(addr)
}

// NetAddrToMultiAddr converts a net.Addr to a multiaddress, returning nil for a nil or
// unsupported address.
func NetAddrToMultiAddr(addr net.Addr) ma.Multiaddr {
	if addr == nil {
		return nil
	}
	m, err := manet.FromNetAddr(addr)
	if err != nil {
		return nil
	}
	return m
}

// ContainsDNS returns true if the given address contains the DNS protocol, otherwise returns false
func ContainsDNS(addr ma.Multiaddr) bool {
	if addr != nil {
		for _, protocol := range addr.Protocols() {
			switch protocol.Code {
			case ma.P_DNS, ma.P_DNS4, ma.P_DNS6:
				return true
			}
		}
	}
	return false
}

// ValidHost reports whether host is an IP literal or a syntactically valid host name.
func ValidHost(host string) bool {
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	if len(host) > 253 {
		return false
	}
	labelLen := 0
	for i := 0; i < len(host); i++ {
		c := host[i]
		switch {
		case c == '.':
			if labelLen == 0 {
				return false
			}
			labelLen = 0
			continue
		case c == '-' || c == '_':
			if labelLen == 0 {
				return false
			}
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			return false
		}
		labelLen++
		if labelLen > 63 {
			return false
		}
	}
	return true
}
