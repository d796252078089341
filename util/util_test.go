package util

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/stream"
	"github.com/stretchr/testify/require"
)

func TestPackageRoundTrip(t *testing.T) {
	out := stream.NewByteArrayOutputStream()
	require.NoError(t, WritePackage(out, []byte("hello")))
	require.NoError(t, WritePackage(out, []byte{}))
	require.Equal(t, 8+5+8, out.Size())

	in := stream.NewByteArrayInputStream(out.Bytes())
	data, err := ReadPackage(in)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	data, err = ReadPackage(in)
	require.NoError(t, err)
	require.Empty(t, data)

	_, err = ReadPackage(in)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadPackageTruncated(t *testing.T) {
	out := stream.NewByteArrayOutputStream()
	require.NoError(t, WritePackage(out, []byte("hello")))
	in := stream.NewByteArrayInputStream(out.Bytes()[:10])
	_, err := ReadPackage(in)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestHostPortMultiAddr(t *testing.T) {
	addr, err := HostPortToMultiAddr("127.0.0.1", 8080)
	require.NoError(t, err)
	require.Equal(t, "/ip4/127.0.0.1/tcp/8080", addr.String())

	addr, err = HostPortToMultiAddr("::1", 80)
	require.NoError(t, err)
	require.Equal(t, "/ip6/::1/tcp/80", addr.String())

	addr, err = HostPortToMultiAddr("localhost", 443)
	require.NoError(t, err)
	require.True(t, ContainsDNS(addr))

	_, err = HostPortToMultiAddr("", 1)
	require.ErrorIs(t, err, ioerr.ErrArgument)
	_, err = HostPortToMultiAddr("127.0.0.1", 70000)
	require.ErrorIs(t, err, ioerr.ErrArgument)

	host, port, err := MultiAddrToHostPort(ma.StringCast("/ip4/10.0.0.1/tcp/9000"))
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", host)
	require.Equal(t, 9000, port)

	_, _, err = MultiAddrToHostPort(ma.StringCast("/ip4/10.0.0.1/udp/9000"))
	require.ErrorIs(t, err, ioerr.ErrArgument)
	_, _, err = MultiAddrToHostPort(nil)
	require.ErrorIs(t, err, ioerr.ErrNull)
}

func TestNetAddrToMultiAddr(t *testing.T) {
	m := NetAddrToMultiAddr(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1234})
	require.NotNil(t, m)
	require.Equal(t, "/ip4/127.0.0.1/tcp/1234", m.String())
	require.Nil(t, NetAddrToMultiAddr(nil))
}

func TestConnectionKind(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
	require.Equal(t, ioerr.KindRefused, ConnectionKind(refused))

	timeout := &net.OpError{Op: "dial", Net: "tcp", Err: os.ErrDeadlineExceeded}
	require.Equal(t, ioerr.KindTimeout, ConnectionKind(timeout))

	require.Equal(t, ioerr.KindRefused, ConnectionKind(&net.DNSError{Err: "no such host", Name: "invalid.", IsNotFound: true}))
	require.Equal(t, ioerr.KindConnection, ConnectionKind(errors.New("other")))

	require.True(t, IsConnClosedError(net.ErrClosed))
	require.False(t, IsConnClosedError(nil))
}

func TestValidHost(t *testing.T) {
	for _, host := range []string{"127.0.0.1", "::1", "localhost", "example.com", "a-b.example.com.", "svc_1.local"} {
		require.True(t, ValidHost(host), host)
	}
	for _, host := range []string{"", "bad host", "a..b", ".lead", "-dash.com", "x/y", "host:80"} {
		require.False(t, ValidHost(host), host)
	}
}
