package tcp

import (
	"io"
	"runtime"
	"testing"
	"time"

	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/network"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newListeningSocket(t *testing.T) *Socket {
	t.Helper()
	server, err := NewSocket()
	require.NoError(t, err)
	require.NoError(t, server.Bind("127.0.0.1", 0))
	require.NoError(t, server.Listen(0))
	t.Cleanup(func() { _ = server.Close() })
	return server
}

// connectedPair returns the client and the accepted server side of one connection.
func connectedPair(t *testing.T, server *Socket, client *Socket) (*Socket, *Socket) {
	t.Helper()
	accepted, err := NewSocket()
	require.NoError(t, err)

	var g errgroup.Group
	g.Go(func() error {
		return client.Connect("127.0.0.1", server.LocalPort(), 5*time.Second)
	})
	require.NoError(t, server.Accept(accepted))
	require.NoError(t, g.Wait())

	t.Cleanup(func() {
		_ = client.Close()
		_ = accepted.Close()
	})
	return client, accepted
}

func newPair(t *testing.T) (*Socket, *Socket) {
	client, err := NewSocket()
	require.NoError(t, err)
	return connectedPair(t, newListeningSocket(t), client)
}

func TestEndToEndExchange(t *testing.T) {
	client, accepted := newPair(t)

	require.True(t, client.IsConnected())
	require.True(t, accepted.IsConnected())
	require.Equal(t, network.Outbound, client.Direction())
	require.Equal(t, network.Inbound, accepted.Direction())
	require.False(t, client.EstablishedTime().IsZero())

	out, err := client.OutputStream()
	require.NoError(t, err)
	in, err := accepted.InputStream()
	require.NoError(t, err)

	var g errgroup.Group
	g.Go(func() error {
		if _, err := out.Write([]byte("hello")); err != nil {
			return err
		}
		return client.ShutdownOutput()
	})

	buf := make([]byte, 5)
	_, err = io.ReadFull(in, buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf))
	require.NoError(t, g.Wait())

	_, err = in.Read(buf)
	require.ErrorIs(t, err, io.EOF)

	reply, err := accepted.OutputStream()
	require.NoError(t, err)
	require.NoError(t, reply.WriteBounded([]byte("xokx"), 1, 2))
	b1, err := client.ReadByte()
	require.NoError(t, err)
	b2, err := client.ReadByte()
	require.NoError(t, err)
	require.Equal(t, "ok", string([]byte{b1, b2}))
}

func TestListenerDirectionAndAddresses(t *testing.T) {
	server := newListeningSocket(t)
	require.Equal(t, network.Passive, server.Direction())
	require.True(t, server.IsBound())
	require.False(t, server.IsConnected())
	require.NotZero(t, server.LocalPort())
	require.Contains(t, server.LocalAddress(), "127.0.0.1:")
	require.NotNil(t, server.LocalMultiaddr())
}

func TestCloseIsIdempotentAndFinal(t *testing.T) {
	client, accepted := newPair(t)
	in, err := client.InputStream()
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	require.True(t, client.IsClosed())
	require.False(t, client.IsConnected())

	_, err = client.Read(make([]byte, 1))
	require.ErrorIs(t, err, ioerr.ErrState)
	_, err = client.Write([]byte("x"))
	require.ErrorIs(t, err, ioerr.ErrState)
	_, err = client.Available()
	require.ErrorIs(t, err, ioerr.ErrState)
	_, err = in.Read(make([]byte, 1))
	require.ErrorIs(t, err, ioerr.ErrState)
	require.ErrorIs(t, client.ShutdownInput(), ioerr.ErrState)
	require.ErrorIs(t, client.Connect("127.0.0.1", 1, 0), ioerr.ErrState)
	_, err = client.GetOption(network.TCPNoDelay)
	require.ErrorIs(t, err, ioerr.ErrState)

	// the peer sees the end of the stream
	_, err = accepted.Read(make([]byte, 1))
	require.ErrorIs(t, err, io.EOF)
}

func TestShutdownFlagsAreIndependent(t *testing.T) {
	client, accepted := newPair(t)

	require.NoError(t, client.ShutdownInput())
	require.True(t, client.IsInputShutdown())
	require.False(t, client.IsOutputShutdown())
	require.NoError(t, client.ShutdownInput())

	_, err := client.Read(make([]byte, 1))
	require.ErrorIs(t, err, ioerr.ErrState)
	n, err := client.Available()
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = client.Write([]byte("still writable"))
	require.NoError(t, err)

	require.NoError(t, client.ShutdownOutput())
	require.True(t, client.IsOutputShutdown())
	require.True(t, client.IsInputShutdown())
	require.NoError(t, client.ShutdownOutput())
	_, err = client.Write([]byte("x"))
	require.ErrorIs(t, err, ioerr.ErrState)

	data, err := io.ReadAll(accepted)
	require.NoError(t, err)
	require.Equal(t, "still writable", string(data))
}

func TestBoundedTransferArguments(t *testing.T) {
	client, _ := newPair(t)

	_, err := client.ReadBounded(nil, 0, 0)
	require.ErrorIs(t, err, ioerr.ErrNull)
	_, err = client.ReadBounded(make([]byte, 4), 2, 3)
	require.ErrorIs(t, err, ioerr.ErrBounds)
	_, err = client.ReadBounded(make([]byte, 4), -1, 1)
	require.ErrorIs(t, err, ioerr.ErrBounds)
	require.ErrorIs(t, client.WriteBounded(nil, 0, 1), ioerr.ErrNull)
	require.ErrorIs(t, client.WriteBounded(make([]byte, 4), 4, 1), ioerr.ErrBounds)

	out, err := client.OutputStream()
	require.NoError(t, err)
	require.ErrorIs(t, out.WriteBounded(make([]byte, 2), 1, 2), ioerr.ErrBounds)
}

func TestConnectArguments(t *testing.T) {
	s, err := NewSocket()
	require.NoError(t, err)
	defer s.Close()

	require.ErrorIs(t, s.Connect("", 80, 0), ioerr.ErrArgument)
	require.ErrorIs(t, s.Connect("bad host!", 80, 0), ioerr.ErrArgument)
	require.ErrorIs(t, s.Connect("127.0.0.1", 0, 0), ioerr.ErrArgument)
	require.ErrorIs(t, s.Connect("127.0.0.1", 70000, 0), ioerr.ErrArgument)
	require.ErrorIs(t, s.Bind("127.0.0.1", -1), ioerr.ErrArgument)
	require.False(t, s.IsConnected())
}

func TestConnectRefused(t *testing.T) {
	vacated, err := NewSocket()
	require.NoError(t, err)
	require.NoError(t, vacated.Bind("127.0.0.1", 0))
	port := vacated.LocalPort()
	require.NoError(t, vacated.Close())

	s, err := NewSocket()
	require.NoError(t, err)
	defer s.Close()
	err = s.Connect("127.0.0.1", port, time.Second)
	require.ErrorIs(t, err, ioerr.ErrRefused)
	require.ErrorIs(t, err, ioerr.ErrConnection)
	require.False(t, ioerr.IsTimeout(err))
}

func TestConnectTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("needs a non-routable address")
	}
	s, err := NewSocket()
	require.NoError(t, err)
	defer s.Close()
	err = s.Connect("10.255.255.1", 81, 100*time.Millisecond)
	if err == nil {
		t.Skip("network accepted a connection to the non-routable address")
	}
	if !ioerr.IsTimeout(err) {
		t.Skipf("network rejected the address instead of dropping it: %v", err)
	}
	require.ErrorIs(t, err, ioerr.ErrConnection)
}

func TestLifecycleStateErrors(t *testing.T) {
	s, err := NewSocket()
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Create())
	require.ErrorIs(t, s.Create(), ioerr.ErrState)
	require.ErrorIs(t, s.Listen(10), ioerr.ErrState)
	require.ErrorIs(t, s.Accept(nil), ioerr.ErrNull)
	_, err = s.InputStream()
	require.ErrorIs(t, err, ioerr.ErrState)
	_, err = s.Read(make([]byte, 1))
	require.ErrorIs(t, err, ioerr.ErrState)

	target, err := NewSocket()
	require.NoError(t, err)
	defer target.Close()
	require.ErrorIs(t, s.Accept(target), ioerr.ErrState)

	require.NoError(t, s.Bind("127.0.0.1", 0))
	require.ErrorIs(t, s.Bind("127.0.0.1", 0), ioerr.ErrState)
	require.ErrorIs(t, s.Connect("127.0.0.1", s.LocalPort(), time.Second), ioerr.ErrState)
}

func TestBindAddressInUse(t *testing.T) {
	server := newListeningSocket(t)
	s, err := NewSocket()
	require.NoError(t, err)
	defer s.Close()
	require.ErrorIs(t, s.Bind("127.0.0.1", server.LocalPort()), ioerr.ErrConnection)
}

func TestCloseInterruptsAccept(t *testing.T) {
	server, err := NewSocket()
	require.NoError(t, err)
	require.NoError(t, server.Bind("127.0.0.1", 0))
	require.NoError(t, server.Listen(1))

	target, err := NewSocket()
	require.NoError(t, err)
	defer target.Close()

	var g errgroup.Group
	g.Go(func() error {
		return server.Accept(target)
	})
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, server.Close())
	require.ErrorIs(t, g.Wait(), ioerr.ErrState)
	require.False(t, target.IsConnected())
}

func TestAcceptTargetMustBeFresh(t *testing.T) {
	server := newListeningSocket(t)
	used, err := NewSocket()
	require.NoError(t, err)
	require.NoError(t, used.Close())
	require.ErrorIs(t, server.Accept(used), ioerr.ErrState)
}

func TestOptions(t *testing.T) {
	client, err := NewSocket()
	require.NoError(t, err)

	_, err = client.GetOption(network.OptionID(99))
	require.ErrorIs(t, err, ioerr.ErrArgument)
	require.ErrorIs(t, client.SetOption(network.OptionID(0), 1), ioerr.ErrArgument)
	require.ErrorIs(t, client.SetOption(network.SendBuffer, 0), ioerr.ErrArgument)
	require.ErrorIs(t, client.SetOption(network.Timeout, -1), ioerr.ErrArgument)
	require.ErrorIs(t, client.SetOption(network.TrafficClass, 256), ioerr.ErrArgument)

	require.NoError(t, client.SetOption(network.TCPNoDelay, 0))
	require.NoError(t, client.SetOption(network.TrafficClass, 16))
	v, err := client.GetOption(network.TCPNoDelay)
	require.NoError(t, err)
	require.Zero(t, v)

	client, _ = connectedPair(t, newListeningSocket(t), client)

	v, err = client.GetOption(network.TCPNoDelay)
	require.NoError(t, err)
	require.Zero(t, v)
	require.NoError(t, client.SetOption(network.TCPNoDelay, 1))
	v, err = client.GetOption(network.TCPNoDelay)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	v, err = client.GetOption(network.TrafficClass)
	require.NoError(t, err)
	require.Equal(t, 16, v)

	require.NoError(t, client.SetOption(network.ReceiveBuffer, 64<<10))
	v, err = client.GetOption(network.ReceiveBuffer)
	require.NoError(t, err)
	require.Positive(t, v)

	require.NoError(t, client.SetOption(network.Linger, -1))
	v, err = client.GetOption(network.Linger)
	require.NoError(t, err)
	require.Equal(t, -1, v)

	require.Len(t, SupportedOptions(), len(network.Options()))
}

func TestReadTimeout(t *testing.T) {
	client, accepted := newPair(t)
	require.NoError(t, client.SetOption(network.Timeout, 50))

	_, err := client.Read(make([]byte, 1))
	require.True(t, ioerr.IsTimeout(err))
	require.ErrorIs(t, err, ioerr.ErrConnection)

	// the socket survives a timeout
	_, err = accepted.Write([]byte("z"))
	require.NoError(t, err)
	require.NoError(t, client.SetOption(network.Timeout, 0))
	b, err := client.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('z'), b)
}

func TestAvailable(t *testing.T) {
	client, accepted := newPair(t)
	_, err := client.Write([]byte("abc"))
	require.NoError(t, err)

	if runtime.GOOS == "linux" {
		require.Eventually(t, func() bool {
			n, err := accepted.Available()
			return err == nil && n == 3
		}, 2*time.Second, 10*time.Millisecond)
	}

	in, err := accepted.InputStream()
	require.NoError(t, err)
	skipped, err := in.Skip(2)
	require.NoError(t, err)
	require.EqualValues(t, 2, skipped)
	b, err := in.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('c'), b)
}

func TestCompanionStreamCloseKeepsSocket(t *testing.T) {
	client, accepted := newPair(t)
	out, err := client.OutputStream()
	require.NoError(t, err)
	require.NoError(t, out.Close())
	require.ErrorIs(t, out.WriteByte('x'), ioerr.ErrState)
	require.False(t, client.IsClosed())

	_, err = client.Write([]byte("y"))
	require.NoError(t, err)
	b, err := accepted.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('y'), b)
}

func TestConnectMultiaddr(t *testing.T) {
	server := newListeningSocket(t)
	client, err := NewSocket()
	require.NoError(t, err)
	defer client.Close()
	accepted, err := NewSocket()
	require.NoError(t, err)
	defer accepted.Close()

	var g errgroup.Group
	g.Go(func() error {
		return client.ConnectMultiaddr(server.LocalMultiaddr(), time.Second)
	})
	require.NoError(t, server.Accept(accepted))
	require.NoError(t, g.Wait())
	require.Equal(t, client.LocalAddress(), accepted.RemoteAddress())
	require.NotNil(t, client.RemoteMultiaddr())
}

func TestSocketIsMonitor(t *testing.T) {
	s, err := NewSocket()
	require.NoError(t, err)
	defer s.Close()
	require.Error(t, s.Notify())
	s.Lock()
	require.NoError(t, s.WaitTimeout(10*time.Millisecond))
	require.NoError(t, s.Unlock())
}

func TestCloseInterruptsRead(t *testing.T) {
	client, _ := newPair(t)

	var g errgroup.Group
	g.Go(func() error {
		_, err := client.Read(make([]byte, 1))
		return err
	})
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, client.Close())
	require.ErrorIs(t, g.Wait(), ioerr.ErrState)
}

func TestCloseInterruptsConnect(t *testing.T) {
	if testing.Short() {
		t.Skip("needs a non-routable address")
	}
	s, err := NewSocket()
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() {
		result <- s.Connect("10.255.255.1", 81, 0)
	}()
	select {
	case err = <-result:
		_ = s.Close()
		t.Skipf("connect finished before it could be interrupted: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, s.Close())
	select {
	case err = <-result:
		require.ErrorIs(t, err, ioerr.ErrState)
	case <-time.After(5 * time.Second):
		t.Fatal("close did not interrupt connect")
	}
	require.False(t, s.IsConnected())
}

func TestConnectNonPositiveTimeoutWaitsWithoutLimit(t *testing.T) {
	for _, timeout := range []time.Duration{0, -time.Millisecond, -time.Hour} {
		server := newListeningSocket(t)
		client, err := NewSocket()
		require.NoError(t, err)
		accepted, err := NewSocket()
		require.NoError(t, err)

		var g errgroup.Group
		g.Go(func() error {
			return client.Connect("127.0.0.1", server.LocalPort(), timeout)
		})
		require.NoError(t, server.Accept(accepted))
		require.NoError(t, g.Wait(), "timeout %s", timeout)
		require.True(t, client.IsConnected())
		require.NoError(t, client.Close())
		require.NoError(t, accepted.Close())
	}
}
