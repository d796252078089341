package mux

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/network"
	"github.com/rambollwong/rainbowsock/network/tcp"
	"github.com/rambollwong/rainbowsock/util"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newSessionPair(t *testing.T) (*Session, *Session) {
	t.Helper()
	server, err := tcp.NewSocket()
	require.NoError(t, err)
	require.NoError(t, server.Bind("127.0.0.1", 0))
	require.NoError(t, server.Listen(0))
	defer server.Close()

	client, err := tcp.NewSocket()
	require.NoError(t, err)
	accepted, err := tcp.NewSocket()
	require.NoError(t, err)

	var g errgroup.Group
	g.Go(func() error {
		return client.Connect("127.0.0.1", server.LocalPort(), 5*time.Second)
	})
	require.NoError(t, server.Accept(accepted))
	require.NoError(t, g.Wait())

	cs, err := Client(client, WithKeepAliveInterval(time.Second))
	require.NoError(t, err)
	ss, err := Server(accepted)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Close()
	})
	return cs, ss
}

func TestStreamsCarryPackages(t *testing.T) {
	cs, ss := newSessionPair(t)
	require.Equal(t, network.Outbound, cs.Direction())
	require.Equal(t, network.Inbound, ss.Direction())

	var g errgroup.Group
	g.Go(func() error {
		st, err := ss.AcceptStream()
		if err != nil {
			return err
		}
		defer st.Close()
		in, err := st.InputStream()
		if err != nil {
			return err
		}
		out, err := st.OutputStream()
		if err != nil {
			return err
		}
		// echo every package until the peer half-closes
		for {
			data, err := util.ReadPackage(in)
			if err == io.EOF {
				return st.ShutdownOutput()
			}
			if err != nil {
				return err
			}
			if err = util.WritePackage(out, data); err != nil {
				return err
			}
		}
	})

	st, err := cs.OpenStream(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, cs.NumStreams())
	in, err := st.InputStream()
	require.NoError(t, err)
	out, err := st.OutputStream()
	require.NoError(t, err)

	for _, msg := range []string{"hello", "multiplexed", "world"} {
		require.NoError(t, util.WritePackage(out, []byte(msg)))
		data, err := util.ReadPackage(in)
		require.NoError(t, err)
		require.Equal(t, msg, string(data))
	}
	require.NoError(t, st.ShutdownOutput())
	require.True(t, st.IsOutputShutdown())
	require.False(t, st.IsInputShutdown())
	_, err = st.Write([]byte("x"))
	require.ErrorIs(t, err, ioerr.ErrState)

	_, err = util.ReadPackage(in)
	require.ErrorIs(t, err, io.EOF)
	require.NoError(t, g.Wait())

	require.NoError(t, st.Close())
	require.NoError(t, st.Close())
	require.Zero(t, cs.NumStreams())
	_, err = st.Read(make([]byte, 1))
	require.ErrorIs(t, err, ioerr.ErrState)
}

func TestSessionCloseClosesStreamsAndSocket(t *testing.T) {
	cs, ss := newSessionPair(t)

	accepted := make(chan *Stream, 1)
	go func() {
		st, err := ss.AcceptStream()
		if err == nil {
			accepted <- st
		}
	}()

	st, err := cs.OpenStream(context.Background())
	require.NoError(t, err)
	_, err = st.Write([]byte("ping"))
	require.NoError(t, err)

	select {
	case <-accepted:
	case <-time.After(5 * time.Second):
		t.Fatal("stream was not accepted")
	}

	require.NoError(t, cs.Close())
	require.True(t, cs.IsClosed())
	require.True(t, st.IsClosed())
	require.True(t, cs.Socket().IsClosed())
	_, err = cs.OpenStream(context.Background())
	require.ErrorIs(t, err, ioerr.ErrState)

	require.Eventually(t, ss.IsClosed, 5*time.Second, 10*time.Millisecond)
	_, err = ss.AcceptStream()
	require.ErrorIs(t, err, ioerr.ErrState)
}

func TestSessionArguments(t *testing.T) {
	_, err := Client(nil)
	require.ErrorIs(t, err, ioerr.ErrNull)

	sock, err := tcp.NewSocket()
	require.NoError(t, err)
	defer sock.Close()
	_, err = Client(sock)
	require.ErrorIs(t, err, ioerr.ErrState)
	_, err = Server(sock, WithMaxStreamWindowSize(1))
	require.ErrorIs(t, err, ErrInvalidWindowSize)
	_, err = Server(sock, WithLogger(nil))
	require.ErrorIs(t, err, ioerr.ErrArgument)
}
