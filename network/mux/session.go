// Package mux multiplexes logical duplex streams over one connected tcp socket with yamux.
package mux

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/libp2p/go-yamux/v4"
	"github.com/rambollwong/rainbowcat/types"
	"github.com/rambollwong/rainbowlog"
	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/network"
	"github.com/rambollwong/rainbowsock/log"
	"github.com/rambollwong/rainbowsock/network/tcp"
	"github.com/rambollwong/rainbowsock/util"
)

// Session owns a connected socket and the logical streams running over it.
// Closing the session closes every stream and the socket.
type Session struct {
	status network.BasicStatus

	sock   *tcp.Socket
	sess   *yamux.Session
	cfg    *yamux.Config
	logger *rainbowlog.Logger

	mu      sync.Mutex
	streams *types.Set[*Stream]

	closeOnce sync.Once
}

func newConfig() *yamux.Config {
	cfg := *yamux.DefaultConfig()
	cfg.MaxStreamWindowSize = 32 << 20
	cfg.LogOutput = io.Discard
	cfg.ReadBufSize = 0
	cfg.ConnectionWriteTimeout = 1 * time.Second
	cfg.EnableKeepAlive = true
	cfg.KeepAliveInterval = 10 * time.Second
	return &cfg
}

// Client starts the session as the side that dialed the socket.
func Client(sock *tcp.Socket, opt ...Option) (*Session, error) {
	return newSession(sock, network.Outbound, opt...)
}

// Server starts the session as the side that accepted the socket.
func Server(sock *tcp.Socket, opt ...Option) (*Session, error) {
	return newSession(sock, network.Inbound, opt...)
}

func newSession(sock *tcp.Socket, dir network.Direction, opt ...Option) (*Session, error) {
	if sock == nil {
		return nil, ioerr.New(ioerr.KindNull, "session", "socket is nil")
	}
	s := &Session{
		sock:    sock,
		cfg:     newConfig(),
		streams: types.NewSet[*Stream](),
	}
	if err := s.apply(opt...); err != nil {
		return nil, ioerr.Wrap(ioerr.KindArgument, "session", err)
	}
	if s.logger == nil {
		s.logger = log.Component("MUX")
	}
	conn := sock.NetConn()
	if conn == nil {
		return nil, ioerr.Wrap(ioerr.KindState, "session", ErrSocketNotConnected)
	}

	var err error
	if dir == network.Inbound {
		// inbound socket as server
		s.sess, err = yamux.Server(conn, s.cfg, nil)
	} else {
		s.sess, err = yamux.Client(conn, s.cfg, nil)
	}
	if err != nil {
		return nil, ioerr.Wrap(ioerr.KindConnection, "session", err)
	}
	s.status.Establish(dir, time.Now())
	s.logger.Debug().Msg("session started.").
		Str("direction", dir.String()).
		Str("remote", sock.RemoteAddress()).
		Done()
	return s, nil
}

// closed reports whether the session was closed locally or shut down by the peer.
func (s *Session) closed() bool {
	if s.status.IsClosed() {
		return true
	}
	select {
	case <-s.sess.CloseChan():
		_ = s.Close()
		return true
	default:
		return false
	}
}

// OpenStream opens a new logical stream to the peer.
func (s *Session) OpenStream(ctx context.Context) (*Stream, error) {
	if s.closed() {
		return nil, ioerr.Wrap(ioerr.KindState, "open stream", ErrSessionClosed)
	}
	ys, err := s.sess.OpenStream(ctx)
	if err != nil {
		if s.closed() {
			return nil, ioerr.Wrap(ioerr.KindState, "open stream", ErrSessionClosed)
		}
		return nil, ioerr.Wrap(ioerr.KindConnection, "open stream", err)
	}
	return s.track(ys, network.Outbound), nil
}

// AcceptStream blocks until the peer opens a logical stream.
func (s *Session) AcceptStream() (*Stream, error) {
	if s.closed() {
		return nil, ioerr.Wrap(ioerr.KindState, "accept stream", ErrSessionClosed)
	}
	ys, err := s.sess.AcceptStream()
	if err != nil {
		if s.closed() {
			return nil, ioerr.Wrap(ioerr.KindState, "accept stream", ErrSessionClosed)
		}
		return nil, ioerr.Wrap(ioerr.KindConnection, "accept stream", err)
	}
	return s.track(ys, network.Inbound), nil
}

func (s *Session) track(ys *yamux.Stream, dir network.Direction) *Stream {
	st := newStream(s, ys, dir)
	s.mu.Lock()
	s.streams.Put(st)
	s.mu.Unlock()
	return st
}

func (s *Session) untrack(st *Stream) {
	s.mu.Lock()
	s.streams.Remove(st)
	s.mu.Unlock()
}

// NumStreams returns the number of open logical streams.
func (s *Session) NumStreams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.streams.Size())
}

// Socket returns the socket the session runs over.
func (s *Session) Socket() *tcp.Socket {
	return s.sock
}

func (s *Session) Direction() network.Direction {
	return s.status.Direction()
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed()
}

// Close closes every open stream, the session and the socket.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.status.SetClosed()
		s.mu.Lock()
		open := make([]*Stream, 0, s.streams.Size())
		s.streams.Range(func(st *Stream) bool {
			open = append(open, st)
			return true
		})
		s.mu.Unlock()
		for _, st := range open {
			_ = st.Close()
		}
		if err = s.sess.Close(); err != nil {
			s.logger.Debug().Msg("close session failed.").Err(err).Done()
		}
		// yamux already closed the handle, the socket only has to release its state
		if sockErr := s.sock.Close(); sockErr != nil && err == nil && !util.IsConnClosedError(sockErr) {
			err = sockErr
		}
		s.logger.Debug().Msg("session closed.").Int("streams", len(open)).Done()
	})
	if err != nil {
		return ioerr.Wrap(ioerr.KindIO, "close session", err)
	}
	return nil
}
