package mux

import (
	"errors"
	"time"

	"github.com/rambollwong/rainbowlog"
)

var (
	ErrNilLogger          = errors.New("nil logger")
	ErrInvalidWindowSize  = errors.New("stream window size must be at least 256KB")
	ErrInvalidKeepAlive   = errors.New("keep-alive interval must be positive")
	ErrSessionClosed      = errors.New("session closed")
	ErrStreamClosed       = errors.New("stream closed")
	ErrInputShutdown      = errors.New("stream input is shut down")
	ErrOutputShutdown     = errors.New("stream output is shut down")
	ErrSocketNotConnected = errors.New("socket not connected")
)

// minStreamWindowSize is the initial stream window of the yamux protocol.
const minStreamWindowSize = 256 << 10

type Option func(s *Session) error

// apply load configuration items for Session instance.
func (s *Session) apply(opt ...Option) error {
	for _, o := range opt {
		if err := o(s); err != nil {
			return err
		}
	}
	return nil
}

// WithKeepAliveInterval sets how often the session pings the peer.
func WithKeepAliveInterval(interval time.Duration) Option {
	return func(s *Session) error {
		if interval <= 0 {
			return ErrInvalidKeepAlive
		}
		s.cfg.EnableKeepAlive = true
		s.cfg.KeepAliveInterval = interval
		return nil
	}
}

// WithMaxStreamWindowSize sets the largest receive window of a single stream.
func WithMaxStreamWindowSize(size uint32) Option {
	return func(s *Session) error {
		if size < minStreamWindowSize {
			return ErrInvalidWindowSize
		}
		s.cfg.MaxStreamWindowSize = size
		return nil
	}
}

// WithLogger sets the logger of the session.
func WithLogger(logger *rainbowlog.Logger) Option {
	return func(s *Session) error {
		if logger == nil {
			return ErrNilLogger
		}
		s.logger = logger
		return nil
	}
}
