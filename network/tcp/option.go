package tcp

import (
	"context"
	"time"

	"github.com/rambollwong/rainbowlog"
)

type Option func(s *Socket) error

// apply load configuration items for Socket instance.
func (s *Socket) apply(opt ...Option) error {
	for _, o := range opt {
		if err := o(s); err != nil {
			return err
		}
	}
	return nil
}

// WithContext sets the context bounding Connect and Bind. Cancelling it aborts an in-progress connect.
func WithContext(ctx context.Context) Option {
	return func(s *Socket) error {
		if ctx == nil {
			return ErrNilContext
		}
		s.ctx = ctx
		return nil
	}
}

// WithLogger sets the logger of the socket.
func WithLogger(logger *rainbowlog.Logger) Option {
	return func(s *Socket) error {
		if logger == nil {
			return ErrNilLogger
		}
		s.logger = logger
		return nil
	}
}

// WithReusePort enables SO_REUSEPORT when the socket binds.
func WithReusePort() Option {
	return func(s *Socket) error {
		s.reusePort = true
		return nil
	}
}

// WithDialKeepAlive sets the keep-alive period used for connections established by Connect.
// A negative period disables keep-alive packets.
func WithDialKeepAlive(period time.Duration) Option {
	return func(s *Socket) error {
		s.dialKeepAlive = period
		return nil
	}
}
