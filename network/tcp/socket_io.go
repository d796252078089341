package tcp

import (
	"io"
	"time"

	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/network"
	"github.com/rambollwong/rainbowsock/util"
)

// Read reads up to len(p) bytes. It returns io.EOF once the peer has closed its write side.
// When the Timeout option is set, a read waiting longer fails with a Timeout kind.
func (s *Socket) Read(p []byte) (int, error) {
	conn, err := s.connected("read")
	if err != nil {
		return 0, err
	}
	if s.status.IsInputShutdown() {
		return 0, stateError("read", ErrInputShutdown)
	}
	if len(p) == 0 {
		return 0, nil
	}
	s.mu.RLock()
	timeout := s.options[network.Timeout]
	s.mu.RUnlock()
	if timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(time.Duration(timeout) * time.Millisecond))
	}
	n, err := conn.Read(p)
	if err != nil {
		return n, s.ioError("read", err)
	}
	return n, nil
}

// ReadBounded reads up to length bytes into buf starting at offset.
func (s *Socket) ReadBounded(buf []byte, offset, length int) (int, error) {
	if err := ioerr.CheckBounds("read", buf, offset, length); err != nil {
		return 0, err
	}
	return s.Read(buf[offset : offset+length])
}

// ReadByte reads a single byte.
func (s *Socket) ReadByte() (byte, error) {
	var b [1]byte
	for {
		n, err := s.Read(b[:])
		if n == 1 {
			return b[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// Write writes all of p or fails.
func (s *Socket) Write(p []byte) (int, error) {
	conn, err := s.connected("write")
	if err != nil {
		return 0, err
	}
	if s.status.IsOutputShutdown() {
		return 0, stateError("write", ErrOutputShutdown)
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := conn.Write(p)
	if err != nil {
		return n, s.ioError("write", err)
	}
	return n, nil
}

// WriteBounded writes length bytes of buf starting at offset.
func (s *Socket) WriteBounded(buf []byte, offset, length int) error {
	if err := ioerr.CheckBounds("write", buf, offset, length); err != nil {
		return err
	}
	_, err := s.Write(buf[offset : offset+length])
	return err
}

// Available returns the number of bytes that can be read without blocking.
func (s *Socket) Available() (int, error) {
	conn, err := s.connected("available")
	if err != nil {
		return 0, err
	}
	if s.status.IsInputShutdown() {
		return 0, nil
	}
	n, err := availableBytes(conn)
	if err != nil {
		return 0, s.ioError("available", err)
	}
	return n, nil
}

// ioError maps a transfer failure: the end of the stream stays io.EOF, a failure caused by Close
// becomes a State kind, a deadline a Timeout kind, everything else an IO kind.
func (s *Socket) ioError(op string, err error) error {
	switch {
	case err == io.EOF:
		return io.EOF
	case s.status.IsClosed() || util.IsConnClosedError(err):
		return stateError(op, ErrSocketClosed)
	case util.IsNetErrorTimeout(err):
		return ioerr.Wrap(ioerr.KindTimeout, op, err)
	default:
		return ioerr.Wrap(ioerr.KindIO, op, err)
	}
}
