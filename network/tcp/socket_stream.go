package tcp

import (
	"sync/atomic"

	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/stream"
)

var (
	_ stream.InputStream  = (*socketInputStream)(nil)
	_ stream.OutputStream = (*socketOutputStream)(nil)
)

// socketInputStream reads from its socket. Closing it only detaches the stream, the socket stays
// open until the socket itself is closed.
type socketInputStream struct {
	s      *Socket
	closed atomic.Bool
}

func (in *socketInputStream) Read(p []byte) (int, error) {
	if in.closed.Load() {
		return 0, stateError("read", ErrStreamClosed)
	}
	return in.s.Read(p)
}

func (in *socketInputStream) ReadByte() (byte, error) {
	return stream.ReadOne(in)
}

func (in *socketInputStream) ReadBounded(buf []byte, offset, length int) (int, error) {
	if err := ioerr.CheckBounds("read", buf, offset, length); err != nil {
		return 0, err
	}
	return in.Read(buf[offset : offset+length])
}

func (in *socketInputStream) Available() (int, error) {
	if in.closed.Load() {
		return 0, stateError("available", ErrStreamClosed)
	}
	return in.s.Available()
}

func (in *socketInputStream) Skip(n int64) (int64, error) {
	return stream.SkipByReading(in, n)
}

func (in *socketInputStream) Close() error {
	in.closed.Store(true)
	return nil
}

// socketOutputStream writes to its socket without buffering, so Flush only checks the state.
type socketOutputStream struct {
	s      *Socket
	closed atomic.Bool
}

func (out *socketOutputStream) Write(p []byte) (int, error) {
	if out.closed.Load() {
		return 0, stateError("write", ErrStreamClosed)
	}
	return out.s.Write(p)
}

func (out *socketOutputStream) WriteByte(c byte) error {
	_, err := out.Write([]byte{c})
	return err
}

func (out *socketOutputStream) WriteBounded(buf []byte, offset, length int) error {
	return stream.WriteBounded(out, buf, offset, length)
}

func (out *socketOutputStream) Flush() error {
	if out.closed.Load() {
		return stateError("flush", ErrStreamClosed)
	}
	_, err := out.s.connected("flush")
	return err
}

func (out *socketOutputStream) Close() error {
	out.closed.Store(true)
	return nil
}
