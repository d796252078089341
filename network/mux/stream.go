package mux

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/libp2p/go-yamux/v4"
	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/monitor"
	"github.com/rambollwong/rainbowsock/core/network"
	"github.com/rambollwong/rainbowsock/core/stream"
)

var _ network.Duplex = (*Stream)(nil)

// Stream is a logical duplex stream of a Session. It behaves like a connected socket: each side
// can be shut down on its own and Close releases both.
type Stream struct {
	monitor.Mutex

	status network.BasicStatus
	sess   *Session
	ys     *yamux.Stream

	in  *stream.ReaderInputStream
	out *stream.WriterOutputStream

	closeOnce sync.Once
}

func newStream(sess *Session, ys *yamux.Stream, dir network.Direction) *Stream {
	st := &Stream{sess: sess, ys: ys}
	st.status.Establish(dir, time.Now())
	st.in = stream.NewReaderInputStream(st, stream.Borrowed)
	st.out = stream.NewWriterOutputStream(st, stream.Borrowed)
	return st
}

// ID returns the yamux stream id.
func (st *Stream) ID() uint32 {
	return st.ys.StreamID()
}

// Read reads from the stream. It returns io.EOF once the peer shut down its write side.
func (st *Stream) Read(p []byte) (int, error) {
	if st.status.IsClosed() {
		return 0, ioerr.Wrap(ioerr.KindState, "read", ErrStreamClosed)
	}
	if st.status.IsInputShutdown() {
		return 0, ioerr.Wrap(ioerr.KindState, "read", ErrInputShutdown)
	}
	n, err := st.ys.Read(p)
	if err != nil {
		return n, st.ioError("read", err)
	}
	return n, nil
}

// Write writes all of p to the stream or fails.
func (st *Stream) Write(p []byte) (int, error) {
	if st.status.IsClosed() {
		return 0, ioerr.Wrap(ioerr.KindState, "write", ErrStreamClosed)
	}
	if st.status.IsOutputShutdown() {
		return 0, ioerr.Wrap(ioerr.KindState, "write", ErrOutputShutdown)
	}
	n, err := st.ys.Write(p)
	if err != nil {
		return n, st.ioError("write", err)
	}
	return n, nil
}

func (st *Stream) ioError(op string, err error) error {
	switch {
	case err == io.EOF:
		return io.EOF
	case st.status.IsClosed():
		return ioerr.Wrap(ioerr.KindState, op, ErrStreamClosed)
	case errors.Is(err, yamux.ErrSessionShutdown):
		return ioerr.Wrap(ioerr.KindState, op, ErrSessionClosed)
	case errors.Is(err, yamux.ErrStreamReset):
		return ioerr.Wrap(ioerr.KindConnection, op, err)
	default:
		return ioerr.Wrap(ioerr.KindIO, op, err)
	}
}

// InputStream returns the stream reading from this logical stream. Closing it leaves the stream open.
func (st *Stream) InputStream() (stream.InputStream, error) {
	if st.status.IsClosed() {
		return nil, ioerr.Wrap(ioerr.KindState, "input stream", ErrStreamClosed)
	}
	return st.in, nil
}

// OutputStream returns the stream writing to this logical stream. Closing it leaves the stream open.
func (st *Stream) OutputStream() (stream.OutputStream, error) {
	if st.status.IsClosed() {
		return nil, ioerr.Wrap(ioerr.KindState, "output stream", ErrStreamClosed)
	}
	return st.out, nil
}

// ShutdownInput stops accepting data from the peer.
func (st *Stream) ShutdownInput() error {
	if st.status.IsClosed() {
		return ioerr.Wrap(ioerr.KindState, "shutdown input", ErrStreamClosed)
	}
	if !st.status.SetInputShutdown() {
		return nil
	}
	if err := st.ys.CloseRead(); err != nil {
		return ioerr.Wrap(ioerr.KindIO, "shutdown input", err)
	}
	return nil
}

// ShutdownOutput half-closes the stream, the peer reads io.EOF.
func (st *Stream) ShutdownOutput() error {
	if st.status.IsClosed() {
		return ioerr.Wrap(ioerr.KindState, "shutdown output", ErrStreamClosed)
	}
	if !st.status.SetOutputShutdown() {
		return nil
	}
	if err := st.ys.CloseWrite(); err != nil {
		return ioerr.Wrap(ioerr.KindIO, "shutdown output", err)
	}
	return nil
}

// Close releases the stream. Later calls do nothing.
func (st *Stream) Close() error {
	var err error
	st.closeOnce.Do(func() {
		st.status.SetClosed()
		st.sess.untrack(st)
		if err = st.ys.Close(); err != nil {
			err = ioerr.Wrap(ioerr.KindIO, "close", err)
		}
	})
	return err
}

func (st *Stream) Direction() network.Direction {
	return st.status.Direction()
}

func (st *Stream) EstablishedTime() time.Time {
	return st.status.EstablishedTime()
}

func (st *Stream) IsClosed() bool {
	return st.status.IsClosed()
}

func (st *Stream) IsInputShutdown() bool {
	return st.status.IsInputShutdown()
}

func (st *Stream) IsOutputShutdown() bool {
	return st.status.IsOutputShutdown()
}
