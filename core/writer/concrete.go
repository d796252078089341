package writer

import (
	"strings"
	"sync/atomic"

	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/stream"
)

var (
	_ ArrayWriter = (*OutputStreamWriter)(nil)
	_ ArrayWriter = (*StringWriter)(nil)
)

// OutputStreamWriter writes characters as bytes to an OutputStream.
type OutputStreamWriter struct {
	out stream.OutputStream
	own stream.Ownership
}

// NewOutputStreamWriter returns a Writer targeting out. With stream.Owned, closing the writer
// closes out.
func NewOutputStreamWriter(out stream.OutputStream, own stream.Ownership) *Writer {
	return New(&OutputStreamWriter{out: out, own: own})
}

func (o *OutputStreamWriter) WriteArrayBounded(buf []byte, offset, length int) error {
	if o.out == nil {
		return ioerr.New(ioerr.KindNull, "write", "output stream is nil")
	}
	if err := ioerr.CheckBounds("write", buf, offset, length); err != nil {
		return err
	}
	if err := o.out.WriteBounded(buf, offset, length); err != nil {
		return ioerr.Wrap(ioerr.KindIO, "write", err)
	}
	return nil
}

// WriteByte writes a single byte directly to the stream.
func (o *OutputStreamWriter) WriteByte(c byte) error {
	if o.out == nil {
		return ioerr.New(ioerr.KindNull, "write", "output stream is nil")
	}
	if err := o.out.WriteByte(c); err != nil {
		return ioerr.Wrap(ioerr.KindIO, "write", err)
	}
	return nil
}

func (o *OutputStreamWriter) Flush() error {
	if o.out == nil {
		return nil
	}
	return o.out.Flush()
}

// Close flushes the stream and closes it when owned.
func (o *OutputStreamWriter) Close() error {
	if o.out == nil {
		return nil
	}
	if o.own == stream.Owned {
		return o.out.Close()
	}
	return o.out.Flush()
}

// StringWriter accumulates written characters in memory.
type StringWriter struct {
	sb     strings.Builder
	closed atomic.Bool
}

// NewStringWriter returns a Writer collecting into a StringWriter, and the StringWriter itself.
func NewStringWriter() (*Writer, *StringWriter) {
	sw := &StringWriter{}
	return New(sw), sw
}

func (s *StringWriter) WriteArrayBounded(buf []byte, offset, length int) error {
	if err := ioerr.CheckBounds("write", buf, offset, length); err != nil {
		return err
	}
	if s.closed.Load() {
		return ioerr.New(ioerr.KindState, "write", "writer closed")
	}
	s.sb.Write(buf[offset : offset+length])
	return nil
}

func (s *StringWriter) String() string {
	return s.sb.String()
}

func (s *StringWriter) Close() error {
	s.closed.Store(true)
	return nil
}
