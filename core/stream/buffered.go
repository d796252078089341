package stream

import (
	"bufio"
	"io"
	"sync/atomic"

	"github.com/rambollwong/rainbowsock/core/ioerr"
)

// BufferedInputStream reads ahead from the inner stream into a buffer.
type BufferedInputStream struct {
	*FilterInputStream

	br     *bufio.Reader
	closed atomic.Bool
}

// NewBufferedInputStream wraps in with a buffer of size bytes. size <= 0 selects a 4KB buffer.
func NewBufferedInputStream(in InputStream, size int, own Ownership) *BufferedInputStream {
	if size <= 0 {
		size = defaultBatchSize
	}
	f := NewFilterInputStream(in, own)
	return &BufferedInputStream{
		FilterInputStream: f,
		br:                bufio.NewReaderSize(innerReader{f}, size),
	}
}

func (b *BufferedInputStream) Read(p []byte) (int, error) {
	if b.closed.Load() {
		return 0, closedError("read")
	}
	return b.br.Read(p)
}

func (b *BufferedInputStream) ReadByte() (byte, error) {
	if b.closed.Load() {
		return 0, closedError("read")
	}
	return b.br.ReadByte()
}

func (b *BufferedInputStream) ReadBounded(buf []byte, offset, length int) (int, error) {
	if err := ioerr.CheckBounds("read", buf, offset, length); err != nil {
		return 0, err
	}
	if b.closed.Load() {
		return 0, closedError("read")
	}
	return ReadBounded(b.br, buf, offset, length)
}

// Available returns the buffered byte count plus what the inner stream reports.
func (b *BufferedInputStream) Available() (int, error) {
	if b.closed.Load() {
		return 0, closedError("available")
	}
	n, err := b.FilterInputStream.Available()
	if err != nil {
		return 0, err
	}
	return b.br.Buffered() + n, nil
}

// Skip discards buffered bytes first and forwards the rest to the inner stream.
func (b *BufferedInputStream) Skip(n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	if b.closed.Load() {
		return 0, closedError("skip")
	}
	buffered := int64(b.br.Buffered())
	if buffered >= n {
		d, err := b.br.Discard(int(n))
		return int64(d), err
	}
	d, err := b.br.Discard(int(buffered))
	if err != nil {
		return int64(d), err
	}
	rest, err := b.FilterInputStream.Skip(n - int64(d))
	return int64(d) + rest, err
}

// Close drops the buffer and closes the inner stream. Later calls do nothing.
func (b *BufferedInputStream) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	return b.FilterInputStream.Close()
}

// BufferedOutputStream collects writes in a buffer and hands them to the inner stream in batches.
type BufferedOutputStream struct {
	*FilterOutputStream

	bw     *bufio.Writer
	closed atomic.Bool
}

// NewBufferedOutputStream wraps out with a buffer of size bytes. size <= 0 selects a 4KB buffer.
func NewBufferedOutputStream(out OutputStream, size int, own Ownership) *BufferedOutputStream {
	if size <= 0 {
		size = defaultBatchSize
	}
	f := NewFilterOutputStream(out, own)
	return &BufferedOutputStream{
		FilterOutputStream: f,
		bw:                 bufio.NewWriterSize(innerWriter{f}, size),
	}
}

func (b *BufferedOutputStream) Write(p []byte) (int, error) {
	if b.closed.Load() {
		return 0, closedError("write")
	}
	return b.bw.Write(p)
}

func (b *BufferedOutputStream) WriteByte(c byte) error {
	if b.closed.Load() {
		return closedError("write")
	}
	return b.bw.WriteByte(c)
}

func (b *BufferedOutputStream) WriteBounded(buf []byte, offset, length int) error {
	if err := ioerr.CheckBounds("write", buf, offset, length); err != nil {
		return err
	}
	if b.closed.Load() {
		return closedError("write")
	}
	return WriteBounded(b.bw, buf, offset, length)
}

// Flush writes the buffered bytes to the inner stream and flushes it.
func (b *BufferedOutputStream) Flush() error {
	if b.closed.Load() {
		return closedError("flush")
	}
	if err := b.bw.Flush(); err != nil {
		return err
	}
	return b.FilterOutputStream.Flush()
}

// Close flushes the buffer and closes the inner stream. Later calls do nothing.
func (b *BufferedOutputStream) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	flushErr := b.bw.Flush()
	if err := b.FilterOutputStream.Close(); err != nil {
		return err
	}
	return flushErr
}

// innerReader exposes only the forwarding Read of a filter, so bufio never sees the outer type.
type innerReader struct {
	f *FilterInputStream
}

func (r innerReader) Read(p []byte) (int, error) {
	return r.f.Read(p)
}

type innerWriter struct {
	f *FilterOutputStream
}

func (w innerWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

var (
	_ io.Reader = innerReader{}
	_ io.Writer = innerWriter{}
)
