package stream

import (
	"bytes"
	"io"
	"sync/atomic"

	"github.com/rambollwong/rainbowsock/core/ioerr"
)

var (
	_ InputStream  = (*ByteArrayInputStream)(nil)
	_ OutputStream = (*ByteArrayOutputStream)(nil)
)

// ByteArrayInputStream reads from an in-memory byte slice. Skip moves the read position directly.
type ByteArrayInputStream struct {
	data   []byte
	pos    int
	closed atomic.Bool
}

// NewByteArrayInputStream returns a stream reading data. The slice is not copied.
func NewByteArrayInputStream(data []byte) *ByteArrayInputStream {
	return &ByteArrayInputStream{data: data}
}

func (b *ByteArrayInputStream) Read(p []byte) (int, error) {
	if b.closed.Load() {
		return 0, closedError("read")
	}
	if len(p) == 0 {
		return 0, nil
	}
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n, nil
}

func (b *ByteArrayInputStream) ReadByte() (byte, error) {
	if b.closed.Load() {
		return 0, closedError("read")
	}
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	c := b.data[b.pos]
	b.pos++
	return c, nil
}

func (b *ByteArrayInputStream) ReadBounded(buf []byte, offset, length int) (int, error) {
	return ReadBounded(b, buf, offset, length)
}

func (b *ByteArrayInputStream) Available() (int, error) {
	if b.closed.Load() {
		return 0, closedError("available")
	}
	return len(b.data) - b.pos, nil
}

// Skip advances the read position by up to n bytes without copying.
func (b *ByteArrayInputStream) Skip(n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	if b.closed.Load() {
		return 0, closedError("skip")
	}
	remaining := int64(len(b.data) - b.pos)
	if n > remaining {
		n = remaining
	}
	b.pos += int(n)
	return n, nil
}

// Reset moves the read position back to the beginning.
func (b *ByteArrayInputStream) Reset() {
	b.pos = 0
}

func (b *ByteArrayInputStream) Close() error {
	b.closed.Store(true)
	return nil
}

// ByteArrayOutputStream collects written bytes in memory.
type ByteArrayOutputStream struct {
	buf    bytes.Buffer
	closed atomic.Bool
}

// NewByteArrayOutputStream returns an empty stream.
func NewByteArrayOutputStream() *ByteArrayOutputStream {
	return &ByteArrayOutputStream{}
}

func (b *ByteArrayOutputStream) Write(p []byte) (int, error) {
	if b.closed.Load() {
		return 0, closedError("write")
	}
	return b.buf.Write(p)
}

func (b *ByteArrayOutputStream) WriteByte(c byte) error {
	if b.closed.Load() {
		return closedError("write")
	}
	return b.buf.WriteByte(c)
}

func (b *ByteArrayOutputStream) WriteBounded(buf []byte, offset, length int) error {
	return WriteBounded(b, buf, offset, length)
}

func (b *ByteArrayOutputStream) Flush() error {
	if b.closed.Load() {
		return closedError("flush")
	}
	return nil
}

func (b *ByteArrayOutputStream) Close() error {
	b.closed.Store(true)
	return nil
}

// Bytes returns the bytes written so far.
func (b *ByteArrayOutputStream) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *ByteArrayOutputStream) String() string {
	return b.buf.String()
}

// Size returns the number of bytes written so far.
func (b *ByteArrayOutputStream) Size() int {
	return b.buf.Len()
}

// Reset discards the collected bytes. It fails once the stream is closed.
func (b *ByteArrayOutputStream) Reset() error {
	if b.closed.Load() {
		return ioerr.New(ioerr.KindState, "reset", msgClosed)
	}
	b.buf.Reset()
	return nil
}
