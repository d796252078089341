package stream

import "sync/atomic"

// CountingInputStream counts the bytes read through it. Transfers are still done by the inner stream.
type CountingInputStream struct {
	*FilterInputStream

	count uint64
}

// NewCountingInputStream wraps in.
func NewCountingInputStream(in InputStream, own Ownership) *CountingInputStream {
	return &CountingInputStream{FilterInputStream: NewFilterInputStream(in, own)}
}

func (c *CountingInputStream) Read(p []byte) (int, error) {
	n, err := c.FilterInputStream.Read(p)
	atomic.AddUint64(&c.count, uint64(n))
	return n, err
}

func (c *CountingInputStream) ReadByte() (byte, error) {
	b, err := c.FilterInputStream.ReadByte()
	if err == nil {
		atomic.AddUint64(&c.count, 1)
	}
	return b, err
}

func (c *CountingInputStream) ReadBounded(buf []byte, offset, length int) (int, error) {
	n, err := c.FilterInputStream.ReadBounded(buf, offset, length)
	atomic.AddUint64(&c.count, uint64(n))
	return n, err
}

// Count returns the number of bytes read so far. Skipped bytes are not counted.
func (c *CountingInputStream) Count() uint64 {
	return atomic.LoadUint64(&c.count)
}

// CountingOutputStream counts the bytes written through it.
type CountingOutputStream struct {
	*FilterOutputStream

	count uint64
}

// NewCountingOutputStream wraps out.
func NewCountingOutputStream(out OutputStream, own Ownership) *CountingOutputStream {
	return &CountingOutputStream{FilterOutputStream: NewFilterOutputStream(out, own)}
}

func (c *CountingOutputStream) Write(p []byte) (int, error) {
	n, err := c.FilterOutputStream.Write(p)
	atomic.AddUint64(&c.count, uint64(n))
	return n, err
}

func (c *CountingOutputStream) WriteByte(b byte) error {
	err := c.FilterOutputStream.WriteByte(b)
	if err == nil {
		atomic.AddUint64(&c.count, 1)
	}
	return err
}

func (c *CountingOutputStream) WriteBounded(buf []byte, offset, length int) error {
	err := c.FilterOutputStream.WriteBounded(buf, offset, length)
	if err == nil {
		atomic.AddUint64(&c.count, uint64(length))
	}
	return err
}

// Count returns the number of bytes written so far.
func (c *CountingOutputStream) Count() uint64 {
	return atomic.LoadUint64(&c.count)
}
