// Package stream defines byte input and output streams and the decorators that compose behavior
// around them without modifying the wrapped stream.
package stream

import (
	"io"

	"github.com/rambollwong/rainbowsock/core/ioerr"
)

const defaultBatchSize = 4 << 10 // 4KB

// InputStream is a sequential source of bytes.
//
// Read returns the number of bytes transferred or io.EOF once no further data will ever be
// produced. Partial reads are normal.
type InputStream interface {
	io.Reader
	io.ByteReader
	io.Closer

	// ReadBounded reads up to length bytes into buf starting at offset.
	// offset+length must not exceed len(buf) and buf must not be nil.
	ReadBounded(buf []byte, offset, length int) (int, error)

	// Available returns the number of bytes that can be read without blocking. 0 is always valid.
	Available() (int, error)

	// Skip discards up to n bytes and returns how many were discarded. n <= 0 skips nothing.
	Skip(n int64) (int64, error)
}

// OutputStream is a sequential sink of bytes. Write transfers all bytes of p or fails.
type OutputStream interface {
	io.Writer
	io.ByteWriter
	io.Closer

	// WriteBounded writes length bytes of buf starting at offset.
	WriteBounded(buf []byte, offset, length int) error

	// Flush forces any buffered bytes to the underlying medium.
	Flush() error
}

// Ownership tells a wrapper whether it is responsible for releasing what it wraps.
type Ownership uint8

const (
	// Borrowed means the wrapped resource is managed elsewhere and must outlive the wrapper's calls.
	Borrowed Ownership = iota
	// Owned means the wrapper releases the wrapped resource when it is released itself.
	Owned
)

func (o Ownership) String() string {
	if o == Owned {
		return "Owned"
	}
	return "Borrowed"
}

// ReadBounded validates the triple and reads into buf[offset:offset+length] from r.
func ReadBounded(r io.Reader, buf []byte, offset, length int) (int, error) {
	if err := ioerr.CheckBounds("read", buf, offset, length); err != nil {
		return 0, err
	}
	if length == 0 {
		return 0, nil
	}
	return r.Read(buf[offset : offset+length])
}

// WriteBounded validates the triple and writes buf[offset:offset+length] to w.
func WriteBounded(w io.Writer, buf []byte, offset, length int) error {
	if err := ioerr.CheckBounds("write", buf, offset, length); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	_, err := w.Write(buf[offset : offset+length])
	return err
}

// ReadOne reads a single byte from r, retrying reads that transfer nothing.
func ReadOne(r io.Reader) (byte, error) {
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n == 1 {
			return b[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// SkipByReading is the generic Skip fallback: it reads and discards up to n bytes from r.
// Reaching the end of the stream is not an error, the count skipped so far is returned.
// Streams over a seekable medium should seek instead.
func SkipByReading(r io.Reader, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	batchSize := int64(defaultBatchSize)
	if n < batchSize {
		batchSize = n
	}
	buf := make([]byte, batchSize)
	var skipped int64
	for skipped < n {
		want := n - skipped
		if want > batchSize {
			want = batchSize
		}
		c, err := r.Read(buf[:want])
		skipped += int64(c)
		if err != nil {
			if err == io.EOF {
				return skipped, nil
			}
			return skipped, err
		}
	}
	return skipped, nil
}

const (
	msgClosed   = "stream closed"
	msgNilInner = "wrapped stream is nil"
)

func closedError(op string) error {
	return ioerr.New(ioerr.KindState, op, msgClosed)
}
