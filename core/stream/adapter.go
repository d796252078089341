package stream

import (
	"io"
	"sync/atomic"
)

var (
	_ InputStream  = (*ReaderInputStream)(nil)
	_ OutputStream = (*WriterOutputStream)(nil)
)

// ReaderInputStream adapts an io.Reader to InputStream.
//
// When the reader is an io.Seeker, Skip seeks instead of reading and discarding.
// When it reports its unread length (bytes.Reader, strings.Reader) or buffered count
// (bufio.Reader), Available uses it.
type ReaderInputStream struct {
	r      io.Reader
	own    Ownership
	closed atomic.Bool
}

// NewReaderInputStream adapts r. With Owned, Close also closes r if it is an io.Closer.
func NewReaderInputStream(r io.Reader, own Ownership) *ReaderInputStream {
	return &ReaderInputStream{r: r, own: own}
}

func (s *ReaderInputStream) Read(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, closedError("read")
	}
	return s.r.Read(p)
}

func (s *ReaderInputStream) ReadByte() (byte, error) {
	if s.closed.Load() {
		return 0, closedError("read")
	}
	if br, ok := s.r.(io.ByteReader); ok {
		return br.ReadByte()
	}
	return ReadOne(s.r)
}

func (s *ReaderInputStream) ReadBounded(buf []byte, offset, length int) (int, error) {
	return ReadBounded(s, buf, offset, length)
}

func (s *ReaderInputStream) Available() (int, error) {
	if s.closed.Load() {
		return 0, closedError("available")
	}
	switch r := s.r.(type) {
	case interface{ Len() int }:
		return r.Len(), nil
	case interface{ Buffered() int }:
		return r.Buffered(), nil
	}
	return 0, nil
}

// Skip seeks forward on a seekable reader, never past its end, and falls back to
// reading and discarding otherwise.
func (s *ReaderInputStream) Skip(n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	if s.closed.Load() {
		return 0, closedError("skip")
	}
	seeker, ok := s.r.(io.Seeker)
	if !ok {
		return SkipByReading(s.r, n)
	}
	cur, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return SkipByReading(s.r, n)
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	target := cur + n
	if target > end || target < cur {
		target = end
	}
	if _, err = seeker.Seek(target, io.SeekStart); err != nil {
		return 0, err
	}
	return target - cur, nil
}

func (s *ReaderInputStream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c, ok := s.r.(io.Closer); ok && s.own == Owned {
		return c.Close()
	}
	return nil
}

// WriterOutputStream adapts an io.Writer to OutputStream. Flush forwards to the writer when it
// has a Flush() error method.
type WriterOutputStream struct {
	w      io.Writer
	own    Ownership
	closed atomic.Bool
}

// NewWriterOutputStream adapts w. With Owned, Close also closes w if it is an io.Closer.
func NewWriterOutputStream(w io.Writer, own Ownership) *WriterOutputStream {
	return &WriterOutputStream{w: w, own: own}
}

func (s *WriterOutputStream) Write(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, closedError("write")
	}
	n, err := s.w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

func (s *WriterOutputStream) WriteByte(c byte) error {
	_, err := s.Write([]byte{c})
	return err
}

func (s *WriterOutputStream) WriteBounded(buf []byte, offset, length int) error {
	return WriteBounded(s, buf, offset, length)
}

func (s *WriterOutputStream) Flush() error {
	if s.closed.Load() {
		return closedError("flush")
	}
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (s *WriterOutputStream) Close() error {
	if s.closed.Load() {
		return nil
	}
	flushErr := s.Flush()
	s.closed.Store(true)
	if c, ok := s.w.(io.Closer); ok && s.own == Owned {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return flushErr
}
