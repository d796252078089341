package stream

import (
	"sync"

	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/monitor"
	"github.com/rambollwong/rainbowsock/log"
)

var (
	_ InputStream     = (*FilterInputStream)(nil)
	_ OutputStream    = (*FilterOutputStream)(nil)
	_ monitor.Monitor = (*FilterInputStream)(nil)
	_ monitor.Monitor = (*FilterOutputStream)(nil)
)

// FilterInputStream wraps another InputStream and forwards every operation to it.
// Decorators embed it and override only the methods whose behavior they change.
//
// A FilterInputStream is itself a Monitor, independent of whatever lock the inner stream has.
type FilterInputStream struct {
	monitor.Mutex

	in  InputStream
	own Ownership

	releaseOnce sync.Once
}

// NewFilterInputStream wraps in. With Owned, Release closes in.
func NewFilterInputStream(in InputStream, own Ownership) *FilterInputStream {
	return &FilterInputStream{in: in, own: own}
}

// Inner returns the wrapped stream.
func (f *FilterInputStream) Inner() InputStream {
	return f.in
}

// Ownership returns whether the decorator owns the wrapped stream.
func (f *FilterInputStream) Ownership() Ownership {
	return f.own
}

func (f *FilterInputStream) inner(op string) (InputStream, error) {
	if f.in == nil {
		return nil, ioerr.New(ioerr.KindNull, op, msgNilInner)
	}
	return f.in, nil
}

func (f *FilterInputStream) Read(p []byte) (int, error) {
	in, err := f.inner("read")
	if err != nil {
		return 0, err
	}
	return in.Read(p)
}

func (f *FilterInputStream) ReadByte() (byte, error) {
	in, err := f.inner("read")
	if err != nil {
		return 0, err
	}
	return in.ReadByte()
}

func (f *FilterInputStream) ReadBounded(buf []byte, offset, length int) (int, error) {
	in, err := f.inner("read")
	if err != nil {
		return 0, err
	}
	return in.ReadBounded(buf, offset, length)
}

func (f *FilterInputStream) Available() (int, error) {
	in, err := f.inner("available")
	if err != nil {
		return 0, err
	}
	return in.Available()
}

// Skip forwards to the inner stream. n <= 0 skips nothing and performs no reads.
func (f *FilterInputStream) Skip(n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	in, err := f.inner("skip")
	if err != nil {
		return 0, err
	}
	return in.Skip(n)
}

// Close closes the inner stream. An Owned inner stream is closed at most once across Close and
// Release.
func (f *FilterInputStream) Close() error {
	in, err := f.inner("close")
	if err != nil {
		return err
	}
	if f.own != Owned {
		return in.Close()
	}
	f.releaseOnce.Do(func() {
		err = in.Close()
	})
	return err
}

// Release tears the decorator down. An Owned inner stream is closed exactly once, a Borrowed one
// is left untouched. Release never fails: errors and panics raised while closing are logged.
func (f *FilterInputStream) Release() {
	f.releaseOnce.Do(func() {
		if f.own == Owned && f.in != nil {
			releaseQuietly("FilterInputStream", f.in.Close)
		}
	})
}

// FilterOutputStream wraps another OutputStream and forwards every operation to it.
type FilterOutputStream struct {
	monitor.Mutex

	out OutputStream
	own Ownership

	releaseOnce sync.Once
}

// NewFilterOutputStream wraps out. With Owned, Release closes out.
func NewFilterOutputStream(out OutputStream, own Ownership) *FilterOutputStream {
	return &FilterOutputStream{out: out, own: own}
}

// Inner returns the wrapped stream.
func (f *FilterOutputStream) Inner() OutputStream {
	return f.out
}

// Ownership returns whether the decorator owns the wrapped stream.
func (f *FilterOutputStream) Ownership() Ownership {
	return f.own
}

func (f *FilterOutputStream) inner(op string) (OutputStream, error) {
	if f.out == nil {
		return nil, ioerr.New(ioerr.KindNull, op, msgNilInner)
	}
	return f.out, nil
}

func (f *FilterOutputStream) Write(p []byte) (int, error) {
	out, err := f.inner("write")
	if err != nil {
		return 0, err
	}
	return out.Write(p)
}

func (f *FilterOutputStream) WriteByte(c byte) error {
	out, err := f.inner("write")
	if err != nil {
		return err
	}
	return out.WriteByte(c)
}

func (f *FilterOutputStream) WriteBounded(buf []byte, offset, length int) error {
	out, err := f.inner("write")
	if err != nil {
		return err
	}
	return out.WriteBounded(buf, offset, length)
}

func (f *FilterOutputStream) Flush() error {
	out, err := f.inner("flush")
	if err != nil {
		return err
	}
	return out.Flush()
}

// Close flushes and closes the inner stream. An Owned inner stream is closed at most once across
// Close and Release.
func (f *FilterOutputStream) Close() error {
	out, err := f.inner("close")
	if err != nil {
		return err
	}
	if f.own != Owned {
		flushErr := out.Flush()
		if err = out.Close(); err != nil {
			return err
		}
		return flushErr
	}
	f.releaseOnce.Do(func() {
		flushErr := out.Flush()
		if err = out.Close(); err == nil {
			err = flushErr
		}
	})
	return err
}

// Release tears the decorator down, closing an Owned inner stream exactly once.
// It never fails.
func (f *FilterOutputStream) Release() {
	f.releaseOnce.Do(func() {
		if f.own == Owned && f.out != nil {
			releaseQuietly("FilterOutputStream", f.out.Close)
		}
	})
}

// releaseQuietly runs closeFn, logging instead of propagating any error or panic.
func releaseQuietly(what string, closeFn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Component("STREAM").Debug().
				Msg("panic while releasing wrapped stream, suppressed.").
				Str("decorator", what).
				Any("panic", r).
				Done()
		}
	}()
	if err := closeFn(); err != nil {
		log.Component("STREAM").Debug().
			Msg("failed to release wrapped stream, suppressed.").
			Str("decorator", what).
			Err(err).
			Done()
	}
}
