package writer

import (
	"errors"
	"testing"

	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/stream"
	"github.com/stretchr/testify/require"
)

// primitiveOnly implements nothing but the mandatory primitive.
type primitiveOnly struct {
	calls int
	data  []byte
	fail  error
}

func (p *primitiveOnly) WriteArrayBounded(buf []byte, offset, length int) error {
	if err := ioerr.CheckBounds("write", buf, offset, length); err != nil {
		return err
	}
	p.calls++
	if p.fail != nil {
		return ioerr.Wrap(ioerr.KindIO, "write", p.fail)
	}
	p.data = append(p.data, buf[offset:offset+length]...)
	return nil
}

func TestOverloadsFunnelIntoPrimitive(t *testing.T) {
	p := &primitiveOnly{}
	w := New(p)

	require.NoError(t, w.WriteChar('a'))
	require.NoError(t, w.WriteArray([]byte("bc")))
	require.NoError(t, w.WriteBounded([]byte("xdex"), 1, 2))
	require.NoError(t, w.WriteString("fg"))
	require.NoError(t, w.WriteStringBounded("xhix", 1, 2))

	_, err := w.Append('j')
	require.NoError(t, err)
	_, err = w.AppendSequence(Sequence("kl"))
	require.NoError(t, err)
	_, err = w.AppendSequenceRange(Sequence("xmnx"), 1, 3)
	require.NoError(t, err)

	require.Equal(t, "abcdefghijklmn", string(p.data))
	require.Equal(t, 8, p.calls)
}

func TestAppendChains(t *testing.T) {
	w, sw := NewStringWriter()
	next, err := w.Append('a')
	require.NoError(t, err)
	require.Same(t, w, next)
	next, err = next.AppendSequence(nil)
	require.NoError(t, err)
	_, err = next.AppendSequenceRange(nil, 1, 3)
	require.NoError(t, err)
	require.Equal(t, "anullul", sw.String())
}

func TestBoundsAndNull(t *testing.T) {
	p := &primitiveOnly{}
	w := New(p)

	require.ErrorIs(t, w.WriteStringBounded("abc", 2, 2), ioerr.ErrBounds)
	require.ErrorIs(t, w.WriteStringBounded("abc", -1, 1), ioerr.ErrBounds)
	require.ErrorIs(t, w.WriteBounded([]byte("abc"), 1, 3), ioerr.ErrBounds)
	require.ErrorIs(t, w.WriteBounded(nil, 0, 0), ioerr.ErrNull)
	require.ErrorIs(t, w.WriteArray(nil), ioerr.ErrNull)
	_, err := w.AppendSequenceRange(Sequence("abc"), 2, 1)
	require.ErrorIs(t, err, ioerr.ErrBounds)
	require.Zero(t, p.calls)

	require.NoError(t, w.WriteArray([]byte{}))
	require.NoError(t, w.WriteString(""))
	require.Zero(t, p.calls)
	require.Empty(t, p.data)
}

func TestTransferFailureIsIOKind(t *testing.T) {
	cause := errors.New("disk full")
	w := New(&primitiveOnly{fail: cause})
	err := w.WriteString("abc")
	require.ErrorIs(t, err, ioerr.ErrIO)
	require.ErrorIs(t, err, cause)

	_, err = w.Append('x')
	require.ErrorIs(t, err, ioerr.ErrIO)
}

func TestOutputStreamWriter(t *testing.T) {
	sink := stream.NewByteArrayOutputStream()
	buffered := stream.NewBufferedOutputStream(sink, 0, stream.Borrowed)
	w := NewOutputStreamWriter(buffered, stream.Owned)

	require.NoError(t, w.WriteString("hello"))
	require.NoError(t, w.WriteChar(' '))
	require.NoError(t, w.WriteStringBounded("a world!", 2, 5))
	require.Zero(t, sink.Size())

	require.NoError(t, w.Flush())
	require.Equal(t, "hello world", sink.String())

	require.NoError(t, w.Close())
	err := w.WriteChar('x')
	require.ErrorIs(t, err, ioerr.ErrIO)
	require.ErrorIs(t, err, ioerr.ErrState)
	require.ErrorIs(t, w.Flush(), ioerr.ErrState)
	require.Equal(t, "hello world", sink.String())

	direct := NewOutputStreamWriter(sink, stream.Borrowed)
	err = direct.WriteChar('x')
	require.ErrorIs(t, err, ioerr.ErrIO)
	require.ErrorIs(t, err, ioerr.ErrState)
}

func TestWriterIsMonitor(t *testing.T) {
	w, _ := NewStringWriter()
	require.Error(t, w.Notify())
	w.Lock()
	require.NoError(t, w.NotifyAll())
	require.NoError(t, w.Unlock())
}
