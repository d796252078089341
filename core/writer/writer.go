// Package writer provides character writers built on a single bounded-write primitive.
//
// A concrete writer only implements ArrayWriter. Wrapping it with New yields every convenience
// overload (single character, whole buffer, bounded buffer, string, bounded string and the append
// methods). A concrete writer may additionally implement io.ByteWriter or io.StringWriter to make
// the matching overloads cheaper; the observable result is the same.
package writer

import (
	"fmt"
	"io"

	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/monitor"
)

// ArrayWriter is the primitive every writer must implement.
type ArrayWriter interface {
	// WriteArrayBounded writes length bytes of buf starting at offset. It fails with a Null kind
	// for a nil buf, a Bounds kind when offset+length exceeds len(buf) and an IO kind when the
	// transfer fails.
	WriteArrayBounded(buf []byte, offset, length int) error
}

// Flusher is implemented by writers that buffer.
type Flusher interface {
	Flush() error
}

var _ monitor.Monitor = (*Writer)(nil)

// Writer provides the character writing overloads on top of an ArrayWriter.
type Writer struct {
	monitor.Mutex

	w ArrayWriter
}

// New returns a Writer funneling every overload into w.
func New(w ArrayWriter) *Writer {
	return &Writer{w: w}
}

// Target returns the primitive writer.
func (w *Writer) Target() ArrayWriter {
	return w.w
}

// WriteChar writes a single character.
func (w *Writer) WriteChar(c byte) error {
	if bw, ok := w.w.(io.ByteWriter); ok {
		return bw.WriteByte(c)
	}
	return w.w.WriteArrayBounded([]byte{c}, 0, 1)
}

// WriteArray writes the whole buffer. A nil buffer fails with a Null kind, an empty one writes nothing.
func (w *Writer) WriteArray(buf []byte) error {
	if buf == nil {
		return ioerr.New(ioerr.KindNull, "write", "buffer is nil")
	}
	if len(buf) == 0 {
		return nil
	}
	return w.w.WriteArrayBounded(buf, 0, len(buf))
}

// WriteBounded writes length bytes of buf starting at offset.
func (w *Writer) WriteBounded(buf []byte, offset, length int) error {
	if err := ioerr.CheckBounds("write", buf, offset, length); err != nil {
		return err
	}
	return w.w.WriteArrayBounded(buf, offset, length)
}

// WriteString writes the whole string.
func (w *Writer) WriteString(s string) error {
	if len(s) == 0 {
		return nil
	}
	if sw, ok := w.w.(io.StringWriter); ok {
		_, err := sw.WriteString(s)
		return err
	}
	return w.w.WriteArrayBounded([]byte(s), 0, len(s))
}

// WriteStringBounded writes length bytes of s starting at offset. offset+length beyond len(s)
// fails with a Bounds kind and writes nothing.
func (w *Writer) WriteStringBounded(s string, offset, length int) error {
	if err := ioerr.CheckRange("write", len(s), offset, length); err != nil {
		return err
	}
	return w.WriteString(s[offset : offset+length])
}

// Append writes c and returns the writer for chaining.
func (w *Writer) Append(c byte) (*Writer, error) {
	return w, w.WriteChar(c)
}

// AppendSequence writes the string form of seq. A nil seq writes "null".
func (w *Writer) AppendSequence(seq fmt.Stringer) (*Writer, error) {
	return w, w.WriteString(sequenceString(seq))
}

// AppendSequenceRange writes the characters of seq in [start, end). A nil seq is treated as "null".
func (w *Writer) AppendSequenceRange(seq fmt.Stringer, start, end int) (*Writer, error) {
	s := sequenceString(seq)
	if start < 0 || end < start || end > len(s) {
		return w, ioerr.Newf(ioerr.KindBounds, "append", "range [%d, %d) exceeds length %d", start, end, len(s))
	}
	return w, w.WriteString(s[start:end])
}

// Flush flushes the target when it buffers.
func (w *Writer) Flush() error {
	if f, ok := w.w.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes the target when it can be closed.
func (w *Writer) Close() error {
	flushErr := w.Flush()
	if c, ok := w.w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return flushErr
}

// Sequence is a string usable with the append methods.
type Sequence string

func (s Sequence) String() string {
	return string(s)
}

func sequenceString(seq fmt.Stringer) string {
	if seq == nil {
		return "null"
	}
	return seq.String()
}
