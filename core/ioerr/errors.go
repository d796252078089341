// Package ioerr defines the failure kinds shared by sockets, streams, writers and monitors.
//
// Every failure returned by this module is an *Error carrying a Kind. Callers branch on the kind
// with errors.Is against the package sentinels (for example errors.Is(err, ioerr.ErrTimeout)) or
// with KindOf. Timeout and Refused are sub-kinds of Connection, so errors.Is(err, ErrConnection)
// also holds for them.
package ioerr

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a failure.
type Kind uint8

const (
	// KindIO is a generic transfer failure at the medium level.
	KindIO Kind = iota + 1
	// KindConnection is a connect/bind/listen/accept failure.
	KindConnection
	// KindTimeout is a connection failure caused by an elapsed timeout.
	KindTimeout
	// KindRefused is a connection failure caused by a refused or unreachable peer.
	KindRefused
	// KindArgument is malformed input such as a bad host, port or option id.
	KindArgument
	// KindBounds is an offset/length pair exceeding the buffer capacity.
	KindBounds
	// KindNull is a required buffer or reference that is absent.
	KindNull
	// KindUnsupported is an operation the particular implementation does not support.
	KindUnsupported
	// KindState is an operation attempted on a closed resource or in an invalid mode.
	KindState
)

var (
	ErrIO          = errors.New("i/o failure")
	ErrConnection  = errors.New("connection failure")
	ErrTimeout     = errors.New("connection timed out")
	ErrRefused     = errors.New("connection refused or unreachable")
	ErrArgument    = errors.New("illegal argument")
	ErrBounds      = errors.New("index out of bounds")
	ErrNull        = errors.New("nil reference")
	ErrUnsupported = errors.New("unsupported operation")
	ErrState       = errors.New("illegal state")

	sentinels = map[Kind]error{
		KindIO:          ErrIO,
		KindConnection:  ErrConnection,
		KindTimeout:     ErrTimeout,
		KindRefused:     ErrRefused,
		KindArgument:    ErrArgument,
		KindBounds:      ErrBounds,
		KindNull:        ErrNull,
		KindUnsupported: ErrUnsupported,
		KindState:       ErrState,
	}
)

// Sentinel returns the sentinel error matching the kind.
func (k Kind) Sentinel() error {
	if s, ok := sentinels[k]; ok {
		return s
	}
	return ErrIO
}

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IO"
	case KindConnection:
		return "Connection"
	case KindTimeout:
		return "Timeout"
	case KindRefused:
		return "Refused"
	case KindArgument:
		return "Argument"
	case KindBounds:
		return "Bounds"
	case KindNull:
		return "Null"
	case KindUnsupported:
		return "Unsupported"
	case KindState:
		return "State"
	default:
		return "[unrecognized]"
	}
}

// IsConnection reports whether the kind is Connection or one of its sub-kinds.
func (k Kind) IsConnection() bool {
	return k == KindConnection || k == KindTimeout || k == KindRefused
}

// Error is a typed failure. Op names the operation that failed, Err is the optional cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.Sentinel().Error())
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error kind. Sub-kinds of Connection also match ErrConnection.
func (e *Error) Is(target error) bool {
	if target == e.Kind.Sentinel() {
		return true
	}
	return target == ErrConnection && e.Kind.IsConnection()
}

// Format supports %+v by printing the stack trace recorded for the cause.
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') && e.Err != nil {
		if e.Op != "" {
			_, _ = fmt.Fprintf(s, "%s: ", e.Op)
		}
		_, _ = fmt.Fprintf(s, "%s: %+v", e.Kind.Sentinel(), e.Err)
		return
	}
	_, _ = fmt.Fprint(s, e.Error())
}

// New returns an error of the given kind with a message and a stack trace.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: pkgerrors.New(msg)}
}

// Newf is like New with a formatted message.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: pkgerrors.Errorf(format, args...)}
}

// Wrap wraps err with a kind. It returns nil when err is nil. An err that already is an *Error of
// the same kind is returned unchanged.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Kind == kind {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: pkgerrors.WithStack(err)}
}

// KindOf returns the kind of the outermost *Error in the chain of err.
// Foreign errors are reported as KindIO and nil as zero.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIO
}

// IsTimeout reports whether err is a timeout failure.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsState reports whether err is an invalid state failure.
func IsState(err error) bool {
	return errors.Is(err, ErrState)
}

// CheckBounds validates a buffer/offset/length triple where the capacity is len(buf).
// A nil buf fails with KindNull; negative values or offset+length beyond len(buf) fail with KindBounds.
func CheckBounds(op string, buf []byte, offset, length int) error {
	if buf == nil {
		return New(KindNull, op, "buffer is nil")
	}
	return CheckRange(op, len(buf), offset, length)
}

// CheckRange validates that [offset, offset+length) lies within a sequence of the given size.
func CheckRange(op string, size, offset, length int) error {
	if offset < 0 || length < 0 || offset > size || length > size-offset {
		return Newf(KindBounds, op, "offset %d + length %d exceeds size %d", offset, length, size)
	}
	return nil
}
