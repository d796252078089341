package network

import (
	"io"
	"time"

	"github.com/rambollwong/rainbowsock/core/monitor"
	"github.com/rambollwong/rainbowsock/core/stream"
)

// Duplex is a connected, bidirectional endpoint exposing a companion stream pair.
// Sockets and multiplexed logical streams both implement it.
type Duplex interface {
	io.Closer
	monitor.Monitor
	Status

	// InputStream returns the stream reading from the endpoint. The endpoint owns it.
	InputStream() (stream.InputStream, error)
	// OutputStream returns the stream writing to the endpoint. The endpoint owns it.
	OutputStream() (stream.OutputStream, error)

	// ShutdownInput irreversibly disables the read side. Calling it again is a no-op.
	ShutdownInput() error
	// ShutdownOutput irreversibly disables the write side. Calling it again is a no-op.
	ShutdownOutput() error
}

// Socket is the lifecycle contract of one OS-level connection endpoint.
//
// A socket starts disconnected. It gets connected either actively with Create and Connect, or
// passively with Bind, Listen and an Accept on the listening socket. Close releases it; a closed
// socket is never reused. Blocking calls (Connect, Accept, Read, Write) are interrupted by a
// concurrent Close and then fail with a State kind.
//
// The socket exposes the Monitor contract but does not serialize its methods: callers needing
// composite atomicity lock the socket themselves.
type Socket interface {
	Duplex
	io.Reader
	io.Writer

	// Create reserves the OS handle slot.
	Create() error
	// Bind associates the socket with a local endpoint.
	Bind(address string, port int) error
	// Listen marks a bound socket passive with the given queue depth.
	Listen(backlog int) error
	// Connect resolves host and connects, blocking up to timeout. timeout <= 0 blocks without limit.
	Connect(host string, port int, timeout time.Duration) error

	// ReadBounded reads up to length bytes into buf at offset.
	ReadBounded(buf []byte, offset, length int) (int, error)
	// WriteBounded writes length bytes of buf from offset.
	WriteBounded(buf []byte, offset, length int) error
	// Available returns the number of bytes readable without blocking.
	Available() (int, error)

	// GetOption reads a socket tunable.
	GetOption(id OptionID) (int, error)
	// SetOption modifies a socket tunable.
	SetOption(id OptionID, value int) error

	// LocalAddress returns the string form of the bound local endpoint.
	LocalAddress() string
	// IsConnected returns whether the socket holds a connected handle.
	IsConnected() bool
}
