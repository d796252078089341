package network

// OptionID identifies a socket tunable. Every option maps to an integer value; boolean options use
// 0 for off and anything else for on.
type OptionID int

const (
	// TCPNoDelay disables Nagle's algorithm.
	TCPNoDelay OptionID = iota + 1
	// ReuseAddr allows binding an address still in TIME_WAIT.
	ReuseAddr
	// Linger is the linger time in seconds on close; a negative value disables lingering.
	Linger
	// SendBuffer is the send buffer size in bytes.
	SendBuffer
	// ReceiveBuffer is the receive buffer size in bytes.
	ReceiveBuffer
	// KeepAlive enables TCP keep-alive packets.
	KeepAlive
	// OOBInline delivers urgent data inline.
	OOBInline
	// Timeout is the read timeout in milliseconds; 0 blocks without limit.
	Timeout
	// TrafficClass is the advisory IP type-of-service / traffic class value.
	TrafficClass
)

var optionNames = map[OptionID]string{
	TCPNoDelay:    "TCP_NODELAY",
	ReuseAddr:     "SO_REUSEADDR",
	Linger:        "SO_LINGER",
	SendBuffer:    "SO_SNDBUF",
	ReceiveBuffer: "SO_RCVBUF",
	KeepAlive:     "SO_KEEPALIVE",
	OOBInline:     "SO_OOBINLINE",
	Timeout:       "SO_TIMEOUT",
	TrafficClass:  "IP_TOS",
}

// Valid reports whether the id belongs to the enumerated set.
func (o OptionID) Valid() bool {
	_, ok := optionNames[o]
	return ok
}

func (o OptionID) String() string {
	if name, ok := optionNames[o]; ok {
		return name
	}
	return "[unrecognized]"
}

// Options returns every valid option id in declaration order.
func Options() []OptionID {
	return []OptionID{TCPNoDelay, ReuseAddr, Linger, SendBuffer, ReceiveBuffer, KeepAlive, OOBInline, Timeout, TrafficClass}
}
