package network

import (
	"sync/atomic"
	"time"
)

// Status exposes the lifecycle flags of a socket or a logical stream.
type Status interface {
	Direction() Direction
	EstablishedTime() time.Time
	IsClosed() bool
	IsInputShutdown() bool
	IsOutputShutdown() bool
}

// BasicStatus stores lifecycle flags. Every flag is monotonic: once set it never reverts.
// The zero value is an unconnected, open status.
type BasicStatus struct {
	// direction is written once when the endpoint gets connected or bound.
	direction atomic.Uint32
	// establishedTime is the unix-nano timestamp of that moment.
	establishedTime atomic.Int64

	closed         atomic.Bool
	inputShutdown  atomic.Bool
	outputShutdown atomic.Bool
}

// NewStatus creates a status already established in the given direction.
func NewStatus(direction Direction, establishedTime time.Time) *BasicStatus {
	s := &BasicStatus{}
	s.Establish(direction, establishedTime)
	return s
}

// Establish records the direction and time once. It reports whether this call recorded them.
func (s *BasicStatus) Establish(direction Direction, establishedTime time.Time) bool {
	if !s.direction.CompareAndSwap(uint32(Unknown), uint32(direction)) {
		return false
	}
	s.establishedTime.Store(establishedTime.UnixNano())
	return true
}

// Direction returns how the endpoint was established.
func (s *BasicStatus) Direction() Direction {
	return Direction(s.direction.Load())
}

// EstablishedTime returns when the endpoint was established, or the zero time.
func (s *BasicStatus) EstablishedTime() time.Time {
	ns := s.establishedTime.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// SetClosed marks the endpoint closed. It reports whether this call closed it.
func (s *BasicStatus) SetClosed() bool {
	return s.closed.CompareAndSwap(false, true)
}

// IsClosed returns whether the endpoint is closed.
func (s *BasicStatus) IsClosed() bool {
	return s.closed.Load()
}

// SetInputShutdown marks the read side shut down. It reports whether this call did it.
func (s *BasicStatus) SetInputShutdown() bool {
	return s.inputShutdown.CompareAndSwap(false, true)
}

// IsInputShutdown returns whether the read side is shut down.
func (s *BasicStatus) IsInputShutdown() bool {
	return s.inputShutdown.Load()
}

// SetOutputShutdown marks the write side shut down. It reports whether this call did it.
func (s *BasicStatus) SetOutputShutdown() bool {
	return s.outputShutdown.CompareAndSwap(false, true)
}

// IsOutputShutdown returns whether the write side is shut down.
func (s *BasicStatus) IsOutputShutdown() bool {
	return s.outputShutdown.Load()
}
