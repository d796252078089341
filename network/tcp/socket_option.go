package tcp

import (
	"time"

	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/network"
)

// GetOption reads a tunable. With a handle the value comes from the OS, otherwise it is the value
// recorded by SetOption or 0. Timeout, Linger and TrafficClass always return the recorded value;
// Linger is -1 (off) until set.
func (s *Socket) GetOption(id network.OptionID) (int, error) {
	if !id.Valid() {
		return 0, ioerr.Wrap(ioerr.KindArgument, "get option", ErrUnknownOption)
	}
	if s.status.IsClosed() {
		return 0, stateError("get option", ErrSocketClosed)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch id {
	case network.Timeout, network.TrafficClass:
		return s.options[id], nil
	case network.Linger:
		if value, ok := s.options[id]; ok {
			return value, nil
		}
		return -1, nil
	}
	h := s.handleLocked()
	if h == nil {
		return s.options[id], nil
	}
	value, err := getOption(h, id, isIPv6(s.localAddr))
	if ioerr.KindOf(err) == ioerr.KindUnsupported {
		return s.options[id], nil
	}
	if err != nil {
		return 0, ioerr.Wrap(ioerr.KindIO, "get option", err)
	}
	return value, nil
}

// SetOption modifies a tunable. The value is recorded and, when the socket holds a handle,
// applied to it immediately.
func (s *Socket) SetOption(id network.OptionID, value int) error {
	if !id.Valid() {
		return ioerr.Wrap(ioerr.KindArgument, "set option", ErrUnknownOption)
	}
	if err := validateOption(id, value); err != nil {
		return err
	}
	if s.status.IsClosed() {
		return stateError("set option", ErrSocketClosed)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[id] = value
	if id == network.Timeout {
		if value == 0 && s.conn != nil {
			_ = s.conn.SetReadDeadline(time.Time{})
		}
		return nil
	}
	h := s.handleLocked()
	if h == nil {
		return nil
	}
	if err := setOption(h, id, value, isIPv6(s.localAddr)); err != nil {
		s.logger.Debug().Msg("set socket option failed.").Str("option", id.String()).Int("value", value).Err(err).Done()
		return ioerr.Wrap(ioerr.KindIO, "set option", err)
	}
	return nil
}

// handleLocked returns the connected or listening handle, or nil.
func (s *Socket) handleLocked() sysConn {
	if s.conn != nil {
		return s.conn
	}
	if s.listener != nil {
		return s.listener
	}
	return nil
}

func validateOption(id network.OptionID, value int) error {
	switch id {
	case network.SendBuffer, network.ReceiveBuffer:
		if value <= 0 {
			return ioerr.Wrap(ioerr.KindArgument, "set option", ErrInvalidOptionVal)
		}
	case network.Timeout:
		if value < 0 {
			return ioerr.Wrap(ioerr.KindArgument, "set option", ErrInvalidOptionVal)
		}
	case network.TrafficClass:
		if value < 0 || value > 255 {
			return ioerr.Wrap(ioerr.KindArgument, "set option", ErrInvalidOptionVal)
		}
	}
	return nil
}

func boolValue(value int) int {
	if value != 0 {
		return 1
	}
	return 0
}
