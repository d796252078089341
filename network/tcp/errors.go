package tcp

import "errors"

var (
	ErrSocketClosed      = errors.New("socket closed")
	ErrNotConnected      = errors.New("socket not connected")
	ErrAlreadyConnected  = errors.New("socket already connected")
	ErrAlreadyCreated    = errors.New("socket already created")
	ErrAlreadyBound      = errors.New("socket already bound")
	ErrNotBound          = errors.New("socket not bound")
	ErrNotListening      = errors.New("socket not listening")
	ErrBoundForListening = errors.New("socket is bound for listening")
	ErrInputShutdown     = errors.New("socket input is shut down")
	ErrOutputShutdown    = errors.New("socket output is shut down")
	ErrStreamClosed      = errors.New("socket stream closed")
	ErrNilTarget         = errors.New("accept target is nil")
	ErrTargetInUse       = errors.New("accept target is already connected or closed")
	ErrEmptyHost         = errors.New("empty host")
	ErrInvalidHost       = errors.New("malformed host")
	ErrInvalidPort       = errors.New("port out of range")
	ErrUnknownOption     = errors.New("unknown socket option")
	ErrInvalidOptionVal  = errors.New("invalid socket option value")
	ErrNilContext        = errors.New("nil context")
	ErrNilLogger         = errors.New("nil logger")
)
