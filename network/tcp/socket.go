// Package tcp implements network.Socket over TCP.
package tcp

import (
	"context"
	"net"
	"strconv"
	"sync"
	"syscall"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	catutil "github.com/rambollwong/rainbowcat/util"
	"github.com/rambollwong/rainbowlog"
	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/monitor"
	"github.com/rambollwong/rainbowsock/core/network"
	"github.com/rambollwong/rainbowsock/core/reuse"
	"github.com/rambollwong/rainbowsock/core/stream"
	"github.com/rambollwong/rainbowsock/log"
	"github.com/rambollwong/rainbowsock/util"
)

// DefaultBacklog is the queue depth used by Listen for a non-positive backlog.
const DefaultBacklog = 50

var _ network.Socket = (*Socket)(nil)

// Socket is a TCP endpoint.
//
// The OS handle is allocated lazily: Bind opens a listening handle and Connect or Accept attach a
// connected one. Options set before a handle exists are recorded and applied once it does.
type Socket struct {
	monitor.Mutex

	ctx    context.Context
	logger *rainbowlog.Logger

	reusePort     bool
	dialKeepAlive time.Duration

	status network.BasicStatus

	mu            sync.RWMutex
	created       bool
	conn          *net.TCPConn
	listener      *net.TCPListener
	listening     bool
	connectCancel context.CancelFunc
	localAddr     net.Addr
	remoteAddr    net.Addr
	options       map[network.OptionID]int
	in            *socketInputStream
	out           *socketOutputStream

	closeOnce sync.Once
}

// NewSocket creates an unconnected socket.
func NewSocket(opt ...Option) (*Socket, error) {
	s := &Socket{
		ctx:     context.Background(),
		options: make(map[network.OptionID]int),
	}
	if err := s.apply(opt...); err != nil {
		return nil, err
	}
	if s.logger == nil {
		s.logger = log.Component("SOCKET")
	}
	return s, nil
}

// SupportedOptions returns the names of every option the socket understands.
func SupportedOptions() []string {
	return catutil.SliceTransformType(network.Options(), func(_ int, id network.OptionID) string {
		return id.String()
	})
}

// Create reserves the handle slot of the socket.
func (s *Socket) Create() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.IsClosed() {
		return stateError("create", ErrSocketClosed)
	}
	if s.created || s.conn != nil || s.listener != nil {
		return stateError("create", ErrAlreadyCreated)
	}
	s.created = true
	return nil
}

// Bind opens a handle bound to address and port. An empty address binds every local interface,
// port 0 picks an ephemeral port.
func (s *Socket) Bind(address string, port int) error {
	if !util.ValidPort(port) {
		return ioerr.Wrap(ioerr.KindArgument, "bind", ErrInvalidPort)
	}
	if address != "" && !util.ValidHost(address) {
		return ioerr.Wrap(ioerr.KindArgument, "bind", ErrInvalidHost)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.IsClosed() {
		return stateError("bind", ErrSocketClosed)
	}
	if s.listener != nil {
		return stateError("bind", ErrAlreadyBound)
	}
	if s.conn != nil {
		return stateError("bind", ErrAlreadyConnected)
	}

	lc := net.ListenConfig{Control: s.bindControl()}
	l, err := lc.Listen(s.ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		s.logger.Debug().Msg("bind failed.").Str("address", address).Int("port", port).Err(err).Done()
		return ioerr.Wrap(ioerr.KindConnection, "bind", err)
	}
	s.created = true
	s.listener = l.(*net.TCPListener)
	s.localAddr = l.Addr()
	s.logger.Debug().Msg("socket bound.").Str("local", s.localAddr.String()).Done()
	return nil
}

// Listen marks the bound socket passive. A non-positive backlog uses DefaultBacklog.
func (s *Socket) Listen(backlog int) error {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.IsClosed() {
		return stateError("listen", ErrSocketClosed)
	}
	if s.listener == nil {
		return stateError("listen", ErrNotBound)
	}
	if err := setListenBacklog(s.listener, backlog); err != nil {
		return ioerr.Wrap(ioerr.KindConnection, "listen", err)
	}
	s.listening = true
	s.status.Establish(network.Passive, time.Now())
	s.logger.Debug().Msg("socket listening.").Str("local", s.localAddr.String()).Int("backlog", backlog).Done()
	return nil
}

// Accept blocks until a peer connects and attaches the connection to target.
// target must be a fresh socket: not connected, bound or closed.
func (s *Socket) Accept(target *Socket) error {
	if target == nil {
		return ioerr.Wrap(ioerr.KindNull, "accept", ErrNilTarget)
	}
	s.mu.RLock()
	listener, listening := s.listener, s.listening
	timeout := s.options[network.Timeout]
	s.mu.RUnlock()
	if s.status.IsClosed() {
		return stateError("accept", ErrSocketClosed)
	}
	if !listening {
		return stateError("accept", ErrNotListening)
	}
	if !target.fresh() {
		return stateError("accept", ErrTargetInUse)
	}

	if timeout > 0 {
		_ = listener.SetDeadline(time.Now().Add(time.Duration(timeout) * time.Millisecond))
	} else {
		_ = listener.SetDeadline(time.Time{})
	}
	c, err := listener.AcceptTCP()
	if err != nil {
		if s.status.IsClosed() || util.IsConnClosedError(err) {
			return stateError("accept", ErrSocketClosed)
		}
		return ioerr.Wrap(util.ConnectionKind(err), "accept", err)
	}
	if err = target.attach(c, network.Inbound); err != nil {
		return err
	}
	s.logger.Debug().Msg("connection accepted.").Str("remote", c.RemoteAddr().String()).Done()
	return nil
}

// Connect resolves host and connects to it, waiting at most timeout. A non-positive timeout waits
// without limit. A concurrent Close interrupts the attempt.
func (s *Socket) Connect(host string, port int, timeout time.Duration) error {
	if host == "" {
		return ioerr.Wrap(ioerr.KindArgument, "connect", ErrEmptyHost)
	}
	if !util.ValidHost(host) {
		return ioerr.Wrap(ioerr.KindArgument, "connect", ErrInvalidHost)
	}
	if port <= 0 || port > util.MaxPort {
		return ioerr.Wrap(ioerr.KindArgument, "connect", ErrInvalidPort)
	}

	s.mu.Lock()
	if s.status.IsClosed() {
		s.mu.Unlock()
		return stateError("connect", ErrSocketClosed)
	}
	if s.conn != nil || s.connectCancel != nil {
		s.mu.Unlock()
		return stateError("connect", ErrAlreadyConnected)
	}
	if s.listener != nil {
		s.mu.Unlock()
		return stateError("connect", ErrBoundForListening)
	}
	if timeout < 0 {
		timeout = 0
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.connectCancel = cancel
	dialer := net.Dialer{
		Timeout:   timeout,
		KeepAlive: s.dialKeepAlive,
		Control:   s.dialControl(),
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.connectCancel = nil
		s.mu.Unlock()
		cancel()
	}()

	address := net.JoinHostPort(host, strconv.Itoa(port))
	c, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		if s.status.IsClosed() {
			return stateError("connect", ErrSocketClosed)
		}
		s.logger.Debug().Msg("connect failed.").Str("remote", address).Err(err).Done()
		return ioerr.Wrap(util.ConnectionKind(err), "connect", err)
	}
	if err = s.attach(c.(*net.TCPConn), network.Outbound); err != nil {
		return err
	}
	s.logger.Debug().Msg("socket connected.").Str("remote", address).Done()
	return nil
}

// ConnectMultiaddr connects to a tcp multiaddress such as /ip4/127.0.0.1/tcp/8080 or
// /dns/example.com/tcp/443.
func (s *Socket) ConnectMultiaddr(addr ma.Multiaddr, timeout time.Duration) error {
	host, port, err := util.MultiAddrToHostPort(addr)
	if err != nil {
		return err
	}
	return s.Connect(host, port, timeout)
}

// fresh reports whether the socket may receive an accepted connection.
func (s *Socket) fresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.status.IsClosed() && s.conn == nil && s.listener == nil && s.connectCancel == nil
}

// attach installs a connected handle and applies the recorded options to it.
func (s *Socket) attach(c *net.TCPConn, direction network.Direction) error {
	s.mu.Lock()
	if s.status.IsClosed() {
		s.mu.Unlock()
		_ = c.Close()
		return stateError("attach", ErrSocketClosed)
	}
	if s.conn != nil {
		s.mu.Unlock()
		_ = c.Close()
		return stateError("attach", ErrAlreadyConnected)
	}
	s.created = true
	s.conn = c
	s.localAddr = c.LocalAddr()
	s.remoteAddr = c.RemoteAddr()
	s.in = &socketInputStream{s: s}
	s.out = &socketOutputStream{s: s}
	for id, value := range s.options {
		if id == network.Timeout {
			continue
		}
		if err := setOption(c, id, value, isIPv6(s.localAddr)); err != nil {
			s.logger.Warn().Msg("apply socket option failed.").Str("option", id.String()).Err(err).Done()
		}
	}
	s.mu.Unlock()
	s.status.Establish(direction, time.Now())
	return nil
}

// bindControl sets SO_REUSEADDR when requested and applies recorded options before the handle binds.
func (s *Socket) bindControl() func(network, address string, c syscall.RawConn) error {
	reuseAddr := s.options[network.ReuseAddr] != 0
	reuseControl := reuse.Control(reuseAddr, s.reusePort)
	optionsControl := s.rawControl()
	return func(nw, address string, c syscall.RawConn) error {
		if err := reuseControl(nw, address, c); err != nil {
			return err
		}
		return optionsControl(nw, address, c)
	}
}

// dialControl applies recorded options before the handle connects, so that buffer sizes take part
// in the handshake.
func (s *Socket) dialControl() func(network, address string, c syscall.RawConn) error {
	return s.rawControl()
}

func (s *Socket) rawControl() func(network, address string, c syscall.RawConn) error {
	pending := make(map[network.OptionID]int, len(s.options))
	for id, value := range s.options {
		if id == network.Timeout || id == network.ReuseAddr {
			continue
		}
		pending[id] = value
	}
	return func(nw, address string, c syscall.RawConn) error {
		ipv6 := nw == "tcp6"
		for id, value := range pending {
			if err := setRawOption(c, id, value, ipv6); err != nil {
				s.logger.Warn().Msg("apply socket option failed.").Str("option", id.String()).Err(err).Done()
			}
		}
		return nil
	}
}

// ShutdownInput disables the read side. Later reads fail with a State kind.
func (s *Socket) ShutdownInput() error {
	conn, err := s.connected("shutdown input")
	if err != nil {
		return err
	}
	if !s.status.SetInputShutdown() {
		return nil
	}
	if err = conn.CloseRead(); err != nil && !util.IsConnClosedError(err) {
		return ioerr.Wrap(ioerr.KindIO, "shutdown input", err)
	}
	return nil
}

// ShutdownOutput disables the write side and sends FIN to the peer. Later writes fail with a State kind.
func (s *Socket) ShutdownOutput() error {
	conn, err := s.connected("shutdown output")
	if err != nil {
		return err
	}
	if !s.status.SetOutputShutdown() {
		return nil
	}
	if err = conn.CloseWrite(); err != nil && !util.IsConnClosedError(err) {
		return ioerr.Wrap(ioerr.KindIO, "shutdown output", err)
	}
	return nil
}

// Close releases the handle and interrupts blocked calls. The first call reports the release
// error, later calls do nothing.
func (s *Socket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.status.SetClosed()
		s.mu.Lock()
		cancel, conn, listener := s.connectCancel, s.conn, s.listener
		s.conn, s.listener, s.listening = nil, nil, false
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if listener != nil {
			if e := listener.Close(); e != nil && err == nil {
				err = e
			}
		}
		if conn != nil {
			if e := conn.Close(); e != nil && err == nil {
				err = e
			}
		}
		if err != nil {
			s.logger.Debug().Msg("close socket failed.").Err(err).Done()
			err = ioerr.Wrap(ioerr.KindIO, "close", err)
			return
		}
		s.logger.Debug().Msg("socket closed.").Done()
	})
	return err
}

// InputStream returns the stream reading from the socket. Closing the stream leaves the socket open.
func (s *Socket) InputStream() (stream.InputStream, error) {
	if _, err := s.connected("input stream"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.in, nil
}

// OutputStream returns the stream writing to the socket. Closing the stream leaves the socket open.
func (s *Socket) OutputStream() (stream.OutputStream, error) {
	if _, err := s.connected("output stream"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.out, nil
}

// NetConn returns the connected handle, or nil when the socket is not connected.
func (s *Socket) NetConn() net.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conn == nil {
		return nil
	}
	return s.conn
}

// LocalAddress returns the local endpoint as host:port, or "" when the socket has none.
func (s *Socket) LocalAddress() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.localAddr == nil {
		return ""
	}
	return s.localAddr.String()
}

// LocalPort returns the local port, or 0 when the socket has none.
func (s *Socket) LocalPort() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if addr, ok := s.localAddr.(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// RemoteAddress returns the peer endpoint as host:port, or "" when the socket was never connected.
func (s *Socket) RemoteAddress() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.remoteAddr == nil {
		return ""
	}
	return s.remoteAddr.String()
}

// LocalNetAddr returns the local endpoint, or nil when the socket has none.
func (s *Socket) LocalNetAddr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localAddr
}

// RemoteNetAddr returns the peer endpoint, or nil when the socket was never connected.
func (s *Socket) RemoteNetAddr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remoteAddr
}

// LocalMultiaddr returns the local endpoint as a multiaddress.
func (s *Socket) LocalMultiaddr() ma.Multiaddr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return util.NetAddrToMultiAddr(s.localAddr)
}

// RemoteMultiaddr returns the peer endpoint as a multiaddress.
func (s *Socket) RemoteMultiaddr() ma.Multiaddr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return util.NetAddrToMultiAddr(s.remoteAddr)
}

// IsConnected returns whether the socket holds a connected handle.
func (s *Socket) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn != nil
}

// IsBound returns whether the socket holds a listening handle.
func (s *Socket) IsBound() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listener != nil
}

func (s *Socket) Direction() network.Direction {
	return s.status.Direction()
}

func (s *Socket) EstablishedTime() time.Time {
	return s.status.EstablishedTime()
}

func (s *Socket) IsClosed() bool {
	return s.status.IsClosed()
}

func (s *Socket) IsInputShutdown() bool {
	return s.status.IsInputShutdown()
}

func (s *Socket) IsOutputShutdown() bool {
	return s.status.IsOutputShutdown()
}

// connected returns the connected handle or the State error explaining why there is none.
func (s *Socket) connected(op string) (*net.TCPConn, error) {
	if s.status.IsClosed() {
		return nil, stateError(op, ErrSocketClosed)
	}
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return nil, stateError(op, ErrNotConnected)
	}
	return conn, nil
}

func stateError(op string, err error) error {
	return ioerr.Wrap(ioerr.KindState, op, err)
}

func isIPv6(addr net.Addr) bool {
	tcpAddr, ok := addr.(*net.TCPAddr)
	return ok && tcpAddr.IP.To4() == nil
}
