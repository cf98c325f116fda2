package adb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"syscall"
)

// DefaultAddr is where the adb server listens by default.
const DefaultAddr = "127.0.0.1:5037"

// ErrConnectionReset marks failures caused by the adb server going away.
// Callers recover from it by restarting the server and reconnecting.
var ErrConnectionReset = errors.New("adb connection reset")

// ErrClosed is returned by a Socket after Close.
var ErrClosed = errors.New("adb socket closed")

// ServerError is a FAIL status returned by the adb server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "adb server: " + e.Message
}

// Socket is a connection to the adb server speaking the host protocol:
// length-prefixed requests, OKAY/FAIL status words and length-prefixed strings.
type Socket struct {
	addr   string
	dialer net.Dialer

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// Dial connects to the adb server at addr.
func Dial(ctx context.Context, addr string) (*Socket, error) {
	s := &Socket{addr: addr}
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return s, nil
}

func (s *Socket) dial(ctx context.Context) (net.Conn, error) {
	conn, err := s.dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("dial adb %s: %w", s.addr, classify(err))
	}
	return conn, nil
}

// Addr returns the adb server address.
func (s *Socket) Addr() string {
	return s.addr
}

func (s *Socket) current() (net.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.conn == nil {
		return nil, ErrClosed
	}
	return s.conn, nil
}

// SendRequest writes a framed request such as "host:track-devices".
func (s *Socket) SendRequest(request string) error {
	conn, err := s.current()
	if err != nil {
		return err
	}
	if len(request) > 0xffff {
		return fmt.Errorf("send %q: request too long", request)
	}
	frame := fmt.Sprintf("%04X%s", len(request), request)
	if _, err := io.WriteString(conn, frame); err != nil {
		return fmt.Errorf("send %q: %w", request, classify(err))
	}
	return nil
}

// ReadResponse reads the status word for the last request. A FAIL status is
// returned as a *ServerError.
func (s *Socket) ReadResponse() error {
	conn, err := s.current()
	if err != nil {
		return err
	}
	var status [4]byte
	if _, err := io.ReadFull(conn, status[:]); err != nil {
		return fmt.Errorf("read status: %w", classify(err))
	}
	switch string(status[:]) {
	case "OKAY":
		return nil
	case "FAIL":
		msg, err := readString(conn)
		if err != nil {
			return fmt.Errorf("read failure message: %w", err)
		}
		return &ServerError{Message: msg}
	default:
		return fmt.Errorf("read status: unexpected %q", status[:])
	}
}

// ReadString reads one length-prefixed payload. It blocks until the server
// sends data or the socket is closed.
func (s *Socket) ReadString() (string, error) {
	conn, err := s.current()
	if err != nil {
		return "", err
	}
	msg, err := readString(conn)
	if err != nil {
		return "", fmt.Errorf("read string: %w", err)
	}
	return msg, nil
}

func readString(r io.Reader) (string, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return "", classify(err)
	}
	n, err := strconv.ParseUint(string(hdr[:]), 16, 16)
	if err != nil {
		return "", fmt.Errorf("bad length %q: %w", hdr[:], err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", classify(err)
	}
	return string(buf), nil
}

// Reconnect drops the current connection and dials the server again.
func (s *Socket) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	old := s.conn
	s.conn = nil
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		conn.Close()
		return ErrClosed
	}
	s.conn = conn
	return nil
}

// Close closes the connection. A read blocked in another goroutine returns
// promptly. Calling Close more than once is a no-op.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// classify wraps errors that mean the server went away with ErrConnectionReset.
func classify(err error) error {
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE):
		return fmt.Errorf("%w: %w", ErrConnectionReset, err)
	}
	return err
}
