package relay

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Session is one subscribed client the registry can push lines to. Both
// the raw TCP listener and the websocket gateway produce sessions.
type Session interface {
	ID() string
	Username() string
	RemoteAddr() string
	// Send writes one protocol line (already newline-terminated).
	Send(line string) error
	Close() error
}

// tcpSession wraps a persistent subscribe connection. Writes are
// serialized: pushes for the same user may originate from several
// goroutines at once.
type tcpSession struct {
	id           string
	username     string
	conn         net.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewTCPSession builds a session over an accepted subscribe connection.
func NewTCPSession(id, username string, conn net.Conn, writeTimeout time.Duration) Session {
	return &tcpSession{id: id, username: username, conn: conn, writeTimeout: writeTimeout}
}

func (s *tcpSession) ID() string         { return s.id }
func (s *tcpSession) Username() string   { return s.username }
func (s *tcpSession) RemoteAddr() string { return s.conn.RemoteAddr().String() }

func (s *tcpSession) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return net.ErrClosed
	}
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	_, err := s.conn.Write([]byte(line))
	return err
}

func (s *tcpSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

// wsSession carries the same line protocol over a websocket, one line per
// text message. The trailing newline is kept so client code can share the
// parser with the TCP path.
type wsSession struct {
	id           string
	username     string
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewWebsocketSession builds a session over an upgraded websocket.
func NewWebsocketSession(id, username string, conn *websocket.Conn, writeTimeout time.Duration) Session {
	return &wsSession{id: id, username: username, conn: conn, writeTimeout: writeTimeout}
}

func (s *wsSession) ID() string         { return s.id }
func (s *wsSession) Username() string   { return s.username }
func (s *wsSession) RemoteAddr() string { return s.conn.RemoteAddr().String() }

func (s *wsSession) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return net.ErrClosed
	}
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	return s.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (s *wsSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
