package client

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
)

// Push is one server-initiated message from the subscribe connection.
type Push struct {
	Kind string
	Args []string
}

// Arg returns the i-th push field, or "" when absent.
func (p Push) Arg(i int) string {
	if i < 0 || i >= len(p.Args) {
		return ""
	}
	return p.Args[i]
}

// Subscriber holds the persistent push connection for one player. Pushes
// arrive on the Pushes channel until the connection drops; requests other
// than chat go through the bound one-shot client.
type Subscriber struct {
	Username string
	Pushes   chan Push

	client *Client
	conn   net.Conn

	mu     sync.Mutex
	closed bool
}

// Subscribe opens the push connection and starts the read loop.
func Subscribe(c *Client, username string) (*Subscriber, error) {
	conn, err := net.DialTimeout("tcp", c.Addr, c.Timeout)
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(conn, "%s|%s\n", constants.ActionSubscribe, username); err != nil {
		_ = conn.Close()
		return nil, err
	}

	_ = conn.SetReadDeadline(time.Now().Add(c.Timeout))
	reader := bufio.NewReader(conn)
	ack, err := reader.ReadString('\n')
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ParseResponse(ack); err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetReadDeadline(time.Time{})

	s := &Subscriber{
		Username: username,
		Pushes:   make(chan Push, 16),
		client:   c,
		conn:     conn,
	}
	go s.readLoop(reader)
	return s, nil
}

func (s *Subscriber) readLoop(reader *bufio.Reader) {
	defer close(s.Pushes)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		// Inline responses (chat rate errors and the like) share the
		// stream with pushes; surface everything and let the caller route
		// by kind.
		s.Pushes <- Push{Kind: fields[0], Args: fields[1:]}
	}
}

// Chat sends a chat line over the subscribe connection. The server
// attributes the message to this subscription.
func (s *Subscriber) Chat(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return net.ErrClosed
	}
	_, err := fmt.Fprintf(s.conn, "%s|%s\n", constants.ActionChat, text)
	return err
}

// Challenge and the other battle actions ride one-shot connections so the
// push stream stays response-free during a match.
func (s *Subscriber) Challenge(to string) error {
	return s.client.Challenge(s.Username, to)
}

func (s *Subscriber) RespondChallenge(challenger, decision string) error {
	return s.client.RespondChallenge(s.Username, challenger, decision)
}

func (s *Subscriber) TeamSelected(rival, teamName string) error {
	return s.client.TeamSelected(s.Username, rival, teamName)
}

func (s *Subscriber) MoveSelected(rival string, slot int) error {
	return s.client.MoveSelected(s.Username, rival, slot)
}

func (s *Subscriber) Surrender(rival string, aliveSelf, aliveRival int) error {
	return s.client.Surrender(s.Username, rival, aliveSelf, aliveRival)
}

func (s *Subscriber) BattleEnd(winner, p1, p2 string, alive1, alive2 int) error {
	return s.client.BattleEnd(winner, p1, p2, alive1, alive2)
}

func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
