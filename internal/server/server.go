package server

// Package server implements the TCP front of the relay. Clients open
// short-lived connections carrying a single request line, plus one
// persistent subscribe connection per player that stays open for pushes
// and chat.

import (
	"bufio"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/Jaime-2616/ErronkaFinala/internal/arena"
	"github.com/Jaime-2616/ErronkaFinala/internal/config"
	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
	"github.com/Jaime-2616/ErronkaFinala/internal/keys"
	"github.com/Jaime-2616/ErronkaFinala/internal/logging"
	"github.com/Jaime-2616/ErronkaFinala/internal/protocol"
	"github.com/Jaime-2616/ErronkaFinala/internal/relay"
	"github.com/Jaime-2616/ErronkaFinala/internal/storage"
)

type Server struct {
	cfg      *config.LoadedConfig
	repo     storage.Repository
	registry *relay.Registry
	presence *relay.Presence
	broker   *arena.Broker
}

func New(cfg *config.LoadedConfig, repo storage.Repository, registry *relay.Registry, presence *relay.Presence, broker *arena.Broker) *Server {
	return &Server{cfg: cfg, repo: repo, registry: registry, presence: presence, broker: broker}
}

// ListenAndServe binds the configured address and accepts connections
// until the listener fails.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.ServerAddress)
	if err != nil {
		return err
	}
	logging.Info("tcp server listening", logging.Fields{"addr": s.cfg.ServerAddress})
	return s.Serve(ln)
}

// Serve accepts connections from an existing listener. Each connection is
// handled on its own goroutine.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	reader := bufio.NewReader(conn)

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	line, err := reader.ReadString('\n')
	if err != nil {
		_ = conn.Close()
		return
	}

	req, err := protocol.ParseRequest(line)
	if err != nil {
		s.writeAndClose(conn, protocol.Error(constants.ErrInvalidRequest))
		return
	}

	if req.Action == constants.ActionSubscribe {
		s.handleSubscribe(conn, reader, req)
		return
	}

	s.writeAndClose(conn, s.Dispatch(req))
}

func (s *Server) writeAndClose(conn net.Conn, resp string) {
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if _, err := conn.Write([]byte(resp)); err != nil {
		logging.Error("response write failed", err, logging.Fields{"addr": conn.RemoteAddr().String()})
	}
	_ = conn.Close()
}

// handleSubscribe turns the connection into the player's push channel.
// The connection stays open: the server reads it for chat (and any other
// request the client chooses to send inline) and writes pushes to it from
// other goroutines until it drops.
func (s *Server) handleSubscribe(conn net.Conn, reader *bufio.Reader, req protocol.Request) {
	username := keys.Normalize(req.Arg(0))
	if username == "" {
		s.writeAndClose(conn, protocol.Error(constants.ErrInvalidRequest))
		return
	}

	sess := relay.NewTCPSession(uuid.NewString(), username, conn, s.cfg.WriteTimeout)
	s.registry.Register(sess)
	s.presence.Mark(username)
	logging.Info("player subscribed", logging.Fields{
		"username":   username,
		"session_id": sess.ID(),
		"addr":       sess.RemoteAddr(),
	})

	if err := sess.Send(protocol.OK("Subscribed")); err != nil {
		s.dropSession(sess, username)
		return
	}

	// The subscribe link idles between pushes; no read deadline.
	_ = conn.SetReadDeadline(time.Time{})
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		inline, err := protocol.ParseRequest(line)
		if err != nil {
			continue
		}

		switch inline.Action {
		case constants.ActionChat:
			s.handleChat(sess, username, inline.Arg(0))
		case constants.ActionLogout:
			s.dropSession(sess, username)
			return
		default:
			if err := sess.Send(s.Dispatch(inline)); err != nil {
				s.dropSession(sess, username)
				return
			}
		}
	}

	s.dropSession(sess, username)
}

func (s *Server) handleChat(sess relay.Session, username, text string) {
	if !s.registry.AllowChat(username) {
		_ = sess.Send(protocol.Error(constants.ErrChatTooFast))
		return
	}
	s.registry.Broadcast(protocol.Push(constants.PushChat, username, text), username)
}

// dropSession tears down a subscribe connection. Presence and any open
// match records are only cleared when no replacement session took over in
// the meantime.
func (s *Server) dropSession(sess relay.Session, username string) {
	s.registry.Unregister(sess)
	if !s.registry.IsOnline(username) {
		s.presence.Clear(username)
		s.broker.DropPlayer(username)
	}
	logging.Info("player unsubscribed", logging.Fields{
		"username":   username,
		"session_id": sess.ID(),
	})
}
