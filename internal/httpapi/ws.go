package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
	"github.com/Jaime-2616/ErronkaFinala/internal/keys"
	"github.com/Jaime-2616/ErronkaFinala/internal/logging"
	"github.com/Jaime-2616/ErronkaFinala/internal/protocol"
	"github.com/Jaime-2616/ErronkaFinala/internal/relay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The relay has no browser origin of its own; clients authenticate by
	// logging in before subscribing.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

// Websocket upgrades the connection and runs it as a subscribed session.
// Each text message is one protocol line, same framing as the TCP side.
func (h *Handler) Websocket(c *gin.Context) {
	username := keys.Normalize(c.Query("username"))
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", err, logging.Fields{constants.LogFieldUsername: username})
		return
	}

	sess := relay.NewWebsocketSession(uuid.NewString(), username, conn, wsWriteTimeout)
	h.registry.Register(sess)
	h.presence.Mark(username)
	_ = sess.Send(protocol.OK("Subscribed"))
	logging.Info("websocket subscribed", logging.Fields{
		constants.LogFieldUsername: username,
		constants.LogFieldSession:  sess.ID(),
	})

	defer h.drop(sess)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		line := strings.TrimRight(string(msg), "\r\n")
		req, err := protocol.ParseRequest(line + "\n")
		if err != nil {
			continue
		}
		switch req.Action {
		case constants.ActionChat:
			if !h.registry.AllowChat(username) {
				_ = sess.Send(protocol.Error(constants.ErrChatTooFast))
				continue
			}
			h.registry.Broadcast(protocol.Push(constants.PushChat, username, req.Arg(0)), username)
		case constants.ActionLogout:
			return
		default:
			_ = sess.Send(h.dispatcher.Dispatch(req))
		}
	}
}

func (h *Handler) drop(sess relay.Session) {
	username := sess.Username()
	h.registry.Unregister(sess)
	if !h.registry.IsOnline(username) {
		h.presence.Clear(username)
		h.matches.DropPlayer(username)
	}
	logging.Info("websocket disconnected", logging.Fields{
		constants.LogFieldUsername: username,
		constants.LogFieldSession:  sess.ID(),
	})
}
