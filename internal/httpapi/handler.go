package httpapi

// Package httpapi exposes a small read-only HTTP surface next to the TCP
// relay: health, leaderboard, online players and per-player statistics,
// plus a websocket gateway speaking the same line protocol.

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
	"github.com/Jaime-2616/ErronkaFinala/internal/protocol"
	"github.com/Jaime-2616/ErronkaFinala/internal/relay"
	"github.com/Jaime-2616/ErronkaFinala/internal/storage"
	"github.com/Jaime-2616/ErronkaFinala/internal/version"
)

// Dispatcher routes a parsed request line and returns the response line.
// The TCP server provides the implementation so websocket clients get the
// exact same semantics.
type Dispatcher interface {
	Dispatch(req protocol.Request) string
}

// MatchDropper clears any open match state for a departing player.
type MatchDropper interface {
	DropPlayer(username string)
}

type Handler struct {
	repo       storage.Repository
	registry   *relay.Registry
	presence   *relay.Presence
	dispatcher Dispatcher
	matches    MatchDropper
}

func NewHandler(repo storage.Repository, registry *relay.Registry, presence *relay.Presence, dispatcher Dispatcher, matches MatchDropper) *Handler {
	return &Handler{repo: repo, registry: registry, presence: presence, dispatcher: dispatcher, matches: matches}
}

// NewRouter builds the gin engine with all routes registered.
func (h *Handler) NewRouter() *gin.Engine {
	router := gin.Default()

	router.GET(constants.RouteHealth, h.Health)

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteLeaderboard, h.Leaderboard)
		apiRoutes.GET(constants.RouteOnline, h.Online)
		apiRoutes.GET(constants.RoutePlayerStats, h.PlayerStats)
	}

	router.GET(constants.RouteWebsocket, h.Websocket)

	return router
}

// Health returns build metadata and the current subscriber count.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"version":     version.Version,
		"commit":      version.Commit,
		"date":        version.Date,
		"subscribers": h.registry.Count(),
	})
}

// Leaderboard returns the top players by points. Optional ?limit=N.
func (h *Handler) Leaderboard(c *gin.Context) {
	limit := 10
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	top, err := h.repo.GetTopPlayers(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch leaderboard"})
		return
	}
	c.JSON(http.StatusOK, top)
}

// Online returns the usernames with an active login.
func (h *Handler) Online(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"players": h.presence.List("")})
}

// PlayerStats returns the battle statistics for ?username=.
func (h *Handler) PlayerStats(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}
	stats, err := h.repo.GetPlayerStats(username)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrUserNotFound})
		return
	}
	c.JSON(http.StatusOK, stats)
}
