package handlers

import (
	"log/slog"
	"net/http"

	"averix/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type FeedHandler struct {
	feed     *services.TradeFeed
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewFeedHandler(feed *services.TradeFeed, origins []string, logger *slog.Logger) *FeedHandler {
	policy := newOriginPolicy(origins)
	return &FeedHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || policy.allows(origin)
			},
		},
		logger: logger,
	}
}

// Subscribe upgrades the connection and attaches it to the public trade feed.
func (h *FeedHandler) Subscribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug("websocket upgrade failed", slog.Any("error", err))
		return
	}

	if !h.feed.Register(conn) {
		h.logger.Warn("trade feed stopped, rejecting subscriber")
	}
}
