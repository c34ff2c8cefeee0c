package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"lumo/internal/services"
	lumo_errors "lumo/pkg/errors"
	"lumo/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades gallery viewers onto the hub. The upload
// token value doubles as the viewer credential, same as on the upload
// route.
type WebSocketHandler struct {
	hub    *Hub
	tokens *services.TokenService
	log    *logger.Logger
}

func NewWebSocketHandler(hub *Hub, tokens *services.TokenService, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, tokens: tokens, log: log}
}

// Handle upgrades HTTP to WebSocket for GET /gallery/ws?token=<value>.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	tokenValue := c.Query("token")
	if tokenValue == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	// Expired tokens still admit viewers: the gallery outlives the event.
	// Only unknown or malformed values are turned away.
	if _, err := h.tokens.Info(c.Request.Context(), tokenValue); err != nil {
		status := http.StatusUnauthorized
		if err == lumo_errors.ErrInvalidTokenFormat {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorf("websocket upgrade failed: %s", err)
		}
		return
	}

	h.hub.register <- NewClient(h.hub, conn, tokenValue)
}
