package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"pasarkerja/internal/adapter/api/middleware"
	ws "pasarkerja/internal/infrastructure/websocket"
	"pasarkerja/pkg/errors"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // You should restrict this in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
	}
}

// HandleWebSocket authenticates the connection from a token query param
// (browsers cannot set headers on WebSocket upgrades), upgrades it, and
// hands the client to the manager.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return errors.NotAuthenticated("Token is required", nil)
	}

	userID, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return errors.NotAuthenticated("Invalid or expired token", err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
