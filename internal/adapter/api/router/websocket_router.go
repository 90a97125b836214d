package router

import (
	"github.com/labstack/echo/v4"

	"pasarkerja/internal/adapter/api/handler"
	"pasarkerja/internal/adapter/api/middleware"
)

// SetupWebSocketRouter sets up WebSocket routes
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	// WebSocket endpoint for real-time communication
	// Auth is handled inside the handler from the token query param
	e.GET("/ws", wsHandler.HandleWebSocket, middleware.WebSocketRateLimit())
}
