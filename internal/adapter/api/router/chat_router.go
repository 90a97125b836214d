package router

import (
	"github.com/labstack/echo/v4"

	"pasarkerja/internal/adapter/api/handler"
	"pasarkerja/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat-related routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()
	chatListHandler := handler.GetChatListHandler()

	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate) // All chat endpoints require authentication

	// Chat management
	chatGroup.POST("", chatHandler.CreateChat)              // POST /v1/chats - Open chat with a seller
	chatGroup.GET("", chatListHandler.GetUserChats)         // GET /v1/chats - Conversation list
	chatGroup.GET("/:id", chatHandler.GetChatByID)          // GET /v1/chats/:id - Get specific chat
	chatGroup.PUT("/:id/read", chatHandler.MarkChatAsRead)  // PUT /v1/chats/:id/read - Advance read marker

	// Message management
	chatGroup.POST("/:id/messages", chatHandler.SendMessage)    // POST /v1/chats/:id/messages - Send message
	chatGroup.GET("/:id/messages", chatHandler.GetChatMessages) // GET /v1/chats/:id/messages - Get chat messages
}
