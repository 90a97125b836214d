package handler

import (
	"github.com/labstack/echo/v4"

	"pasarkerja/internal/usecase"
	"pasarkerja/pkg/response"
	"pasarkerja/pkg/utils"
)

type ChatListHandler struct {
	chatListUseCase *usecase.ChatListUseCase
}

func NewChatListHandler(chatListUseCase *usecase.ChatListUseCase) *ChatListHandler {
	return &ChatListHandler{
		chatListUseCase: chatListUseCase,
	}
}

// GetUserChats returns the authenticated user's conversations, newest
// activity first, each with counterpart profile, unread flag and a
// relative activity label.
func (h *ChatListHandler) GetUserChats(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	summaries, total, err := h.chatListUseCase.LoadSummaries(c.Request().Context(), userID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, summaries, total, pagination.Page, pagination.PageSize)
}
