package handler

import (
	"github.com/labstack/echo/v4"

	"pasarkerja/internal/usecase"
	"pasarkerja/pkg/response"
	"pasarkerja/pkg/utils"
)

type ChatHandler struct {
	chatUseCase      *usecase.ChatUseCase
	readStateUseCase *usecase.ReadStateUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, readStateUseCase *usecase.ReadStateUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase:      chatUseCase,
		readStateUseCase: readStateUseCase,
	}
}

type createChatRequest struct {
	SellerID       string `json:"seller_id" validate:"required"`
	ContractID     string `json:"contract_id"`
	InitialMessage string `json:"initial_message"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// CreateChat opens (or reuses) the conversation between the authenticated
// buyer and a seller.
func (h *ChatHandler) CreateChat(c echo.Context) error {
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	chat, err := h.chatUseCase.CreateChat(c.Request().Context(), userID, usecase.CreateChatInput{
		SellerID:       req.SellerID,
		ContractID:     req.ContractID,
		InitialMessage: req.InitialMessage,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, chat)
}

// GetChatByID returns a single chat the authenticated user participates in.
func (h *ChatHandler) GetChatByID(c echo.Context) error {
	userID := c.Get("uid").(string)
	chatID := c.Param("id")

	chat, err := h.chatUseCase.GetChatByID(c.Request().Context(), userID, chatID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

// GetChatMessages returns the chat's messages in ascending creation order.
func (h *ChatHandler) GetChatMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	chatID := c.Param("id")
	pagination := utils.GetPaginationParams(c)

	messages, total, err := h.chatUseCase.GetChatMessages(c.Request().Context(), userID, chatID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, pagination.Page, pagination.PageSize)
}

// SendMessage appends a message to the remote store.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)
	chatID := c.Param("id")

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ChatID:  chatID,
		Content: req.Content,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// MarkChatAsRead advances the caller's read marker. Always succeeds from
// the client's point of view; failures are only logged.
func (h *ChatHandler) MarkChatAsRead(c echo.Context) error {
	userID := c.Get("uid").(string)
	chatID := c.Param("id")

	h.readStateUseCase.MarkRead(c.Request().Context(), chatID, userID)

	return response.Success(c, map[string]string{
		"status": "read",
	})
}
