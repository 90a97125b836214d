package handler

import (
	"pasarkerja/internal/usecase"
)

var (
	chatHandler     *ChatHandler
	chatListHandler *ChatListHandler
)

func Setup(
	chatUseCase *usecase.ChatUseCase,
	chatListUseCase *usecase.ChatListUseCase,
	readStateUseCase *usecase.ReadStateUseCase,
) {
	chatHandler = NewChatHandler(chatUseCase, readStateUseCase)
	chatListHandler = NewChatListHandler(chatListUseCase)
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetChatListHandler() *ChatListHandler {
	return chatListHandler
}
