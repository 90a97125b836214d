package usecase

import (
	"context"
	"log"
	"time"

	"pasarkerja/internal/domain/entity"
	"pasarkerja/internal/domain/repository"
	"pasarkerja/pkg/utils"
)

// ChatListUseCase builds the conversation summary view: counterpart profile,
// unread flag, and a human-relative last-activity label per chat.
type ChatListUseCase struct {
	chatRepo  repository.ChatRepository
	userRepo  repository.UserRepository
	readState *ReadStateUseCase

	now func() time.Time
}

func NewChatListUseCase(chatRepo repository.ChatRepository, userRepo repository.UserRepository, readState *ReadStateUseCase) *ChatListUseCase {
	return &ChatListUseCase{
		chatRepo:  chatRepo,
		userRepo:  userRepo,
		readState: readState,
		now:       time.Now,
	}
}

type ChatSummary struct {
	*entity.Chat
	Counterpart  *entity.User `json:"counterpart,omitempty"`
	LastActivity string       `json:"last_activity"`
	Unread       bool         `json:"unread"`
}

// LoadSummaries lists the caller's conversations with derived display state.
// A missing counterpart profile degrades that one summary, never the list.
func (uc *ChatListUseCase) LoadSummaries(ctx context.Context, userID string, limit, offset int) ([]*ChatSummary, int64, error) {
	chats, total, err := uc.chatRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		log.Printf("LoadSummaries Error: Failed to list chats for user %s: %v", userID, err)
		return nil, 0, err
	}

	now := uc.now()
	var summaries []*ChatSummary

	for _, chat := range chats {
		summary := &ChatSummary{
			Chat:         chat,
			LastActivity: utils.FormatRelativeTime(lastActivityOf(chat), now),
			Unread:       uc.readState.HasUnread(ctx, chat.ID, userID),
		}

		counterpart, err := uc.userRepo.GetByID(ctx, chat.CounterpartOf(userID))
		if err == nil {
			summary.Counterpart = counterpart
		} else {
			log.Printf("LoadSummaries Warning: Counterpart %s not found for chat %s: %v", chat.CounterpartOf(userID), chat.ID, err)
		}

		summaries = append(summaries, summary)
	}

	return summaries, total, nil
}

func lastActivityOf(chat *entity.Chat) time.Time {
	if !chat.LastMessageAt.IsZero() {
		return chat.LastMessageAt
	}
	return chat.CreatedAt
}
