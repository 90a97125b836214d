package usecase

import (
	"context"
	"log"

	"pasarkerja/internal/domain/repository"
)

// ReadStateUseCase maintains per-participant read markers. Read state is
// best-effort: it must never block or fail message display, so every
// operation here absorbs backend errors with a log line.
type ReadStateUseCase struct {
	chatRepo repository.ChatRepository
}

func NewReadStateUseCase(chatRepo repository.ChatRepository) *ReadStateUseCase {
	return &ReadStateUseCase{
		chatRepo: chatRepo,
	}
}

// MarkRead advances the reader's marker to the newest known message in the
// chat. Repeated calls with no new messages are no-ops, and the marker never
// moves backward.
func (uc *ReadStateUseCase) MarkRead(ctx context.Context, chatID, readerID string) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		log.Printf("MarkRead Warning: Chat %s not found: %v", chatID, err)
		return
	}

	if !chat.HasParticipant(readerID) {
		log.Printf("MarkRead Warning: User %s is not a participant in chat %s", readerID, chatID)
		return
	}

	if chat.LastMessageAt.IsZero() {
		return // Nothing to mark
	}

	if err := uc.chatRepo.AdvanceReadMarker(ctx, chatID, readerID, chat.LastMessageAt); err != nil {
		log.Printf("MarkRead Warning: Failed to advance read marker for chat %s user %s: %v", chatID, readerID, err)
	}
}

// HasUnread reports whether the chat holds messages newer than the reader's
// marker. A missing marker means everything since chat creation is unread.
func (uc *ReadStateUseCase) HasUnread(ctx context.Context, chatID, readerID string) bool {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil || chat.LastMessageAt.IsZero() {
		return false
	}

	if chat.LastSenderID == readerID {
		return false // The newest message is the reader's own
	}

	marker, err := uc.chatRepo.GetReadMarker(ctx, chatID, readerID)
	if err != nil {
		return true
	}

	return marker.LastReadAt.Before(chat.LastMessageAt)
}
