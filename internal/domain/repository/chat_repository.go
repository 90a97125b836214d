package repository

import (
	"context"
	"time"

	"pasarkerja/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error)
	GetByContractID(ctx context.Context, contractID string) (*entity.Chat, error)
	Update(ctx context.Context, chat *entity.Chat) error

	// Message methods. Messages are append-only; GetMessagesByChat returns
	// them in ascending creation order.
	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessagesByChat(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error)

	// Read markers. AdvanceReadMarker is monotonic: a readAt older than the
	// stored marker is a no-op.
	GetReadMarker(ctx context.Context, chatID, userID string) (*entity.ReadMarker, error)
	AdvanceReadMarker(ctx context.Context, chatID, userID string, readAt time.Time) error
}
