package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pasarkerja/internal/domain/entity"
	"pasarkerja/internal/domain/repository"
	"pasarkerja/pkg/errors"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

// mapStoreError translates Firestore transport errors into the subsystem's
// taxonomy. Anything that is not a definite NotFound/auth failure is treated
// as BackendUnavailable so callers can retry.
func mapStoreError(resource string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return errors.NotFound(resource, err)
	case codes.Unauthenticated:
		return errors.NotAuthenticated("No valid backend session", err)
	case codes.PermissionDenied:
		return errors.Forbidden("Access to "+resource+" denied", err)
	default:
		return errors.BackendUnavailable("Backend request failed for "+resource, err)
	}
}

func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}

	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	if chat.LastMessageAt.IsZero() {
		chat.LastMessageAt = now
	}

	_, err := r.client.Collection("chats").Doc(chat.ID).Set(ctx, chat)
	if err != nil {
		return mapStoreError("Chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.client.Collection("chats").Doc(id).Get(ctx)
	if err != nil {
		return nil, mapStoreError("Chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}

	return &chat, nil
}

func (r *firestoreChatRepository) GetByContractID(ctx context.Context, contractID string) (*entity.Chat, error) {
	query := r.client.Collection("chats").Where("contractId", "==", contractID).Limit(1)
	iter := query.Documents(ctx)
	doc, err := iter.Next()

	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Chat for contract", nil)
		}
		return nil, mapStoreError("Chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}

	return &chat, nil
}

func (r *firestoreChatRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	query := r.client.Collection("chats").Where("participants", "array-contains", userID).OrderBy("lastMessageAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching chats for user %s: %v", userID, err)
		return nil, 0, mapStoreError("Chats", err)
	}

	total := int64(len(allDocs))

	// Pagination in-memory; chat lists per user stay small
	start := offset
	end := len(allDocs)
	if limit > 0 && limit != -1 {
		end = start + limit
		if end > len(allDocs) {
			end = len(allDocs)
		}
	}
	if start > len(allDocs) {
		start = len(allDocs)
	}

	var chats []*entity.Chat
	for i := start; i < end; i++ {
		var chat entity.Chat
		if err := allDocs[i].DataTo(&chat); err != nil {
			log.Printf("Error parsing chat data for user %s: %v", userID, err)
			continue // Skip bad data instead of failing
		}
		chats = append(chats, &chat)
	}

	return chats, total, nil
}

func (r *firestoreChatRepository) Update(ctx context.Context, chat *entity.Chat) error {
	chat.UpdatedAt = time.Now()

	_, err := r.client.Collection("chats").Doc(chat.ID).Set(ctx, chat)
	if err != nil {
		return mapStoreError("Chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("chats").Doc(message.ChatID).Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return mapStoreError("Message", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetMessagesByChat(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("chats").Doc(chatID).Collection("messages").OrderBy("createdAt", firestore.Asc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while counting messages for chat %s: %v", chatID, err)
		return nil, 0, mapStoreError("Messages", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating messages for chat %s: %v", chatID, err)
			return nil, 0, mapStoreError("Messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing message data for chat %s: %v", chatID, err)
			return nil, 0, errors.Internal("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreChatRepository) GetReadMarker(ctx context.Context, chatID, userID string) (*entity.ReadMarker, error) {
	doc, err := r.client.Collection("chats").Doc(chatID).Collection("readMarkers").Doc(userID).Get(ctx)
	if err != nil {
		return nil, mapStoreError("Read marker", err)
	}

	var marker entity.ReadMarker
	if err := doc.DataTo(&marker); err != nil {
		return nil, errors.Internal("Failed to parse read marker data", err)
	}

	return &marker, nil
}

// AdvanceReadMarker moves the reader's high-water mark forward inside a
// transaction. Concurrent advances and stale readAt values can never move
// the marker backward.
func (r *firestoreChatRepository) AdvanceReadMarker(ctx context.Context, chatID, userID string, readAt time.Time) error {
	docRef := r.client.Collection("chats").Doc(chatID).Collection("readMarkers").Doc(userID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		marker := entity.ReadMarker{
			ChatID: chatID,
			UserID: userID,
		}
		if doc != nil && doc.Exists() {
			if err := doc.DataTo(&marker); err != nil {
				return err
			}
		}

		if !marker.LastReadAt.Before(readAt) {
			return nil // Already at or past readAt
		}

		marker.LastReadAt = readAt
		return tx.Set(docRef, marker)
	})

	if err != nil {
		return mapStoreError("Read marker", err)
	}

	return nil
}
