package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"pasarkerja/internal/domain/entity"
	"pasarkerja/internal/domain/repository"
	"pasarkerja/internal/infrastructure/ratelimit"
	"pasarkerja/pkg/errors"
)

// ChatUseCase wraps the message store: conversation creation on offer
// initiation, durable sends, and history reads. The remote store is the
// sole source of truth; session controllers reconcile toward it.
type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		rateLimiter: rateLimiter,
	}
}

type CreateChatInput struct {
	SellerID       string
	ContractID     string
	InitialMessage string
}

type SendMessageInput struct {
	ChatID  string
	Content string
}

type ChatResponse struct {
	*entity.Chat
	Counterpart *entity.User `json:"counterpart,omitempty"`
}

// CreateChat opens the conversation between a buyer and a seller when an
// offer or contract is initiated. An existing chat for the same pair (and
// contract, when given) is reused instead of duplicated.
func (uc *ChatUseCase) CreateChat(ctx context.Context, buyerID string, input CreateChatInput) (*ChatResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(buyerID, "create_chat")
	if !allowed {
		log.Printf("CreateChat Rate Limited: User %s must wait %v", buyerID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another chat", waitTime)
	}

	if buyerID == input.SellerID {
		log.Printf("CreateChat Error: User %s attempted to create chat with themselves", buyerID)
		return nil, errors.Validation("You cannot create a chat with yourself", nil)
	}

	seller, err := uc.userRepo.GetByID(ctx, input.SellerID)
	if err != nil {
		log.Printf("CreateChat Error: Seller %s not found: %v", input.SellerID, err)
		return nil, errors.NotFound("Seller", err)
	}

	var chatToReturn *entity.Chat

	existingChat, err := uc.findExistingChat(ctx, buyerID, input.SellerID, input.ContractID)
	if err == nil && existingChat != nil {
		chatToReturn = existingChat
	} else {
		if err != nil && !errors.Is(err, errors.CodeNotFound) {
			log.Printf("CreateChat Error: Failed to search for existing chat: %v", err)
			return nil, err
		}

		newChat := &entity.Chat{
			Participants: []string{buyerID, input.SellerID},
			BuyerID:      buyerID,
			SellerID:     input.SellerID,
			ContractID:   input.ContractID,
		}

		if err := uc.chatRepo.Create(ctx, newChat); err != nil {
			log.Printf("CreateChat Error: Failed to create new chat in repository: %v", err)
			return nil, err
		}
		chatToReturn = newChat
	}

	if input.InitialMessage != "" {
		if _, err := uc.SendMessage(ctx, buyerID, SendMessageInput{
			ChatID:  chatToReturn.ID,
			Content: input.InitialMessage,
		}); err != nil {
			log.Printf("CreateChat Error: Failed to send initial message for chat %s: %v", chatToReturn.ID, err)
			return nil, err
		}
	}

	return &ChatResponse{
		Chat:        chatToReturn,
		Counterpart: seller,
	}, nil
}

func (uc *ChatUseCase) findExistingChat(ctx context.Context, buyerID, sellerID, contractID string) (*entity.Chat, error) {
	if contractID != "" {
		return uc.chatRepo.GetByContractID(ctx, contractID)
	}

	chats, _, err := uc.chatRepo.ListByUserID(ctx, buyerID, -1, 0)
	if err != nil {
		log.Printf("findExistingChat Error: Failed to list chats for user %s: %v", buyerID, err)
		return nil, err
	}

	for _, chat := range chats {
		if chat.ContractID == "" && chat.HasParticipant(buyerID) && chat.HasParticipant(sellerID) {
			return chat, nil
		}
	}

	return nil, errors.NotFound("Existing chat", nil)
}

// SendMessage durably appends a message. The live channel for the chat will
// later observe the same insert, including on the sender's own client; the
// session controller dedupes that echo by message ID.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, errors.Validation("Message content cannot be empty", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
	if !allowed {
		log.Printf("SendMessage Rate Limited: User %s must wait %v", senderID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	chat, err := uc.chatRepo.GetByID(ctx, input.ChatID)
	if err != nil {
		log.Printf("SendMessage Error: Chat %s not found: %v", input.ChatID, err)
		return nil, err
	}

	if !chat.HasParticipant(senderID) {
		log.Printf("SendMessage Error: User %s is not a participant in chat %s", senderID, input.ChatID)
		return nil, errors.Forbidden("User is not a participant in this chat", nil)
	}

	message := &entity.Message{
		ChatID:    input.ChatID,
		SenderID:  senderID,
		Content:   input.Content,
		CreatedAt: time.Now(),
	}

	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		log.Printf("SendMessage Error: Failed to create message for chat %s: %v", input.ChatID, err)
		return nil, err
	}

	chat.LastMessage = message.Content
	chat.LastMessageAt = message.CreatedAt
	chat.LastSenderID = senderID
	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		// The message itself is durable; last-activity bookkeeping catches up
		// on the next send.
		log.Printf("SendMessage Error: Failed to update chat %s with last message: %v", chat.ID, err)
	}

	return message, nil
}

// GetChatMessages returns the chat history in ascending creation order.
func (uc *ChatUseCase) GetChatMessages(ctx context.Context, userID, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		log.Printf("GetChatMessages Error: Chat %s not found: %v", chatID, err)
		return nil, 0, err
	}

	if !chat.HasParticipant(userID) {
		log.Printf("GetChatMessages Error: User %s is not a participant in chat %s", userID, chatID)
		return nil, 0, errors.Forbidden("User is not a participant in this chat", nil)
	}

	return uc.chatRepo.GetMessagesByChat(ctx, chatID, limit, offset)
}

func (uc *ChatUseCase) GetChatByID(ctx context.Context, userID, chatID string) (*ChatResponse, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		log.Printf("GetChatByID Error: Chat %s not found: %v", chatID, err)
		return nil, err
	}

	if !chat.HasParticipant(userID) {
		log.Printf("GetChatByID Error: User %s is not a participant in chat %s", userID, chatID)
		return nil, errors.Forbidden("User is not a participant in this chat", nil)
	}

	chatResp := &ChatResponse{Chat: chat}

	counterpart, err := uc.userRepo.GetByID(ctx, chat.CounterpartOf(userID))
	if err == nil {
		chatResp.Counterpart = counterpart
	} else {
		log.Printf("GetChatByID Warning: Counterpart not found for chat %s: %v", chat.ID, err)
	}

	return chatResp, nil
}
