package usecase

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"pasarkerja/internal/domain/entity"
	"pasarkerja/internal/domain/repository"
	"pasarkerja/internal/infrastructure/realtime"
	"pasarkerja/pkg/errors"
)

type SessionState int

const (
	SessionLoading SessionState = iota
	SessionReady
	SessionClosed
)

// ChatSessionUseCase opens live sessions over single conversations. Each
// session combines the initial history load, the live channel, and outgoing
// sends into one state machine consumed by a presentation layer.
type ChatSessionUseCase struct {
	chats     *ChatUseCase
	chatRepo  repository.ChatRepository
	readState *ReadStateUseCase
	channels  *realtime.Manager
}

func NewChatSessionUseCase(
	chats *ChatUseCase,
	chatRepo repository.ChatRepository,
	readState *ReadStateUseCase,
	channels *realtime.Manager,
) *ChatSessionUseCase {
	return &ChatSessionUseCase{
		chats:     chats,
		chatRepo:  chatRepo,
		readState: readState,
		channels:  channels,
	}
}

// ChatSession holds the local state of one open conversation view: the
// message list currently believed authoritative, the compose draft, and the
// live channel handle. All mutations serialize through one mutex; after
// Close nothing mutates the session again.
type ChatSession struct {
	chatID        string
	userID        string
	counterpartID string

	chats     *ChatUseCase
	readState *ReadStateUseCase

	mu        sync.Mutex
	state     SessionState
	messages  []*entity.Message
	draft     string
	sub       *realtime.Subscription
	onMessage func(*entity.Message)
}

// Open loads the history, opens the live channel, and marks counterpart
// messages read. A failed history load returns the error without opening a
// channel; the caller may retry with a fresh Open. Cancelling ctx abandons
// the load and, once the session exists, tears down the channel's feed.
//
// onMessage fires once per message newly inserted into local state, in
// arrival order; it is never called after Close.
func (uc *ChatSessionUseCase) Open(ctx context.Context, userID, chatID string, onMessage func(*entity.Message)) (*ChatSession, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this chat", nil)
	}

	history, _, err := uc.chatRepo.GetMessagesByChat(ctx, chatID, -1, 0)
	if err != nil {
		log.Printf("SessionOpen Error: Failed to load history for chat %s: %v", chatID, err)
		return nil, err
	}

	sub, err := uc.channels.Open(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	// History arrives ordered from the store, but re-sorting makes the
	// session independent of that guarantee.
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Before(history[j])
	})

	s := &ChatSession{
		chatID:        chatID,
		userID:        userID,
		counterpartID: chat.CounterpartOf(userID),
		chats:         uc.chats,
		readState:     uc.readState,
		state:         SessionReady,
		messages:      history,
		sub:           sub,
		onMessage:     onMessage,
	}

	go s.consume(sub)

	if s.hasCounterpartMessages() {
		uc.readState.MarkRead(ctx, chatID, userID)
	}

	return s, nil
}

func (s *ChatSession) hasCounterpartMessages() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].SenderID != s.userID {
			return true
		}
	}
	return false
}

func (s *ChatSession) consume(sub *realtime.Subscription) {
	for message := range sub.Events() {
		s.handleInsert(message)
	}
}

// handleInsert applies one live-channel event: dedupe by ID, insert in
// chronological position (delivery order is not creation order), and
// re-mark read when the sender is the counterpart.
func (s *ChatSession) handleInsert(message *entity.Message) {
	if message.ID == "" || message.ChatID != s.chatID {
		log.Printf("Session %s Warning: dropping malformed event (id=%q chat=%q)", s.chatID, message.ID, message.ChatID)
		return
	}

	s.mu.Lock()
	if s.state != SessionReady {
		s.mu.Unlock()
		return
	}
	inserted := s.insertLocked(message)
	if inserted && s.onMessage != nil {
		// Invoked under the mutex so no callback can fire once Close has
		// returned. The callback must not call back into the session.
		s.onMessage(message)
	}
	s.mu.Unlock()

	if inserted && message.SenderID != s.userID {
		s.readState.MarkRead(context.Background(), s.chatID, s.userID)
	}
}

// insertLocked places the message at its chronological position, returning
// false when a message with the same ID is already present. Caller holds mu.
func (s *ChatSession) insertLocked(message *entity.Message) bool {
	for _, existing := range s.messages {
		if existing.ID == message.ID {
			return false
		}
	}

	idx := sort.Search(len(s.messages), func(i int) bool {
		return message.Before(s.messages[i])
	})
	s.messages = append(s.messages, nil)
	copy(s.messages[idx+1:], s.messages[idx:])
	s.messages[idx] = message
	return true
}

// SetDraft replaces the compose buffer.
func (s *ChatSession) SetDraft(content string) {
	s.mu.Lock()
	s.draft = content
	s.mu.Unlock()
}

func (s *ChatSession) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Send submits the compose buffer. The buffer clears immediately, but the
// message joins local state only once the store confirms the write; there is
// no optimistic insert. On failure the buffer is restored with the original
// content (unless the user typed something new meanwhile) and the error is
// returned as a value.
func (s *ChatSession) Send(ctx context.Context) (*entity.Message, error) {
	s.mu.Lock()
	if s.state != SessionReady {
		s.mu.Unlock()
		return nil, errors.Conflict("Chat session is not ready")
	}
	draft := s.draft
	s.draft = ""
	s.mu.Unlock()

	if strings.TrimSpace(draft) == "" {
		s.restoreDraft(draft)
		return nil, errors.Validation("Message content cannot be empty", nil)
	}

	message, err := s.chats.SendMessage(ctx, s.userID, SendMessageInput{
		ChatID:  s.chatID,
		Content: draft,
	})
	if err != nil {
		s.restoreDraft(draft)
		return nil, err
	}

	// The live channel will echo this insert back; insertLocked dedupes it.
	s.mu.Lock()
	if s.state == SessionReady {
		s.insertLocked(message)
	}
	s.mu.Unlock()

	return message, nil
}

func (s *ChatSession) restoreDraft(original string) {
	s.mu.Lock()
	if s.draft == "" {
		s.draft = original
	}
	s.mu.Unlock()
}

// Messages returns a snapshot of the local message list in chronological
// order.
func (s *ChatSession) Messages() []*entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *ChatSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ChatSession) ChatID() string {
	return s.chatID
}

func (s *ChatSession) CounterpartID() string {
	return s.counterpartID
}

// MarkRead advances the caller's read marker; best-effort.
func (s *ChatSession) MarkRead(ctx context.Context) {
	s.readState.MarkRead(ctx, s.chatID, s.userID)
}

// Close tears the session down: the live channel is released and no event,
// send, or callback mutates the session afterwards. Close is idempotent.
func (s *ChatSession) Close() {
	s.mu.Lock()
	if s.state == SessionClosed {
		s.mu.Unlock()
		return
	}
	s.state = SessionClosed
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	sub.Close()
}
