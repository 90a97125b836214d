package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pasarkerja/internal/domain/entity"
	"pasarkerja/internal/domain/repository"
	"pasarkerja/internal/infrastructure/realtime"
	"pasarkerja/pkg/errors"
)

// fakeChatRepo is an in-memory ChatRepository with the same contract as the
// Firestore adapter: ascending message order, monotonic read markers.
type fakeChatRepo struct {
	mu       sync.Mutex
	chats    map[string]*entity.Chat
	messages map[string][]*entity.Message
	markers  map[string]*entity.ReadMarker

	failCreateMessage error
	failGetMessages   error
	failAdvanceMarker error

	onCreateMessage func(*entity.Message)
	advanceCalls    int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:    make(map[string]*entity.Chat),
		messages: make(map[string][]*entity.Message),
		markers:  make(map[string]*entity.ReadMarker),
	}
}

var _ repository.ChatRepository = (*fakeChatRepo)(nil)

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	copied := *chat
	return &copied, nil
}

func (r *fakeChatRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Chat
	for _, chat := range r.chats {
		if chat.HasParticipant(userID) {
			copied := *chat
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, int64(len(out)), nil
}

func (r *fakeChatRepo) GetByContractID(ctx context.Context, contractID string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, chat := range r.chats {
		if chat.ContractID == contractID {
			copied := *chat
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *fakeChatRepo) Update(ctx context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[chat.ID]; !ok {
		return errors.NotFound("Chat", nil)
	}
	copied := *chat
	copied.UpdatedAt = time.Now()
	r.chats[chat.ID] = &copied
	return nil
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	if r.failCreateMessage != nil {
		err := r.failCreateMessage
		r.mu.Unlock()
		return err
	}
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	r.messages[message.ChatID] = append(r.messages[message.ChatID], message)
	hook := r.onCreateMessage
	r.mu.Unlock()

	if hook != nil {
		hook(message)
	}
	return nil
}

func (r *fakeChatRepo) GetMessagesByChat(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGetMessages != nil {
		return nil, 0, r.failGetMessages
	}
	msgs := append([]*entity.Message(nil), r.messages[chatID]...)
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Before(msgs[j])
	})
	return msgs, int64(len(msgs)), nil
}

func (r *fakeChatRepo) GetReadMarker(ctx context.Context, chatID, userID string) (*entity.ReadMarker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	marker, ok := r.markers[chatID+"/"+userID]
	if !ok {
		return nil, errors.NotFound("Read marker", nil)
	}
	copied := *marker
	return &copied, nil
}

func (r *fakeChatRepo) AdvanceReadMarker(ctx context.Context, chatID, userID string, readAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advanceCalls++
	if r.failAdvanceMarker != nil {
		return r.failAdvanceMarker
	}
	key := chatID + "/" + userID
	if existing, ok := r.markers[key]; ok && !existing.LastReadAt.Before(readAt) {
		return nil
	}
	r.markers[key] = &entity.ReadMarker{ChatID: chatID, UserID: userID, LastReadAt: readAt}
	return nil
}

func (r *fakeChatRepo) markerOf(chatID, userID string) *entity.ReadMarker {
	r.mu.Lock()
	defer r.mu.Unlock()
	marker, ok := r.markers[chatID+"/"+userID]
	if !ok {
		return nil
	}
	copied := *marker
	return &copied
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *fakeUserRepo) GetUserByRole(ctx context.Context, role string, limit int) []*entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

// fakeEventSource is a controllable push feed. Emit delivers to every open
// subscription for the chat, mimicking the store echoing inserts to all
// listeners.
type fakeEventSource struct {
	mu    sync.Mutex
	feeds map[string][]chan *entity.Message

	failSubscribe error
}

func newFakeEventSource() *fakeEventSource {
	return &fakeEventSource{feeds: make(map[string][]chan *entity.Message)}
}

var _ realtime.EventSource = (*fakeEventSource)(nil)

func (f *fakeEventSource) Subscribe(ctx context.Context, chatID string) (*realtime.Subscription, error) {
	if f.failSubscribe != nil {
		return nil, f.failSubscribe
	}

	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan *entity.Message, 64)

	f.mu.Lock()
	f.feeds[chatID] = append(f.feeds[chatID], ch)
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		remaining := f.feeds[chatID][:0]
		for _, feed := range f.feeds[chatID] {
			if feed != ch {
				remaining = append(remaining, feed)
			}
		}
		f.feeds[chatID] = remaining
		f.mu.Unlock()
		close(ch)
	}()

	return realtime.NewSubscription(ch, cancel), nil
}

func (f *fakeEventSource) Emit(chatID string, message *entity.Message) {
	f.mu.Lock()
	feeds := append([]chan *entity.Message(nil), f.feeds[chatID]...)
	f.mu.Unlock()
	for _, ch := range feeds {
		ch <- message
	}
}
