package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasarkerja/internal/domain/entity"
	"pasarkerja/pkg/errors"
)

type stubSource struct {
	subscribes int
	failWith   error
}

func (s *stubSource) Subscribe(ctx context.Context, chatID string) (*Subscription, error) {
	s.subscribes++
	if s.failWith != nil {
		return nil, s.failWith
	}

	ctx, cancel := context.WithCancel(ctx)
	events := make(chan *entity.Message)
	go func() {
		<-ctx.Done()
		close(events)
	}()
	return NewSubscription(events, cancel), nil
}

func TestManagerAllowsOneChannelPerViewerPerChat(t *testing.T) {
	source := &stubSource{}
	m := NewManager(source)

	sub, err := m.Open(context.Background(), "user-a", "chat-1")
	require.NoError(t, err)
	assert.Equal(t, 1, m.ActiveCount())

	_, err = m.Open(context.Background(), "user-a", "chat-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeConflict))
	assert.Equal(t, 1, source.subscribes, "the source must not see the rejected open")

	// Distinct chats each get their own channel.
	other, err := m.Open(context.Background(), "user-a", "chat-2")
	require.NoError(t, err)
	assert.Equal(t, 2, m.ActiveCount())

	sub.Close()
	other.Close()
	assert.Equal(t, 0, m.ActiveCount())
}

func TestManagerAllowsBothParticipantsOnSameChat(t *testing.T) {
	source := &stubSource{}
	m := NewManager(source)

	buyerSub, err := m.Open(context.Background(), "user-buyer", "chat-1")
	require.NoError(t, err)

	// The counterpart opening their own view of the same conversation is
	// legitimate and must not collide with the buyer's channel.
	sellerSub, err := m.Open(context.Background(), "user-seller", "chat-1")
	require.NoError(t, err)
	assert.Equal(t, 2, m.ActiveCount())
	assert.Equal(t, 2, source.subscribes)

	buyerSub.Close()
	assert.Equal(t, 1, m.ActiveCount(), "closing one viewer's channel must not release the other's")

	sellerSub.Close()
	assert.Equal(t, 0, m.ActiveCount())
}

func TestManagerReopensAfterClose(t *testing.T) {
	m := NewManager(&stubSource{})

	sub, err := m.Open(context.Background(), "user-a", "chat-1")
	require.NoError(t, err)
	sub.Close()

	reopened, err := m.Open(context.Background(), "user-a", "chat-1")
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 1, m.ActiveCount())
}

func TestManagerReleasesSlotOnSubscribeFailure(t *testing.T) {
	source := &stubSource{failWith: errors.BackendUnavailable("feed down", nil)}
	m := NewManager(source)

	_, err := m.Open(context.Background(), "user-a", "chat-1")
	require.Error(t, err)
	assert.Equal(t, 0, m.ActiveCount())

	// The slot is free again once the source recovers.
	source.failWith = nil
	sub, err := m.Open(context.Background(), "user-a", "chat-1")
	require.NoError(t, err)
	sub.Close()
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	m := NewManager(&stubSource{})

	sub, err := m.Open(context.Background(), "user-a", "chat-1")
	require.NoError(t, err)

	sub.Close()
	sub.Close()
	sub.Close()
	assert.Equal(t, 0, m.ActiveCount())
}

func TestSubscriptionCloseNilSafe(t *testing.T) {
	var sub *Subscription
	assert.NotPanics(t, func() { sub.Close() })
}

func TestSubscriptionEventsCloseAfterCancel(t *testing.T) {
	m := NewManager(&stubSource{})

	sub, err := m.Open(context.Background(), "user-a", "chat-1")
	require.NoError(t, err)

	sub.Close()

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok, "events channel must close after Close")
	case <-time.After(time.Second):
		t.Fatal("events channel never closed")
	}
}
