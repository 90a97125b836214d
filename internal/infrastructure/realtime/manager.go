package realtime

import (
	"context"
	"sync"

	"pasarkerja/pkg/errors"
	"pasarkerja/pkg/logger"
)

// Manager guards the invariant of at most one live channel per viewer per
// chat within the process. Both participants of a conversation may hold a
// channel at once; a second channel for the same viewer and chat before the
// first is closed is a caller error and is rejected.
type Manager struct {
	source EventSource

	mu     sync.Mutex
	active map[string]*Subscription
}

func NewManager(source EventSource) *Manager {
	return &Manager{
		source: source,
		active: make(map[string]*Subscription),
	}
}

func channelKey(userID, chatID string) string {
	return userID + "/" + chatID
}

func (m *Manager) Open(ctx context.Context, userID, chatID string) (*Subscription, error) {
	key := channelKey(userID, chatID)

	m.mu.Lock()
	if _, ok := m.active[key]; ok {
		m.mu.Unlock()
		return nil, errors.Conflict("A live channel is already open for this conversation")
	}
	// Reserve the slot before subscribing so a concurrent Open for the same
	// viewer and chat fails instead of racing the source.
	m.active[key] = nil
	m.mu.Unlock()

	sub, err := m.source.Subscribe(ctx, chatID)
	if err != nil {
		m.release(key)
		logger.Error("Manager.Open: failed to subscribe to chat %s: %v", chatID, err)
		return nil, err
	}

	sub.onClose = func() {
		m.release(key)
	}

	m.mu.Lock()
	m.active[key] = sub
	m.mu.Unlock()

	return sub, nil
}

func (m *Manager) release(key string) {
	m.mu.Lock()
	delete(m.active, key)
	m.mu.Unlock()
}

// ActiveCount reports the number of open channels, for diagnostics.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
