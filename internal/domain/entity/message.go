package entity

import "time"

// Message is append-only and immutable once created. Messages within a chat
// are totally ordered by creation timestamp, ties broken by ID.
type Message struct {
	ID        string    `json:"id" firestore:"id"`
	ChatID    string    `json:"chat_id" firestore:"chatId"`
	SenderID  string    `json:"sender_id" firestore:"senderId"`
	Content   string    `json:"content" firestore:"content"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// Before reports whether m sorts ahead of other in the chat's total order.
func (m *Message) Before(other *Message) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.ID < other.ID
	}
	return m.CreatedAt.Before(other.CreatedAt)
}
