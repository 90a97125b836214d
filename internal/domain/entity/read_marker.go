package entity

import "time"

// ReadMarker is a per-participant high-water mark: the creation time of the
// newest message the participant has seen in a chat. It never moves backward.
type ReadMarker struct {
	ChatID     string    `json:"chat_id" firestore:"chatId"`
	UserID     string    `json:"user_id" firestore:"userId"`
	LastReadAt time.Time `json:"last_read_at" firestore:"lastReadAt"`
}
