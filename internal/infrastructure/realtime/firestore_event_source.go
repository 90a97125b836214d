package realtime

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pasarkerja/internal/domain/entity"
	"pasarkerja/pkg/errors"
	"pasarkerja/pkg/logger"
)

// FirestoreEventSource adapts Firestore snapshot listeners into the
// EventSource contract: each subscription watches one chat's messages
// subcollection and forwards document-added changes.
type FirestoreEventSource struct {
	client *firestore.Client
	buffer int
}

func NewFirestoreEventSource(client *firestore.Client, buffer int) *FirestoreEventSource {
	if buffer <= 0 {
		buffer = 64
	}
	return &FirestoreEventSource{
		client: client,
		buffer: buffer,
	}
}

func (s *FirestoreEventSource) Subscribe(ctx context.Context, chatID string) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	events := make(chan *entity.Message, s.buffer)
	sub := NewSubscription(events, cancel)

	snapshots := s.client.Collection("chats").Doc(chatID).Collection("messages").Snapshots(ctx)

	go func() {
		defer close(events)
		defer snapshots.Stop()

		for {
			snap, err := snapshots.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				// The feed is dead; a fresh Subscribe is required to resume.
				logger.Error("FirestoreEventSource: snapshot stream for chat %s failed: %v", chatID, err)
				return
			}

			for _, change := range snap.Changes {
				if change.Kind != firestore.DocumentAdded {
					continue
				}

				var message entity.Message
				if err := change.Doc.DataTo(&message); err != nil {
					evErr := errors.MalformedEvent("Live event failed to decode", err)
					logger.Warn("FirestoreEventSource: dropping event in chat %s: %v", chatID, evErr)
					continue
				}
				if message.ID == "" {
					message.ID = change.Doc.Ref.ID
				}
				if message.ChatID != chatID {
					evErr := errors.MalformedEvent("Live event carries chat ID "+message.ChatID, nil)
					logger.Warn("FirestoreEventSource: dropping event %s in chat %s: %v", message.ID, chatID, evErr)
					continue
				}

				select {
				case events <- &message:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}
