package websocket

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log"
	"time"

	"pasarkerja/internal/domain/entity"
	"pasarkerja/pkg/errors"
)

// WebSocket frame types
const (
	MessageTypePing       = "ping"
	MessageTypePong       = "pong"
	MessageTypeJoinChat   = "join_chat"
	MessageTypeLeaveChat  = "leave_chat"
	MessageTypeSendChat   = "send_message"
	MessageTypeMarkRead   = "mark_read"
	MessageTypeNewMessage = "new_message"
	MessageTypeError      = "error"
)

// WSMessage is the frame exchanged with the browser.
type WSMessage struct {
	Type      string      `json:"type"`
	ChatID    string      `json:"chat_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type sendMessageData struct {
	Content string `json:"content"`
}

type errorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Draft   string `json:"draft,omitempty"`
}

// HandleClientMessage processes one incoming frame. Commands run on the
// client's read loop, so a connection's session is never driven
// concurrently.
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var frame WSMessage

	if err := json.Unmarshal(messageBytes, &frame); err != nil {
		log.Printf("WebSocket: Failed to unmarshal frame from client %s: %v", client.UserID, err)
		m.sendErrorToClient(client, "BAD_FRAME", "Invalid message format", "")
		return
	}

	switch frame.Type {
	case MessageTypePing:
		m.handlePing(client)

	case MessageTypeJoinChat:
		m.handleJoinChat(client, frame)

	case MessageTypeLeaveChat:
		m.handleLeaveChat(client)

	case MessageTypeSendChat:
		m.handleSendMessage(client, frame)

	case MessageTypeMarkRead:
		m.handleMarkRead(client)

	default:
		log.Printf("WebSocket: Unknown frame type '%s' from client %s", frame.Type, client.UserID)
		m.sendErrorToClient(client, "BAD_FRAME", "Unknown message type", "")
	}
}

func (m *Manager) handlePing(client *Client) {
	m.sendToClient(client, WSMessage{
		Type:      MessageTypePong,
		Data:      map[string]string{"status": "alive"},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// handleJoinChat opens a session over the requested chat. Joining while
// another chat is open closes the previous session first, preserving the
// one-live-channel-per-conversation invariant.
func (m *Manager) handleJoinChat(client *Client, frame WSMessage) {
	if frame.ChatID == "" {
		m.sendErrorToClient(client, "BAD_FRAME", "Missing chat_id", "")
		return
	}

	if client.session != nil {
		client.session.Close()
		client.session = nil
	}

	session, err := m.sessions.Open(context.Background(), client.UserID, frame.ChatID, func(message *entity.Message) {
		m.pushMessage(client, message)
	})
	if err != nil {
		log.Printf("WebSocket: Client %s failed to join chat %s: %v", client.UserID, frame.ChatID, err)
		m.sendAppErrorToClient(client, err, "")
		return
	}

	client.session = session
	log.Printf("WebSocket: Client %s joined chat %s", client.UserID, frame.ChatID)

	m.sendToClient(client, WSMessage{
		Type:      "chat_history",
		ChatID:    frame.ChatID,
		Data:      session.Messages(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (m *Manager) handleLeaveChat(client *Client) {
	if client.session == nil {
		return
	}

	chatID := client.session.ChatID()
	client.session.Close()
	client.session = nil
	log.Printf("WebSocket: Client %s left chat %s", client.UserID, chatID)
}

func (m *Manager) handleSendMessage(client *Client, frame WSMessage) {
	if client.session == nil {
		m.sendErrorToClient(client, "NO_SESSION", "Join a chat before sending", "")
		return
	}

	dataBytes, err := json.Marshal(frame.Data)
	if err != nil {
		m.sendErrorToClient(client, "BAD_FRAME", "Invalid send message data", "")
		return
	}

	var data sendMessageData
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		m.sendErrorToClient(client, "BAD_FRAME", "Invalid send message format", "")
		return
	}

	client.session.SetDraft(data.Content)
	if _, err := client.session.Send(context.Background()); err != nil {
		// The session restored the draft; hand it back so the compose box
		// keeps the user's text.
		m.sendAppErrorToClient(client, err, client.session.Draft())
		return
	}
}

func (m *Manager) handleMarkRead(client *Client) {
	if client.session == nil {
		return
	}
	client.session.MarkRead(context.Background())
}

// pushMessage forwards a session event to the browser.
func (m *Manager) pushMessage(client *Client, message *entity.Message) {
	m.sendToClient(client, WSMessage{
		Type:      MessageTypeNewMessage,
		ChatID:    message.ChatID,
		Data:      message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (m *Manager) sendToClient(client *Client, frame WSMessage) {
	messageBytes, err := json.Marshal(frame)
	if err != nil {
		log.Printf("WebSocket: Failed to marshal frame for client %s: %v", client.UserID, err)
		return
	}

	select {
	case client.Send <- messageBytes:
	default:
		log.Printf("WebSocket: Client %s send channel full, dropping frame", client.UserID)
	}
}

func (m *Manager) sendAppErrorToClient(client *Client, err error, draft string) {
	code := errors.CodeInternal
	message := "An unexpected error occurred"

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	}

	m.sendErrorToClient(client, code, message, draft)
}

func (m *Manager) sendErrorToClient(client *Client, code, message, draft string) {
	m.sendToClient(client, WSMessage{
		Type: MessageTypeError,
		Data: errorData{
			Code:    code,
			Message: message,
			Draft:   draft,
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
