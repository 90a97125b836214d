package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"pasarkerja/internal/usecase"
)

// Client represents a WebSocket connection client
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	// session is the open conversation view bound to this connection, nil
	// when none. Only the client's read loop and the manager's unregister
	// path touch it.
	session *usecase.ChatSession
}

// Manager manages all active WebSocket connections and the chat sessions
// bound to them.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex

	sessions *usecase.ChatSessionUseCase
}

func NewManager(sessions *usecase.ChatSessionUseCase) *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		sessions:   sessions,
	}
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				log.Printf("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				// The view is gone; the live channel must go with it. Close
				// the session before the send channel so no in-flight push
				// callback writes to a closed channel.
				if client.session != nil {
					client.session.Close()
					client.session = nil
				}

				m.mutex.Lock()
				if _, ok := m.clients[client.UserID]; ok {
					delete(m.clients, client.UserID)
					close(client.Send)
				}
				m.mutex.Unlock()
				log.Printf("Client unregistered: %s", client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		m.HandleClientMessage(c, message)
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		err := c.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
	}
}
