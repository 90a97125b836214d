package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return &Client{
		UserID: "user-test",
		Send:   make(chan []byte, 8),
	}
}

func receiveFrame(t *testing.T, client *Client) WSMessage {
	t.Helper()
	select {
	case raw := <-client.Send:
		var frame WSMessage
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	default:
		t.Fatal("no frame queued for client")
		return WSMessage{}
	}
}

func TestHandlePingRepliesPong(t *testing.T) {
	m := NewManager(nil)
	client := newTestClient()

	m.HandleClientMessage(client, []byte(`{"type":"ping"}`))

	frame := receiveFrame(t, client)
	assert.Equal(t, MessageTypePong, frame.Type)
}

func TestHandleMalformedFrame(t *testing.T) {
	m := NewManager(nil)
	client := newTestClient()

	m.HandleClientMessage(client, []byte(`{not json`))

	frame := receiveFrame(t, client)
	assert.Equal(t, MessageTypeError, frame.Type)
}

func TestHandleUnknownFrameType(t *testing.T) {
	m := NewManager(nil)
	client := newTestClient()

	m.HandleClientMessage(client, []byte(`{"type":"broadcast"}`))

	frame := receiveFrame(t, client)
	assert.Equal(t, MessageTypeError, frame.Type)
}

func TestSendWithoutJoinedChat(t *testing.T) {
	m := NewManager(nil)
	client := newTestClient()

	m.HandleClientMessage(client, []byte(`{"type":"send_message","data":{"content":"hi"}}`))

	frame := receiveFrame(t, client)
	assert.Equal(t, MessageTypeError, frame.Type)
}

func TestJoinWithoutChatID(t *testing.T) {
	m := NewManager(nil)
	client := newTestClient()

	m.HandleClientMessage(client, []byte(`{"type":"join_chat"}`))

	frame := receiveFrame(t, client)
	assert.Equal(t, MessageTypeError, frame.Type)
}
