package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestConn returns a server-side websocket connection paired with a
// client the test can read from.
func dialTestConn(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return <-serverConns, client
}

func TestHubRegisterAndSend(t *testing.T) {
	hub := NewWSHub()
	server, client := dialTestConn(t)

	assert.False(t, hub.IsOnline("m1"))

	hub.Register("m1", server)
	assert.True(t, hub.IsOnline("m1"))

	err := hub.SendToMember("m1", WSMessage{Type: WSEventMessage, SenderID: "m2", Message: "hi"})
	require.NoError(t, err)

	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var got WSMessage
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, WSEventMessage, got.Type)
	assert.Equal(t, "m2", got.SenderID)
	assert.Equal(t, "hi", got.Message)
}

func TestHubSendToOffline(t *testing.T) {
	hub := NewWSHub()

	err := hub.SendToMember("nobody", WSMessage{Type: WSEventMessage})
	assert.Error(t, err)

	// Notify swallows the offline case
	hub.Notify("nobody", WSMessage{Type: WSEventMessage})
}

func TestHubUnregisterOnlyRemovesSameConn(t *testing.T) {
	hub := NewWSHub()
	first, _ := dialTestConn(t)
	second, _ := dialTestConn(t)

	hub.Register("m1", first)
	hub.Register("m1", second)
	assert.True(t, hub.IsOnline("m1"))

	// The stale connection's cleanup must not kick out the newer one
	hub.Unregister("m1", first)
	assert.True(t, hub.IsOnline("m1"))

	hub.Unregister("m1", second)
	assert.False(t, hub.IsOnline("m1"))
}

func TestHubConcurrentSendsToOneMember(t *testing.T) {
	hub := NewWSHub()
	server, client := dialTestConn(t)
	hub.Register("m1", server)

	const senders = 16
	var wg sync.WaitGroup
	wg.Add(senders)
	for i := 0; i < senders; i++ {
		go func(n int) {
			defer wg.Done()
			hub.Notify("m1", WSMessage{Type: WSEventMessage, Message: strconv.Itoa(n)})
		}(i)
	}

	for i := 0; i < senders; i++ {
		_, _, err := client.ReadMessage()
		require.NoError(t, err)
	}
	wg.Wait()
}

func TestHubRelayTyping(t *testing.T) {
	hub := NewWSHub()
	server, client := dialTestConn(t)
	hub.Register("recipient", server)

	hub.RelayTyping("sender", "recipient")

	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var got WSMessage
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, WSEventTyping, got.Type)
	assert.Equal(t, "sender", got.SenderID)
}
