package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/mocks"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/utils"
	chat_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/chat-case"
	room_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/room-case"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsFixture struct {
	hub    *Hub
	repo   *mocks.ChatRepo
	server *httptest.Server
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	hub := NewHub()
	repo := mocks.NewChatRepo()
	chat := chat_service.NewChatService(repo, hub, 720)
	rooms := room_service.NewRoomService(repo, utils.NewCache[entity.Room](nil, "room:", time.Minute), 0)

	_, appErr := rooms.CreateRoom(context.Background(), chat_dto.CreateRoomRequest{Code: "AB12CD", Creator: "alice"})
	require.Nil(t, appErr)

	handler := NewWebSocketHandler(hub, chat, rooms, "*")
	server := httptest.NewServer(http.HandlerFunc(handler.HandleWS))
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return &wsFixture{hub: hub, repo: repo, server: server}
}

func (f *wsFixture) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"event": event, "data": data})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

// next reads frames until one with the given event arrives and returns it
// together with the events skipped on the way.
func next(t *testing.T, conn *websocket.Conn, event string) (frame, []string) {
	t.Helper()
	var skipped []string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		var f frame
		require.NoError(t, json.Unmarshal(raw, &f))
		if f.Event == event {
			return f, skipped
		}
		skipped = append(skipped, f.Event)
	}
}

func TestWebSocket_MessageFlow(t *testing.T) {
	f := newWSFixture(t)

	alice := f.dial(t, "clientId=alice&roomId=AB12CD")
	assert.Eventually(t, func() bool { return f.hub.GetRoomStats("AB12CD").Connections == 1 }, 5*time.Second, 5*time.Millisecond)

	bob := f.dial(t, "clientId=bob")
	send(t, bob, chat_dto.EventJoinRoom, map[string]string{"roomId": "ab12cd"})

	status, _ := next(t, alice, chat_dto.EventUserStatus)
	assert.Equal(t, "bob", status.Data["clientId"])
	assert.Equal(t, "online", status.Data["status"])

	room, appErr := f.repo.FindRoomByCode(context.Background(), "AB12CD")
	require.Nil(t, appErr)
	assert.Equal(t, []string{"alice", "bob"}, room.Members)

	// invalid message reaches the sender only
	send(t, bob, chat_dto.EventSendMessage, map[string]any{
		"roomId":  "AB12CD",
		"message": map[string]any{"sender": "bob", "type": "text"},
	})
	errFrame, _ := next(t, bob, chat_dto.EventErrorMessage)
	assert.Equal(t, "Message content is required.", errFrame.Data["error"])
	assert.Empty(t, f.repo.Messages())

	send(t, bob, chat_dto.EventSendMessage, map[string]any{
		"roomId":  "AB12CD",
		"message": map[string]any{"sender": "bob", "type": "text", "content": "hello room"},
	})

	for _, conn := range []*websocket.Conn{alice, bob} {
		got, skipped := next(t, conn, chat_dto.EventReceiveMessage)
		assert.NotContains(t, skipped, chat_dto.EventErrorMessage)
		assert.Equal(t, "hello room", got.Data["content"])
		assert.NotEmpty(t, got.Data["_id"])
		assert.NotContains(t, got.Data, "fileUrl")
	}
	assert.Len(t, f.repo.Messages(), 1)

	f.hub.RemoveRoom("AB12CD", "expired")
	for _, conn := range []*websocket.Conn{alice, bob} {
		got, _ := next(t, conn, chat_dto.EventRoomDeleted)
		assert.Equal(t, "AB12CD", got.Data["roomId"])
	}
}

func TestWebSocket_JoinUnknownRoomWithIdentity(t *testing.T) {
	f := newWSFixture(t)
	carol := f.dial(t, "clientId=carol")

	send(t, carol, chat_dto.EventJoinRoom, "NOPE00")

	errFrame, _ := next(t, carol, chat_dto.EventErrorMessage)
	assert.Equal(t, "NOPE00", errFrame.RoomID)
	assert.False(t, f.hub.GetRoomStats("NOPE00").Exists)
}

func TestWebSocket_BadFrames(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	got, _ := next(t, conn, chat_dto.EventErrorMessage)
	assert.Equal(t, "Invalid message format.", got.Data["error"])

	send(t, conn, "dance", nil)
	got, _ = next(t, conn, chat_dto.EventErrorMessage)
	assert.Equal(t, "Unknown event.", got.Data["error"])

	send(t, conn, chat_dto.EventJoinRoom, map[string]string{"roomId": "  "})
	got, _ = next(t, conn, chat_dto.EventErrorMessage)
	assert.Equal(t, "Room ID is required.", got.Data["error"])
}

func TestWebSocket_AnonymousJoinSkipsMembership(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "")

	send(t, conn, chat_dto.EventJoinRoom, map[string]string{"roomId": "AB12CD"})
	assert.Eventually(t, func() bool { return f.hub.GetRoomStats("AB12CD").Connections == 1 }, 5*time.Second, 5*time.Millisecond)

	room, appErr := f.repo.FindRoomByCode(context.Background(), "AB12CD")
	require.Nil(t, appErr)
	assert.Equal(t, []string{"alice"}, room.Members)

	send(t, conn, chat_dto.EventLeaveRoom, "AB12CD")
	assert.Eventually(t, func() bool { return !f.hub.GetRoomStats("AB12CD").Exists }, 5*time.Second, 5*time.Millisecond)
}

func TestWebSocket_JoinNamesAnonymousSocket(t *testing.T) {
	f := newWSFixture(t)
	alice := f.dial(t, "clientId=alice&roomId=AB12CD")
	assert.Eventually(t, func() bool { return f.hub.GetRoomStats("AB12CD").Connections == 1 }, 5*time.Second, 5*time.Millisecond)

	dave := f.dial(t, "")
	send(t, dave, chat_dto.EventJoinRoom, map[string]string{"roomId": "AB12CD", "clientId": "dave"})

	status, _ := next(t, alice, chat_dto.EventUserStatus)
	assert.Equal(t, "dave", status.Data["clientId"])
	assert.Equal(t, "online", status.Data["status"])
	assert.Equal(t, 2, f.hub.GetRoomStats("AB12CD").UniqueUsers)

	// a bare leave-room uses the identity recorded by the join
	send(t, dave, chat_dto.EventLeaveRoom, "AB12CD")
	status, _ = next(t, alice, chat_dto.EventUserStatus)
	assert.Equal(t, "dave", status.Data["clientId"])
	assert.Equal(t, "offline", status.Data["status"])

	assert.Eventually(t, func() bool {
		room, appErr := f.repo.FindRoomByCode(context.Background(), "AB12CD")
		return appErr == nil && assert.ObjectsAreEqual([]string{"alice"}, room.Members)
	}, 5*time.Second, 5*time.Millisecond)
}

func TestClient_AdoptIdentityKeepsFirst(t *testing.T) {
	c := newClient(context.Background(), "conn-1", "", nil)
	assert.Empty(t, c.ClientID())

	c.adoptIdentity("")
	assert.Empty(t, c.ClientID())
	c.adoptIdentity("dave")
	c.adoptIdentity("mallory")
	assert.Equal(t, "dave", c.ClientID())
}

func TestWebSocket_ConnectionLimit(t *testing.T) {
	hub := NewHub()
	handler := NewWebSocketHandler(hub, nil, nil, "*")
	handler.MaxConnections = 1
	server := httptest.NewServer(http.HandlerFunc(handler.HandleWS))
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	f := &wsFixture{hub: hub, server: server}

	f.dial(t, "")
	assert.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, 5*time.Second, 5*time.Millisecond)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker("https://app.example.com/")

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, originChecker("*")(req))
}
