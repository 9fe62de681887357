package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchparty/server/internal/controller"
	"github.com/watchparty/server/internal/domain"
	connInmemory "github.com/watchparty/server/internal/repository/connection/inmemory"
	roomInmemory "github.com/watchparty/server/internal/repository/room/inmemory"
	"github.com/watchparty/server/internal/service/room"
)

type output struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	roomService := room.NewService(roomInmemory.NewRepo(), connInmemory.NewRepo())
	ctrl := controller.NewController(roomService, logger, prometheus.NewRegistry())

	server := httptest.NewServer(ctrl.GetMux())
	t.Cleanup(server.Close)

	return server
}

func createRoom(t *testing.T, server *httptest.Server, name, videoURL string) domain.Room {
	t.Helper()

	body, err := json.Marshal(map[string]string{"name": name, "videoUrl": videoURL})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/rooms", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var envelope struct {
		Room domain.Room `json:"room"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	return envelope.Room
}

func listRooms(t *testing.T, server *httptest.Server) []domain.Room {
	t.Helper()

	resp, err := http.Get(server.URL + "/api/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Rooms []domain.Room `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	return envelope.Rooms
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(server.URL, "http", "ws", 1) + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(map[string]any{"type": eventType, "payload": payload}))
}

func read(t *testing.T, conn *websocket.Conn) output {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg output
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func TestRestRoomLifecycle(t *testing.T) {
	server := newTestServer(t)

	created := createRoom(t, server, "R", "v.com")
	assert.NotEmpty(t, created.Id)

	rooms := listRooms(t, server)
	require.Len(t, rooms, 1)
	assert.Equal(t, "R", rooms[0].Name)
	assert.Equal(t, "v.com", rooms[0].VideoURL)
	assert.Equal(t, 0, rooms[0].UserCount)
	assert.False(t, rooms[0].Playing)
	assert.Zero(t, rooms[0].Progress)
	assert.Empty(t, rooms[0].Messages)

	resp, err := http.Get(server.URL + "/api/rooms/" + created.Id)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/rooms/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateRoomValidation(t *testing.T) {
	server := newTestServer(t)

	body := []byte(`{"name":"","videoUrl":""}`)
	resp, err := http.Post(server.URL+"/api/rooms", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(server.URL+"/api/rooms", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// server-managed fields in the body are ignored, not rejected
	body = []byte(`{"name":"R","videoUrl":"v.com","id":"custom","userCount":9,"playing":true}`)
	resp, err = http.Post(server.URL+"/api/rooms", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var envelope struct {
		Room domain.Room `json:"room"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	resp.Body.Close()
	assert.NotEqual(t, "custom", envelope.Room.Id)
	assert.Equal(t, 0, envelope.Room.UserCount)
	assert.False(t, envelope.Room.Playing)
}

func TestWatchSessionScenario(t *testing.T) {
	server := newTestServer(t)

	created := createRoom(t, server, "movie night", "v.com")

	// first member joins
	conn1 := dialWS(t, server)
	send(t, conn1, "joinRoom", map[string]string{"roomId": created.Id, "nickname": "alice"})

	msg := read(t, conn1)
	assert.Equal(t, "videoState", msg.Type)
	var videoState struct {
		Progress float64 `json:"progress"`
		Playing  bool    `json:"playing"`
	}
	require.NoError(t, json.Unmarshal(msg.Payload, &videoState))
	assert.Zero(t, videoState.Progress)
	assert.False(t, videoState.Playing)

	msg = read(t, conn1)
	assert.Equal(t, "newUserJoined", msg.Type)

	// second member joins; both see the join notice
	conn2 := dialWS(t, server)
	send(t, conn2, "joinRoom", map[string]string{"roomId": created.Id, "nickname": "bob"})

	msg = read(t, conn2)
	assert.Equal(t, "videoState", msg.Type)
	msg = read(t, conn2)
	assert.Equal(t, "newUserJoined", msg.Type)

	msg = read(t, conn1)
	assert.Equal(t, "newUserJoined", msg.Type)
	var joined struct {
		Nickname string `json:"nickname"`
	}
	require.NoError(t, json.Unmarshal(msg.Payload, &joined))
	assert.Equal(t, "bob", joined.Nickname)

	rooms := listRooms(t, server)
	require.Len(t, rooms, 1)
	assert.Equal(t, 2, rooms[0].UserCount)

	// chat reaches every member
	send(t, conn1, "newMessage", map[string]any{
		"roomId":  created.Id,
		"message": map[string]string{"author": "alice", "content": "hi"},
	})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg = read(t, conn)
		assert.Equal(t, "newMessage", msg.Type)
		var message domain.ChatMessage
		require.NoError(t, json.Unmarshal(msg.Payload, &message))
		assert.Equal(t, domain.ChatMessage{Author: "alice", Content: "hi"}, message)
	}

	// seeking then changing video resets progress
	send(t, conn2, "videoSeeked", map[string]any{"roomId": created.Id, "seekTo": 120})
	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg = read(t, conn)
		assert.Equal(t, "videoSeeked", msg.Type)
	}

	send(t, conn2, "changeVideo", map[string]string{"roomId": created.Id, "videoUrl": "new.url"})
	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg = read(t, conn)
		assert.Equal(t, "videoChanged", msg.Type)
		var url string
		require.NoError(t, json.Unmarshal(msg.Payload, &url))
		assert.Equal(t, "new.url", url)
	}

	resp, err := http.Get(server.URL + "/api/rooms/" + created.Id)
	require.NoError(t, err)
	var envelope struct {
		Room domain.Room `json:"room"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	resp.Body.Close()
	assert.Equal(t, "new.url", envelope.Room.VideoURL)
	assert.Zero(t, envelope.Room.Progress)
	require.Len(t, envelope.Room.Messages, 1)

	// playback toggle fans out to every member
	send(t, conn1, "videoPlayingChanged", map[string]any{"roomId": created.Id, "playing": true, "progress": 42.5})
	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg = read(t, conn)
		assert.Equal(t, "videoPlayingChanged", msg.Type)
		var playback struct {
			Playing  bool    `json:"playing"`
			Progress float64 `json:"progress"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &playback))
		assert.True(t, playback.Playing)
		assert.Equal(t, 42.5, playback.Progress)
	}

	// heartbeat syncs silently
	send(t, conn1, "playingProgress", map[string]any{"roomId": created.Id, "progress": 50})
	require.Eventually(t, func() bool {
		resp, err := http.Get(server.URL + "/api/rooms/" + created.Id)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var envelope struct {
			Room domain.Room `json:"room"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return false
		}
		return envelope.Room.Progress == 50
	}, 5*time.Second, 10*time.Millisecond)

	// last disconnect destroys the room
	conn1.Close()
	require.Eventually(t, func() bool {
		rooms := listRooms(t, server)
		return len(rooms) == 1 && rooms[0].UserCount == 1
	}, 5*time.Second, 10*time.Millisecond)

	conn2.Close()
	require.Eventually(t, func() bool {
		return len(listRooms(t, server)) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestConcurrentChatBroadcast(t *testing.T) {
	server := newTestServer(t)
	created := createRoom(t, server, "R", "v.com")

	conn1 := dialWS(t, server)
	send(t, conn1, "joinRoom", map[string]string{"roomId": created.Id, "nickname": "alice"})
	read(t, conn1) // videoState
	read(t, conn1) // newUserJoined

	conn2 := dialWS(t, server)
	send(t, conn2, "joinRoom", map[string]string{"roomId": created.Id, "nickname": "bob"})
	read(t, conn2) // videoState
	read(t, conn2) // newUserJoined
	read(t, conn1) // newUserJoined for bob

	// both members chat at once, so broadcasts to each connection race
	const burst = 25
	var wg sync.WaitGroup
	writeErrs := make(chan error, 2*burst)
	for _, conn := range []*websocket.Conn{conn1, conn2} {
		wg.Add(1)
		go func(conn *websocket.Conn) {
			defer wg.Done()
			for i := 0; i < burst; i++ {
				writeErrs <- conn.WriteJSON(map[string]any{
					"type": "newMessage",
					"payload": map[string]any{
						"roomId":  created.Id,
						"message": map[string]string{"author": "a", "content": "m"},
					},
				})
			}
		}(conn)
	}
	wg.Wait()
	close(writeErrs)
	for err := range writeErrs {
		require.NoError(t, err)
	}

	// every member receives every message and both connections stay alive
	for _, conn := range []*websocket.Conn{conn1, conn2} {
		for i := 0; i < 2*burst; i++ {
			msg := read(t, conn)
			require.Equal(t, "newMessage", msg.Type)
		}
	}
}

func TestUnknownEventIsIgnored(t *testing.T) {
	server := newTestServer(t)
	created := createRoom(t, server, "R", "v.com")

	conn := dialWS(t, server)
	send(t, conn, "joinRoom", map[string]string{"roomId": created.Id, "nickname": "alice"})
	read(t, conn) // videoState
	read(t, conn) // newUserJoined

	send(t, conn, "bogusEvent", map[string]string{"roomId": created.Id})

	// the connection stays usable
	send(t, conn, "playingProgress", map[string]any{"roomId": created.Id, "progress": 5})
	require.Eventually(t, func() bool {
		rooms := listRooms(t, server)
		return len(rooms) == 1 && rooms[0].Progress == 5
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDisconnectBeforeJoin(t *testing.T) {
	server := newTestServer(t)
	created := createRoom(t, server, "R", "v.com")

	conn := dialWS(t, server)
	conn.Close()

	// the room is untouched by a connection that never joined
	time.Sleep(50 * time.Millisecond)
	rooms := listRooms(t, server)
	require.Len(t, rooms, 1)
	assert.Equal(t, created.Id, rooms[0].Id)
	assert.Equal(t, 0, rooms[0].UserCount)
}
