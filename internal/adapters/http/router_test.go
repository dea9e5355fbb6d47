package http

import (
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dkeye/Chat/internal/adapters/signal"
	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/app/orch"
	"github.com/dkeye/Chat/internal/config"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/dkeye/Chat/internal/observability"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func testConfig(t *testing.T, origins ...string) *config.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &config.Config{
		Mode:            "test",
		Port:            0,
		StaticPath:      t.TempDir(),
		LogLevel:        "error",
		ReadLimit:       4096,
		PingPeriod:      time.Minute,
		PongWait:        2 * time.Minute,
		WriteWait:       time.Second,
		SendBuffer:      32,
		EventQueue:      64,
		AllowedOrigins:  origins,
		ShutdownTimeout: time.Second,
	}
}

func startServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	metrics := observability.NewMetrics()
	hub := signal.NewHub(metrics)
	loop := app.NewLoop(cfg.EventQueue)
	go loop.Run(ctx)
	ctl := signal.NewSignalWSController(cfg, loop, hub, orch.New(hub, metrics))

	srv := httptest.NewServer(SetupRouter(ctx, cfg, ctl, metrics))
	t.Cleanup(func() {
		cancel()
		srv.Close()
		<-loop.Done()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server) (*websocket.Conn, string) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var hello domain.Connected
	expect(t, conn, domain.EventConnect, &hello)
	require.NotEmpty(t, hello.ConnectionID)
	return conn, hello.ConnectionID
}

func emit(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"event": event, "data": data}))
}

func expect(t *testing.T, conn *websocket.Conn, event string, into any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	require.Equal(t, event, f.Event, "payload: %s", f.Data)
	if into != nil {
		require.NoError(t, json.Unmarshal(f.Data, into))
	}
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()
	resp, err := stdhttp.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if into != nil && resp.StatusCode == stdhttp.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp.StatusCode
}

func TestRouter_Lobby_Scenario(t *testing.T) {
	req := require.New(t)
	srv := startServer(t, testConfig(t))

	// A joins lobby as alice
	connA, _ := dial(t, srv)
	emit(t, connA, domain.EventJoinRoom, map[string]string{"username": "alice", "room": "lobby"})
	var joinedA domain.RoomJoined
	expect(t, connA, domain.EventRoomJoined, &joinedA)
	req.Equal(domain.RoomJoined{Room: "lobby", Username: "alice", Users: []domain.Username{"alice"}}, joinedA)
	var welcome domain.AdminMessage
	expect(t, connA, domain.EventAdminMessage, &welcome)
	req.Equal("Welcome, alice!", welcome.Message)
	req.NotEmpty(welcome.Timestamp)

	// B joins lobby as bob
	connB, idB := dial(t, srv)
	emit(t, connB, domain.EventJoinRoom, map[string]string{"username": "bob", "room": "lobby"})
	var joinedB domain.RoomJoined
	expect(t, connB, domain.EventRoomJoined, &joinedB)
	req.ElementsMatch([]domain.Username{"alice", "bob"}, joinedB.Users)
	expect(t, connB, domain.EventAdminMessage, nil)

	var notice domain.AdminMessage
	expect(t, connA, domain.EventAdminMessage, &notice)
	req.Equal("bob has joined!", notice.Message)
	var update domain.RosterUpdate
	expect(t, connA, domain.EventUserJoined, &update)
	req.Equal(domain.Username("bob"), update.Username)
	req.ElementsMatch([]domain.Username{"alice", "bob"}, update.Users)

	// B says hi; both receive it with B's connection id
	emit(t, connB, domain.EventChatMessage, "hi")
	for _, conn := range []*websocket.Conn{connA, connB} {
		var msg domain.ChatMessage
		expect(t, conn, domain.EventChatMessage, &msg)
		req.Equal(domain.Username("bob"), msg.Username)
		req.Equal("hi", msg.Message)
		req.Equal(idB, msg.ConnectionID)
	}

	// A leaves; B sees the departure
	emit(t, connA, domain.EventLeaveRoom, nil)
	expect(t, connB, domain.EventAdminMessage, &notice)
	req.Equal("alice has left!", notice.Message)
	expect(t, connB, domain.EventUserLeft, &update)
	req.Equal(domain.RosterUpdate{Username: "alice", Users: []domain.Username{"bob"}}, update)

	var roster struct {
		Room  string   `json:"room"`
		Users []string `json:"users"`
	}
	req.Equal(stdhttp.StatusOK, getJSON(t, srv.URL+"/api/rooms/lobby/members", &roster))
	req.Equal([]string{"bob"}, roster.Users)

	// B drops; the room disappears
	req.NoError(connB.Close())
	req.Eventually(func() bool {
		resp, err := stdhttp.Get(srv.URL + "/api/rooms/lobby/members")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == stdhttp.StatusNotFound
	}, 2*time.Second, 10*time.Millisecond)

	var rooms struct {
		Rooms []domain.RoomInfo `json:"rooms"`
	}
	req.Equal(stdhttp.StatusOK, getJSON(t, srv.URL+"/api/rooms", &rooms))
	req.Empty(rooms.Rooms)
}

func TestRouter_Boundary_Rejects_Bad_Input(t *testing.T) {
	req := require.New(t)
	srv := startServer(t, testConfig(t))
	conn, _ := dial(t, srv)

	emit(t, conn, domain.EventJoinRoom, map[string]string{"username": "a", "room": "lobby"})
	var notice domain.ErrorNotice
	expect(t, conn, domain.EventError, &notice)
	req.Equal("Username must be between 2 and 20 characters", notice.Message)

	// Unjoined chat, blank chat, garbage frames and unknown events are all dropped.
	emit(t, conn, domain.EventChatMessage, "anyone?")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	emit(t, conn, "dance", nil)

	// The next frame this connection sees is its own successful join.
	emit(t, conn, domain.EventJoinRoom, map[string]string{"username": "  carol ", "room": "den"})
	var joined domain.RoomJoined
	expect(t, conn, domain.EventRoomJoined, &joined)
	req.Equal(domain.RoomJoined{Room: "den", Username: "carol", Users: []domain.Username{"carol"}}, joined)
	expect(t, conn, domain.EventAdminMessage, nil)

	emit(t, conn, domain.EventChatMessage, "   ")
	emit(t, conn, domain.EventChatMessage, "real")
	var msg domain.ChatMessage
	expect(t, conn, domain.EventChatMessage, &msg)
	req.Equal("real", msg.Message)

	// The limit counts characters, not bytes: one over is dropped,
	// exactly at the limit in two-byte characters goes through.
	emit(t, conn, domain.EventChatMessage, strings.Repeat("x", signal.MaxMessageLen+1))
	long := strings.Repeat("é", signal.MaxMessageLen)
	emit(t, conn, domain.EventChatMessage, long)
	expect(t, conn, domain.EventChatMessage, &msg)
	req.Equal(long, msg.Message)
	req.Equal(signal.MaxMessageLen, utf8.RuneCountInString(msg.Message))
}

func TestRouter_Accepts_Escaped_Max_Length_Message(t *testing.T) {
	req := require.New(t)
	cfg := testConfig(t)
	srv := startServer(t, cfg)
	conn, _ := dial(t, srv)

	emit(t, conn, domain.EventJoinRoom, map[string]string{"username": "dora", "room": "den"})
	expect(t, conn, domain.EventRoomJoined, nil)
	expect(t, conn, domain.EventAdminMessage, nil)

	// Every character escaped as a surrogate pair: far above the configured read limit.
	raw := `{"event":"chat message","data":"` + strings.Repeat(`\ud83d\ude00`, signal.MaxMessageLen) + `"}`
	req.Greater(int64(len(raw)), cfg.ReadLimit)
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(raw)))

	var msg domain.ChatMessage
	expect(t, conn, domain.EventChatMessage, &msg)
	req.Equal(strings.Repeat("\U0001F600", signal.MaxMessageLen), msg.Message)
}

func TestRouter_Rejects_Foreign_Origin(t *testing.T) {
	srv := startServer(t, testConfig(t, "https://chat.example.com"))
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	header := stdhttp.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)

	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)
}

func TestRouter_Serves_Index_Page(t *testing.T) {
	req := require.New(t)
	cfg := testConfig(t)
	cfg.StaticPath = filepath.Join("..", "..", "..", "web")
	srv := startServer(t, cfg)

	resp, err := stdhttp.Get(srv.URL + "/")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(stdhttp.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	req.NoError(err)
	req.Contains(string(body), "/ws")
}

func TestRouter_Health_And_Metrics(t *testing.T) {
	req := require.New(t)
	srv := startServer(t, testConfig(t))
	dial(t, srv)

	var health map[string]string
	req.Equal(stdhttp.StatusOK, getJSON(t, srv.URL+"/healthz", &health))
	req.Equal("ok", health["status"])

	resp, err := stdhttp.Get(srv.URL + "/metrics")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(stdhttp.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	req.NoError(err)
	req.Contains(string(body), "roomchat_connections 1")
}
