package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/game"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func startWSServer(t *testing.T, engine EngineInterface) string {
	t.Helper()
	srv := NewServer(ServerOptions{
		RouterConfig: RouterConfig{Engine: engine, DisableLogging: true},
		BroadcastHz:  50,
	})
	ts := httptest.NewServer(srv.Router())

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Hub().Run(ctx)
	go srv.Hub().RunBroadcastLoop(ctx, 50)

	t.Cleanup(func() {
		cancel()
		ts.Close()
		srv.Stop()
	})
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dialWS(t *testing.T, url, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	return dialer.Dial(url, header)
}

func TestWebSocketSnapshotBroadcast(t *testing.T) {
	engine := newMockEngine()
	engine.AddHero(40, 60)
	url := startWSServer(t, engine)

	conn, _, err := dialWS(t, url, "http://localhost:5173")
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)

	var snap game.GameSnapshot
	require.NoError(t, msgpack.Unmarshal(data, &snap))
	assert.Equal(t, "match-test", snap.MatchID)
	assert.Len(t, snap.Heroes, 1)
}

func TestWebSocketInput(t *testing.T) {
	engine := newMockEngine()
	engine.AddHero(40, 60)
	url := startWSServer(t, engine)

	conn, _, err := dialWS(t, url, "http://127.0.0.1:3000")
	require.NoError(t, err)
	defer conn.Close()

	// JSON text frame
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"intent","hero":0,"button":"B"}`)))
	assert.Eventually(t, func() bool {
		return engine.intent(0) == game.ButtonB
	}, 2*time.Second, 10*time.Millisecond)

	// msgpack binary frame
	data, err := msgpack.Marshal(ClientMessage{Type: "dirs", Hero: 0, Dirs: game.DirLeft})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, data))
	assert.Eventually(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return engine.dirs[0] == game.DirLeft
	}, 2*time.Second, 10*time.Millisecond)

	// Garbage and unknown messages do not kill the connection
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport","hero":0}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"move","hero":0,"button":"A"}`)))
	assert.Eventually(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return len(engine.moves) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	url := startWSServer(t, newMockEngine())

	_, resp, err := dialWS(t, url, "https://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocketApply(t *testing.T) {
	engine := newMockEngine()
	engine.AddHero(40, 60)
	hub := NewWebSocketHub(engine, NewOriginPolicy(nil), false)

	tests := []struct {
		name    string
		msg     ClientMessage
		wantErr bool
	}{
		{"intent", ClientMessage{Type: "intent", Hero: 0, Button: "A"}, false},
		{"release", ClientMessage{Type: "intent", Hero: 0, Button: ""}, false},
		{"support", ClientMessage{Type: "support", Hero: 0, Success: true}, false},
		{"bad button", ClientMessage{Type: "move", Hero: 0, Button: "Z"}, true},
		{"unknown type", ClientMessage{Type: "warp", Hero: 0}, true},
		{"missing hero", ClientMessage{Type: "dirs", Hero: 3, Dirs: game.DirUp}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hub.apply(tt.msg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
