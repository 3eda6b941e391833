package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/game"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	wsWriteTimeout   = 2 * time.Second
	wsMaxMessageSize = 1024
)

// ClientMessage is controller input sent over the socket, as JSON text
// frames or msgpack binary frames.
type ClientMessage struct {
	Type    string `json:"type" msgpack:"type"` // "intent", "dirs", "move", "support"
	Hero    int    `json:"hero" msgpack:"hero"`
	Button  string `json:"button,omitempty" msgpack:"button,omitempty"`
	Dirs    uint8  `json:"dirs,omitempty" msgpack:"dirs,omitempty"`
	Success bool   `json:"success,omitempty" msgpack:"success,omitempty"`
}

// wsClient tracks a WebSocket connection with its source IP
type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// WebSocketHub pushes snapshots to every client and feeds their input to the engine.
type WebSocketHub struct {
	engine     EngineInterface
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.RWMutex

	upgrader   websocket.Upgrader
	wsLimiter  *WebSocketRateLimiter
	trustProxy bool
}

// NewWebSocketHub creates a hub with connection limiting
func NewWebSocketHub(engine EngineInterface, origins OriginPolicy, trustProxy bool) *WebSocketHub {
	h := &WebSocketHub{
		engine:     engine,
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		trustProxy: trustProxy,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origins.Allowed(origin) {
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// Run owns the client set until ctx is cancelled, then closes every connection.
func (h *WebSocketHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for conn, client := range h.clients {
				h.wsLimiter.Release(client.ip)
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			UpdateWSConnections(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			h.drop(conn)
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
					h.drop(conn)
					continue
				}
				IncrementWSMessages("out")
			}
			h.mu.Unlock()
		}
	}
}

// drop removes a client; callers hold h.mu
func (h *WebSocketHub) drop(conn *websocket.Conn) {
	if client, ok := h.clients[conn]; ok {
		h.wsLimiter.Release(client.ip)
		delete(h.clients, conn)
		conn.Close()
	}
}

// BroadcastSnapshot queues a msgpack-encoded snapshot. Drops it if the hub is backed up.
func (h *WebSocketHub) BroadcastSnapshot(snap *game.GameSnapshot) error {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	select {
	case h.broadcast <- data:
	default:
		// Channel full, skip (backpressure)
	}
	return nil
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RunBroadcastLoop pushes the latest snapshot at hz until ctx is cancelled.
func (h *WebSocketHub) RunBroadcastLoop(ctx context.Context, hz int) {
	if hz <= 0 {
		hz = 10
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if h.ClientCount() == 0 {
				continue
			}
			snap := h.engine.GetSnapshot()
			if snap.Sequence == lastSeq && lastSeq != 0 {
				continue
			}
			lastSeq = snap.Sequence
			if err := h.BroadcastSnapshot(snap); err != nil {
				log.Printf("⚠️ %v", err)
			}
		}
	}
}

// HandleWebSocket upgrades a connection with DoS protection and reads its input.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := ClientIP(r, h.trustProxy)

	if total := h.ClientCount(); total >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", total)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}
	conn.SetReadLimit(wsMaxMessageSize)

	select {
	case h.register <- &wsClient{conn: conn, ip: ip}:
	case <-h.done:
		conn.Close()
		h.wsLimiter.Release(ip)
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()

		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			IncrementWSMessages("in")

			var msg ClientMessage
			if kind == websocket.BinaryMessage {
				err = msgpack.Unmarshal(data, &msg)
			} else {
				err = json.Unmarshal(data, &msg)
			}
			if err != nil {
				continue
			}
			if err := h.apply(msg); err != nil && statusForError(err) != http.StatusConflict {
				log.Printf("📨 WebSocket input from %s rejected: %v", ip, err)
			}
		}
	}()
}

// apply routes one client message to the engine
func (h *WebSocketHub) apply(msg ClientMessage) error {
	hero := game.HeroID(msg.Hero)
	switch msg.Type {
	case "intent", "move":
		button, ok := game.ParseButton(msg.Button)
		if !ok {
			return fmt.Errorf("button %q: %w", msg.Button, game.ErrInvalidMoveDescriptor)
		}
		if msg.Type == "intent" {
			return h.engine.SetIntent(hero, button)
		}
		return h.engine.ExecuteMove(hero, button)
	case "dirs":
		return h.engine.SetDirections(hero, msg.Dirs)
	case "support":
		return h.engine.ResolveSupportPuzzle(hero, msg.Success)
	default:
		return fmt.Errorf("message type %q: %w", msg.Type, game.ErrInvalidMoveDescriptor)
	}
}
