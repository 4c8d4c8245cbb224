package web

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"toktok/pkg/api"
	"toktok/pkg/llm"
	"toktok/pkg/session"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed index.html
var indexPage []byte

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for decoupled UI
	},
}

type WebConfig struct {
	Port int `json:"port"` // Default: 9453
}

// IncomingMessage is the JSON shape sent by the chat page.
type IncomingMessage struct {
	Text string `json:"text"`
}

// historyEntry is the UI-facing shape of one transcript turn.
type historyEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SafeConn 包裝 websocket 連線，序列化並發的寫入
type SafeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (sc *SafeConn) WriteMessage(messageType int, data []byte) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.Conn.WriteMessage(messageType, data)
}

// WebChannel serves the embedded chat page and bridges its websocket to the
// gateway. Each browser picks a session key (`?session=`), so multiple tabs
// can share or isolate conversations.
type WebChannel struct {
	config      WebConfig
	server      *http.Server
	store       *session.Store       // Transcript store for history sync on connect
	connections map[string]*SafeConn // Map UserID -> WS Connection
	mu          sync.RWMutex
}

func NewWebChannel(cfg WebConfig, store *session.Store) *WebChannel {
	return &WebChannel{
		config:      cfg,
		store:       store,
		connections: make(map[string]*SafeConn),
	}
}

func (c *WebChannel) ID() string {
	return "web"
}

func (c *WebChannel) Start(ctx api.ChannelContext) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexPage)
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		c.handleWebSocket(w, r, ctx)
	})

	addr := fmt.Sprintf(":%d", c.config.Port)
	c.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	slog.Info("Web UI listening", "port", c.config.Port)

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Web server error", "error", err)
		}
	}()

	return nil
}

func (c *WebChannel) Stop() error {
	if c.server != nil {
		return c.server.Close()
	}
	return nil
}

func (c *WebChannel) Send(session api.SessionContext, message string) error {
	conn, ok := c.getConn(session.UserID)
	if !ok {
		return fmt.Errorf("web user %s not connected", session.UserID)
	}

	frame := map[string]string{
		"type": "text",
		"text": message,
	}
	jsonData, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}
	return conn.WriteMessage(websocket.TextMessage, jsonData)
}

// SendSignal implements the gateway.SignalingChannel interface.
// The UI interprets "thinking" as a typing indicator and "cleared" as a
// transcript wipe.
func (c *WebChannel) SendSignal(session api.SessionContext, signal string) error {
	conn, ok := c.getConn(session.UserID)
	if !ok {
		return fmt.Errorf("web user %s not connected", session.UserID)
	}

	frame := map[string]string{
		"type":  "signal",
		"value": signal,
	}
	jsonData, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal signal: %w", err)
	}
	return conn.WriteMessage(websocket.TextMessage, jsonData)
}

func (c *WebChannel) getConn(userID string) (*SafeConn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn, ok := c.connections[userID]
	return conn, ok
}

func (c *WebChannel) handleWebSocket(w http.ResponseWriter, r *http.Request, ctx api.ChannelContext) {
	rawConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WS Upgrade failed", "error", err)
		return
	}

	// Wrap connection
	conn := &SafeConn{Conn: rawConn}

	// Simple UserID based on RemoteAddr
	userID := r.RemoteAddr

	// Session key chosen by the page; tabs sharing a key share one transcript
	chatID := r.URL.Query().Get("session")
	if chatID == "" {
		chatID = "global"
	}

	// Register connection
	c.mu.Lock()
	c.connections[userID] = conn
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.connections, userID)
		c.mu.Unlock()
		conn.Close()
	}()

	session := api.SessionContext{
		ChannelID: "web",
		UserID:    userID,
		ChatID:    chatID,
		Username:  "WebUser",
	}

	// Send history immediately (if any)
	c.pushHistory(conn, session.SessionID())

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var content string

		// Try to parse as JSON first
		var incoming IncomingMessage
		if err := json.Unmarshal(msgBytes, &incoming); err == nil && incoming.Text != "" {
			content = incoming.Text
		} else {
			// Fallback: treat as plain text (backward compatibility)
			content = string(msgBytes)
		}

		if content == "" {
			continue
		}

		// Send to Gateway
		ctx.OnMessage(c.ID(), &api.UnifiedMessage{
			Session: session,
			Content: content,
		})
	}
}

// pushHistory 把既有的逐字稿送給剛連上的頁面
func (c *WebChannel) pushHistory(conn *SafeConn, sessionID string) {
	transcript := c.store.GetOrCreate(sessionID)
	turns := transcript.Turns()
	if len(turns) == 0 {
		return
	}

	entries := make([]historyEntry, 0, len(turns))
	for _, m := range turns {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			continue
		}
		entries = append(entries, historyEntry{Role: m.Role, Content: m.Content})
	}

	frame := map[string]any{
		"type": "history",
		"data": entries,
	}
	jsonData, err := json.Marshal(frame)
	if err != nil {
		slog.Error("Failed to marshal history", "error", err)
		return
	}
	conn.WriteMessage(websocket.TextMessage, jsonData)
}
