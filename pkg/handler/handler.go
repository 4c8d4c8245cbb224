package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"toktok/pkg/api"
	"toktok/pkg/gateway"
	"toktok/pkg/session"
)

// ChatHandler glues the Gateway to the agent: it translates UnifiedMessages
// into agent invocations, intercepts slash commands, and routes replies back
// to the originating channel.
type ChatHandler struct {
	agent       api.Agent
	gw          *gateway.GatewayManager // Manager for sending replies back to communication channels
	store       *session.Store
	setupNotice string // Non-empty puts the handler in setup-notice mode
}

// NewMessageHandler initializes a ChatHandler instance and returns a closure
// compatible with the gateway.MessageHandler type.
//
// setupNotice, when non-empty, switches the handler into a degraded mode:
// every message is answered with the notice instead of reaching the agent.
// This is how missing credentials surface in the UI without crashing the
// process.
func NewMessageHandler(agent api.Agent, gw *gateway.GatewayManager, store *session.Store, setupNotice string) func(*gateway.UnifiedMessage) {
	h := &ChatHandler{
		agent:       agent,
		gw:          gw,
		store:       store,
		setupNotice: setupNotice,
	}
	return h.OnMessage
}

// OnMessage is the primary entry point for processing incoming user messages.
func (h *ChatHandler) OnMessage(msg *gateway.UnifiedMessage) {
	start := time.Now()

	slog.Info("Message received", "channel", msg.Session.ChannelID, "user", msg.Session.Username, "content", msg.Content)

	if h.setupNotice != "" {
		h.gw.SendReply(msg.Session, h.setupNotice)
		return
	}

	// --- Slash Commands ---
	// Commands should not be added to history, handle and return directly
	if strings.HasPrefix(msg.Content, "/") {
		if h.handleSlashCommand(msg) {
			return
		}
	}

	// Let the UI show a typing indicator while the agent works
	h.gw.SendSignal(msg.Session, "thinking")

	reply := h.agent.Handle(context.Background(), msg)

	if err := h.gw.SendReply(msg.Session, reply); err != nil {
		slog.Error("Failed to send reply", "channel", msg.Session.ChannelID, "error", err)
	}

	slog.Info("Agent loop finished", "duration", time.Since(start).String())
}

// handleSlashCommand parses and executes "slash" commands entered by the user.
// Returns true when the command was fully handled here.
func (h *ChatHandler) handleSlashCommand(msg *gateway.UnifiedMessage) bool {
	parts := strings.SplitN(strings.TrimPrefix(msg.Content, "/"), " ", 2)
	command := parts[0]

	switch command {
	case "clear":
		// Wipe only this session's history; other sessions are untouched
		h.store.Clear(msg.Session.SessionID())
		slog.Info("Session cleared", "session", msg.Session.SessionID())
		h.gw.SendSignal(msg.Session, "cleared")
		h.gw.SendReply(msg.Session, "🧹 Conversation cleared. Ask me anything!")
		return true

	case "notools":
		// Virtual command: answer without the tool catalog
		if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
			h.gw.SendReply(msg.Session, "❌ Format: /notools [your question]")
			return true
		}
		msg.NoTools = true
		msg.Content = parts[1]
		return false // Fall through to the normal agent path

	default:
		h.gw.SendReply(msg.Session, fmt.Sprintf("❌ Unknown command: /%s", command))
		return true
	}
}
