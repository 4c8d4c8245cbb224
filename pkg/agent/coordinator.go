package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"toktok/pkg/api"
	"toktok/pkg/config"
	"toktok/pkg/llm"
	"toktok/pkg/session"
	"toktok/pkg/tools"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultMaxToolIterations = 3

// wrapUpPrompt is injected when the tool-iteration cap is reached, forcing
// the model to produce a best-effort answer from partial results instead of
// requesting yet another tool call.
const wrapUpPrompt = "You have used the maximum number of tool calls for this question. " +
	"Answer the user now, as well as you can, using only the tool results gathered so far."

// Coordinator manages the core reasoning loop: LLM communication, tool
// execution, and transcript bookkeeping. It implements api.Agent.
//
// 每次 Handle 只對逐字稿追加兩則訊息：使用者輪與最終助理輪。
// 工具調用往返只存在於本輪的工作訊息串，不會寫入 session。
type Coordinator struct {
	client       llm.LLMClient
	appCfg       *config.Config
	sysCfg       atomic.Pointer[config.SystemConfig] // 熱更新用指標交換，請求中途不換
	store        *session.Store
	toolRegistry api.ToolRegistry
}

// NewCoordinator initializes a Coordinator with config managers.
func NewCoordinator(
	client llm.LLMClient,
	appCfg *config.Config,
	sysCfg *config.SystemConfig,
	store *session.Store,
) *Coordinator {
	c := &Coordinator{
		client: client,
		appCfg: appCfg,
		store:  store,
	}
	c.sysCfg.Store(sysCfg)
	return c
}

// UpdateSystemConfig swaps in freshly loaded engine parameters. Requests
// already in flight keep the config they started with; only subsequent
// Handle calls observe the new values.
func (c *Coordinator) UpdateSystemConfig(cfg *config.SystemConfig) {
	if cfg == nil {
		return
	}
	c.sysCfg.Store(cfg)
}

// SetToolRegistry sets the tool registry used by the coordinator for tool execution.
func (c *Coordinator) SetToolRegistry(tr api.ToolRegistry) {
	c.toolRegistry = tr
}

// RegisterTool adds one or more tools to the coordinator's registry.
// It automatically initializes the registry if it's currently nil.
func (c *Coordinator) RegisterTool(tl ...api.Tool) {
	if c.toolRegistry == nil {
		c.toolRegistry = tools.NewToolRegistry()
	}
	for _, t := range tl {
		c.toolRegistry.Register(t)
	}
}

// Handle is the primary entry point for processing a user message.
// It always appends exactly one user turn and one assistant turn to the
// session, in that order, regardless of success or failure, and returns
// the assistant reply text.
func (c *Coordinator) Handle(ctx context.Context, msg *api.UnifiedMessage) string {
	sessionID := msg.Session.SessionID()
	transcript := c.store.GetOrCreate(sessionID)

	transcript.Add(llm.NewUserMessage(msg.Content))

	reply := c.runLoop(ctx, msg, transcript)
	if reply == "" {
		reply = "⚠️ The assistant produced an empty reply. Please try rephrasing."
	}

	transcript.Add(llm.NewAssistantMessage(reply))
	return reply
}

// runLoop drives the bounded reasoning/tool-call loop for one user message.
func (c *Coordinator) runLoop(ctx context.Context, msg *api.UnifiedMessage, transcript *session.Transcript) string {
	sys := c.sysCfg.Load()

	// 工作訊息串：persona + 受限的歷史（已含剛追加的使用者輪）
	msgs := make([]llm.Message, 0, sys.HistoryMaxTurns+2)
	if c.appCfg.SystemPrompt != "" {
		msgs = append(msgs, llm.NewSystemMessage(c.appCfg.SystemPrompt))
	}
	msgs = append(msgs, transcript.Recent(sys.HistoryMaxTurns)...)

	var availableTools []llm.ToolDefinition
	if sys.EnableTools && !msg.NoTools && c.toolRegistry != nil {
		availableTools = ToolDefinitions(c.toolRegistry)
	}

	maxIter := sys.MaxToolIterations
	if maxIter <= 0 {
		maxIter = defaultMaxToolIterations
	}

	for iter := 0; iter < maxIter; iter++ {
		res, err := c.chatOnce(ctx, msgs, availableTools)
		if err != nil {
			slog.Error("LLM call failed", "session", msg.Session.SessionID(), "error", err)
			return fmt.Sprintf("❌ Error while generating a reply: %v", err)
		}

		if res.Usage != nil {
			slog.Debug("LLM usage", "prompt", res.Usage.PromptTokens, "completion", res.Usage.CompletionTokens, "total", res.Usage.TotalTokens)
		}

		if len(res.ToolCalls) == 0 {
			return res.Content
		}

		// 模型要求執行工具：把請求與結果接回工作訊息串再問一次
		msgs = append(msgs, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   res.Content,
			ToolCalls: res.ToolCalls,
		})
		for _, tc := range res.ToolCalls {
			out := c.resolveToolCall(ctx, tc)
			msgs = append(msgs, llm.NewToolMessage(tc.ID, tc.Name, out))
		}
	}

	// Iteration cap reached: force a best-effort answer from partial
	// results, with the tool catalog withheld.
	slog.Warn("Tool iteration cap reached, forcing final answer", "session", msg.Session.SessionID(), "cap", maxIter)
	msgs = append(msgs, llm.NewSystemMessage(wrapUpPrompt))

	res, err := c.chatOnce(ctx, msgs, nil)
	if err != nil {
		slog.Error("Forced final answer failed", "session", msg.Session.SessionID(), "error", err)
		return fmt.Sprintf("❌ Error while generating a reply: %v", err)
	}
	return res.Content
}

// chatOnce performs a single LLM call bounded by the configured timeout.
func (c *Coordinator) chatOnce(ctx context.Context, msgs []llm.Message, tools []llm.ToolDefinition) (*llm.ChatResult, error) {
	timeout := time.Duration(c.sysCfg.Load().LLMTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return c.client.Chat(runCtx, msgs, tools)
}

// resolveToolCall executes an individual tool call. Every failure mode,
// including a panicking tool, is converted into result text: the model
// consumes tool output as plain text and a raised error would abort the
// whole conversational turn.
func (c *Coordinator) resolveToolCall(ctx context.Context, tc llm.ToolCall) (out string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Tool execution panicked", "tool", tc.Name, "error", r)
			out = "Error: internal processing panic"
		}
	}()

	cleanName := strings.TrimPrefix(tc.Name, "functions.")

	tool, ok := c.toolRegistry.Get(cleanName)
	if !ok {
		slog.Error("Unknown tool call", "name", tc.Name, "clean_name", cleanName)
		return fmt.Sprintf("Error: Unknown tool '%s'", tc.Name)
	}

	query := extractQuery(tc.Arguments)

	slog.Info("Executing tool", "name", cleanName, "query", query)
	return tool.Invoke(ctx, query)
}

// extractQuery pulls the "query" argument out of the tool-call JSON.
// Models occasionally emit a bare string instead of an object; both are
// accepted, and anything else falls back to the raw argument text.
func extractQuery(arguments string) string {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err == nil && args.Query != "" {
		return args.Query
	}

	var bare string
	if err := json.Unmarshal([]byte(arguments), &bare); err == nil && bare != "" {
		return bare
	}

	return strings.TrimSpace(arguments)
}

// ToolDefinitions converts a registry's catalog into the wire form
// presented to LLM providers.
func ToolDefinitions(tr api.ToolRegistry) []llm.ToolDefinition {
	all := tr.GetAll()
	defs := make([]llm.ToolDefinition, 0, len(all))
	for _, t := range all {
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
			Required:    t.RequiredParameters(),
		})
	}
	return defs
}
