package handler

import (
	"context"
	"testing"

	"toktok/pkg/api"
	"toktok/pkg/gateway"
	"toktok/pkg/llm"
	"toktok/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoAgent returns a canned reply and records what it was asked.
type echoAgent struct {
	reply   string
	handled []*api.UnifiedMessage
}

func (a *echoAgent) Handle(ctx context.Context, msg *api.UnifiedMessage) string {
	a.handled = append(a.handled, msg)
	return a.reply
}
func (a *echoAgent) SetToolRegistry(tr api.ToolRegistry) {}
func (a *echoAgent) RegisterTool(tools ...api.Tool)      {}

// recordingChannel captures replies and signals routed through the gateway.
type recordingChannel struct {
	sent    []string
	signals []string
}

func (c *recordingChannel) ID() string                         { return "web" }
func (c *recordingChannel) Start(ctx api.ChannelContext) error { return nil }
func (c *recordingChannel) Stop() error                        { return nil }
func (c *recordingChannel) Send(session api.SessionContext, message string) error {
	c.sent = append(c.sent, message)
	return nil
}
func (c *recordingChannel) SendSignal(session api.SessionContext, signal string) error {
	c.signals = append(c.signals, signal)
	return nil
}

func setup(agent api.Agent, notice string) (func(*gateway.UnifiedMessage), *recordingChannel, *session.Store) {
	gw := gateway.NewGatewayManager()
	ch := &recordingChannel{}
	gw.Register(ch)

	store := session.NewStore()
	return NewMessageHandler(agent, gw, store, notice), ch, store
}

func webMsg(content string) *gateway.UnifiedMessage {
	return &gateway.UnifiedMessage{
		Session: api.SessionContext{ChannelID: "web", UserID: "u1", ChatID: "t1", Username: "tester"},
		Content: content,
	}
}

func TestNormalMessageFlowsThroughAgent(t *testing.T) {
	agent := &echoAgent{reply: "the answer"}
	onMessage, ch, _ := setup(agent, "")

	onMessage(webMsg("a question"))

	require.Len(t, agent.handled, 1)
	assert.Equal(t, "a question", agent.handled[0].Content)

	// Thinking signal precedes the reply
	assert.Equal(t, []string{"thinking"}, ch.signals)
	assert.Equal(t, []string{"the answer"}, ch.sent)
}

func TestSetupNoticeModeBypassesAgent(t *testing.T) {
	agent := &echoAgent{reply: "should not appear"}
	notice := "⚠️ Setup required: missing credentials: SERPAPI_API_KEY."
	onMessage, ch, _ := setup(agent, notice)

	onMessage(webMsg("hello?"))

	assert.Empty(t, agent.handled)
	require.Len(t, ch.sent, 1)
	assert.Equal(t, notice, ch.sent[0])
}

func TestClearCommandWipesOnlyThisSession(t *testing.T) {
	agent := &echoAgent{reply: "unused"}
	onMessage, ch, store := setup(agent, "")

	store.GetOrCreate("web_t1").Add(llm.NewUserMessage("old"))
	store.GetOrCreate("web_other").Add(llm.NewUserMessage("keep me"))

	onMessage(webMsg("/clear"))

	assert.Empty(t, agent.handled, "clear must not reach the agent")
	assert.Equal(t, 0, store.GetOrCreate("web_t1").Len())
	assert.Equal(t, 1, store.GetOrCreate("web_other").Len())

	assert.Contains(t, ch.signals, "cleared")
	require.Len(t, ch.sent, 1)
	assert.Contains(t, ch.sent[0], "cleared")
}

func TestNoToolsCommandStripsPrefixAndDisablesTools(t *testing.T) {
	agent := &echoAgent{reply: "plain answer"}
	onMessage, ch, _ := setup(agent, "")

	onMessage(webMsg("/notools what is 2+2"))

	require.Len(t, agent.handled, 1)
	assert.True(t, agent.handled[0].NoTools)
	assert.Equal(t, "what is 2+2", agent.handled[0].Content)
	assert.Equal(t, []string{"plain answer"}, ch.sent)
}

func TestNoToolsWithoutQuestion(t *testing.T) {
	agent := &echoAgent{reply: "unused"}
	onMessage, ch, _ := setup(agent, "")

	onMessage(webMsg("/notools"))

	assert.Empty(t, agent.handled)
	require.Len(t, ch.sent, 1)
	assert.Contains(t, ch.sent[0], "Format")
}

func TestUnknownCommand(t *testing.T) {
	agent := &echoAgent{reply: "unused"}
	onMessage, ch, _ := setup(agent, "")

	onMessage(webMsg("/selfdestruct"))

	assert.Empty(t, agent.handled)
	require.Len(t, ch.sent, 1)
	assert.Contains(t, ch.sent[0], "Unknown command")
}
