package gateway

import (
	"testing"
	"time"

	"toktok/pkg/api"
	"toktok/pkg/monitor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChannel records everything sent through it.
type fakeChannel struct {
	id      string
	started bool
	stopped bool
	sent    []string
	signals []string
}

func (f *fakeChannel) ID() string                        { return f.id }
func (f *fakeChannel) Start(ctx api.ChannelContext) error { f.started = true; return nil }
func (f *fakeChannel) Stop() error                        { f.stopped = true; return nil }
func (f *fakeChannel) Send(session api.SessionContext, message string) error {
	f.sent = append(f.sent, message)
	return nil
}

// signalingChannel additionally records control signals.
type signalingChannel struct {
	fakeChannel
}

func (s *signalingChannel) SendSignal(session api.SessionContext, signal string) error {
	s.signals = append(s.signals, signal)
	return nil
}

// recordingMonitor captures broadcast messages.
type recordingMonitor struct {
	messages []monitor.MonitorMessage
}

func (m *recordingMonitor) Start() error { return nil }
func (m *recordingMonitor) Stop() error  { return nil }
func (m *recordingMonitor) OnMessage(msg monitor.MonitorMessage) {
	m.messages = append(m.messages, msg)
}

func webSession() api.SessionContext {
	return api.SessionContext{ChannelID: "web", UserID: "u1", ChatID: "t1", Username: "tester"}
}

func TestSendReplyRoutesToChannel(t *testing.T) {
	gw := NewGatewayManager()
	ch := &fakeChannel{id: "web"}
	gw.Register(ch)

	err := gw.SendReply(webSession(), "hello back")

	require.NoError(t, err)
	require.Len(t, ch.sent, 1)
	assert.Equal(t, "hello back", ch.sent[0])
}

func TestSendReplyUnknownChannel(t *testing.T) {
	gw := NewGatewayManager()

	err := gw.SendReply(webSession(), "nobody home")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "web")
}

func TestSendSignalOnlyReachesSignalingChannels(t *testing.T) {
	gw := NewGatewayManager()
	plain := &fakeChannel{id: "plain"}
	signaling := &signalingChannel{fakeChannel: fakeChannel{id: "web"}}
	gw.Register(plain)
	gw.Register(signaling)

	// Non-signaling channels are silently skipped
	err := gw.SendSignal(api.SessionContext{ChannelID: "plain"}, "thinking")
	require.NoError(t, err)
	assert.Empty(t, plain.signals)

	err = gw.SendSignal(webSession(), "thinking")
	require.NoError(t, err)
	assert.Equal(t, []string{"thinking"}, signaling.signals)
}

func TestOnMessageForwardsToHandlerAndMonitor(t *testing.T) {
	gw := NewGatewayManager()
	mon := &recordingMonitor{}
	gw.SetMonitor(mon)

	var received *UnifiedMessage
	gw.SetMessageHandler(func(msg *UnifiedMessage) {
		received = msg
	})

	msg := &UnifiedMessage{Session: webSession(), Content: "what's up"}
	gw.OnMessage("web", msg)

	require.NotNil(t, received)
	assert.Equal(t, "what's up", received.Content)

	require.Len(t, mon.messages, 1)
	assert.Equal(t, monitor.MessageTypeUser, mon.messages[0].MessageType)
	assert.Equal(t, "web", mon.messages[0].ChannelID)
}

func TestSendReplyBroadcastsToMonitor(t *testing.T) {
	gw := NewGatewayManager()
	mon := &recordingMonitor{}
	gw.SetMonitor(mon)
	gw.Register(&fakeChannel{id: "web"})

	require.NoError(t, gw.SendReply(webSession(), "answer"))

	require.Len(t, mon.messages, 1)
	assert.Equal(t, monitor.MessageTypeAssistant, mon.messages[0].MessageType)
	assert.Equal(t, "answer", mon.messages[0].Content)
	assert.WithinDuration(t, time.Now(), mon.messages[0].Timestamp, time.Minute)
}

func TestStartAllAndStopAll(t *testing.T) {
	gw := NewGatewayManager()
	a := &fakeChannel{id: "a"}
	b := &fakeChannel{id: "b"}
	gw.Register(a)
	gw.Register(b)

	require.NoError(t, gw.StartAll())
	assert.True(t, a.started)
	assert.True(t, b.started)

	gw.StopAll()
	assert.True(t, a.stopped)
	assert.True(t, b.stopped)
}

func TestBuilderAssemblesEverything(t *testing.T) {
	mon := &recordingMonitor{}
	ch := &fakeChannel{id: "web"}

	var handlerWired bool
	gw, err := NewGatewayBuilder().
		WithMonitor(mon).
		WithChannel(ch).
		WithHandlerFactory(func(gw *GatewayManager) MessageHandler {
			handlerWired = true
			return func(msg *UnifiedMessage) {}
		}).
		Build()

	require.NoError(t, err)
	assert.True(t, ch.started)
	assert.True(t, handlerWired)

	got, ok := gw.GetChannel("web")
	require.True(t, ok)
	assert.Same(t, ch, got)
}
