package monitor

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIMonitorFormatsUserAndAssistantLines(t *testing.T) {
	var buf bytes.Buffer
	m := &CLIMonitor{writer: &buf}

	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m.OnMessage(MonitorMessage{Timestamp: ts, MessageType: MessageTypeUser, ChannelID: "web", Username: "tester", Content: "hi"})
	m.OnMessage(MonitorMessage{Timestamp: ts, MessageType: MessageTypeAssistant, Content: "hello!"})

	out := buf.String()
	assert.Contains(t, out, "[web/tester] hi")
	assert.Contains(t, out, "[assistant] hello!")
	assert.Contains(t, out, "2026-08-30 12:00:00")
}

func TestCLIMonitorStartPrintsBanner(t *testing.T) {
	var buf bytes.Buffer
	m := &CLIMonitor{writer: &buf}

	require.NoError(t, m.Start())
	assert.Contains(t, buf.String(), "Conversation monitor active")
}
