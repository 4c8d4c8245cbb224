package monitor

import (
	"fmt"
	"io"
	"os"
)

// CLIMonitor 把所有 Channel 的對話即時印到終端機。
// 開發時同時觀察 web 與 telegram 流量用，不做任何持久化。
type CLIMonitor struct {
	writer io.Writer
}

// NewCLIMonitor creates a monitor writing to stdout.
func NewCLIMonitor() *CLIMonitor {
	return &CLIMonitor{
		writer: os.Stdout,
	}
}

// Start prints the banner. The monitor is passive after this point: it
// only reacts to OnMessage broadcasts from the gateway.
func (m *CLIMonitor) Start() error {
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	fmt.Fprintln(m.writer, "💬 Conversation monitor active: user and assistant turns appear below")
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	return nil
}

func (m *CLIMonitor) Stop() error {
	return nil
}

// OnMessage 逐則列印：助理回覆標成 [assistant]，使用者訊息帶上 channel/暱稱
func (m *CLIMonitor) OnMessage(msg MonitorMessage) {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")

	var line string
	if msg.MessageType == MessageTypeAssistant {
		line = fmt.Sprintf("[assistant] %s", msg.Content)
	} else {
		line = fmt.Sprintf("[%s/%s] %s", msg.ChannelID, msg.Username, msg.Content)
	}

	// 時間戳用灰色，內容保持原色
	fmt.Fprintf(m.writer, "\033[90m[%s]\033[0m %s\n", timestamp, line)
}
