package monitor

import "time"

// 對話事件只分兩種：使用者輸入與助理回覆
const (
	MessageTypeUser      = "USER"
	MessageTypeAssistant = "ASSISTANT"
)

// MonitorMessage 是一則流經 Gateway 的對話事件快照
type MonitorMessage struct {
	Timestamp   time.Time
	MessageType string // MessageTypeUser 或 MessageTypeAssistant
	ChannelID   string
	Username    string
	Content     string
}

// Monitor 接收 Gateway 廣播的對話事件並呈現出來
type Monitor interface {
	Start() error
	Stop() error
	OnMessage(msg MonitorMessage)
}
