package llm

import (
	"time"

	"toktok/pkg/utils"
)

//----------------------------------------------------------------
// Message - 通用訊息結構
//----------------------------------------------------------------

// Message 表示一條對話訊息
type Message struct {
	ID        string `json:"id,omitempty"`
	Role      string `json:"role"`    // "user", "assistant", "system", "tool"
	Content   string `json:"content"` // 純文字內容
	Timestamp int64  `json:"timestamp,omitempty"`

	// ToolCalls 包含 LLM 產生的工具調用請求（僅 role: assistant 時有效）
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID 關聯此訊息所屬的工具調用 ID（僅 role: tool 時有效）
	ToolCallID string `json:"tool_call_id,omitempty"`
	// ToolName 記錄產生此結果的工具名稱（僅 role: tool 時有效）
	ToolName string `json:"tool_name,omitempty"`
}

// ToolCall 表示 LLM 產生的工具調用請求
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON 字串
}

// NewTextMessage 建立純文字訊息
func NewTextMessage(role, text string) Message {
	return Message{
		ID:        utils.GenerateID(),
		Role:      role,
		Content:   text,
		Timestamp: time.Now().Unix(),
	}
}

// NewSystemMessage 建立系統訊息
func NewSystemMessage(text string) Message {
	return NewTextMessage(RoleSystem, text)
}

// NewUserMessage 建立使用者訊息
func NewUserMessage(text string) Message {
	return NewTextMessage(RoleUser, text)
}

// NewAssistantMessage 建立助理訊息
func NewAssistantMessage(text string) Message {
	return NewTextMessage(RoleAssistant, text)
}

// NewToolMessage 建立工具結果訊息，callID 對應觸發它的 ToolCall.ID
func NewToolMessage(callID, toolName, text string) Message {
	m := NewTextMessage(RoleTool, text)
	m.ToolCallID = callID
	m.ToolName = toolName
	return m
}
