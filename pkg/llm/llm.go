package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// Usage 定義通用的用量統計結構
type Usage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	StopReason       string `json:"stop_reason,omitempty"`
}

// ToolDefinition 描述一個可供 LLM 調用的工具（JSON Schema 形式）
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Required    []string       `json:"required,omitempty"`
}

// ChatResult 是一次同步對話呼叫的完整結果。
// ToolCalls 非空時表示模型要求執行工具後再繼續。
type ChatResult struct {
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	Usage      *Usage     `json:"usage,omitempty"`
	StopReason string     `json:"stop_reason,omitempty"`
}

// LogUsage 印出統一格式的用量統計
func LogUsage(model string, usage *Usage) {
	if usage == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 用量統計 (%s): prompt=%d completion=%d total=%d",
		model, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
	if usage.StopReason != "" {
		fmt.Fprintf(&sb, " stop=%s", usage.StopReason)
	}
	log.Println(sb.String())
}

// LLMClient 通用 LLM 客戶端介面
type LLMClient interface {
	// Chat 同步對話：送出完整歷史與可用工具，等待單一回應。
	// messages: 對話歷史（使用 llm.Message 結構）
	// tools: 本輪可供模型調用的工具目錄（nil 表示停用工具）
	Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*ChatResult, error)

	// IsTransientError 判斷是否為暫時性錯誤 (如 503, Rate Limit)
	IsTransientError(err error) bool
}

// FallbackClient 支援多個 Client 分級嘗試
type FallbackClient struct {
	Clients    []LLMClient
	MaxRetries int
	RetryDelay time.Duration
}

func (f *FallbackClient) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*ChatResult, error) {
	var lastErr error
	for i, client := range f.Clients {
		if i > 0 {
			log.Printf("⚠️ Previous provider failed. Trying fallback provider #%d...", i+1)
		}

		// 使用配置的重試次數，若為 0 則至少執行 1 次
		maxRetries := f.MaxRetries
		if maxRetries <= 0 {
			maxRetries = 1
		}

		for retry := 1; retry <= maxRetries; retry++ {
			if retry > 1 {
				log.Printf("🔄 Retrying provider #%d (attempt %d/%d)...", i+1, retry, maxRetries)
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Duration(retry-1) * f.RetryDelay):
				}
			}

			res, err := client.Chat(ctx, messages, tools)
			if err == nil {
				return res, nil
			}

			lastErr = err

			if client.IsTransientError(err) && retry < maxRetries {
				log.Printf("❌ Provider #%d failed with transient error: %v. Retrying...", i+1, err)
				continue
			}

			// 非暫時性錯誤，或者已達最大重試次數
			log.Printf("❌ Provider #%d failed: %v", i+1, err)
			break
		}
	}
	return nil, fmt.Errorf("all fallback providers failed. Last error: %v", lastErr)
}

// IsTransientError 實作 LLMClient 介面
// FallbackClient 的錯誤意味著所有 Child 都已失敗，視為非暫時性
func (f *FallbackClient) IsTransientError(err error) bool {
	return false
}
