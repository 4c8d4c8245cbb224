package web

import (
	"fmt"

	"toktok/pkg/channels"
	"toktok/pkg/config"
	"toktok/pkg/gateway"
	"toktok/pkg/session"

	jsoniter "github.com/json-iterator/go"
)

// WebFactory 負責建立 Web Channels
type WebFactory struct{}

// Create 實作 ChannelFactory
func (f *WebFactory) Create(rawConfig jsoniter.RawMessage, store *session.Store, secrets *config.Secrets, system *config.SystemConfig) (gateway.Channel, error) {
	var pCfg WebConfig
	// 設定預設 Port
	pCfg.Port = 9453

	if err := json.Unmarshal(rawConfig, &pCfg); err != nil {
		return nil, fmt.Errorf("failed to parse web config: %w", err)
	}

	return NewWebChannel(pCfg, store), nil
}

func init() {
	channels.RegisterChannel("web", &WebFactory{})
}
