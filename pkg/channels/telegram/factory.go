package telegram

import (
	"fmt"

	"toktok/pkg/channels"
	"toktok/pkg/config"
	"toktok/pkg/gateway"
	"toktok/pkg/session"

	jsoniter "github.com/json-iterator/go"
)

// TelegramFactory 負責建立 Telegram Channels
type TelegramFactory struct{}

// Create 實作 ChannelFactory。Token 一律取自環境變數。
func (f *TelegramFactory) Create(rawConfig jsoniter.RawMessage, store *session.Store, secrets *config.Secrets, system *config.SystemConfig) (gateway.Channel, error) {
	if secrets.TelegramToken == "" {
		return nil, fmt.Errorf("missing TELEGRAM_BOT_TOKEN in environment")
	}

	cfg := TelegramConfig{Token: secrets.TelegramToken}
	return NewTelegramChannel(cfg, system.TelegramMessageLimit)
}

func init() {
	channels.RegisterChannel("telegram", &TelegramFactory{})
}
