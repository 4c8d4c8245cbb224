package gateway

import (
	"toktok/pkg/api"
)

// Re-export types from api package via aliases so gateway callers don't need
// to import both packages.
type Channel = api.Channel
type SignalingChannel = api.SignalingChannel
type MessageResponder = api.MessageResponder
type ChannelContext = api.ChannelContext
type UnifiedMessage = api.UnifiedMessage
type SessionContext = api.SessionContext
type MessageHandler = api.MessageHandler
