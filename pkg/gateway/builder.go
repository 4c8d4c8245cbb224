package gateway

import (
	"fmt"

	"toktok/pkg/api"
	"toktok/pkg/monitor"

	jsoniter "github.com/json-iterator/go"
)

// ChannelLoader resolves raw channel configs into registered channels.
// The concrete implementation lives in pkg/channels; injecting it as a
// callback keeps gateway free of a dependency on channel factories.
type ChannelLoader func(gw *GatewayManager, configs map[string]jsoniter.RawMessage)

// HandlerFactory constructs the core message handler once the
// GatewayManager exists, so the handler can use it as its responder.
type HandlerFactory func(gw *GatewayManager) MessageHandler

// GatewayBuilder provides a fluent builder pattern interface for constructing
// and initializing a GatewayManager with all its necessary dependencies.
type GatewayBuilder struct {
	gw             *GatewayManager
	monitor        monitor.Monitor // Monitoring implementation to be injected
	channelConfigs map[string]jsoniter.RawMessage
	channelLoader  ChannelLoader
	handlerFactory HandlerFactory
	channels       []api.Channel // Pre-built channel instances to register
}

// NewGatewayBuilder creates a fresh GatewayBuilder instance and allocates
// an internal GatewayManager to be configured.
func NewGatewayBuilder() *GatewayBuilder {
	return &GatewayBuilder{
		gw: NewGatewayManager(),
	}
}

// WithMonitor injects a monitoring implementation into the builder.
// This monitor will be started automatically during the Build() process.
func (b *GatewayBuilder) WithMonitor(m monitor.Monitor) *GatewayBuilder {
	b.monitor = m
	return b
}

// WithChannelConfigs provides the raw per-channel configuration map.
func (b *GatewayBuilder) WithChannelConfigs(configs map[string]jsoniter.RawMessage) *GatewayBuilder {
	b.channelConfigs = configs
	return b
}

// WithChannelLoader registers the strategy that turns channel configs into
// live channels during Build().
func (b *GatewayBuilder) WithChannelLoader(loader ChannelLoader) *GatewayBuilder {
	b.channelLoader = loader
	return b
}

// WithChannel adds pre-built channel instances to the gateway.
func (b *GatewayBuilder) WithChannel(channels ...api.Channel) *GatewayBuilder {
	b.channels = append(b.channels, channels...)
	return b
}

// WithHandlerFactory registers the strategy to construct the core message
// handler. The factory receives the GatewayManager so the handler can send
// replies through it.
func (b *GatewayBuilder) WithHandlerFactory(factory HandlerFactory) *GatewayBuilder {
	b.handlerFactory = factory
	return b
}

// Build finalizes the configuration, injects all dependencies into the
// GatewayManager, registers all channels, and starts everything.
// Returns the fully operational GatewayManager or an error if any stage fails.
func (b *GatewayBuilder) Build() (*GatewayManager, error) {
	// 1. Initialize and start the monitoring service
	if b.monitor != nil {
		b.gw.SetMonitor(b.monitor)
		if err := b.monitor.Start(); err != nil {
			return nil, fmt.Errorf("failed to start monitor: %w", err)
		}
	}

	// 2. Register channels: pre-built instances first, then config-driven ones
	for _, c := range b.channels {
		b.gw.Register(c)
	}
	if b.channelLoader != nil && len(b.channelConfigs) > 0 {
		b.channelLoader(b.gw, b.channelConfigs)
	}

	// 3. Establish the core message handler using the registered strategy
	if b.handlerFactory != nil {
		if h := b.handlerFactory(b.gw); h != nil {
			b.gw.SetMessageHandler(h)
		}
	}

	// 4. Start all registered channels
	if err := b.gw.StartAll(); err != nil {
		return nil, fmt.Errorf("failed to start channels: %w", err)
	}

	return b.gw, nil
}
