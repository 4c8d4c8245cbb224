package api

import (
	"context"
)

// Tool defines the structural interface for any capability that the AI agent
// can invoke. It includes metadata for prompt injection (JSON Schema)
// and the invocation logic itself.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema property map describing the
	// tool's arguments as presented to the LLM.
	Parameters() map[string]any
	RequiredParameters() []string
	// Invoke performs the tool logic for a free-text query and returns the
	// formatted result text. Implementations must never fail: provider
	// errors are folded into the returned string so the agent can reason
	// over them as ordinary tool output.
	Invoke(ctx context.Context, query string) string
}

// ToolRegistry defines the interface for managing and accessing tools.
// A registry is populated once during startup and treated as read-only
// for the rest of the process lifetime.
type ToolRegistry interface {
	Register(tool Tool)
	Get(name string) (Tool, bool)
	GetAll() []Tool
}
