package api

import (
	"context"
)

// Agent defines the interface for the core reasoning coordinator.
// Handle runs one full request/response cycle and returns the assistant
// reply text. It must not return an error: every upstream failure is
// folded into the reply as a diagnostic message.
type Agent interface {
	Handle(ctx context.Context, msg *UnifiedMessage) string
	SetToolRegistry(tr ToolRegistry)
	RegisterTool(tools ...Tool)
}
