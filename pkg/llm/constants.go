package llm

// StopReason constants define normalized reasons for LLM generation termination.
// All providers must normalize their native stop reasons to these values.
const (
	StopReasonStop      = "stop"       // Normal completion
	StopReasonLength    = "length"     // Output truncated due to token limit
	StopReasonToolCalls = "tool_calls" // Generation paused awaiting tool results
)

// Role constants for the conversation transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)
