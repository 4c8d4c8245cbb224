package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// Config defines the global application configuration structure.
// This structure maps directly to the config.json file and holds
// business-level settings like channel wiring and LLM provider choices.
// Credentials are deliberately NOT part of this file: they are supplied
// through the environment only (see Secrets).
type Config struct {
	// Channels contains a map of channel identifiers (e.g., "web", "telegram")
	// to their specific configuration payloads in raw JSON format.
	Channels map[string]jsoniter.RawMessage `json:"channels"`
	// LLM holds the configuration for the LLM provider groups in raw JSON.
	LLM jsoniter.RawMessage `json:"llm"`
	// SystemPrompt is the assistant persona sent to the AI as the initial
	// system message in every conversation.
	SystemPrompt string `json:"system_prompt"`
}

// Validate ensures the configuration structure contains all mandatory fields.
// It acts as a primary guard before the system proceeds to initialization.
func (c *Config) Validate() error {
	if len(c.LLM) == 0 {
		return fmt.Errorf("mandatory 'llm' configuration is missing or empty")
	}
	return nil
}

// ProviderTypes extracts the configured LLM provider type names,
// used to determine which credentials are mandatory.
func (c *Config) ProviderTypes() []string {
	var groups []struct {
		Type string `json:"type"`
	}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(c.LLM, &groups); err != nil {
		return nil
	}
	var types []string
	for _, g := range groups {
		if g.Type != "" {
			types = append(types, g.Type)
		}
	}
	return types
}

// SystemConfig defines engine-level technical parameters.
// These settings are usually stored in system.json and control the
// performance, reliability, and technical behavior of the engine.
type SystemConfig struct {
	// MaxRetries is the number of times the system will attempt to
	// recover from a transient LLM or network error before giving up.
	MaxRetries int `json:"max_retries"`
	// RetryDelayMs is the duration to wait (in milliseconds) between
	// consecutive retry attempts.
	RetryDelayMs int `json:"retry_delay_ms"`
	// LLMTimeoutMs is the hard cutoff time (in milliseconds) for a single
	// LLM request. The context will be cancelled if exceeded.
	LLMTimeoutMs int `json:"llm_timeout_ms"`
	// SearchTimeoutMs is the hard cutoff time (in milliseconds) for a
	// single search-provider request issued by a tool.
	SearchTimeoutMs int `json:"search_timeout_ms"`
	// MaxToolIterations caps the number of reasoning/tool-call rounds for
	// one user message. When the cap is hit, a final answer is forced from
	// whatever tool results were gathered so far.
	MaxToolIterations int `json:"max_tool_iterations"`
	// HistoryMaxTurns limits how many recent turns are sent to the LLM as
	// conversational context. The stored transcript itself is not pruned.
	HistoryMaxTurns int `json:"history_max_turns"`
	// TelegramMessageLimit is the maximum character count for a single
	// Telegram message. Longer responses will be split into multiple chunks.
	TelegramMessageLimit int `json:"telegram_message_limit"`
	// LogLevel sets the minimum severity for log output.
	// Accepted values: "debug", "info", "warn", "error". Default: "info".
	LogLevel string `json:"log_level"`
	// EnableTools globally toggles the tool calling (agentic) functionality.
	// If false, the AI will not be provided with any external tools/capabilities.
	EnableTools bool `json:"enable_tools"`
}

// DefaultSystemConfig returns a SystemConfig pointer initialized with hardcoded
// safe default values. This is used as a fallback when the system.json file
// is missing or corrupt, ensuring the engine can always start.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		MaxRetries:           3,
		RetryDelayMs:         500,
		LLMTimeoutMs:         30000,
		SearchTimeoutMs:      15000,
		MaxToolIterations:    3,
		HistoryMaxTurns:      50,
		TelegramMessageLimit: 4000,
		LogLevel:             "info",
		EnableTools:          true,
	}
}

// Load reads and parses the JSON configuration files from the current working directory.
// It first attempts to load 'config.json' (app config). If this file is missing, it returns an error.
// Then it calls LoadSystemConfig to load 'system.json'.
// Returns pointers to the loaded Config and SystemConfig, or an error if the mandatory app config fails.
func Load() (*Config, *SystemConfig, error) {
	// 1. Load Application Config
	appPath := "config.json"
	if _, err := os.Stat(appPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("config file '%s' not found. please create one", appPath)
	}

	appFile, err := os.ReadFile(appPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(appFile, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// 1a. Validate structure integrity
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	// 2. Load System Config independently
	sysCfg := LoadSystemConfig("system.json")

	return &cfg, sysCfg, nil
}

// LoadSystemConfig attempts to load system settings, returns defaults if it fails
func LoadSystemConfig(path string) *SystemConfig {
	cfg := DefaultSystemConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		return cfg // File not found, use defaults
	}

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(file, cfg); err != nil {
		return cfg // Parse failed, use defaults
	}

	return cfg
}
