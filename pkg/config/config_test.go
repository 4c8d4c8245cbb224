package config

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequiresLLM(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.Validate())

	cfg.LLM = jsoniter.RawMessage(`[{"type":"openai","models":["gpt-4o-mini"]}]`)
	assert.NoError(t, cfg.Validate())
}

func TestProviderTypes(t *testing.T) {
	cfg := &Config{
		LLM: jsoniter.RawMessage(`[
			{"type":"openai","models":["gpt-4o-mini"]},
			{"type":"ollama","models":["llama3"]}
		]`),
	}

	assert.Equal(t, []string{"openai", "ollama"}, cfg.ProviderTypes())
}

func TestProviderTypesMalformed(t *testing.T) {
	cfg := &Config{LLM: jsoniter.RawMessage(`{not valid`)}
	assert.Nil(t, cfg.ProviderTypes())
}

func TestLoadSystemConfigMissingFileUsesDefaults(t *testing.T) {
	cfg := LoadSystemConfig("definitely_not_a_file.json")

	assert.Equal(t, 3, cfg.MaxToolIterations)
	assert.Equal(t, 50, cfg.HistoryMaxTurns)
	assert.Equal(t, 30000, cfg.LLMTimeoutMs)
	assert.Equal(t, 15000, cfg.SearchTimeoutMs)
	assert.True(t, cfg.EnableTools)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestSecretsMissingPerProvider(t *testing.T) {
	s := &Secrets{SerpAPIKey: "x"}

	// Only configured providers contribute required keys
	assert.Equal(t, []string{"OPENAI_API_KEY"}, s.Missing([]string{"openai"}))
	assert.Equal(t, []string{"GEMINI_API_KEY"}, s.Missing([]string{"gemini"}))

	// Ollama is local: no credential required
	assert.Nil(t, s.Missing([]string{"ollama"}))
}

func TestSecretsSearchKeyAlwaysRequired(t *testing.T) {
	s := &Secrets{OpenAIAPIKey: "x"}
	assert.Equal(t, []string{"SERPAPI_API_KEY"}, s.Missing([]string{"openai"}))
}

func TestSecretsComplete(t *testing.T) {
	s := &Secrets{
		OpenAIAPIKey: "a",
		GeminiAPIKey: "b",
		SerpAPIKey:   "c",
	}
	assert.Nil(t, s.Missing([]string{"openai", "gemini", "ollama"}))
}
