package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyClient fails a fixed number of times before succeeding.
type flakyClient struct {
	failures  int
	transient bool
	calls     int
	reply     string
}

func (c *flakyClient) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*ChatResult, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, errors.New("simulated failure")
	}
	return &ChatResult{Content: c.reply, StopReason: StopReasonStop}, nil
}

func (c *flakyClient) IsTransientError(err error) bool { return c.transient }

func TestFallbackFirstProviderSucceeds(t *testing.T) {
	primary := &flakyClient{reply: "from primary"}
	secondary := &flakyClient{reply: "from secondary"}
	fb := &FallbackClient{Clients: []LLMClient{primary, secondary}, MaxRetries: 2, RetryDelay: time.Millisecond}

	res, err := fb.Chat(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "from primary", res.Content)
	assert.Equal(t, 0, secondary.calls)
}

func TestFallbackRetriesTransientThenSucceeds(t *testing.T) {
	primary := &flakyClient{failures: 2, transient: true, reply: "recovered"}
	fb := &FallbackClient{Clients: []LLMClient{primary}, MaxRetries: 3, RetryDelay: time.Millisecond}

	res, err := fb.Chat(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Content)
	assert.Equal(t, 3, primary.calls)
}

func TestFallbackMovesToNextProviderOnPermanentError(t *testing.T) {
	primary := &flakyClient{failures: 100, transient: false}
	secondary := &flakyClient{reply: "from secondary"}
	fb := &FallbackClient{Clients: []LLMClient{primary, secondary}, MaxRetries: 3, RetryDelay: time.Millisecond}

	res, err := fb.Chat(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "from secondary", res.Content)
	// Permanent error skips the remaining retries on the first provider
	assert.Equal(t, 1, primary.calls)
}

func TestFallbackAllProvidersFail(t *testing.T) {
	a := &flakyClient{failures: 100}
	b := &flakyClient{failures: 100}
	fb := &FallbackClient{Clients: []LLMClient{a, b}, MaxRetries: 1, RetryDelay: time.Millisecond}

	_, err := fb.Chat(context.Background(), nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all fallback providers failed")
	assert.False(t, fb.IsTransientError(err))
}

func TestNewToolMessageCarriesCallID(t *testing.T) {
	msg := NewToolMessage("call-1", "weather_search", "sunny")

	assert.Equal(t, RoleTool, msg.Role)
	assert.Equal(t, "call-1", msg.ToolCallID)
	assert.Equal(t, "weather_search", msg.ToolName)
	assert.Equal(t, "sunny", msg.Content)
	assert.NotEmpty(t, msg.ID)
}
