package session

import (
	"fmt"
	"sync"
	"testing"

	"toktok/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	store := NewStore()

	a := store.GetOrCreate("web_abc")
	b := store.GetOrCreate("web_abc")

	assert.Same(t, a, b)
	assert.Equal(t, 0, a.Len())
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewStore()

	first := store.GetOrCreate("web_1")
	second := store.GetOrCreate("web_2")

	first.Add(llm.NewUserMessage("hello"))
	first.Add(llm.NewAssistantMessage("hi there"))

	assert.Equal(t, 2, first.Len())
	assert.Equal(t, 0, second.Len())
}

func TestClearOnlyTargetsOneSession(t *testing.T) {
	store := NewStore()

	first := store.GetOrCreate("web_1")
	second := store.GetOrCreate("web_2")
	first.Add(llm.NewUserMessage("a"))
	second.Add(llm.NewUserMessage("b"))

	store.Clear("web_1")

	assert.Equal(t, 0, first.Len())
	assert.Equal(t, 1, second.Len())

	// Same transcript object remains usable after clearing
	assert.Same(t, first, store.GetOrCreate("web_1"))
}

func TestClearUnknownSessionIsNoop(t *testing.T) {
	store := NewStore()
	store.Clear("never_seen")
}

func TestTranscriptPreservesOrder(t *testing.T) {
	tr := NewTranscript()
	tr.Add(llm.NewUserMessage("q1"))
	tr.Add(llm.NewAssistantMessage("a1"))
	tr.Add(llm.NewUserMessage("q2"))
	tr.Add(llm.NewAssistantMessage("a2"))

	turns := tr.Turns()
	require.Len(t, turns, 4)
	assert.Equal(t, []string{"q1", "a1", "q2", "a2"}, []string{
		turns[0].Content, turns[1].Content, turns[2].Content, turns[3].Content,
	})
	assert.Equal(t, llm.RoleUser, turns[0].Role)
	assert.Equal(t, llm.RoleAssistant, turns[1].Role)
}

func TestTurnsReturnsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Add(llm.NewUserMessage("original"))

	turns := tr.Turns()
	turns[0].Content = "mutated"

	assert.Equal(t, "original", tr.Turns()[0].Content)
}

func TestRecentLimitsWindow(t *testing.T) {
	tr := NewTranscript()
	for i := 0; i < 10; i++ {
		tr.Add(llm.NewUserMessage(fmt.Sprintf("msg-%d", i)))
	}

	recent := tr.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, "msg-7", recent[0].Content)
	assert.Equal(t, "msg-9", recent[2].Content)

	// n <= 0 and n >= len both return everything
	assert.Len(t, tr.Recent(0), 10)
	assert.Len(t, tr.Recent(100), 10)
}

func TestConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tr := store.GetOrCreate("web_shared")
			tr.Add(llm.NewUserMessage(fmt.Sprintf("msg-%d", n)))
			_ = tr.Turns()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, store.GetOrCreate("web_shared").Len())
}
