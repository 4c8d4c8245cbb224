package session

import (
	"sync"

	"toktok/pkg/llm"
)

// Transcript 管理單一 session 的對話歷史。
// Turns 只會被追加；唯一的例外是明確的 Clear 操作。
type Transcript struct {
	turns []llm.Message
	mu    sync.RWMutex
}

// NewTranscript 建立一份空的對話歷史
func NewTranscript() *Transcript {
	return &Transcript{
		turns: make([]llm.Message, 0),
	}
}

// Add 加入一則新訊息
func (t *Transcript) Add(msg llm.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.turns = append(t.turns, msg)
}

// Turns 取得目前的對話歷史副本
func (t *Transcript) Turns() []llm.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cp := make([]llm.Message, len(t.turns))
	copy(cp, t.turns)
	return cp
}

// Recent 取得最近 n 則訊息的副本；n <= 0 時等同 Turns。
// 用於限制送往 LLM 的上下文長度，完整逐字稿仍保留給 UI。
func (t *Transcript) Recent(n int) []llm.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	start := 0
	if n > 0 && len(t.turns) > n {
		start = len(t.turns) - n
	}

	cp := make([]llm.Message, len(t.turns)-start)
	copy(cp, t.turns[start:])
	return cp
}

// Len 回傳目前訊息數量
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Clear 清空對話歷史
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = t.turns[:0]
}

// Store manages multiple conversation transcripts isolated by session ID.
// State lives only in process memory: a restart loses all history.
type Store struct {
	sessions map[string]*Transcript
	mu       sync.RWMutex
}

// NewStore initializes an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Transcript),
	}
}

// GetOrCreate retrieves an existing transcript for a session or creates an
// empty one. Idempotent: repeated calls with the same ID return the same
// transcript until it is cleared or the process exits.
func (s *Store) GetOrCreate(sessionID string) *Transcript {
	s.mu.RLock()
	t, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if ok {
		return t
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double check under lock
	if t, ok = s.sessions[sessionID]; ok {
		return t
	}

	t = NewTranscript()
	s.sessions[sessionID] = t
	return t
}

// Clear empties the named session's transcript. Other sessions are untouched.
// Clearing an unknown ID is a no-op.
func (s *Store) Clear(sessionID string) {
	s.mu.RLock()
	t, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if ok {
		t.Clear()
	}
}
