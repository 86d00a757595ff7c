// Package conversation holds the bounded, process-lifetime message
// history used to limit model context length across requests.
package conversation

import (
	"strings"
	"sync"

	"handycan-agent/internal/domain"
)

// DefaultMaxTurns bounds a conversation's retained history.
const DefaultMaxTurns = 20

// Store maps conversation id to its ordered turn history. Histories are
// append-only, trimmed oldest-first past the turn cap, and do not
// survive process restart. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	maxTurns int
	turns    map[string][]domain.ChatMessage
}

// NewStore creates a Store bounded to maxTurns entries per conversation.
// Non-positive caps fall back to DefaultMaxTurns.
func NewStore(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		maxTurns: maxTurns,
		turns:    make(map[string][]domain.ChatMessage),
	}
}

// Get returns the recorded history for a conversation in order, oldest
// first. Unknown or blank ids yield an empty history.
func (s *Store) Get(conversationID string) []domain.ChatMessage {
	if strings.TrimSpace(conversationID) == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.turns[conversationID]
	if len(history) == 0 {
		return nil
	}
	out := make([]domain.ChatMessage, len(history))
	copy(out, history)
	return out
}

// Append records new turns for a conversation and trims the history to
// the most recent maxTurns entries. Blank ids are a no-op.
func (s *Store) Append(conversationID string, newTurns ...domain.ChatMessage) {
	if strings.TrimSpace(conversationID) == "" || len(newTurns) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.turns[conversationID], newTurns...)
	if len(history) > s.maxTurns {
		history = history[len(history)-s.maxTurns:]
	}
	s.turns[conversationID] = history
}
