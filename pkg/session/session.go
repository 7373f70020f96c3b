// Copyright 2026 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package session keeps per-conversation history in memory.
//
// History is bounded: only the most recent exchanges are kept. Session
// identifiers are opaque keys; an unseen identifier simply reads as an
// empty session.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Exchange is one completed query/answer pair.
type Exchange struct {
	Query  string
	Answer string
}

// Store holds session histories keyed by session ID.
type Store struct {
	maxHistory int

	mu       sync.RWMutex
	sessions map[string][]Exchange
}

// NewStore creates a store keeping up to maxHistory exchanges per session.
func NewStore(maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = 2
	}
	return &Store{
		maxHistory: maxHistory,
		sessions:   make(map[string][]Exchange),
	}
}

// NewSessionID generates a fresh unique session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// AddExchange appends a completed exchange, evicting the oldest entries
// beyond the history bound.
func (s *Store) AddExchange(sessionID, query, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.sessions[sessionID], Exchange{Query: query, Answer: answer})
	if len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	s.sessions[sessionID] = history
}

// History returns the session's recent exchanges formatted for prompt
// injection, or "" for an empty or unknown session.
func (s *Store) History(sessionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.sessions[sessionID]
	if len(history) == 0 {
		return ""
	}

	lines := make([]string, 0, len(history))
	for _, ex := range history {
		lines = append(lines, fmt.Sprintf("User: %s\nAssistant: %s", ex.Query, ex.Answer))
	}
	return strings.Join(lines, "\n")
}

// Clear removes a session's history.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
