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

// Package assistant exposes the top-level question answering API: it
// wires the course store, session history, and the reasoning engine
// into a single Answer operation.
package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kadirpekel/lectern/pkg/config"
	"github.com/kadirpekel/lectern/pkg/reasoning"
	"github.com/kadirpekel/lectern/pkg/session"
	"github.com/kadirpekel/lectern/pkg/store"
	"github.com/kadirpekel/lectern/pkg/tools"
)

// Answer is the response to one query.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Sources attribute the course content consulted, in retrieval
	// order without duplicates.
	Sources []tools.Source

	// SessionID identifies the conversation, generated when the request
	// carried none.
	SessionID string
}

// Assistant answers questions about the course corpus.
type Assistant struct {
	store    *store.CourseStore
	sessions *session.Store
	gen      reasoning.Generator
	engCfg   *config.EngineConfig
}

// New creates an assistant over the given store and generator.
func New(courseStore *store.CourseStore, sessions *session.Store, gen reasoning.Generator, engCfg *config.EngineConfig) *Assistant {
	return &Assistant{
		store:    courseStore,
		sessions: sessions,
		gen:      gen,
		engCfg:   engCfg,
	}
}

// Ask answers one query. A blank sessionID starts a new session; an
// unseen one is accepted as an empty session. History is recorded only
// after a successful answer, so failed queries leave sessions untouched.
func (a *Assistant) Ask(ctx context.Context, query string, sessionID string) (*Answer, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if sessionID == "" {
		sessionID = session.NewSessionID()
	}

	// Each query gets its own registry so source accumulation never
	// leaks across concurrent queries.
	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewSearchTool(a.store)); err != nil {
		return nil, err
	}
	if err := registry.Register(tools.NewOutlineTool(a.store)); err != nil {
		return nil, err
	}

	engine := reasoning.NewEngine(a.gen, registry, a.engCfg)

	result, err := engine.Answer(ctx, query, a.sessions.History(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to answer query: %w", err)
	}

	a.sessions.AddExchange(sessionID, query, result.Text)

	slog.Info("Answered query",
		"session", sessionID,
		"rounds", result.Rounds,
		"tokens", result.Tokens)

	return &Answer{
		Text:      result.Text,
		Sources:   registry.CollectSources(),
		SessionID: sessionID,
	}, nil
}

// CourseCount reports the number of courses in the catalog.
func (a *Assistant) CourseCount(ctx context.Context) (int, error) {
	return a.store.CourseCount(ctx)
}

// CourseTitles lists the catalog titles loaded this run.
func (a *Assistant) CourseTitles() []string {
	return a.store.CourseTitles()
}

// ClearSession drops a conversation's history.
func (a *Assistant) ClearSession(sessionID string) {
	a.sessions.Clear(sessionID)
}
