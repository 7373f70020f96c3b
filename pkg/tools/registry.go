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

package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kadirpekel/lectern/pkg/llms"
)

var (
	// ErrDuplicateTool indicates a tool name was registered twice.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrUnknownTool indicates an execution request for an unregistered tool.
	ErrUnknownTool = errors.New("unknown tool")
)

// Registry holds the tools available to one query and accumulates the
// sources their executions produce.
type Registry struct {
	mu      sync.Mutex
	order   []string
	tools   map[string]Tool
	sources []Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(tool Tool) error {
	info := tool.GetInfo()
	if info.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[info.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, info.Name)
	}

	r.tools[info.Name] = tool
	r.order = append(r.order, info.Name)
	return nil
}

// Definitions returns tool definitions in registration order, for
// passing to the LLM provider.
func (r *Registry) Definitions() []llms.ToolDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	defs := make([]llms.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, Definition(r.tools[name].GetInfo()))
	}
	return defs
}

// Execute dispatches a call to the named tool. Unknown tools and tool
// failures come back as failed results alongside the error, so callers
// can surface them to the model as text instead of aborting the query.
// Sources from successful executions accumulate for CollectSources.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (ToolResult, error) {
	r.mu.Lock()
	tool, exists := r.tools[name]
	r.mu.Unlock()

	if !exists {
		err := fmt.Errorf("%w: %s", ErrUnknownTool, name)
		return errorResult(name, err.Error()), err
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		slog.Warn("Tool execution failed", "tool", name, "error", err)
		return result, err
	}

	if len(result.Sources) > 0 {
		r.mu.Lock()
		r.sources = append(r.sources, result.Sources...)
		r.mu.Unlock()
	}

	return result, nil
}

// CollectSources returns the sources accumulated so far, deduplicated
// by label with first-seen order preserved. It does not clear them.
func (r *Registry) CollectSources() []Source {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(r.sources))
	out := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		if seen[s.Label] {
			continue
		}
		seen[s.Label] = true
		out = append(out, s)
	}
	return out
}

// ResetSources clears accumulated sources, typically between queries.
func (r *Registry) ResetSources() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = nil
}
