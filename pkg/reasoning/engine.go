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

// Package reasoning runs the bounded tool-orchestration loop that turns
// a query into a grounded answer.
//
// The model may request tool executions over a fixed number of rounds.
// Each round appends the assistant's tool-use turn and a user turn
// carrying the results, then calls the model again. When the budget is
// spent, the final call carries no tool definitions, forcing a text
// answer. Tool failures are reported to the model as result text, never
// as query failures.
package reasoning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kadirpekel/lectern/pkg/config"
	"github.com/kadirpekel/lectern/pkg/httpclient"
	"github.com/kadirpekel/lectern/pkg/llms"
	"github.com/kadirpekel/lectern/pkg/tools"
)

// Generator produces completions. *llms.AnthropicProvider satisfies it.
type Generator interface {
	Generate(ctx context.Context, messages []*llms.Message, system string, tools []llms.ToolDefinition) (*llms.Completion, error)
}

// ToolExecutor dispatches tool calls. *tools.Registry satisfies it.
type ToolExecutor interface {
	Definitions() []llms.ToolDefinition
	Execute(ctx context.Context, name string, args map[string]interface{}) (tools.ToolResult, error)
}

// Result is the outcome of one orchestrated query.
type Result struct {
	// Text is the final answer.
	Text string

	// Turns is the full conversation accumulated during orchestration,
	// ending with the final assistant turn.
	Turns []*llms.Message

	// Rounds is the number of tool-execution rounds that ran.
	Rounds int

	// Tokens is the total across all generation calls.
	Tokens int
}

// Engine orchestrates generation and tool execution for one query at a
// time. It is stateless across queries and safe for sequential reuse.
type Engine struct {
	gen           Generator
	executor      ToolExecutor
	maxToolRounds int
	maxRetries    int
	retryDelay    time.Duration
}

// NewEngine creates an engine with the given budgets.
func NewEngine(gen Generator, executor ToolExecutor, cfg *config.EngineConfig) *Engine {
	maxToolRounds := cfg.MaxToolRounds
	if maxToolRounds <= 0 {
		maxToolRounds = 2
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := time.Duration(cfg.RetryDelay) * time.Second
	if cfg.RetryDelay < 0 {
		retryDelay = 0
	}

	return &Engine{
		gen:           gen,
		executor:      executor,
		maxToolRounds: maxToolRounds,
		maxRetries:    maxRetries,
		retryDelay:    retryDelay,
	}
}

// Answer runs the orchestration loop for one query. history, when
// non-empty, is prior conversation text appended to the system prompt.
func (e *Engine) Answer(ctx context.Context, query string, history string) (*Result, error) {
	system := systemPrompt
	if history != "" {
		system += historyPreamble + history
	}

	messages := []*llms.Message{llms.NewUserMessage(query)}
	toolDefs := e.executor.Definitions()

	totalTokens := 0
	completion, err := e.generate(ctx, messages, system, toolDefs)
	if err != nil {
		return nil, err
	}
	totalTokens += completion.Tokens

	rounds := 0
	for completion.StopReason == llms.StopToolUse && len(completion.ToolCalls) > 0 {
		if rounds >= e.maxToolRounds {
			// The budget-exhausted call carries no tool definitions, so
			// the model cannot reach here requesting more.
			break
		}

		messages = append(messages, llms.NewAssistantMessage(completion.Text, completion.ToolCalls))
		messages = append(messages, llms.NewToolResultMessage(e.executeCalls(ctx, completion.ToolCalls)))
		rounds++

		// The last permitted round forces a text answer by withholding
		// tool definitions.
		defs := toolDefs
		if rounds >= e.maxToolRounds {
			defs = nil
		}

		completion, err = e.generate(ctx, messages, system, defs)
		if err != nil {
			return nil, err
		}
		totalTokens += completion.Tokens
	}

	messages = append(messages, llms.NewAssistantMessage(completion.Text, nil))

	slog.Debug("Query answered",
		"rounds", rounds,
		"tokens", totalTokens)

	return &Result{
		Text:   completion.Text,
		Turns:  messages,
		Rounds: rounds,
		Tokens: totalTokens,
	}, nil
}

// executeCalls runs the requested tools sequentially in proposal order.
// Failures become result text the model can react to.
func (e *Engine) executeCalls(ctx context.Context, calls []*llms.ToolCall) []*llms.ToolResultBlock {
	results := make([]*llms.ToolResultBlock, 0, len(calls))
	for _, call := range calls {
		result, err := e.executor.Execute(ctx, call.Name, call.Args)

		content := result.Content
		if err != nil {
			content = fmt.Sprintf("Error executing tool: %s", err)
		} else if !result.Success {
			content = fmt.Sprintf("Error executing tool: %s", result.Error)
		}

		results = append(results, &llms.ToolResultBlock{
			ToolCallID: call.ID,
			Content:    content,
		})
	}
	return results
}

// generate calls the model, retrying transient failures with doubling
// delays. Authentication and request errors propagate immediately.
func (e *Engine) generate(ctx context.Context, messages []*llms.Message, system string, defs []llms.ToolDefinition) (*llms.Completion, error) {
	delay := e.retryDelay
	var lastErr error

	for attempt := 0; attempt < e.maxRetries; attempt++ {
		completion, err := e.gen.Generate(ctx, messages, system, defs)
		if err == nil {
			return completion, nil
		}
		if !httpclient.IsTransient(err) {
			return nil, err
		}
		lastErr = err

		if attempt < e.maxRetries-1 {
			slog.Warn("Transient generation failure, retrying",
				"attempt", attempt+1,
				"max_attempts", e.maxRetries,
				"delay", delay,
				"error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return nil, fmt.Errorf("generation failed after %d attempts: %w", e.maxRetries, lastErr)
}
