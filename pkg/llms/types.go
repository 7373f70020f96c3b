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

// Package llms provides language model providers for answer generation.
package llms

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason indicates why the model stopped generating.
type StopReason string

const (
	// StopEndTurn means the model produced a final answer.
	StopEndTurn StopReason = "end_turn"

	// StopToolUse means the model requested tool executions.
	StopToolUse StopReason = "tool_use"
)

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]interface{}
}

// ToolResultBlock carries the outcome of one tool call back to the model.
type ToolResultBlock struct {
	ToolCallID string
	Content    string
}

// Message is one turn in a conversation. An assistant turn may carry
// tool calls alongside its text; a user turn may carry tool results.
type Message struct {
	Role        Role
	Content     string
	ToolCalls   []*ToolCall
	ToolResults []*ToolResultBlock
}

// NewUserMessage builds a plain user turn.
func NewUserMessage(text string) *Message {
	return &Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage builds an assistant turn, optionally carrying
// the tool calls the model proposed.
func NewAssistantMessage(text string, toolCalls []*ToolCall) *Message {
	return &Message{Role: RoleAssistant, Content: text, ToolCalls: toolCalls}
}

// NewToolResultMessage builds the user turn that delivers tool results.
func NewToolResultMessage(results []*ToolResultBlock) *Message {
	return &Message{Role: RoleUser, ToolResults: results}
}

// ToolDefinition describes a tool the model may call. Parameters is a
// JSON Schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Completion is the outcome of a single generation call.
type Completion struct {
	Text       string
	ToolCalls  []*ToolCall
	StopReason StopReason
	Tokens     int
}
