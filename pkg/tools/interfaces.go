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

// Package tools provides the retrieval tools the model can call while
// answering a query, and the registry that dispatches calls to them.
package tools

import (
	"context"

	"github.com/kadirpekel/lectern/pkg/llms"
)

// ToolInfo describes a tool for registration and model exposure.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters,omitempty"`
}

// ToolParameter describes one input of a tool.
type ToolParameter struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
}

// Source attributes a piece of retrieved content, for display under an
// answer. Link may be empty when no deep link is known.
type Source struct {
	Label string `json:"label"`
	Link  string `json:"link,omitempty"`
}

// ToolResult is the outcome of one tool execution.
type ToolResult struct {
	Success  bool     `json:"success"`
	Content  string   `json:"content,omitempty"`
	Error    string   `json:"error,omitempty"`
	ToolName string   `json:"tool_name"`
	Sources  []Source `json:"sources,omitempty"`
}

// Tool is an operation the model may invoke.
type Tool interface {
	GetInfo() ToolInfo

	Execute(ctx context.Context, args map[string]interface{}) (ToolResult, error)
}

// Definition converts a ToolInfo into the JSON Schema form the LLM
// provider expects.
func Definition(info ToolInfo) llms.ToolDefinition {
	properties := make(map[string]interface{}, len(info.Parameters))
	var required []string

	for _, p := range info.Parameters {
		prop := map[string]interface{}{
			"type":        p.Type,
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	parameters := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		parameters["required"] = required
	}

	return llms.ToolDefinition{
		Name:        info.Name,
		Description: info.Description,
		Parameters:  parameters,
	}
}
