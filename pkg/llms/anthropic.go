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

package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kadirpekel/lectern/pkg/config"
	"github.com/kadirpekel/lectern/pkg/httpclient"
)

// AnthropicProvider generates completions via the Anthropic Messages API.
type AnthropicProvider struct {
	config     *config.LLMConfig
	httpClient *httpclient.Client
}

type anthropicTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type      string                  `json:"type"`
	Text      string                  `json:"text,omitempty"`
	ID        string                  `json:"id,omitempty"`
	Name      string                  `json:"name,omitempty"`
	Input     *map[string]interface{} `json:"input,omitempty"`
	ToolUseID string                  `json:"tool_use_id,omitempty"`
	Content   string                  `json:"content,omitempty"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
	Error      *anthropicError    `json:"error,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewAnthropicProvider builds a provider from configuration.
func NewAnthropicProvider(cfg *config.LLMConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for Anthropic")
	}
	if cfg.Host == "" {
		cfg.Host = "https://api.anthropic.com"
	}

	return &AnthropicProvider{
		config: cfg,
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Timeout) * time.Second,
			}),
			httpclient.WithMaxRetries(cfg.MaxRetries),
			httpclient.WithBaseDelay(time.Duration(cfg.RetryDelay)*time.Second),
			httpclient.WithHeaderParser(httpclient.ParseAnthropicHeaders),
		),
	}, nil
}

// GetModelName returns the configured model identifier.
func (p *AnthropicProvider) GetModelName() string {
	return p.config.Model
}

// Close releases provider resources.
func (p *AnthropicProvider) Close() error {
	return nil
}

// Generate runs one non-streaming completion. Tool definitions are
// optional; passing none forces a plain text answer.
func (p *AnthropicProvider) Generate(ctx context.Context, messages []*Message, system string, tools []ToolDefinition) (*Completion, error) {
	request := p.buildRequest(messages, system, tools)

	response, err := p.makeRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	if response.Error != nil {
		return nil, fmt.Errorf("anthropic API error: %s", response.Error.Message)
	}

	completion := &Completion{
		StopReason: StopEndTurn,
		Tokens:     response.Usage.InputTokens + response.Usage.OutputTokens,
	}
	if response.StopReason == "tool_use" {
		completion.StopReason = StopToolUse
	}

	for _, content := range response.Content {
		switch content.Type {
		case "text":
			completion.Text += content.Text
		case "tool_use":
			var args map[string]interface{}
			if content.Input != nil {
				args = *content.Input
			}
			completion.ToolCalls = append(completion.ToolCalls, &ToolCall{
				ID:   content.ID,
				Name: content.Name,
				Args: args,
			})
		}
	}

	return completion, nil
}

func (p *AnthropicProvider) buildRequest(messages []*Message, system string, tools []ToolDefinition) anthropicRequest {
	anthropicMessages := make([]anthropicMessage, 0, len(messages))

	for _, msg := range messages {
		if len(msg.ToolResults) > 0 {
			contents := make([]anthropicContent, 0, len(msg.ToolResults))
			for _, result := range msg.ToolResults {
				contents = append(contents, anthropicContent{
					Type:      "tool_result",
					ToolUseID: result.ToolCallID,
					Content:   result.Content,
				})
			}
			anthropicMessages = append(anthropicMessages, anthropicMessage{
				Role:    "user",
				Content: contents,
			})
			continue
		}

		if msg.Role == RoleAssistant && len(msg.ToolCalls) > 0 {
			contents := []anthropicContent{}
			if msg.Content != "" {
				contents = append(contents, anthropicContent{Type: "text", Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				input := tc.Args
				if input == nil {
					input = make(map[string]interface{})
				}
				contents = append(contents, anthropicContent{
					Type:  "tool_use",
					ID:    tc.ID,
					Name:  tc.Name,
					Input: &input,
				})
			}
			anthropicMessages = append(anthropicMessages, anthropicMessage{
				Role:    "assistant",
				Content: contents,
			})
			continue
		}

		anthropicMessages = append(anthropicMessages, anthropicMessage{
			Role:    string(msg.Role),
			Content: []anthropicContent{{Type: "text", Text: msg.Content}},
		})
	}

	request := anthropicRequest{
		Model:       p.config.Model,
		Messages:    anthropicMessages,
		MaxTokens:   p.config.MaxTokens,
		Temperature: p.config.Temperature,
		System:      system,
	}

	if len(tools) > 0 {
		anthropicTools := make([]anthropicTool, len(tools))
		for i, tool := range tools {
			anthropicTools[i] = anthropicTool{
				Name:        tool.Name,
				Description: tool.Description,
				InputSchema: tool.Parameters,
			}
		}
		request.Tools = anthropicTools
	}
	return request
}

func (p *AnthropicProvider) makeRequest(ctx context.Context, request anthropicRequest) (*anthropicResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", p.config.Host+"/v1/messages", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(jsonData)), nil
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response, nil
}
