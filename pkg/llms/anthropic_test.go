package llms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kadirpekel/lectern/pkg/config"
)

func testConfig(host string) *config.LLMConfig {
	return &config.LLMConfig{
		Model:      "claude-sonnet-4-20250514",
		APIKey:     "test-key",
		Host:       host,
		MaxTokens:  800,
		Timeout:    5,
		MaxRetries: 2,
		RetryDelay: 1,
	}
}

func TestAnthropicGenerateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("missing anthropic-version header")
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "claude-sonnet-4-20250514" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if req.System != "You answer questions." {
			t.Errorf("unexpected system prompt: %q", req.System)
		}
		if req.Temperature != 0 {
			t.Errorf("expected temperature 0, got %f", req.Temperature)
		}

		json.NewEncoder(w).Encode(anthropicResponse{
			Content:    []anthropicContent{{Type: "text", Text: "The answer."}},
			StopReason: "end_turn",
			Usage:      anthropicUsage{InputTokens: 10, OutputTokens: 5},
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	completion, err := provider.Generate(context.Background(),
		[]*Message{NewUserMessage("What is the answer?")}, "You answer questions.", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if completion.Text != "The answer." {
		t.Errorf("unexpected text: %q", completion.Text)
	}
	if completion.StopReason != StopEndTurn {
		t.Errorf("unexpected stop reason: %s", completion.StopReason)
	}
	if completion.Tokens != 15 {
		t.Errorf("expected 15 tokens, got %d", completion.Tokens)
	}
}

func TestAnthropicGenerateToolUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Tools) != 1 || req.Tools[0].Name != "search_course_content" {
			t.Errorf("expected tool definition in request, got %v", req.Tools)
		}

		input := map[string]interface{}{"query": "embeddings"}
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContent{
				{Type: "text", Text: "Let me search."},
				{Type: "tool_use", ID: "toolu_01", Name: "search_course_content", Input: &input},
			},
			StopReason: "tool_use",
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	tools := []ToolDefinition{{
		Name:        "search_course_content",
		Description: "Search course material",
		Parameters:  map[string]interface{}{"type": "object"},
	}}
	completion, err := provider.Generate(context.Background(),
		[]*Message{NewUserMessage("What are embeddings?")}, "", tools)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if completion.StopReason != StopToolUse {
		t.Errorf("expected tool_use stop reason, got %s", completion.StopReason)
	}
	if len(completion.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(completion.ToolCalls))
	}
	call := completion.ToolCalls[0]
	if call.ID != "toolu_01" || call.Name != "search_course_content" {
		t.Errorf("unexpected tool call: %+v", call)
	}
	if call.Args["query"] != "embeddings" {
		t.Errorf("unexpected args: %v", call.Args)
	}
}

func TestAnthropicGenerateEncodesToolTurns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 3 {
			t.Fatalf("expected 3 messages, got %d", len(req.Messages))
		}

		assistant := req.Messages[1]
		if assistant.Role != "assistant" {
			t.Errorf("expected assistant turn, got %s", assistant.Role)
		}
		foundToolUse := false
		for _, block := range assistant.Content {
			if block.Type == "tool_use" && block.ID == "toolu_01" {
				foundToolUse = true
			}
		}
		if !foundToolUse {
			t.Error("assistant turn missing tool_use block")
		}

		results := req.Messages[2]
		if results.Role != "user" {
			t.Errorf("expected user turn for tool results, got %s", results.Role)
		}
		if len(results.Content) != 1 || results.Content[0].Type != "tool_result" {
			t.Errorf("expected tool_result block, got %v", results.Content)
		}
		if results.Content[0].ToolUseID != "toolu_01" {
			t.Errorf("tool_result references wrong call: %s", results.Content[0].ToolUseID)
		}

		json.NewEncoder(w).Encode(anthropicResponse{
			Content:    []anthropicContent{{Type: "text", Text: "Based on the search..."}},
			StopReason: "end_turn",
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	messages := []*Message{
		NewUserMessage("What are embeddings?"),
		NewAssistantMessage("Let me search.", []*ToolCall{
			{ID: "toolu_01", Name: "search_course_content", Args: map[string]interface{}{"query": "embeddings"}},
		}),
		NewToolResultMessage([]*ToolResultBlock{
			{ToolCallID: "toolu_01", Content: "[Course A - Lesson 1]\nEmbeddings are vectors."},
		}),
	}
	completion, err := provider.Generate(context.Background(), messages, "", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if completion.Text != "Based on the search..." {
		t.Errorf("unexpected text: %q", completion.Text)
	}
}

func TestAnthropicGenerateRetriesRateLimit(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.Header().Set("retry-after", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(anthropicResponse{
			Content:    []anthropicContent{{Type: "text", Text: "Recovered."}},
			StopReason: "end_turn",
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	completion, err := provider.Generate(context.Background(),
		[]*Message{NewUserMessage("hi")}, "", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if completion.Text != "Recovered." {
		t.Errorf("unexpected text: %q", completion.Text)
	}
	if attempts.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts.Load())
	}
}

func TestAnthropicGenerateAuthErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	if _, err := provider.Generate(context.Background(),
		[]*Message{NewUserMessage("hi")}, "", nil); err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if attempts.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts.Load())
	}
}

func TestAnthropicMissingAPIKey(t *testing.T) {
	if _, err := NewAnthropicProvider(&config.LLMConfig{Model: "claude"}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
