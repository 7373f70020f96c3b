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

// Package config defines Lectern's startup configuration.
//
// Configuration is loaded once at startup and never mutated afterwards.
// Every section supports SetDefaults and Validate; API keys support
// ${ENV_VAR} expansion.
package config

import (
	"fmt"
	"os"
)

// Config is the root configuration.
type Config struct {
	// LLM configures the Anthropic generation provider.
	LLM LLMConfig `yaml:"llm,omitempty" json:"llm,omitempty" jsonschema:"title=LLM,description=Anthropic generation provider"`

	// Embedder configures the embedding provider used for search.
	Embedder EmbedderConfig `yaml:"embedder,omitempty" json:"embedder,omitempty" jsonschema:"title=Embedder,description=Text embedding provider"`

	// VectorStore configures the vector database backend.
	VectorStore VectorStoreConfig `yaml:"vector_store,omitempty" json:"vector_store,omitempty" jsonschema:"title=Vector Store,description=Vector database backend"`

	// Engine configures the tool-orchestration loop.
	Engine EngineConfig `yaml:"engine,omitempty" json:"engine,omitempty" jsonschema:"title=Engine,description=Tool orchestration loop"`

	// Session configures conversation history.
	Session SessionConfig `yaml:"session,omitempty" json:"session,omitempty" jsonschema:"title=Session,description=Conversation history"`
}

// LLMConfig configures the Anthropic provider.
type LLMConfig struct {
	// Model name (e.g., "claude-sonnet-4-20250514").
	Model string `yaml:"model,omitempty" json:"model,omitempty" jsonschema:"title=Model,description=Model identifier"`

	// APIKey for authentication. Supports ${VAR} expansion.
	APIKey string `yaml:"api_key,omitempty" json:"api_key,omitempty" jsonschema:"title=API Key,description=API key (use ${ANTHROPIC_API_KEY})"`

	// Host overrides the default API endpoint.
	Host string `yaml:"host,omitempty" json:"host,omitempty" jsonschema:"title=Host,description=Custom API base URL"`

	// Temperature for generation.
	Temperature float64 `yaml:"temperature,omitempty" json:"temperature,omitempty" jsonschema:"title=Temperature,minimum=0,maximum=1,default=0"`

	// MaxTokens limits response length.
	MaxTokens int `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty" jsonschema:"title=Max Tokens,minimum=1,default=800"`

	// Timeout per API call, in seconds.
	Timeout int `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"title=Timeout,description=Per-call timeout in seconds,default=60"`

	// MaxRetries for transient HTTP failures.
	MaxRetries int `yaml:"max_retries,omitempty" json:"max_retries,omitempty" jsonschema:"title=Max Retries,default=3"`

	// RetryDelay is the base backoff delay, in seconds.
	RetryDelay int `yaml:"retry_delay,omitempty" json:"retry_delay,omitempty" jsonschema:"title=Retry Delay,default=1"`
}

// SetDefaults applies default values.
func (c *LLMConfig) SetDefaults() {
	if c.Model == "" {
		c.Model = "claude-sonnet-4-20250514"
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c.Host == "" {
		c.Host = "https://api.anthropic.com"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 800
	}
	if c.Timeout == 0 {
		c.Timeout = 60
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 1
	}
}

// Validate checks required fields.
func (c *LLMConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("llm: api_key is required (set ANTHROPIC_API_KEY)")
	}
	if c.Model == "" {
		return fmt.Errorf("llm: model is required")
	}
	return nil
}

// EmbedderConfig configures the embedding provider.
type EmbedderConfig struct {
	// Model name (e.g., "text-embedding-3-small").
	Model string `yaml:"model,omitempty" json:"model,omitempty" jsonschema:"title=Model,default=text-embedding-3-small"`

	// APIKey for authentication. Supports ${VAR} expansion.
	APIKey string `yaml:"api_key,omitempty" json:"api_key,omitempty" jsonschema:"title=API Key,description=API key (use ${OPENAI_API_KEY})"`

	// Host overrides the default API endpoint.
	Host string `yaml:"host,omitempty" json:"host,omitempty" jsonschema:"title=Host"`

	// Dimension of the embedding vectors. Derived from the model when 0.
	Dimension int `yaml:"dimension,omitempty" json:"dimension,omitempty" jsonschema:"title=Dimension"`

	// BatchSize for batch embedding calls.
	BatchSize int `yaml:"batch_size,omitempty" json:"batch_size,omitempty" jsonschema:"title=Batch Size,default=100"`

	// Timeout per API call, in seconds.
	Timeout int `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"title=Timeout,default=30"`
}

// SetDefaults applies default values.
func (c *EmbedderConfig) SetDefaults() {
	if c.Model == "" {
		c.Model = "text-embedding-3-small"
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Host == "" {
		c.Host = "https://api.openai.com/v1"
	}
	if c.Dimension == 0 {
		switch c.Model {
		case "text-embedding-3-large":
			c.Dimension = 3072
		default:
			c.Dimension = 1536
		}
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.Timeout == 0 {
		c.Timeout = 30
	}
}

// Validate checks required fields.
func (c *EmbedderConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("embedder: api_key is required (set OPENAI_API_KEY)")
	}
	return nil
}

// VectorStoreType identifies a vector store backend.
type VectorStoreType string

const (
	// VectorStoreChromem is the embedded zero-config backend.
	VectorStoreChromem VectorStoreType = "chromem"

	// VectorStoreQdrant is the external Qdrant backend.
	VectorStoreQdrant VectorStoreType = "qdrant"
)

// VectorStoreConfig configures the vector database backend.
type VectorStoreConfig struct {
	// Type selects the backend (chromem, qdrant).
	Type VectorStoreType `yaml:"type,omitempty" json:"type,omitempty" jsonschema:"title=Type,enum=chromem,enum=qdrant,default=chromem"`

	// Chromem configuration (used when Type == "chromem").
	Chromem ChromemConfig `yaml:"chromem,omitempty" json:"chromem,omitempty" jsonschema:"title=Chromem"`

	// Qdrant configuration (used when Type == "qdrant").
	Qdrant QdrantConfig `yaml:"qdrant,omitempty" json:"qdrant,omitempty" jsonschema:"title=Qdrant"`
}

// ChromemConfig configures the embedded chromem backend.
type ChromemConfig struct {
	// PersistPath for file persistence. Empty keeps vectors in memory.
	PersistPath string `yaml:"persist_path,omitempty" json:"persist_path,omitempty" jsonschema:"title=Persist Path"`

	// Compress enables gzip compression for persistence.
	Compress bool `yaml:"compress,omitempty" json:"compress,omitempty" jsonschema:"title=Compress"`
}

// QdrantConfig configures the Qdrant backend.
type QdrantConfig struct {
	// Host is the Qdrant server hostname.
	Host string `yaml:"host,omitempty" json:"host,omitempty" jsonschema:"title=Host,default=localhost"`

	// Port is the Qdrant gRPC port.
	Port int `yaml:"port,omitempty" json:"port,omitempty" jsonschema:"title=Port,default=6334"`

	// APIKey for authenticated access.
	APIKey string `yaml:"api_key,omitempty" json:"api_key,omitempty" jsonschema:"title=API Key"`

	// UseTLS enables TLS connections.
	UseTLS bool `yaml:"use_tls,omitempty" json:"use_tls,omitempty" jsonschema:"title=Use TLS"`
}

// SetDefaults applies default values.
func (c *VectorStoreConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = VectorStoreChromem
	}
	if c.Qdrant.Host == "" {
		c.Qdrant.Host = "localhost"
	}
	if c.Qdrant.Port == 0 {
		c.Qdrant.Port = 6334
	}
}

// Validate checks the backend selection.
func (c *VectorStoreConfig) Validate() error {
	switch c.Type {
	case VectorStoreChromem, VectorStoreQdrant:
		return nil
	default:
		return fmt.Errorf("vector_store: unsupported type %q", c.Type)
	}
}

// EngineConfig configures the tool-orchestration loop.
type EngineConfig struct {
	// MaxToolRounds bounds tool-execution rounds per query.
	MaxToolRounds int `yaml:"max_tool_rounds,omitempty" json:"max_tool_rounds,omitempty" jsonschema:"title=Max Tool Rounds,minimum=1,default=2"`

	// MaxRetries bounds retries of a failed upstream call.
	MaxRetries int `yaml:"max_retries,omitempty" json:"max_retries,omitempty" jsonschema:"title=Max Retries,default=3"`

	// RetryDelay is the base backoff delay, in seconds.
	RetryDelay int `yaml:"retry_delay,omitempty" json:"retry_delay,omitempty" jsonschema:"title=Retry Delay,default=1"`

	// MaxResults per search tool execution.
	MaxResults int `yaml:"max_results,omitempty" json:"max_results,omitempty" jsonschema:"title=Max Results,default=5"`
}

// SetDefaults applies default values.
func (c *EngineConfig) SetDefaults() {
	if c.MaxToolRounds == 0 {
		c.MaxToolRounds = 2
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 1
	}
	if c.MaxResults == 0 {
		c.MaxResults = 5
	}
}

// Validate checks bounds.
func (c *EngineConfig) Validate() error {
	if c.MaxToolRounds < 1 {
		return fmt.Errorf("engine: max_tool_rounds must be at least 1")
	}
	return nil
}

// SessionConfig configures conversation history.
type SessionConfig struct {
	// MaxHistory is the number of exchanges kept per session.
	MaxHistory int `yaml:"max_history,omitempty" json:"max_history,omitempty" jsonschema:"title=Max History,minimum=1,default=2"`
}

// SetDefaults applies default values.
func (c *SessionConfig) SetDefaults() {
	if c.MaxHistory == 0 {
		c.MaxHistory = 2
	}
}

// SetDefaults applies defaults to all sections.
func (c *Config) SetDefaults() {
	c.LLM.SetDefaults()
	c.Embedder.SetDefaults()
	c.VectorStore.SetDefaults()
	c.Engine.SetDefaults()
	c.Session.SetDefaults()
}

// Validate validates all sections.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Embedder.Validate(); err != nil {
		return err
	}
	if err := c.VectorStore.Validate(); err != nil {
		return err
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	return nil
}
