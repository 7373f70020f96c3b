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

// Command lectern answers questions about course materials.
//
// Usage:
//
//	lectern ask "What does lesson 2 of the MCP course cover?" --corpus courses.json
//	lectern chat --config lectern.yaml --corpus courses.json
//	lectern schema > schema.json
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/kadirpekel/lectern/pkg/assistant"
	"github.com/kadirpekel/lectern/pkg/config"
	"github.com/kadirpekel/lectern/pkg/embedder"
	"github.com/kadirpekel/lectern/pkg/llms"
	"github.com/kadirpekel/lectern/pkg/logger"
	"github.com/kadirpekel/lectern/pkg/session"
	"github.com/kadirpekel/lectern/pkg/store"
	"github.com/kadirpekel/lectern/pkg/tools"
	"github.com/kadirpekel/lectern/pkg/vector"
)

// CLI defines the command-line interface.
type CLI struct {
	Version VersionCmd `cmd:"" help:"Show version information."`
	Ask     AskCmd     `cmd:"" help:"Answer a single question."`
	Chat    ChatCmd    `cmd:"" help:"Interactive chat session."`
	Schema  SchemaCmd  `cmd:"" help:"Generate JSON Schema for the config file."`

	Config   string `short:"c" help:"Path to config file." type:"path"`
	Corpus   string `help:"Path to a course corpus JSON file to load at startup." type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile  string `help:"Log file path (empty = stderr)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("lectern version %s\n", version)
	return nil
}

// AskCmd answers one question and exits.
type AskCmd struct {
	Query   string `arg:"" help:"The question to answer."`
	Session string `help:"Session ID to continue a previous conversation."`
}

func (c *AskCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	app, cleanup, err := buildAssistant(cli)
	if err != nil {
		return err
	}
	defer cleanup()

	answer, err := app.Ask(ctx, c.Query, c.Session)
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	printSources(answer.Sources)
	return nil
}

// ChatCmd runs an interactive loop holding one session.
type ChatCmd struct{}

func (c *ChatCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	app, cleanup, err := buildAssistant(cli)
	if err != nil {
		return err
	}
	defer cleanup()

	count, err := app.CourseCount(ctx)
	if err == nil {
		fmt.Printf("Loaded %d courses. Ask about the course materials (exit to quit).\n", count)
	}

	sessionID := session.NewSessionID()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}

		answer, err := app.Ask(ctx, query, sessionID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Println(answer.Text)
		printSources(answer.Sources)
		fmt.Println()
	}

	return scanner.Err()
}

func printSources(sources []tools.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, s := range sources {
		if s.Link != "" {
			fmt.Printf("  - %s (%s)\n", s.Label, s.Link)
		} else {
			fmt.Printf("  - %s\n", s.Label)
		}
	}
}

// buildAssistant wires config, embedder, vector store, corpus, and the
// LLM provider into a ready assistant.
func buildAssistant(cli *CLI) (*assistant.Assistant, func(), error) {
	var cfg *config.Config
	var err error
	if cli.Config != "" {
		cfg, err = config.Load(cli.Config)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, nil, err
	}

	emb, err := embedder.NewOpenAIEmbedder(&cfg.Embedder)
	if err != nil {
		return nil, nil, err
	}

	provider, err := vector.NewProvider(&cfg.VectorStore)
	if err != nil {
		return nil, nil, err
	}

	courseStore := store.New(provider, emb, cfg.Engine.MaxResults)

	if cli.Corpus != "" {
		if err := loadCorpus(context.Background(), courseStore, cli.Corpus); err != nil {
			_ = provider.Close()
			return nil, nil, fmt.Errorf("failed to load corpus: %w", err)
		}
	}

	gen, err := llms.NewAnthropicProvider(&cfg.LLM)
	if err != nil {
		_ = provider.Close()
		return nil, nil, err
	}

	sessions := session.NewStore(cfg.Session.MaxHistory)
	app := assistant.New(courseStore, sessions, gen, &cfg.Engine)

	cleanup := func() {
		_ = gen.Close()
		_ = provider.Close()
		_ = emb.Close()
	}
	return app, cleanup, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	_ = godotenv.Load()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("lectern"),
		kong.Description("Lectern - course material question answering"),
		kong.UsageOnError(),
	)

	cleanup, err := logger.Init(logger.Options{
		Level: cli.LogLevel,
		File:  cli.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
