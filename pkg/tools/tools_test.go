package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kadirpekel/lectern/pkg/config"
	"github.com/kadirpekel/lectern/pkg/store"
	"github.com/kadirpekel/lectern/pkg/vector"
)

type fixedEmbedder struct {
	vectors map[string][]float32
}

func (e *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (e *fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

func (e *fixedEmbedder) Dimension() int { return 3 }
func (e *fixedEmbedder) Model() string  { return "fixed" }
func (e *fixedEmbedder) Close() error   { return nil }

func newToolStore(t *testing.T) *store.CourseStore {
	t.Helper()
	provider, err := vector.NewChromemProvider(config.ChromemConfig{})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	emb := &fixedEmbedder{vectors: map[string][]float32{
		"Building RAG Systems":    {1, 0, 0},
		"RAG":                     {0.9, 0.1, 0},
		"embeddings":              {0.8, 0.2, 0},
		"vectors capture meaning": {0.8, 0.2, 0},
	}}
	s := store.New(provider, emb, 5)

	ctx := context.Background()
	err = s.AddCourse(ctx, &store.CourseMeta{
		Title:      "Building RAG Systems",
		Link:       "https://example.com/rag",
		Instructor: "Ada",
		Lessons: []store.Lesson{
			{Number: 0, Title: "Welcome"},
			{Number: 1, Title: "Embeddings", Link: "https://example.com/rag/1"},
		},
	})
	if err != nil {
		t.Fatalf("AddCourse failed: %v", err)
	}

	err = s.AddChunks(ctx, []store.Chunk{
		{CourseTitle: "Building RAG Systems", LessonNumber: 1, LessonLink: "https://example.com/rag/1", Text: "vectors capture meaning"},
	})
	if err != nil {
		t.Fatalf("AddChunks failed: %v", err)
	}
	return s
}

func TestSearchToolExecute(t *testing.T) {
	tool := NewSearchTool(newToolStore(t))

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"query": "embeddings",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if !strings.Contains(result.Content, "[Building RAG Systems - Lesson 1]") {
		t.Errorf("missing source header: %q", result.Content)
	}
	if !strings.Contains(result.Content, "vectors capture meaning") {
		t.Errorf("missing chunk text: %q", result.Content)
	}
	if len(result.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(result.Sources))
	}
	if result.Sources[0].Label != "Building RAG Systems - Lesson 1" {
		t.Errorf("unexpected source label: %q", result.Sources[0].Label)
	}
	if result.Sources[0].Link != "https://example.com/rag/1" {
		t.Errorf("unexpected source link: %q", result.Sources[0].Link)
	}
}

func TestSearchToolLessonNumberCoercion(t *testing.T) {
	tool := NewSearchTool(newToolStore(t))

	// JSON numbers decode as float64; the tool must coerce them.
	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"query":         "embeddings",
		"course_name":   "RAG",
		"lesson_number": float64(1),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(result.Content, "Lesson 1") {
		t.Errorf("lesson filter not applied: %q", result.Content)
	}
}

func TestSearchToolNoResults(t *testing.T) {
	tool := NewSearchTool(newToolStore(t))

	lesson := 7
	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"query":         "embeddings",
		"course_name":   "RAG",
		"lesson_number": lesson,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Fatal("miss should be a successful result with explanatory text")
	}
	want := "No relevant content found in course 'RAG' in lesson 7."
	if result.Content != want {
		t.Errorf("unexpected message: %q", result.Content)
	}
	if len(result.Sources) != 0 {
		t.Errorf("miss should produce no sources")
	}
}

func TestSearchToolUnknownCourse(t *testing.T) {
	provider, _ := vector.NewChromemProvider(config.ChromemConfig{})
	s := store.New(provider, &fixedEmbedder{}, 5)
	tool := NewSearchTool(s)

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"query":       "anything",
		"course_name": "Nonexistent",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Content != "No course found matching 'Nonexistent'" {
		t.Errorf("unexpected message: %q", result.Content)
	}
}

func TestSearchToolMissingQuery(t *testing.T) {
	tool := NewSearchTool(newToolStore(t))

	result, err := tool.Execute(context.Background(), map[string]interface{}{})
	if err == nil {
		t.Fatal("expected error for missing query")
	}
	if result.Success {
		t.Error("result should be marked failed")
	}
}

func TestOutlineToolExecute(t *testing.T) {
	tool := NewOutlineTool(newToolStore(t))

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"course_name": "RAG",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(result.Content, "Course: Building RAG Systems") {
		t.Errorf("missing course title: %q", result.Content)
	}
	if !strings.Contains(result.Content, "Course Link: https://example.com/rag") {
		t.Errorf("missing course link: %q", result.Content)
	}
	if !strings.Contains(result.Content, "Lessons (2):") {
		t.Errorf("missing lesson count: %q", result.Content)
	}
	if !strings.Contains(result.Content, "1. Embeddings") {
		t.Errorf("missing lesson entry: %q", result.Content)
	}
	if len(result.Sources) != 1 || result.Sources[0].Label != "Building RAG Systems" {
		t.Errorf("unexpected sources: %v", result.Sources)
	}
}

func TestOutlineToolUnknownCourse(t *testing.T) {
	provider, _ := vector.NewChromemProvider(config.ChromemConfig{})
	s := store.New(provider, &fixedEmbedder{}, 5)
	tool := NewOutlineTool(s)

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"course_name": "Ghost",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Content != "No course found matching 'Ghost'" {
		t.Errorf("unexpected message: %q", result.Content)
	}
}

type staticTool struct {
	info    ToolInfo
	result  ToolResult
	execErr error
}

func (t *staticTool) GetInfo() ToolInfo { return t.info }
func (t *staticTool) Execute(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	return t.result, t.execErr
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	tool := &staticTool{info: ToolInfo{Name: "a"}}

	if err := r.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	err := r.Register(tool)
	if !errors.Is(err, ErrDuplicateTool) {
		t.Errorf("expected ErrDuplicateTool, got %v", err)
	}
}

func TestRegistryDefinitionsOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&staticTool{info: ToolInfo{Name: "search_course_content"}})
	r.Register(&staticTool{info: ToolInfo{Name: "get_course_outline"}})

	defs := r.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Name != "search_course_content" || defs[1].Name != "get_course_outline" {
		t.Errorf("registration order not preserved: %v", defs)
	}
}

func TestRegistryExecuteUnknown(t *testing.T) {
	r := NewRegistry()

	result, err := r.Execute(context.Background(), "missing", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
	if result.Success {
		t.Error("result should be marked failed")
	}
}

func TestRegistrySources(t *testing.T) {
	r := NewRegistry()
	r.Register(&staticTool{
		info: ToolInfo{Name: "a"},
		result: ToolResult{
			Success: true,
			Sources: []Source{
				{Label: "Course X - Lesson 1", Link: "https://x/1"},
				{Label: "Course X - Lesson 2"},
			},
		},
	})

	ctx := context.Background()
	r.Execute(ctx, "a", nil)
	r.Execute(ctx, "a", nil)

	sources := r.CollectSources()
	if len(sources) != 2 {
		t.Fatalf("expected 2 deduplicated sources, got %d", len(sources))
	}
	if sources[0].Label != "Course X - Lesson 1" || sources[0].Link != "https://x/1" {
		t.Errorf("unexpected first source: %+v", sources[0])
	}

	// CollectSources must not clear.
	if len(r.CollectSources()) != 2 {
		t.Error("CollectSources should not clear accumulated sources")
	}

	r.ResetSources()
	if len(r.CollectSources()) != 0 {
		t.Error("ResetSources should clear accumulated sources")
	}
}

func TestDefinitionSchema(t *testing.T) {
	def := Definition(NewSearchTool(nil).GetInfo())

	if def.Name != SearchToolName {
		t.Errorf("unexpected name: %s", def.Name)
	}
	props, ok := def.Parameters["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing properties: %v", def.Parameters)
	}
	if _, ok := props["query"]; !ok {
		t.Error("missing query property")
	}
	required, ok := def.Parameters["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "query" {
		t.Errorf("unexpected required list: %v", def.Parameters["required"])
	}
}
