package store

import (
	"context"
	"errors"
	"testing"

	"github.com/kadirpekel/lectern/pkg/config"
	"github.com/kadirpekel/lectern/pkg/vector"
)

// stubEmbedder maps known texts to fixed vectors so similarity is
// predictable without a live API.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) Dimension() int { return 3 }
func (e *stubEmbedder) Model() string  { return "stub" }
func (e *stubEmbedder) Close() error   { return nil }

func newTestStore(t *testing.T) *CourseStore {
	t.Helper()
	provider, err := vector.NewChromemProvider(config.ChromemConfig{})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	emb := &stubEmbedder{vectors: map[string][]float32{
		"Introduction to RAG":        {1, 0, 0},
		"Advanced Retrieval":         {0, 1, 0},
		"RAG":                        {0.9, 0.1, 0},
		"what is a retriever":        {0.7, 0.3, 0},
		"retrievers fetch documents": {0.8, 0.2, 0},
		"chunking splits text":       {0.6, 0.4, 0},
		"rerankers order results":    {0.1, 0.9, 0},
	}}
	return New(provider, emb, 5)
}

func seedCourses(t *testing.T, s *CourseStore) {
	t.Helper()
	ctx := context.Background()

	err := s.AddCourse(ctx, &CourseMeta{
		Title:      "Introduction to RAG",
		Link:       "https://example.com/rag",
		Instructor: "Ada",
		Lessons: []Lesson{
			{Number: 0, Title: "Welcome", Link: "https://example.com/rag/0"},
			{Number: 1, Title: "Retrievers", Link: "https://example.com/rag/1"},
		},
	})
	if err != nil {
		t.Fatalf("AddCourse failed: %v", err)
	}

	err = s.AddCourse(ctx, &CourseMeta{
		Title:   "Advanced Retrieval",
		Lessons: []Lesson{{Number: 1, Title: "Rerankers"}},
	})
	if err != nil {
		t.Fatalf("AddCourse failed: %v", err)
	}

	err = s.AddChunks(ctx, []Chunk{
		{CourseTitle: "Introduction to RAG", LessonNumber: 1, LessonLink: "https://example.com/rag/1", Text: "retrievers fetch documents"},
		{CourseTitle: "Introduction to RAG", LessonNumber: 0, Text: "chunking splits text"},
		{CourseTitle: "Advanced Retrieval", LessonNumber: 1, Text: "rerankers order results"},
	})
	if err != nil {
		t.Fatalf("AddChunks failed: %v", err)
	}
}

func TestResolveCourseName(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)

	title, err := s.ResolveCourseName(context.Background(), "RAG")
	if err != nil {
		t.Fatalf("ResolveCourseName failed: %v", err)
	}
	if title != "Introduction to RAG" {
		t.Errorf("expected fuzzy match to Introduction to RAG, got %q", title)
	}
}

func TestResolveCourseNameEmptyCatalog(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ResolveCourseName(context.Background(), "RAG")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestSearchUnfiltered(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)

	chunks, err := s.Search(context.Background(), "what is a retriever", "", nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected results")
	}
	if chunks[0].Text != "retrievers fetch documents" {
		t.Errorf("expected retriever chunk first, got %q", chunks[0].Text)
	}
	if chunks[0].CourseTitle != "Introduction to RAG" {
		t.Errorf("unexpected course title: %q", chunks[0].CourseTitle)
	}
	if chunks[0].LessonNumber != 1 {
		t.Errorf("unexpected lesson number: %d", chunks[0].LessonNumber)
	}
	if chunks[0].LessonLink != "https://example.com/rag/1" {
		t.Errorf("unexpected lesson link: %q", chunks[0].LessonLink)
	}
}

func TestSearchFilteredByCourseAndLesson(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)

	lesson := 0
	chunks, err := s.Search(context.Background(), "what is a retriever", "RAG", &lesson)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "chunking splits text" {
		t.Errorf("filter not applied, got %q", chunks[0].Text)
	}
}

func TestSearchUnknownCourse(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Search(context.Background(), "anything", "Nonexistent", nil)
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestGetOutline(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)

	outline, err := s.GetOutline(context.Background(), "RAG")
	if err != nil {
		t.Fatalf("GetOutline failed: %v", err)
	}
	if outline.Title != "Introduction to RAG" {
		t.Errorf("unexpected title: %q", outline.Title)
	}
	if outline.Link != "https://example.com/rag" {
		t.Errorf("unexpected link: %q", outline.Link)
	}
	if outline.Instructor != "Ada" {
		t.Errorf("unexpected instructor: %q", outline.Instructor)
	}
	if len(outline.Lessons) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(outline.Lessons))
	}
	if outline.Lessons[1].Title != "Retrievers" || outline.Lessons[1].Number != 1 {
		t.Errorf("unexpected lesson: %+v", outline.Lessons[1])
	}
}

func TestCourseCountAndTitles(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)

	count, err := s.CourseCount(context.Background())
	if err != nil {
		t.Fatalf("CourseCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 courses, got %d", count)
	}

	titles := s.CourseTitles()
	if len(titles) != 2 || titles[0] != "Introduction to RAG" {
		t.Errorf("unexpected titles: %v", titles)
	}
}
