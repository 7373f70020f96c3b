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

// Package store manages the course corpus: a catalog of course metadata
// and a collection of searchable content chunks.
//
// Two vector collections back the store. The catalog holds one document
// per course, embedded from its title, and serves fuzzy course name
// resolution. The content collection holds lesson chunks and serves
// semantic search.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/kadirpekel/lectern/pkg/embedder"
	"github.com/kadirpekel/lectern/pkg/vector"
)

const (
	catalogCollection = "course_catalog"
	contentCollection = "course_content"
)

// ErrCourseNotFound indicates a course name could not be resolved.
var ErrCourseNotFound = errors.New("course not found")

// Lesson is one lesson within a course.
type Lesson struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

// CourseMeta is the catalog entry for one course.
type CourseMeta struct {
	Title      string   `json:"title"`
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// Chunk is a searchable piece of course content.
type Chunk struct {
	ID           string
	CourseTitle  string
	LessonNumber int
	LessonLink   string
	Text         string
	Score        float32
}

// CourseStore holds the corpus and answers search and outline requests.
type CourseStore struct {
	provider   vector.Provider
	embedder   embedder.Embedder
	maxResults int

	mu     sync.RWMutex
	titles []string
}

// New creates a store over the given backends. maxResults bounds how
// many chunks a single search returns.
func New(provider vector.Provider, emb embedder.Embedder, maxResults int) *CourseStore {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &CourseStore{
		provider:   provider,
		embedder:   emb,
		maxResults: maxResults,
	}
}

// AddCourse registers a course in the catalog.
func (s *CourseStore) AddCourse(ctx context.Context, meta *CourseMeta) error {
	if meta.Title == "" {
		return fmt.Errorf("course title is required")
	}

	vec, err := s.embedder.Embed(ctx, meta.Title)
	if err != nil {
		return fmt.Errorf("failed to embed course title: %w", err)
	}

	lessonsJSON, err := json.Marshal(meta.Lessons)
	if err != nil {
		return fmt.Errorf("failed to encode lessons: %w", err)
	}

	metadata := map[string]any{
		"content":      meta.Title,
		"title":        meta.Title,
		"link":         meta.Link,
		"instructor":   meta.Instructor,
		"lessons":      string(lessonsJSON),
		"lesson_count": len(meta.Lessons),
	}

	if err := s.provider.Upsert(ctx, catalogCollection, uuid.NewString(), vec, metadata); err != nil {
		return fmt.Errorf("failed to store course %q: %w", meta.Title, err)
	}

	s.mu.Lock()
	s.titles = append(s.titles, meta.Title)
	s.mu.Unlock()

	slog.Info("Added course to catalog", "title", meta.Title, "lessons", len(meta.Lessons))
	return nil
}

// AddChunks indexes content chunks for search. Chunks without an ID get
// one assigned.
func (s *CourseStore) AddChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i, c := range chunks {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		metadata := map[string]any{
			"content":       c.Text,
			"course_title":  c.CourseTitle,
			"lesson_number": c.LessonNumber,
			"lesson_link":   c.LessonLink,
		}
		if err := s.provider.Upsert(ctx, contentCollection, id, vectors[i], metadata); err != nil {
			return fmt.Errorf("failed to store chunk: %w", err)
		}
	}

	slog.Debug("Indexed content chunks", "count", len(chunks))
	return nil
}

// ResolveCourseName matches a possibly partial course name against the
// catalog and returns the canonical title. Returns ErrCourseNotFound
// when nothing matches.
func (s *CourseStore) ResolveCourseName(ctx context.Context, name string) (string, error) {
	vec, err := s.embedder.Embed(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to embed course name: %w", err)
	}

	results, err := s.provider.Search(ctx, catalogCollection, vec, 1)
	if err != nil {
		return "", fmt.Errorf("course name resolution failed: %w", err)
	}
	if len(results) == 0 {
		return "", ErrCourseNotFound
	}

	title, ok := results[0].Metadata["title"].(string)
	if !ok || title == "" {
		return "", ErrCourseNotFound
	}
	return title, nil
}

// Search runs semantic search over content chunks. courseName, when
// non-empty, is resolved against the catalog and the search restricted
// to that course; lessonNumber, when non-nil, restricts further to one
// lesson.
func (s *CourseStore) Search(ctx context.Context, query string, courseName string, lessonNumber *int) ([]Chunk, error) {
	filter := make(map[string]any)

	if courseName != "" {
		title, err := s.ResolveCourseName(ctx, courseName)
		if err != nil {
			return nil, err
		}
		filter["course_title"] = title
	}
	if lessonNumber != nil {
		filter["lesson_number"] = *lessonNumber
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	var results []vector.Result
	if len(filter) > 0 {
		results, err = s.provider.SearchWithFilter(ctx, contentCollection, vec, s.maxResults, filter)
	} else {
		results, err = s.provider.Search(ctx, contentCollection, vec, s.maxResults)
	}
	if err != nil {
		return nil, fmt.Errorf("content search failed: %w", err)
	}

	chunks := make([]Chunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, Chunk{
			ID:           r.ID,
			CourseTitle:  metadataString(r.Metadata, "course_title"),
			LessonNumber: metadataInt(r.Metadata, "lesson_number"),
			LessonLink:   metadataString(r.Metadata, "lesson_link"),
			Text:         r.Content,
			Score:        r.Score,
		})
	}
	return chunks, nil
}

// GetOutline returns the catalog entry for a course, resolving partial
// names the same way Search does.
func (s *CourseStore) GetOutline(ctx context.Context, courseName string) (*CourseMeta, error) {
	title, err := s.ResolveCourseName(ctx, courseName)
	if err != nil {
		return nil, err
	}

	vec, err := s.embedder.Embed(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to embed course title: %w", err)
	}

	results, err := s.provider.SearchWithFilter(ctx, catalogCollection, vec, 1, map[string]any{"title": title})
	if err != nil {
		return nil, fmt.Errorf("catalog lookup failed: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrCourseNotFound
	}

	meta := &CourseMeta{
		Title:      title,
		Link:       metadataString(results[0].Metadata, "link"),
		Instructor: metadataString(results[0].Metadata, "instructor"),
	}
	if lessonsJSON := metadataString(results[0].Metadata, "lessons"); lessonsJSON != "" {
		if err := json.Unmarshal([]byte(lessonsJSON), &meta.Lessons); err != nil {
			return nil, fmt.Errorf("failed to decode lessons for %q: %w", title, err)
		}
	}
	return meta, nil
}

// CourseCount returns the number of courses in the catalog.
func (s *CourseStore) CourseCount(ctx context.Context) (int, error) {
	return s.provider.Count(ctx, catalogCollection)
}

// CourseTitles returns the titles added this process lifetime.
func (s *CourseStore) CourseTitles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.titles))
	copy(out, s.titles)
	return out
}

// MaxResults returns the configured search result cap.
func (s *CourseStore) MaxResults() int {
	return s.maxResults
}

func metadataString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func metadataInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}
