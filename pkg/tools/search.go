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

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/kadirpekel/lectern/pkg/store"
)

// SearchToolName is the name the model uses to invoke content search.
const SearchToolName = "search_course_content"

// SearchTool searches course content chunks with optional course and
// lesson filtering.
type SearchTool struct {
	store *store.CourseStore
}

type searchRequest struct {
	Query        string `mapstructure:"query"`
	CourseName   string `mapstructure:"course_name"`
	LessonNumber *int   `mapstructure:"lesson_number"`
}

// NewSearchTool creates the content search tool.
func NewSearchTool(s *store.CourseStore) *SearchTool {
	return &SearchTool{store: s}
}

// GetInfo implements Tool.
func (t *SearchTool) GetInfo() ToolInfo {
	return ToolInfo{
		Name:        SearchToolName,
		Description: "Search course materials with smart course name matching and lesson filtering",
		Parameters: []ToolParameter{
			{
				Name:        "query",
				Type:        "string",
				Description: "What to search for in course content",
				Required:    true,
			},
			{
				Name:        "course_name",
				Type:        "string",
				Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
			},
			{
				Name:        "lesson_number",
				Type:        "integer",
				Description: "Specific lesson number to search within (e.g. 1, 2, 3)",
			},
		},
	}
}

// Execute implements Tool. Misses and unknown courses come back as
// successful results with explanatory text so the model can react to
// them in-band.
func (t *SearchTool) Execute(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	var req searchRequest
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &req,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errorResult(SearchToolName, err.Error()), err
	}
	if err := decoder.Decode(args); err != nil {
		err = fmt.Errorf("invalid search arguments: %w", err)
		return errorResult(SearchToolName, err.Error()), err
	}
	if req.Query == "" {
		err := fmt.Errorf("query is required")
		return errorResult(SearchToolName, err.Error()), err
	}

	chunks, err := t.store.Search(ctx, req.Query, req.CourseName, req.LessonNumber)
	if errors.Is(err, store.ErrCourseNotFound) {
		return ToolResult{
			Success:  true,
			Content:  fmt.Sprintf("No course found matching '%s'", req.CourseName),
			ToolName: SearchToolName,
		}, nil
	}
	if err != nil {
		return errorResult(SearchToolName, err.Error()), err
	}

	if len(chunks) == 0 {
		return ToolResult{
			Success:  true,
			Content:  emptySearchMessage(req),
			ToolName: SearchToolName,
		}, nil
	}

	blocks := make([]string, 0, len(chunks))
	sources := make([]Source, 0, len(chunks))
	for _, chunk := range chunks {
		label := chunkLabel(chunk)
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", label, chunk.Text))
		sources = append(sources, Source{Label: label, Link: chunk.LessonLink})
	}

	return ToolResult{
		Success:  true,
		Content:  strings.Join(blocks, "\n\n"),
		ToolName: SearchToolName,
		Sources:  sources,
	}, nil
}

func chunkLabel(chunk store.Chunk) string {
	label := chunk.CourseTitle
	if label == "" {
		label = "Unknown Course"
	}
	return fmt.Sprintf("%s - Lesson %d", label, chunk.LessonNumber)
}

func emptySearchMessage(req searchRequest) string {
	msg := "No relevant content found"
	var qualifiers []string
	if req.CourseName != "" {
		qualifiers = append(qualifiers, fmt.Sprintf("in course '%s'", req.CourseName))
	}
	if req.LessonNumber != nil {
		qualifiers = append(qualifiers, fmt.Sprintf("in lesson %d", *req.LessonNumber))
	}
	if len(qualifiers) > 0 {
		msg += " " + strings.Join(qualifiers, " ")
	}
	return msg + "."
}

func errorResult(toolName, message string) ToolResult {
	return ToolResult{
		Success:  false,
		Error:    message,
		ToolName: toolName,
	}
}
