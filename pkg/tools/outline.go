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

// OutlineToolName is the name the model uses to fetch a course outline.
const OutlineToolName = "get_course_outline"

// OutlineTool returns a course's title, link, and complete lesson list.
type OutlineTool struct {
	store *store.CourseStore
}

type outlineRequest struct {
	CourseName string `mapstructure:"course_name"`
}

// NewOutlineTool creates the course outline tool.
func NewOutlineTool(s *store.CourseStore) *OutlineTool {
	return &OutlineTool{store: s}
}

// GetInfo implements Tool.
func (t *OutlineTool) GetInfo() ToolInfo {
	return ToolInfo{
		Name:        OutlineToolName,
		Description: "Get the complete outline of a course: title, link, and all lessons",
		Parameters: []ToolParameter{
			{
				Name:        "course_name",
				Type:        "string",
				Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				Required:    true,
			},
		},
	}
}

// Execute implements Tool.
func (t *OutlineTool) Execute(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	var req outlineRequest
	if err := mapstructure.Decode(args, &req); err != nil {
		err = fmt.Errorf("invalid outline arguments: %w", err)
		return errorResult(OutlineToolName, err.Error()), err
	}
	if req.CourseName == "" {
		err := fmt.Errorf("course_name is required")
		return errorResult(OutlineToolName, err.Error()), err
	}

	outline, err := t.store.GetOutline(ctx, req.CourseName)
	if errors.Is(err, store.ErrCourseNotFound) {
		return ToolResult{
			Success:  true,
			Content:  fmt.Sprintf("No course found matching '%s'", req.CourseName),
			ToolName: OutlineToolName,
		}, nil
	}
	if err != nil {
		return errorResult(OutlineToolName, err.Error()), err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", outline.Title)
	if outline.Link != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", outline.Link)
	}
	if outline.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", outline.Instructor)
	}
	fmt.Fprintf(&b, "Lessons (%d):\n", len(outline.Lessons))
	for _, lesson := range outline.Lessons {
		fmt.Fprintf(&b, "  %d. %s\n", lesson.Number, lesson.Title)
	}

	source := Source{Label: outline.Title, Link: outline.Link}

	return ToolResult{
		Success:  true,
		Content:  strings.TrimRight(b.String(), "\n"),
		ToolName: OutlineToolName,
		Sources:  []Source{source},
	}, nil
}
