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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kadirpekel/lectern/pkg/store"
)

// corpusFile is a pre-chunked course corpus. Parsing and chunking of
// raw documents happen upstream; this file only loads the result.
type corpusFile struct {
	Courses []corpusCourse `json:"courses"`
}

type corpusCourse struct {
	Title      string         `json:"title"`
	Link       string         `json:"link,omitempty"`
	Instructor string         `json:"instructor,omitempty"`
	Lessons    []store.Lesson `json:"lessons"`
	Chunks     []corpusChunk  `json:"chunks"`
}

type corpusChunk struct {
	LessonNumber int    `json:"lesson_number"`
	Text         string `json:"text"`
}

// loadCorpus reads a corpus JSON file into the store. Chunk lesson
// links are resolved from the course's lesson list.
func loadCorpus(ctx context.Context, s *store.CourseStore, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var corpus corpusFile
	if err := json.Unmarshal(data, &corpus); err != nil {
		return fmt.Errorf("failed to parse corpus file: %w", err)
	}

	for _, course := range corpus.Courses {
		lessonLinks := make(map[int]string, len(course.Lessons))
		for _, lesson := range course.Lessons {
			lessonLinks[lesson.Number] = lesson.Link
		}

		err := s.AddCourse(ctx, &store.CourseMeta{
			Title:      course.Title,
			Link:       course.Link,
			Instructor: course.Instructor,
			Lessons:    course.Lessons,
		})
		if err != nil {
			return err
		}

		chunks := make([]store.Chunk, 0, len(course.Chunks))
		for _, c := range course.Chunks {
			chunks = append(chunks, store.Chunk{
				CourseTitle:  course.Title,
				LessonNumber: c.LessonNumber,
				LessonLink:   lessonLinks[c.LessonNumber],
				Text:         c.Text,
			})
		}
		if err := s.AddChunks(ctx, chunks); err != nil {
			return err
		}
	}

	return nil
}
