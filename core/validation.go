// Copyright 2025 Podrec Authors
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


package core

import (
	"fmt"
	"unicode/utf8"
)

// Store schema length caps, counted in characters.
const (
	MaxChunkIDLen   = 64
	MaxChunkTextLen = 1024
	MaxNameLen      = 255
	MaxCategoryLen  = 64
	MaxLanguageLen  = 16
	MaxTagsLen      = 1024
)

// ValidateChunk validates a Chunk against the store schema.
//
// Validation rules:
//   - ChunkId must be non-empty and at most 64 chars
//   - ChunkIndex must be non-negative
//   - ChunkText must be non-empty and at most 1024 chars; oversized text is
//     a contract violation, never silently truncated
//   - PodcastName, Author, EpisodeTitle at most 255 chars; Category at most
//     64; Language at most 16
//   - Tags in joined form at most 1024 chars
//
// NOT validated (populated by the pipeline):
//   - Embedding (may be empty until the embedding stage runs)
//   - CreatedAt, SourceModel
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.ChunkId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkID)
	}
	if utf8.RuneCountInString(chunk.ChunkId) > MaxChunkIDLen {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrChunkIDTooLong)
	}

	if chunk.ChunkIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeChunkIndex)
	}

	if chunk.ChunkText == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}
	if utf8.RuneCountInString(chunk.ChunkText) > MaxChunkTextLen {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrChunkTextTooLong)
	}

	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"podcast_name", chunk.PodcastName, MaxNameLen},
		{"author", chunk.Author, MaxNameLen},
		{"episode_title", chunk.EpisodeTitle, MaxNameLen},
		{"category", chunk.Category, MaxCategoryLen},
		{"language", chunk.Language, MaxLanguageLen},
	} {
		if utf8.RuneCountInString(f.value) > f.max {
			return fmt.Errorf("%w: %w: %s", ErrInvalidChunk, ErrFieldTooLong, f.name)
		}
	}

	if utf8.RuneCountInString(JoinTags(chunk.Tags)) > MaxTagsLen {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrTagsTooLong)
	}

	return nil
}
