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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyChunkID indicates the ChunkId field is empty.
	ErrEmptyChunkID = errors.New("chunk_id cannot be empty")

	// ErrChunkIDTooLong indicates the ChunkId exceeds the 64-char cap.
	ErrChunkIDTooLong = errors.New("chunk_id exceeds 64 chars")

	// ErrNegativeChunkIndex indicates a negative ChunkIndex value.
	ErrNegativeChunkIndex = errors.New("chunk_index cannot be negative")

	// ErrEmptyChunkText indicates the ChunkText field is empty.
	ErrEmptyChunkText = errors.New("chunk_text cannot be empty")

	// ErrChunkTextTooLong indicates the ChunkText exceeds the 1024-char cap.
	ErrChunkTextTooLong = errors.New("chunk_text length exceeds 1024")

	// ErrFieldTooLong indicates a metadata field exceeds its schema cap.
	ErrFieldTooLong = errors.New("field exceeds schema length cap")

	// ErrTagsTooLong indicates the serialized tag list exceeds its cap.
	ErrTagsTooLong = errors.New("serialized tags exceed 1024 chars")
)
