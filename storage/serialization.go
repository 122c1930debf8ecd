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


package storage

import (
	"github.com/podrec/podrec/core"
)

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalProgress serializes a Progress record to bytes.
func MarshalProgress(progress *core.Progress) []byte {
	buf := make([]byte, core.ProgressMUS.Size(*progress))
	core.ProgressMUS.Marshal(*progress, buf)
	return buf
}

// UnmarshalProgress deserializes a Progress record from bytes.
func UnmarshalProgress(data []byte) (*core.Progress, error) {
	progress, _, err := core.ProgressMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// MarshalExceptionRecord serializes an ExceptionRecord to bytes.
func MarshalExceptionRecord(record *core.ExceptionRecord) []byte {
	buf := make([]byte, core.ExceptionRecordMUS.Size(*record))
	core.ExceptionRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalExceptionRecord deserializes an ExceptionRecord from bytes.
func UnmarshalExceptionRecord(data []byte) (*core.ExceptionRecord, error) {
	record, _, err := core.ExceptionRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
