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


package chunker

import (
	"iter"
	"strings"
)

const (
	// DefaultMaxChunkSize is the default chunk budget in characters,
	// matching the store's chunk_text cap.
	DefaultMaxChunkSize = 1024

	// DefaultOverlapSize is the default overlap between adjacent chunks.
	DefaultOverlapSize = 100
)

// Sentence terminators, CJK and Latin. A newline also ends a sentence so
// speaker turns in transcripts stay intact.
const sentenceTerminators = "。！？；.!?;\n"

// Chunker splits long transcript text into bounded, overlapping segments.
// It splits on paragraph and sentence boundaries first, falling back to
// hard character cuts only when a single sentence exceeds the budget.
// A Chunker is stateless per call and safe for concurrent use.
type Chunker struct {
	maxChunkSize int
	overlapSize  int
}

// New creates a Chunker. maxChunkSize must be positive and overlapSize must
// be smaller than maxChunkSize; both are counted in characters.
func New(maxChunkSize, overlapSize int) (*Chunker, error) {
	if maxChunkSize <= 0 {
		return nil, ErrInvalidMaxChunkSize
	}
	if overlapSize < 0 || overlapSize >= maxChunkSize {
		return nil, ErrInvalidOverlapSize
	}
	return &Chunker{
		maxChunkSize: maxChunkSize,
		overlapSize:  overlapSize,
	}, nil
}

// Split returns the chunk sequence for text. The sequence is lazy, finite
// and restartable: ranging over it twice yields identical chunks, which is
// what makes re-ingestion idempotent. Empty or whitespace-only input yields
// an empty sequence, not an error.
func (c *Chunker) Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if strings.TrimSpace(text) == "" {
			return
		}

		var current []rune

		flush := func() bool {
			chunk := strings.TrimSpace(string(current))
			if chunk == "" {
				current = current[:0]
				return true
			}
			ok := yield(chunk)
			// Seed the next chunk with the tail of this one.
			if c.overlapSize > 0 && len(current) > c.overlapSize {
				current = append([]rune(nil), current[len(current)-c.overlapSize:]...)
			} else {
				current = current[:0]
			}
			return ok
		}

		for sentence := range sentences(text) {
			runes := []rune(sentence)

			if len(runes) > c.maxChunkSize {
				// Oversized sentence: flush what we have, then hard-cut.
				if len(current) > 0 && !flush() {
					return
				}
				current = current[:0]
				if !c.hardCut(runes, yield) {
					return
				}
				continue
			}

			if len(current)+len(runes) > c.maxChunkSize {
				if !flush() {
					return
				}
				// The overlap seed plus a near-budget sentence can still
				// overflow; the seed loses.
				if len(current)+len(runes) > c.maxChunkSize {
					current = current[:0]
				}
			}
			current = append(current, runes...)
		}

		if strings.TrimSpace(string(current)) != "" {
			yield(strings.TrimSpace(string(current)))
		}
	}
}

// Chunks collects the full chunk sequence for text.
func (c *Chunker) Chunks(text string) []string {
	var chunks []string
	for chunk := range c.Split(text) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// hardCut slices an oversized sentence into maxChunkSize windows that
// overlap by overlapSize characters.
func (c *Chunker) hardCut(runes []rune, yield func(string) bool) bool {
	step := c.maxChunkSize - c.overlapSize
	for start := 0; start < len(runes); start += step {
		end := start + c.maxChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" && !yield(chunk) {
			return false
		}
		if end == len(runes) {
			break
		}
	}
	return true
}

// sentences yields text sentence by sentence, preserving terminators.
// Paragraph breaks (blank lines) always end a sentence.
func sentences(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		normalized := strings.ReplaceAll(text, "\r\n", "\n")
		start := 0
		for i, r := range normalized {
			if strings.ContainsRune(sentenceTerminators, r) {
				sentence := normalized[start : i+len(string(r))]
				if strings.TrimSpace(sentence) != "" {
					if !yield(sentence) {
						return
					}
				}
				start = i + len(string(r))
			}
		}
		if start < len(normalized) {
			tail := normalized[start:]
			if strings.TrimSpace(tail) != "" {
				yield(tail)
			}
		}
	}
}
