package core

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Chunk is the atomic indexed unit: a bounded segment of cleaned transcript
// text plus its embedding and a denormalized metadata snapshot copied at
// ingestion time. Chunks are immutable once inserted.
type Chunk struct {
	ChunkId    string // Primary key, globally unique, at most 64 chars
	ChunkIndex int    // Position among siblings within an episode

	// Provenance snapshot (never joined at query time)
	EpisodeId     int
	PodcastId     int
	PodcastName   string
	Author        string
	Category      string
	EpisodeTitle  string
	Duration      string
	PublishedDate string
	AppleRating   int

	ChunkText string    // Hard cap 1024 chars, enforced before insert
	Embedding []float32 // Fixed-dimension vector from the embedding model
	Language  string
	Tags      []string // Small ordered set, joined form capped at 1024 chars

	CreatedAt   time.Time
	SourceModel string // Embedding model that produced the vector
}

// ChunkMatch pairs a chunk with a similarity score from vector search.
type ChunkMatch struct {
	Chunk *Chunk
	Score float32
}

// Progress is the resumable ingestion cursor. One run processes one bounded
// group of source collections, then advances the cycle counter.
type Progress struct {
	CurrentCycle            int
	LastProcessedCollection string
	TotalProcessedChunks    int
	CompletedCollections    []string
	UpdatedAt               time.Time
}

// Completed reports whether a collection has already been durably ingested.
func (p *Progress) Completed(collectionId string) bool {
	for _, id := range p.CompletedCollections {
		if id == collectionId {
			return true
		}
	}
	return false
}

// ExceptionRecord is one entry in the append-only ingestion exception
// journal. Entries are never mutated or deleted by the pipeline.
type ExceptionRecord struct {
	Timestamp       time.Time
	ChunkId         string
	SourceLocation  string // "collection/document" of the rejected chunk
	Reason          string
	ChunkTextLength int
	PayloadSnapshot string // Truncated preview of the rejected text
}

// Category labels with special meaning for classification results.
const (
	// CategoryDual marks a query that scored closely against two categories.
	CategoryDual = "dual"
	// CategoryGeneral is the lowest-confidence result for empty or
	// unmatched queries.
	CategoryGeneral = "general"
)

// CategoryResult is the outcome of classifying a free-text query.
// Ephemeral, created per query.
type CategoryResult struct {
	Category        string
	Confidence      float64            // 0-1
	Scores          map[string]float64 // Raw per-category scores
	MatchedKeywords []string
}

// RecommendationResult is the outcome of a KNN recommendation query.
// Matches are ordered by non-increasing similarity. Ephemeral.
type RecommendationResult struct {
	Matches        []*ChunkMatch
	Confidence     float64 // Aggregate over match scores, clamped to [0,1]
	ProcessingTime time.Duration
}

// Similarities returns the per-match similarity scores in result order.
func (r *RecommendationResult) Similarities() []float32 {
	scores := make([]float32, len(r.Matches))
	for i, m := range r.Matches {
		scores[i] = m.Score
	}
	return scores
}

// ChunkID builds the canonical chunk identifier for a chunk of a known
// episode. The derivation is deterministic so re-ingesting the same source
// always produces the same IDs.
func ChunkID(episodeId, chunkIndex int) string {
	return fmt.Sprintf("ep%d_c%d", episodeId, chunkIndex)
}

// ChunkIDFromSource derives a deterministic chunk identifier from source
// document identity, for sources without numeric episode IDs. The document
// part is hashed with BLAKE2b so the result stays under the 64-char cap
// regardless of source naming.
func ChunkIDFromSource(collectionId, documentId string, chunkIndex int) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(collectionId))
	h.Write([]byte{'/'})
	h.Write([]byte(documentId))
	sum := h.Sum(nil)
	return fmt.Sprintf("doc%016x_c%d", binary.LittleEndian.Uint64(sum), chunkIndex)
}

// JoinTags renders the tag set in its serialized single-field form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}
