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


package tags

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/podrec/podrec/ai"
	"github.com/xrash/smetrics"
)

const (
	// DefaultMaxTags bounds the tag set per chunk.
	DefaultMaxTags = 5

	// DefaultSimilarityThreshold is the acceptance threshold for the fuzzy
	// and semantic fallback passes. Tunable per deployment.
	DefaultSimilarityThreshold = 0.85

	// FallbackTag is assigned when nothing in the vocabulary matches, so
	// every chunk carries at least one tag.
	FallbackTag = "uncategorized"
)

// Extractor derives topical tags from chunk text using a curated vocabulary.
// Matching runs in three passes: substring match, string-similarity fallback
// (Jaro-Winkler), and an optional embedding-similarity fallback when an
// embedder is configured. Extract never fails; the worst case is the
// uncategorized fallback tag.
type Extractor struct {
	vocab        []string
	vocabLower   []string
	vocabVectors [][]float32
	embedder     ai.Embedder
	maxTags      int
	threshold    float64
	fallbackTag  string
	logger       *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithMaxTags sets the maximum tag set size. Values below 1 are rejected.
func WithMaxTags(n int) Option {
	return func(e *Extractor) error {
		if n < 1 {
			return ErrInvalidMaxTags
		}
		e.maxTags = n
		return nil
	}
}

// WithSimilarityThreshold sets the fuzzy/semantic acceptance threshold.
func WithSimilarityThreshold(t float64) Option {
	return func(e *Extractor) error {
		if t <= 0 || t > 1 {
			return ErrInvalidThreshold
		}
		e.threshold = t
		return nil
	}
}

// WithFallbackTag overrides the tag used when nothing matches.
func WithFallbackTag(tag string) Option {
	return func(e *Extractor) error {
		if tag == "" {
			return ErrEmptyFallbackTag
		}
		e.fallbackTag = tag
		return nil
	}
}

// WithEmbedder enables the embedding-similarity fallback pass. Call
// PrepareVocabularyVectors before extracting to precompute vocabulary
// embeddings.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(e *Extractor) error {
		e.embedder = embedder
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewExtractor creates an extractor over a curated vocabulary.
// An empty vocabulary is a configuration error.
func NewExtractor(vocab []string, opts ...Option) (*Extractor, error) {
	if len(vocab) == 0 {
		return nil, ErrEmptyVocabulary
	}

	e := &Extractor{
		vocab:       slices.Clone(vocab),
		maxTags:     DefaultMaxTags,
		threshold:   DefaultSimilarityThreshold,
		fallbackTag: FallbackTag,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	e.vocabLower = make([]string, len(e.vocab))
	for i, term := range e.vocab {
		e.vocabLower[i] = strings.ToLower(term)
	}

	return e, nil
}

// PrepareVocabularyVectors embeds the vocabulary once so the semantic
// fallback can score text against it. A no-op without an embedder.
func (e *Extractor) PrepareVocabularyVectors(ctx context.Context) error {
	if e.embedder == nil {
		return nil
	}
	vectors, err := e.embedder.EmbedTexts(ctx, e.vocab)
	if err != nil {
		return err
	}
	if len(vectors) != len(e.vocab) {
		return ErrVocabularyVectorMismatch
	}
	e.vocabVectors = vectors
	return nil
}

// Extract returns a bounded, ordered tag set for text. It never returns an
// empty set and never fails: malformed input degrades to the fallback tag.
func (e *Extractor) Extract(ctx context.Context, text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{e.fallbackTag}
	}

	lowerText := strings.ToLower(text)
	matched := make(map[string]bool)
	var tags []string

	// Pass 1: substring match against the vocabulary. Equal-scoring terms
	// tie-break on the longer surface match.
	var hits []int
	for i, term := range e.vocabLower {
		if strings.Contains(lowerText, term) {
			hits = append(hits, i)
		}
	}
	slices.SortStableFunc(hits, func(a, b int) int {
		la, lb := len([]rune(e.vocab[a])), len([]rune(e.vocab[b]))
		if la != lb {
			return lb - la
		}
		return strings.Compare(e.vocab[a], e.vocab[b])
	})
	for _, i := range hits {
		if len(tags) >= e.maxTags {
			break
		}
		if !matched[e.vocab[i]] {
			matched[e.vocab[i]] = true
			tags = append(tags, e.vocab[i])
		}
	}

	// Pass 2: fuzzy-match remaining candidate tokens against the vocabulary.
	if len(tags) < e.maxTags {
		for _, token := range tokenize(lowerText) {
			if len(tags) >= e.maxTags {
				break
			}
			term, score := e.closestTerm(token)
			if score >= e.threshold && !matched[term] {
				matched[term] = true
				tags = append(tags, term)
			}
		}
	}

	// Pass 3: semantic fallback against precomputed vocabulary vectors.
	if len(tags) == 0 && e.embedder != nil && len(e.vocabVectors) > 0 {
		if tag, ok := e.semanticMatch(ctx, text); ok {
			tags = append(tags, tag)
		}
	}

	if len(tags) == 0 {
		return []string{e.fallbackTag}
	}
	return tags
}

// closestTerm returns the vocabulary term most similar to token and its
// Jaro-Winkler score. Ties prefer the longer term.
func (e *Extractor) closestTerm(token string) (string, float64) {
	best := ""
	bestScore := 0.0
	for i, term := range e.vocabLower {
		score := smetrics.JaroWinkler(token, term, 0.7, 4)
		if score > bestScore ||
			(score == bestScore && len([]rune(e.vocab[i])) > len([]rune(best))) {
			best = e.vocab[i]
			bestScore = score
		}
	}
	return best, bestScore
}

// semanticMatch embeds text and scores it against the vocabulary vectors.
func (e *Extractor) semanticMatch(ctx context.Context, text string) (string, bool) {
	vector, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		e.logger.Warn("semantic tag fallback failed", "err", err)
		return "", false
	}

	best := -1
	bestScore := 0.0
	for i, vocabVector := range e.vocabVectors {
		score := cosine(vector, vocabVector)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 || bestScore < e.threshold {
		return "", false
	}
	return e.vocab[best], true
}

// tokenize splits text into letter/digit runs. CJK vocabulary hits mostly
// come from the substring pass; this feeds the fuzzy pass with Latin terms.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := min(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
