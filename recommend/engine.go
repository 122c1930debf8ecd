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


package recommend

import (
	"context"
	"log/slog"
	"time"

	"github.com/podrec/podrec/ai"
	"github.com/podrec/podrec/classify"
	"github.com/podrec/podrec/core"
	"github.com/podrec/podrec/storage"
)

// Aggregator folds per-match similarity scores into one aggregate
// confidence. Implementations must return a value that the engine can
// clamp to [0,1].
type Aggregator func(scores []float32) float64

// MeanAggregator averages the similarity scores. An empty result set
// yields zero confidence.
func MeanAggregator(scores []float32) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += float64(s)
	}
	return sum / float64(len(scores))
}

// Engine answers recommendation queries with a category-aware KNN scan
// over the chunk store.
type Engine struct {
	chunks       storage.ChunkRepository
	embedder     ai.Embedder
	classifier   *classify.Classifier
	aggregate    Aggregator
	queryTimeout time.Duration
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine) error

// WithClassifier attaches a query classifier. Without one, every query
// scans all categories.
func WithClassifier(classifier *classify.Classifier) EngineOption {
	return func(e *Engine) error {
		e.classifier = classifier
		return nil
	}
}

// WithAggregator replaces the default mean aggregation of similarity
// scores.
func WithAggregator(aggregate Aggregator) EngineOption {
	return func(e *Engine) error {
		if aggregate != nil {
			e.aggregate = aggregate
		}
		return nil
	}
}

// WithQueryTimeout bounds every recommendation query. Serving is
// latency-sensitive, so the default is a short 5 seconds; on timeout the
// caller should take the fallback path rather than retry.
func WithQueryTimeout(timeout time.Duration) EngineOption {
	return func(e *Engine) error {
		if timeout > 0 {
			e.queryTimeout = timeout
		}
		return nil
	}
}

// WithEngineLogger sets a custom logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a recommendation engine.
func NewEngine(chunks storage.ChunkRepository, embedder ai.Embedder, opts ...EngineOption) (*Engine, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		chunks:       chunks,
		embedder:     embedder,
		aggregate:    MeanAggregator,
		queryTimeout: 5 * time.Second,
		logger:       slog.Default().With("component", "recommend-engine"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Recommend classifies the query, embeds it, and runs a category-filtered
// KNN scan. Dual and general classifications scan all categories, so an
// ambiguous query never silently loses half its candidates.
func (e *Engine) Recommend(ctx context.Context, query string, topK int) (*core.RecommendationResult, *core.CategoryResult, error) {
	if query == "" {
		return nil, nil, ErrEmptyQuery
	}
	if topK <= 0 {
		return nil, nil, ErrInvalidTopK
	}

	ctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	categoryResult := e.categorize(query)

	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, categoryResult, err
	}

	result, err := e.RecommendVector(ctx, vector, categoryFilter(categoryResult), topK)
	if err != nil {
		return nil, categoryResult, err
	}
	return result, categoryResult, nil
}

// RecommendVector runs the KNN scan for an already-embedded query vector.
// A topK larger than the candidate set returns fewer matches, never an
// error.
func (e *Engine) RecommendVector(ctx context.Context, vector []float32, category string, topK int) (*core.RecommendationResult, error) {
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}

	start := time.Now()
	matches, err := e.chunks.FindSimilar(ctx, vector, category, topK)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	result := &core.RecommendationResult{
		Matches:        matches,
		ProcessingTime: elapsed,
	}
	result.Confidence = clamp01(e.aggregate(result.Similarities()))

	e.logger.Debug("recommendation served",
		"category", category,
		"matches", len(matches),
		"confidence", result.Confidence,
		"elapsed", elapsed)
	return result, nil
}

// categorize runs the classifier when one is configured; otherwise every
// query is treated as general.
func (e *Engine) categorize(query string) *core.CategoryResult {
	if e.classifier == nil {
		return &core.CategoryResult{Category: core.CategoryGeneral, Confidence: 0}
	}
	return e.classifier.Categorize(query)
}

// categoryFilter maps a classification to the store-level filter. Dual and
// general results scan everything.
func categoryFilter(result *core.CategoryResult) string {
	switch result.Category {
	case core.CategoryDual, core.CategoryGeneral:
		return ""
	default:
		return result.Category
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
