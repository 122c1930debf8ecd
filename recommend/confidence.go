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
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

// DefaultThreshold is the confidence floor below which fallback triggers.
const DefaultThreshold = 0.7

// Sub-score weights. They sum to 1 so the combined score needs no
// renormalization.
const (
	weightResponseLength = 0.20
	weightSourceCount    = 0.25
	weightRelevance      = 0.30
	weightLatency        = 0.15
	weightStructure      = 0.10
)

const (
	adequateResponseRunes = 200
	adequateSourceCount   = 3
	latencyFloor          = 1 * time.Second
	latencyCeiling        = 5 * time.Second
)

// SubScores are the independently computed components of a confidence
// score, each already clamped to [0,1].
type SubScores struct {
	ResponseLength float64
	SourceCount    float64
	Relevance      float64
	Latency        float64
	Structure      float64
}

// Combine folds sub-scores into the final confidence via the fixed
// weighting, clamped to [0,1].
func Combine(s SubScores) float64 {
	sum := clamp01(s.ResponseLength)*weightResponseLength +
		clamp01(s.SourceCount)*weightSourceCount +
		clamp01(s.Relevance)*weightRelevance +
		clamp01(s.Latency)*weightLatency +
		clamp01(s.Structure)*weightStructure
	return clamp01(sum)
}

// Stats is a snapshot of the controller's running counters.
type Stats struct {
	TotalQueries       int
	FallbackCount      int
	LowConfidenceCount int
	MeanConfidence     float64
}

// Controller scores responses post-hoc and decides whether the caller
// should route to the fallback answering service. Safe for concurrent use.
type Controller struct {
	mu                 sync.Mutex
	threshold          float64
	fallbackEnabled    bool
	totalQueries       int
	fallbackCount      int
	lowConfidenceCount int
	confidenceSum      float64
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller) error

// WithThreshold sets the fallback threshold. Must lie in [0,1].
func WithThreshold(threshold float64) ControllerOption {
	return func(c *Controller) error {
		if threshold < 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		c.threshold = threshold
		return nil
	}
}

// WithFallbackEnabled toggles the fallback decision. When disabled,
// ShouldFallback always returns false regardless of confidence.
func WithFallbackEnabled(enabled bool) ControllerOption {
	return func(c *Controller) error {
		c.fallbackEnabled = enabled
		return nil
	}
}

// NewController creates a Controller with the default threshold of 0.7 and
// fallback enabled.
func NewController(opts ...ControllerOption) (*Controller, error) {
	c := &Controller{
		threshold:       DefaultThreshold,
		fallbackEnabled: true,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Score computes the post-hoc confidence for one served response and
// records it in the running counters.
func (c *Controller) Score(query, response string, sourceCount int, processingTime time.Duration) float64 {
	confidence := Combine(SubScores{
		ResponseLength: lengthScore(response),
		SourceCount:    sourceCountScore(sourceCount),
		Relevance:      relevanceScore(query, response),
		Latency:        latencyScore(processingTime),
		Structure:      structureScore(response),
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalQueries++
	c.confidenceSum += confidence
	if confidence < c.threshold {
		c.lowConfidenceCount++
	}
	return confidence
}

// ShouldFallback reports whether the caller should route to the fallback
// service: confidence below threshold with fallback enabled. Positive
// decisions are counted.
func (c *Controller) ShouldFallback(confidence float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fallbackEnabled || confidence >= c.threshold {
		return false
	}
	c.fallbackCount++
	return true
}

// Stats returns a snapshot of the running counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := Stats{
		TotalQueries:       c.totalQueries,
		FallbackCount:      c.fallbackCount,
		LowConfidenceCount: c.lowConfidenceCount,
	}
	if c.totalQueries > 0 {
		stats.MeanConfidence = c.confidenceSum / float64(c.totalQueries)
	}
	return stats
}

// Threshold returns the current fallback threshold.
func (c *Controller) Threshold() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threshold
}

// UpdateThreshold replaces the fallback threshold at runtime.
// The value must lie in [0,1].
func (c *Controller) UpdateThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return ErrInvalidThreshold
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threshold = threshold
	return nil
}

// lengthScore measures response-length adequacy against a 200-rune target.
func lengthScore(response string) float64 {
	runes := utf8.RuneCountInString(strings.TrimSpace(response))
	return clamp01(float64(runes) / adequateResponseRunes)
}

// sourceCountScore measures result-count adequacy against a 3-source
// target.
func sourceCountScore(count int) float64 {
	if count <= 0 {
		return 0
	}
	return clamp01(float64(count) / adequateSourceCount)
}

// relevanceScore measures lexical overlap as the fraction of the query's
// distinct letters and digits that appear in the response. Character-level
// overlap works for CJK text, where word tokenization would treat the
// whole query as one token.
func relevanceScore(query, response string) float64 {
	queryRunes := make(map[rune]bool)
	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			queryRunes[unicode.ToLower(r)] = true
		}
	}
	if len(queryRunes) == 0 {
		return 0
	}

	responseRunes := make(map[rune]bool)
	for _, r := range response {
		responseRunes[unicode.ToLower(r)] = true
	}

	matched := 0
	for r := range queryRunes {
		if responseRunes[r] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryRunes))
}

// latencyScore is 1 up to the floor and decays linearly to 0 at the
// ceiling.
func latencyScore(processingTime time.Duration) float64 {
	if processingTime <= latencyFloor {
		return 1
	}
	if processingTime >= latencyCeiling {
		return 0
	}
	return float64(latencyCeiling-processingTime) / float64(latencyCeiling-latencyFloor)
}

// structureScore checks the response's structural completeness: non-empty,
// properly terminated, more than one sentence.
func structureScore(response string) float64 {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return 0
	}
	score := 0.5

	terminators := "。！？.!?"
	if strings.ContainsRune(terminators, lastRune(trimmed)) {
		score += 0.25
	}
	if strings.Count(trimmed, "。")+strings.Count(trimmed, ".")+
		strings.Count(trimmed, "！")+strings.Count(trimmed, "!")+
		strings.Count(trimmed, "？")+strings.Count(trimmed, "?") >= 2 {
		score += 0.25
	}
	return score
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
