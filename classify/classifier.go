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


package classify

import (
	"log/slog"
	"strings"

	"github.com/podrec/podrec/core"
)

const (
	// DefaultKeywordWeight is the score contribution of a direct keyword hit.
	DefaultKeywordWeight = 2.0

	// DefaultPartialWeight is the score contribution of a partial/tag hit.
	DefaultPartialWeight = 1.0

	// DefaultDualMargin is the relative winner-vs-runner-up gap below which
	// the query is labeled dual rather than picked arbitrarily.
	DefaultDualMargin = 0.25

	// generalConfidence is the confidence attached to the general fallback.
	generalConfidence = 0.1
)

// Classifier scores free-text queries against weighted category keyword
// sets. It is stateless per call and safe for concurrent use.
type Classifier struct {
	categories    []CategoryLexicon
	keywordWeight float64
	partialWeight float64
	dualMargin    float64
	logger        *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier) error

// WithWeights overrides the direct and partial keyword weights. The direct
// weight must stay above the partial weight.
func WithWeights(keyword, partial float64) Option {
	return func(c *Classifier) error {
		if keyword <= 0 || partial <= 0 || keyword < partial {
			return ErrInvalidWeights
		}
		c.keywordWeight = keyword
		c.partialWeight = partial
		return nil
	}
}

// WithDualMargin sets the close-race margin, in (0, 1).
func WithDualMargin(margin float64) Option {
	return func(c *Classifier) error {
		if margin <= 0 || margin >= 1 {
			return ErrInvalidDualMargin
		}
		c.dualMargin = margin
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClassifier creates a classifier over the configured category lexicons.
// At least two categories with keywords are required; anything less is a
// configuration error, fatal at startup.
func NewClassifier(categories []CategoryLexicon, opts ...Option) (*Classifier, error) {
	if len(categories) < 2 {
		return nil, ErrTooFewCategories
	}
	for _, cat := range categories {
		if cat.Name == "" {
			return nil, ErrUnnamedCategory
		}
		if len(cat.Keywords) == 0 {
			return nil, ErrEmptyKeywordSet
		}
	}

	c := &Classifier{
		categories:    categories,
		keywordWeight: DefaultKeywordWeight,
		partialWeight: DefaultPartialWeight,
		dualMargin:    DefaultDualMargin,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Categorize scores query against every configured category and returns a
// label with a confidence. A close race between the top two categories
// yields the dual label; an empty or unmatched query yields the general
// label at the lowest confidence. Categorize never fails.
func (c *Classifier) Categorize(query string) *core.CategoryResult {
	scores := make(map[string]float64, len(c.categories))
	var matchedKeywords []string

	lowerQuery := strings.ToLower(strings.TrimSpace(query))
	if lowerQuery == "" {
		return c.generalResult(scores)
	}

	for _, cat := range c.categories {
		score := 0.0
		for _, keyword := range cat.Keywords {
			if strings.Contains(lowerQuery, strings.ToLower(keyword)) {
				score += c.keywordWeight
				matchedKeywords = append(matchedKeywords, keyword)
			}
		}
		for _, partial := range cat.Partials {
			if strings.Contains(lowerQuery, strings.ToLower(partial)) {
				score += c.partialWeight
				matchedKeywords = append(matchedKeywords, partial)
			}
		}
		scores[cat.Name] = score
	}

	best, second := topTwo(scores)
	if scores[best] == 0 {
		return c.generalResult(scores)
	}

	bestScore := scores[best]
	secondScore := scores[second]

	// Confidence is the winner's share of the top-two mass: 1.0 for an
	// uncontested winner, 0.5 for a dead heat.
	confidence := bestScore / (bestScore + secondScore)

	category := best
	if secondScore > 0 && (bestScore-secondScore)/bestScore < c.dualMargin {
		category = core.CategoryDual
	}

	c.logger.Debug("categorized query",
		"category", category, "confidence", confidence, "scores", scores)

	return &core.CategoryResult{
		Category:        category,
		Confidence:      confidence,
		Scores:          scores,
		MatchedKeywords: matchedKeywords,
	}
}

// Categories returns the configured category names in lexicon order.
func (c *Classifier) Categories() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

func (c *Classifier) generalResult(scores map[string]float64) *core.CategoryResult {
	for _, cat := range c.categories {
		if _, ok := scores[cat.Name]; !ok {
			scores[cat.Name] = 0
		}
	}
	return &core.CategoryResult{
		Category:   core.CategoryGeneral,
		Confidence: generalConfidence,
		Scores:     scores,
	}
}

// topTwo returns the names of the highest and second-highest scoring
// categories. Ties resolve to the lexicographically smaller name so
// classification stays deterministic.
func topTwo(scores map[string]float64) (best, second string) {
	for name, score := range scores {
		switch {
		case best == "" || score > scores[best] ||
			(score == scores[best] && name < best):
			second = best
			best = name
		case second == "" || score > scores[second] ||
			(score == scores[second] && name < second):
			second = name
		}
	}
	return best, second
}
