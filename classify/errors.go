package classify

import "errors"

var (
	// ErrTooFewCategories is returned when fewer than two categories are
	// configured.
	ErrTooFewCategories = errors.New("at least two categories required")

	// ErrUnnamedCategory is returned when a category has no name.
	ErrUnnamedCategory = errors.New("category name cannot be empty")

	// ErrEmptyKeywordSet is returned when a category has no keywords.
	ErrEmptyKeywordSet = errors.New("category keyword set cannot be empty")

	// ErrInvalidWeights is returned for non-positive weights or a direct
	// weight below the partial weight.
	ErrInvalidWeights = errors.New("invalid keyword weights")

	// ErrInvalidDualMargin is returned for margins outside (0, 1).
	ErrInvalidDualMargin = errors.New("dual margin must be in (0, 1)")
)
