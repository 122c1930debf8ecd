package tags

import "errors"

var (
	// ErrEmptyVocabulary is returned when no vocabulary terms are provided.
	ErrEmptyVocabulary = errors.New("tag vocabulary is empty")

	// ErrInvalidMaxTags is returned when the tag set bound is below 1.
	ErrInvalidMaxTags = errors.New("maxTags must be at least 1")

	// ErrInvalidThreshold is returned for thresholds outside (0, 1].
	ErrInvalidThreshold = errors.New("similarity threshold must be in (0, 1]")

	// ErrEmptyFallbackTag is returned when the fallback tag is blank.
	ErrEmptyFallbackTag = errors.New("fallback tag cannot be empty")

	// ErrVocabularyVectorMismatch is returned when the embedder yields a
	// different number of vectors than vocabulary terms.
	ErrVocabularyVectorMismatch = errors.New("vocabulary vector count mismatch")
)
