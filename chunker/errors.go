package chunker

import "errors"

var (
	// ErrInvalidMaxChunkSize is returned when maxChunkSize is <= 0.
	ErrInvalidMaxChunkSize = errors.New("maxChunkSize must be greater than 0")

	// ErrInvalidOverlapSize is returned when overlapSize is negative or
	// not smaller than maxChunkSize.
	ErrInvalidOverlapSize = errors.New("overlapSize must be non-negative and smaller than maxChunkSize")
)
