// Package tags derives a small set of topical tags per chunk from a curated
// vocabulary, with fuzzy string matching and optional embedding similarity
// as fallbacks. Every chunk receives at least one tag; extraction never
// raises on malformed input.
package tags
