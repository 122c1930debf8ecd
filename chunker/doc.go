// Package chunker splits cleaned transcript text into bounded, overlapping
// segments suitable for embedding and indexing.
//
// Splitting prefers semantic boundaries (paragraphs, sentences) and only
// falls back to hard character cuts when a single sentence exceeds the
// chunk budget. The produced sequence is deterministic for a given input
// and configuration, which the ingestion pipeline relies on for idempotent
// re-ingestion.
package chunker
