// Package ingest implements the transcript ingestion pipeline: splitting
// cleaned documents into chunks, embedding them, and writing them to the
// chunk store with duplicate and schema-violation handling.
//
// The pipeline works in cycles. Each cycle covers a fixed-size group of
// source collections on a bounded worker pool; a collection is marked
// complete only after its chunks are durably inserted, so a crash costs at
// most one in-flight collection, which the next run re-processes and the
// writer's dedup check absorbs. Transient embedding or storage failures are
// retried with exponential backoff and the collection is abandoned for the
// run once the budget is exhausted.
package ingest
