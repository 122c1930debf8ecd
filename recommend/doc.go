// Package recommend serves category-aware KNN recommendations over the
// chunk store and gates them with a post-hoc confidence controller.
//
// The Engine classifies a query, embeds it, and scans the store for the
// nearest chunks, filtering by category unless the classification came
// back dual or general. Aggregate confidence is the mean similarity of
// the returned matches. The Controller scores the final response from
// independent sub-scores (length, source count, lexical relevance,
// latency, structure) and decides whether the caller should route to a
// fallback answering service.
package recommend
