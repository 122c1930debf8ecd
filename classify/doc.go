// Package classify maps free-text queries to podcast categories using
// weighted keyword sets. A close race between the top two categories yields
// an explicit dual result instead of an arbitrary pick, and unmatched
// queries fall back to a low-confidence general category.
package classify
