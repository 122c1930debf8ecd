// Package mock provides deterministic test doubles for the ai interfaces.
// The default behavior derives stable pseudo-random vectors from the input
// text so tests never need a live embedding service.
package mock
