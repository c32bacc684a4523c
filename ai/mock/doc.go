// Package mock provides deterministic test doubles for the ai interfaces.
//
// The mock embedder derives unit-norm vectors from a text hash, so tests get
// stable similarity scores without any external embedding service.
package mock
