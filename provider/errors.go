package provider

import "errors"

var (
	// ErrQueryMismatch indicates chunks and embeddings of different lengths.
	ErrQueryMismatch = errors.New("chunk and embedding counts differ")

	// ErrNoProviders indicates no requested source type has a provider.
	ErrNoProviders = errors.New("no providers available")

	// ErrInvalidTimeout indicates a non-positive search timeout.
	ErrInvalidTimeout = errors.New("search timeout must be positive")
)
