package ai

import "errors"

var (
	// ErrConfigRequired is returned when a nil config is supplied.
	ErrConfigRequired = errors.New("config required")

	// ErrEmbeddingHostRequired is returned when the embedding host is empty.
	ErrEmbeddingHostRequired = errors.New("embedding host required")

	// ErrEmbeddingModelRequired is returned when the embedding model is empty.
	ErrEmbeddingModelRequired = errors.New("embedding model required")

	// ErrHandleClosed is returned when a closed Handle is used.
	ErrHandleClosed = errors.New("embedding handle is closed")
)
