package ingest

import "errors"

var (
	// ErrSourceRepositoryRequired indicates NewPipeline was called without a source repository.
	ErrSourceRepositoryRequired = errors.New("source repository is required")

	// ErrIndexSetRequired indicates NewPipeline was called without an index set.
	ErrIndexSetRequired = errors.New("index set is required")

	// ErrEmbedderRequired indicates NewPipeline was called without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrEmptyDocument indicates a document with too little usable text.
	ErrEmptyDocument = errors.New("document has no usable content")
)
