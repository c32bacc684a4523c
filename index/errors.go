package index

import "errors"

var (
	// ErrSnapshotCorrupt indicates a snapshot file could not be decoded.
	ErrSnapshotCorrupt = errors.New("index snapshot corrupt")

	// ErrUnknownKind indicates a source type the index set does not cover.
	ErrUnknownKind = errors.New("unknown source type")
)
