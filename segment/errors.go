package segment

import "errors"

var (
	// ErrContentTooShort is returned when the input has fewer words than the
	// segmenter's minimum chunk size.
	ErrContentTooShort = errors.New("content too short to segment")
)
