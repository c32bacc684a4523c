package scoring

import "errors"

var (
	// ErrInvalidThresholds indicates out-of-range or misordered confidence bands.
	ErrInvalidThresholds = errors.New("invalid thresholds")

	// ErrInvalidWeights indicates score weights that do not sum to 1.
	ErrInvalidWeights = errors.New("invalid score weights")
)
