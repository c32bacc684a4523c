package storage

import (
	"context"
	"time"

	"github.com/poiesic/simcheck/core"
)

// CheckRepository provides durable storage for check jobs, their reports, and
// the pending work queue. Implementations must be thread-safe and support
// concurrent access; the claim operation must be atomic so a pending check is
// handed to exactly one worker.
type CheckRepository interface {
	// CreateCheck persists a new pending check and enqueues it for processing.
	// Returns ErrDuplicateKey if a check with the same ID already exists.
	CreateCheck(ctx context.Context, check *core.Check) error

	// GetCheck retrieves a check by ID.
	// Returns ErrNotFound if the check doesn't exist.
	GetCheck(ctx context.Context, id core.CheckID) (*core.Check, error)

	// UpdateCheck persists the given check state. The status transition from
	// the stored state must be legal per core.CheckStatus.CanTransition;
	// otherwise core.ErrInvalidTransition is returned. Moving a check back to
	// pending re-enqueues it in its original queue position.
	UpdateCheck(ctx context.Context, check *core.Check) error

	// ClaimNextPending atomically claims the oldest pending check: its status
	// moves to processing, StartedAt is set to now, and Attempts is
	// incremented. Checks found expired during the scan are transitioned to
	// expired and skipped. Returns ErrNotFound when the queue is empty.
	ClaimNextPending(ctx context.Context, now time.Time) (*core.Check, error)

	// CancelCheck requests cancellation. A pending check transitions to
	// cancelled immediately; a processing check gets its CancelRequested flag
	// set for the worker to observe between pipeline stages. Cancelling a
	// terminal check is a no-op. Returns the updated check.
	CancelCheck(ctx context.Context, id core.CheckID, now time.Time) (*core.Check, error)

	// SaveReport persists the report for a completed check.
	SaveReport(ctx context.Context, report *core.Report) error

	// GetReport retrieves the report for a check.
	// Returns ErrNotFound if no report has been attached.
	GetReport(ctx context.Context, id core.CheckID) (*core.Report, error)

	// ListChecksByStatus returns up to limit checks in the given status,
	// ordered by creation time ascending.
	ListChecksByStatus(ctx context.Context, status core.CheckStatus, limit int) ([]*core.Check, error)

	// SweepExpired transitions every non-terminal check whose ExpiresAt is at
	// or before now to expired and removes it from the queue. Returns the
	// number of checks expired.
	SweepExpired(ctx context.Context, now time.Time) (int, error)

	// ReclaimStuck returns processing checks whose StartedAt is before cutoff
	// to pending, or to failed once maxAttempts is exhausted. Returns the
	// number of checks reclaimed.
	ReclaimStuck(ctx context.Context, cutoff time.Time, maxAttempts int) (int, error)

	// Close releases repository resources.
	Close() error
}

// SourceRepository provides storage for the reference corpus registry.
type SourceRepository interface {
	// AddSources adds source records, keyed by their content-based IDs.
	// Re-adding an existing record overwrites it, so ingestion is idempotent.
	AddSources(ctx context.Context, sources ...*core.SourceRecord) ([]*core.SourceRecord, error)

	// GetSource retrieves a source record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetSource(ctx context.Context, id core.ID) (*core.SourceRecord, error)

	// ListSources returns all source records of the given type.
	ListSources(ctx context.Context, sourceType core.SourceType) ([]*core.SourceRecord, error)

	// CountSources returns the number of source records of the given type.
	CountSources(ctx context.Context, sourceType core.SourceType) (int, error)

	// Close releases repository resources.
	Close() error
}
