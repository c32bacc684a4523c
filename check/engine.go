package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/simcheck/ai"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/provider"
	"github.com/poiesic/simcheck/scoring"
	"github.com/poiesic/simcheck/segment"
	"github.com/poiesic/simcheck/storage"
)

const (
	// DefaultMinWords is the smallest accepted submission, in normalized words.
	DefaultMinWords = 40

	// DefaultMaxWords is the largest accepted submission, in normalized words.
	DefaultMaxWords = 1500

	// DefaultRetention is how long a check and its report are kept.
	DefaultRetention = 7 * 24 * time.Hour

	// DefaultMaxAttempts is how many times a check may be claimed before it
	// fails for good.
	DefaultMaxAttempts = 3
)

// Engine owns the check lifecycle: it validates and enqueues submissions,
// answers status and report queries, and runs the processing pipeline that
// workers invoke on claimed checks.
type Engine struct {
	repo       storage.CheckRepository
	dispatcher *provider.Dispatcher
	embedder   ai.Embedder
	segmenter  *segment.Segmenter
	scorer     *scoring.Scorer
	clock      core.Clock

	minWords      int
	maxWords      int
	retention     time.Duration
	maxAttempts   int
	maxCandidates int

	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithSegmenter overrides the default segmenter.
func WithSegmenter(s *segment.Segmenter) Option {
	return func(e *Engine) error {
		e.segmenter = s
		return nil
	}
}

// WithScorer overrides the default scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(e *Engine) error {
		e.scorer = s
		return nil
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(c core.Clock) Option {
	return func(e *Engine) error {
		e.clock = c
		return nil
	}
}

// WithWordBounds overrides the accepted submission length range.
func WithWordBounds(min, max int) Option {
	return func(e *Engine) error {
		if min < 1 || max < min {
			return fmt.Errorf("invalid word bounds [%d, %d]", min, max)
		}
		e.minWords = min
		e.maxWords = max
		return nil
	}
}

// WithRetention overrides how long checks are kept before expiry.
func WithRetention(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return fmt.Errorf("retention must be positive, got %s", d)
		}
		e.retention = d
		return nil
	}
}

// WithMaxAttempts overrides the processing attempt budget.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("max attempts must be positive, got %d", n)
		}
		e.maxAttempts = n
		return nil
	}
}

// WithMaxCandidates overrides the pre-scoring candidate cap per provider.
func WithMaxCandidates(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("max candidates must be positive, got %d", n)
		}
		e.maxCandidates = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a check engine.
func NewEngine(
	repo storage.CheckRepository,
	dispatcher *provider.Dispatcher,
	embedder ai.Embedder,
	opts ...Option,
) (*Engine, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if dispatcher == nil {
		return nil, ErrDispatcherRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	scorer, err := scoring.NewScorer()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		repo:          repo,
		dispatcher:    dispatcher,
		embedder:      embedder,
		segmenter:     segment.New(segment.DefaultMinWords, segment.DefaultMaxWords, segment.DefaultOverlapWords),
		scorer:        scorer,
		clock:         core.SystemClock{},
		minWords:      DefaultMinWords,
		maxWords:      DefaultMaxWords,
		retention:     DefaultRetention,
		maxAttempts:   DefaultMaxAttempts,
		maxCandidates: provider.DefaultMaxCandidates,
		logger:        slog.Default().With("component", "check-engine"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Submit validates a submission and enqueues a pending check for it.
// Validation is synchronous: an invalid submission never produces a check.
// Unset sensitivity defaults to medium and an empty source selection means
// all categories.
func (e *Engine) Submit(ctx context.Context, sub core.Submission) (*core.Check, error) {
	if sub.Sensitivity == 0 {
		sub.Sensitivity = core.SensitivityMedium
	}
	if len(sub.Options.Sources) == 0 {
		sub.Options.Sources = append([]core.SourceType(nil), core.SourceTypes...)
	}
	sub.WordCount = segment.CountWords(sub.Text)

	if err := core.ValidateSubmission(&sub, e.minWords, e.maxWords); err != nil {
		return nil, err
	}

	now := e.clock.Now()
	check := &core.Check{
		Id:         core.NewCheckID(),
		Status:     core.StatusPending,
		Submission: sub,
		CreatedAt:  now,
		ExpiresAt:  now.Add(e.retention),
	}
	if err := e.repo.CreateCheck(ctx, check); err != nil {
		return nil, err
	}

	e.logger.Info("check submitted",
		"check_id", check.Id,
		"words", sub.WordCount,
		"sensitivity", sub.Sensitivity.String())
	return check, nil
}

// Status returns the current state of a check.
func (e *Engine) Status(ctx context.Context, id core.CheckID) (*core.Check, error) {
	return e.repo.GetCheck(ctx, id)
}

// Report returns the report of a completed check. A check that exists but
// has not completed yields ErrReportNotReady.
func (e *Engine) Report(ctx context.Context, id core.CheckID) (*core.Report, error) {
	check, err := e.repo.GetCheck(ctx, id)
	if err != nil {
		return nil, err
	}
	if check.Status != core.StatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrReportNotReady, check.Status)
	}
	return e.repo.GetReport(ctx, id)
}

// Cancel requests cancellation of a check. Pending checks cancel
// immediately; processing checks stop at the next pipeline stage boundary.
func (e *Engine) Cancel(ctx context.Context, id core.CheckID) (*core.Check, error) {
	check, err := e.repo.CancelCheck(ctx, id, e.clock.Now())
	if err != nil {
		return nil, err
	}
	e.logger.Info("cancellation requested", "check_id", id, "status", check.Status.String())
	return check, nil
}

// Sweep expires overdue checks and reclaims checks stuck in processing.
// Returns the number of checks touched.
func (e *Engine) Sweep(ctx context.Context, stuckAfter time.Duration) (int, error) {
	now := e.clock.Now()

	expired, err := e.repo.SweepExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	reclaimed, err := e.repo.ReclaimStuck(ctx, now.Add(-stuckAfter), e.maxAttempts)
	if err != nil {
		return expired, err
	}

	if expired+reclaimed > 0 {
		e.logger.Info("sweep finished", "expired", expired, "reclaimed", reclaimed)
	}
	return expired + reclaimed, nil
}

// IsNotFound reports whether err means an unknown check ID.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
