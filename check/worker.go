package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/simcheck/storage"
)

const (
	// DefaultPollInterval is how long the worker sleeps on an empty queue.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultSweepInterval is how often the worker expires and reclaims checks.
	DefaultSweepInterval = time.Minute

	// DefaultStuckAfter is how long a claim may sit in processing before the
	// sweeper treats it as abandoned.
	DefaultStuckAfter = 10 * time.Minute
)

// Worker drains the pending queue. Claims happen on the polling goroutine;
// pipeline runs are handed to a bounded goroutine pool, so a slow check
// never blocks claiming the next one.
type Worker struct {
	engine *Engine
	pool   *ants.Pool

	pollInterval  time.Duration
	sweepInterval time.Duration
	stuckAfter    time.Duration

	wg     sync.WaitGroup
	logger *slog.Logger
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker) error

// WithConcurrency sets the number of checks processed in parallel.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithConcurrency(size int) WorkerOption {
	return func(w *Worker) error {
		if size < 1 {
			size = 1
		}
		if w.pool != nil {
			w.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		w.pool = pool
		return nil
	}
}

// WithPollInterval sets the empty-queue sleep.
func WithPollInterval(d time.Duration) WorkerOption {
	return func(w *Worker) error {
		if d <= 0 {
			return fmt.Errorf("poll interval must be positive, got %s", d)
		}
		w.pollInterval = d
		return nil
	}
}

// WithSweepInterval sets how often expiry and reclaim run.
func WithSweepInterval(d time.Duration) WorkerOption {
	return func(w *Worker) error {
		if d <= 0 {
			return fmt.Errorf("sweep interval must be positive, got %s", d)
		}
		w.sweepInterval = d
		return nil
	}
}

// WithStuckAfter sets the claim age at which a processing check is reclaimed.
func WithStuckAfter(d time.Duration) WorkerOption {
	return func(w *Worker) error {
		if d <= 0 {
			return fmt.Errorf("stuck-after must be positive, got %s", d)
		}
		w.stuckAfter = d
		return nil
	}
}

// WithWorkerLogger sets a custom logger.
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// NewWorker creates a worker over the given engine.
func NewWorker(engine *Engine, opts ...WorkerOption) (*Worker, error) {
	if engine == nil {
		return nil, ErrRepositoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	w := &Worker{
		engine:        engine,
		pool:          pool,
		pollInterval:  DefaultPollInterval,
		sweepInterval: DefaultSweepInterval,
		stuckAfter:    DefaultStuckAfter,
		logger:        slog.Default().With("component", "check-worker"),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			w.pool.Release()
			return nil, err
		}
	}
	return w, nil
}

// Run claims and processes checks until ctx is cancelled. It blocks; callers
// run it on its own goroutine. In-flight checks are finished before Run
// returns.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started",
		"concurrency", w.pool.Cap(),
		"poll_interval", w.pollInterval)

	sweep := time.NewTicker(w.sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.logger.Info("worker stopped")
			return ctx.Err()
		case <-sweep.C:
			if _, err := w.engine.Sweep(ctx, w.stuckAfter); err != nil {
				w.logger.Error("sweep failed", "error", err)
			}
		default:
		}

		if err := w.dispatchOne(ctx); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				select {
				case <-ctx.Done():
					continue
				case <-time.After(w.pollInterval):
				}
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			w.logger.Error("claim failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(w.pollInterval):
			}
		}
	}
}

// dispatchOne claims the next pending check and hands it to the pool.
func (w *Worker) dispatchOne(ctx context.Context) error {
	claimed, err := w.engine.repo.ClaimNextPending(ctx, w.engine.clock.Now())
	if err != nil {
		return err
	}

	w.wg.Add(1)
	err = w.pool.Submit(func() {
		defer w.wg.Done()
		// The claim outlives the polling context; an abandoned run would
		// otherwise strand the check until the sweeper reclaims it.
		if err := w.engine.process(context.Background(), claimed); err != nil {
			w.logger.Error("processing error", "check_id", claimed.Id, "error", err)
		}
	})
	if err != nil {
		w.wg.Done()
		return err
	}
	return nil
}

// Release frees the worker pool. The worker must not be used afterwards.
func (w *Worker) Release() {
	w.wg.Wait()
	w.pool.Release()
}
