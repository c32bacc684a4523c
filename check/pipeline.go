package check

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/provider"
	"github.com/poiesic/simcheck/scoring"
)

const (
	reportSaveAttempts = 3
	reportSaveBackoff  = 100 * time.Millisecond
)

// ProcessNext claims the oldest pending check and runs it through the
// pipeline synchronously. Returns storage.ErrNotFound when the queue is
// empty.
func (e *Engine) ProcessNext(ctx context.Context) error {
	check, err := e.repo.ClaimNextPending(ctx, e.clock.Now())
	if err != nil {
		return err
	}
	return e.process(ctx, check)
}

// process runs the pipeline on a claimed check: segment, embed, search,
// score, report. Cancellation is polled at stage boundaries. A transient
// failure returns the check to the queue until its attempt budget runs out;
// the error return covers infrastructure problems only, never a failed
// check.
func (e *Engine) process(ctx context.Context, check *core.Check) error {
	logger := e.logger.With("check_id", check.Id, "attempt", check.Attempts)
	logger.Info("processing check", "words", check.Submission.WordCount)

	if done, err := e.cancelIfRequested(ctx, check, logger); done || err != nil {
		return err
	}

	chunks, err := e.segmenter.Segment(check.Submission.Text)
	if err != nil {
		// Validation bounds the submission at submit time, so this is a
		// configuration problem, not a transient one.
		return e.fail(ctx, check, fmt.Sprintf("segmentation failed: %v", err), logger)
	}
	check.ChunkCount = len(chunks)

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := e.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return e.retryOrFail(ctx, check, fmt.Sprintf("embedding failed: %v", err), logger)
	}
	if len(vectors) != len(chunks) {
		return e.retryOrFail(ctx, check,
			fmt.Sprintf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks)), logger)
	}

	if done, err := e.cancelIfRequested(ctx, check, logger); done || err != nil {
		return err
	}

	query := &provider.Query{
		Chunks:        chunks,
		Embeddings:    vectors,
		MaxCandidates: e.maxCandidates,
	}
	outcome, err := e.dispatcher.SearchAll(ctx, check.Submission.Options.Sources, query)
	if err != nil {
		return e.fail(ctx, check, fmt.Sprintf("search failed: %v", err), logger)
	}
	if outcome.SourcesChecked == 0 {
		return e.retryOrFail(ctx, check, "every selected source category failed", logger)
	}
	check.SourcesChecked = outcome.SourcesChecked
	check.SourcesSkipped = outcome.SourcesSkipped

	if done, err := e.cancelIfRequested(ctx, check, logger); done || err != nil {
		return err
	}

	aggregated, overall, risk := e.scorer.Score(outcome.Matches, check.Submission.Sensitivity)

	report := &core.Report{
		CheckId:        check.Id,
		OverallScore:   overall,
		RiskLevel:      risk,
		Matches:        aggregated,
		Summary:        scoring.Summarize(aggregated, risk),
		SourcesChecked: outcome.SourcesChecked,
		SourcesSkipped: outcome.SourcesSkipped,
		ChunkCount:     check.ChunkCount,
		GeneratedAt:    e.clock.Now(),
	}
	if err := e.saveReportWithRetry(ctx, report, logger); err != nil {
		return e.fail(ctx, check, fmt.Sprintf("report could not be stored: %v", err), logger)
	}

	check.Status = core.StatusCompleted
	check.CompletedAt = e.clock.Now()
	check.ErrorMessage = ""
	if err := e.repo.UpdateCheck(ctx, check); err != nil {
		return err
	}

	logger.Info("check completed",
		"overall", overall,
		"risk", risk.String(),
		"matches", len(aggregated),
		"sources_checked", outcome.SourcesChecked,
		"sources_skipped", outcome.SourcesSkipped)
	return nil
}

// cancelIfRequested finalizes the check as cancelled if a cancellation
// request arrived since the last poll. Returns done=true when processing
// should stop.
func (e *Engine) cancelIfRequested(ctx context.Context, check *core.Check, logger *slog.Logger) (bool, error) {
	stored, err := e.repo.GetCheck(ctx, check.Id)
	if err != nil {
		return false, err
	}
	if !stored.CancelRequested {
		return false, nil
	}

	check.CancelRequested = true
	check.Status = core.StatusCancelled
	check.CompletedAt = e.clock.Now()
	if err := e.repo.UpdateCheck(ctx, check); err != nil {
		return true, err
	}
	logger.Info("check cancelled mid-flight")
	return true, nil
}

// retryOrFail records a transient failure: the check goes back to the queue
// unless its attempt budget is spent. A cancellation requested during the
// failed stage wins over the retry.
func (e *Engine) retryOrFail(ctx context.Context, check *core.Check, cause string, logger *slog.Logger) error {
	if done, err := e.cancelIfRequested(ctx, check, logger); done || err != nil {
		return err
	}

	if check.Attempts >= e.maxAttempts {
		return e.fail(ctx, check, fmt.Sprintf("%s (after %d attempts)", cause, check.Attempts), logger)
	}

	check.Status = core.StatusPending
	check.StartedAt = time.Time{}
	check.ErrorMessage = cause
	if err := e.repo.UpdateCheck(ctx, check); err != nil {
		return err
	}
	logger.Warn("check requeued", "cause", cause)
	return nil
}

// fail finalizes the check as failed with a diagnostic message. The stored
// cancellation flag is carried over so the worker's copy cannot erase it.
func (e *Engine) fail(ctx context.Context, check *core.Check, cause string, logger *slog.Logger) error {
	if stored, err := e.repo.GetCheck(ctx, check.Id); err == nil && stored.CancelRequested {
		check.CancelRequested = true
	}

	check.Status = core.StatusFailed
	check.ErrorMessage = cause
	check.CompletedAt = e.clock.Now()
	if err := e.repo.UpdateCheck(ctx, check); err != nil {
		return err
	}
	logger.Error("check failed", "cause", cause)
	return nil
}

// saveReportWithRetry writes the report, retrying short storage hiccups with
// exponential backoff.
func (e *Engine) saveReportWithRetry(ctx context.Context, report *core.Report, logger *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < reportSaveAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoffDelay(attempt, reportSaveBackoff)):
			}
		}

		lastErr = e.repo.SaveReport(ctx, report)
		if lastErr == nil {
			return nil
		}
		logger.Warn("report save failed", "attempt", attempt+1, "error", lastErr)
	}
	return lastErr
}
