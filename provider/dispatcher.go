package provider

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/simcheck/core"
)

// DefaultSearchTimeout bounds each provider's search.
const DefaultSearchTimeout = 30 * time.Second

// SearchOutcome reports a fan-out run: the merged candidate matches and how
// many providers answered or were skipped.
type SearchOutcome struct {
	Matches        []core.Match
	SourcesChecked int
	SourcesSkipped int
}

// Dispatcher fans a query out to the providers selected by a submission and
// merges the results. A failing provider is skipped, not fatal; the outcome
// records the split so reports can disclose partial coverage.
type Dispatcher struct {
	providers map[core.SourceType]Provider
	timeout   time.Duration
	logger    *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher) error

// WithSearchTimeout overrides the per-provider search timeout.
func WithSearchTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) error {
		if d <= 0 {
			return ErrInvalidTimeout
		}
		dp.timeout = d
		return nil
	}
}

// WithDispatcherLogger sets the logger.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(dp *Dispatcher) error {
		dp.logger = logger
		return nil
	}
}

// NewDispatcher creates a Dispatcher over the given providers.
func NewDispatcher(providers []Provider, opts ...DispatcherOption) (*Dispatcher, error) {
	dp := &Dispatcher{
		providers: make(map[core.SourceType]Provider, len(providers)),
		timeout:   DefaultSearchTimeout,
		logger:    slog.Default().With("component", "dispatcher"),
	}
	for _, p := range providers {
		dp.providers[p.Kind()] = p
	}
	for _, opt := range opts {
		if err := opt(dp); err != nil {
			return nil, err
		}
	}
	return dp, nil
}

// SearchAll queries each requested source type concurrently. Unknown source
// types and provider errors count as skipped. ErrNoProviders is returned
// only when no requested provider exists at all.
func (dp *Dispatcher) SearchAll(ctx context.Context, kinds []core.SourceType, query *Query) (*SearchOutcome, error) {
	selected := make([]Provider, 0, len(kinds))
	skipped := 0
	for _, kind := range kinds {
		p, ok := dp.providers[kind]
		if !ok {
			dp.logger.Warn("no provider for source type", "kind", kind.String())
			skipped++
			continue
		}
		selected = append(selected, p)
	}
	if len(selected) == 0 {
		return nil, ErrNoProviders
	}

	type result struct {
		kind    core.SourceType
		matches []core.Match
		err     error
	}

	results := make([]result, len(selected))
	var wg sync.WaitGroup
	for i, p := range selected {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			searchCtx, cancel := context.WithTimeout(ctx, dp.timeout)
			defer cancel()

			matches, err := p.Search(searchCtx, query)
			results[i] = result{kind: p.Kind(), matches: matches, err: err}
		}(i, p)
	}
	wg.Wait()

	outcome := &SearchOutcome{SourcesSkipped: skipped}
	type pairKey struct {
		sourceChunk core.ID
		chunkIndex  int
	}
	seen := make(map[pairKey]bool)
	for _, r := range results {
		if r.err != nil {
			dp.logger.Warn("provider search failed", "kind", r.kind.String(), "error", r.err)
			outcome.SourcesSkipped++
			continue
		}
		outcome.SourcesChecked++
		// Deduplicate across providers so a chunk pairing never scores twice.
		for _, m := range r.matches {
			key := pairKey{sourceChunk: m.SourceChunk.Id, chunkIndex: m.Chunk.Index}
			if seen[key] {
				continue
			}
			seen[key] = true
			outcome.Matches = append(outcome.Matches, m)
		}
	}
	return outcome, nil
}

// Kinds returns the source types with a registered provider.
func (dp *Dispatcher) Kinds() []core.SourceType {
	kinds := make([]core.SourceType, 0, len(dp.providers))
	for kind := range dp.providers {
		kinds = append(kinds, kind)
	}
	return kinds
}
