package scoring

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/poiesic/simcheck/core"
)

// Scorer turns raw chunk-level matches into per-source aggregates and an
// overall risk verdict.
type Scorer struct {
	thresholds     Thresholds
	weights        Weights
	countCap       int
	maxSources     int
	pairsPerSource int
	snippetLimit   int
	logger         *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer) error

// WithThresholds overrides the confidence bands.
func WithThresholds(t Thresholds) Option {
	return func(s *Scorer) error {
		if err := t.Validate(); err != nil {
			return err
		}
		s.thresholds = t
		return nil
	}
}

// WithWeights overrides the score weighting.
func WithWeights(w Weights) Option {
	return func(s *Scorer) error {
		if err := w.Validate(); err != nil {
			return err
		}
		s.weights = w
		return nil
	}
}

// WithCountCap overrides the match count saturation point.
func WithCountCap(cap int) Option {
	return func(s *Scorer) error {
		if cap < 1 {
			return fmt.Errorf("count cap must be positive, got %d", cap)
		}
		s.countCap = cap
		return nil
	}
}

// WithMaxSources overrides how many aggregated matches a report keeps.
func WithMaxSources(n int) Option {
	return func(s *Scorer) error {
		if n < 1 {
			return fmt.Errorf("max sources must be positive, got %d", n)
		}
		s.maxSources = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) error {
		s.logger = logger
		return nil
	}
}

// NewScorer creates a Scorer with the default configuration, then applies
// options.
func NewScorer(opts ...Option) (*Scorer, error) {
	s := &Scorer{
		thresholds:     DefaultThresholds(),
		weights:        DefaultWeights(),
		countCap:       DefaultCountCap,
		maxSources:     DefaultMaxSources,
		pairsPerSource: DefaultPairsPerSource,
		snippetLimit:   DefaultSnippetLimit,
		logger:         slog.Default().With("component", "scorer"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Filter drops matches below the cutoff selected by the sensitivity.
func (s *Scorer) Filter(matches []core.Match, sensitivity core.Sensitivity) []core.Match {
	cutoff := s.thresholds.For(sensitivity)
	kept := make([]core.Match, 0, len(matches))
	for _, m := range matches {
		if m.Score >= cutoff {
			kept = append(kept, m)
		}
	}
	return kept
}

// Aggregate groups matches by source and computes the per-source rollups.
// Results are ordered strongest first and truncated to the configured
// maximum; the ordering is deterministic regardless of input order.
func (s *Scorer) Aggregate(matches []core.Match) []core.AggregatedMatch {
	if len(matches) == 0 {
		return nil
	}

	groups := make(map[core.ID][]core.Match)
	for _, m := range matches {
		groups[m.SourceChunk.SourceId] = append(groups[m.SourceChunk.SourceId], m)
	}

	results := make([]core.AggregatedMatch, 0, len(groups))
	for sourceID, group := range groups {
		results = append(results, s.aggregateSource(sourceID, group))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].MaxScore != results[j].MaxScore {
			return results[i].MaxScore > results[j].MaxScore
		}
		if results[i].MatchCount != results[j].MatchCount {
			return results[i].MatchCount > results[j].MatchCount
		}
		return results[i].SourceId < results[j].SourceId
	})
	if len(results) > s.maxSources {
		results = results[:s.maxSources]
	}
	return results
}

func (s *Scorer) aggregateSource(sourceID core.ID, group []core.Match) core.AggregatedMatch {
	// Strongest pairing first; ties keep the earlier submission chunk.
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].Score > group[j].Score
	})
	best := group[0]

	var sum float32
	matched := make(map[int]bool)
	for _, m := range group {
		sum += m.Score
		matched[m.SourceChunk.Index] = true
	}

	agg := core.AggregatedMatch{
		SourceId:   sourceID,
		SourceType: best.SourceChunk.SourceType,
		Title:      best.SourceChunk.Title,
		Identifier: best.SourceChunk.Identifier,
		MaxScore:   best.Score,
		AvgScore:   sum / float32(len(group)),
		MatchCount: len(group),
		Snippet:    truncateRunes(best.SourceChunk.Text, s.snippetLimit),
	}
	if best.SourceChunk.TotalChunks > 0 {
		agg.Coverage = float32(len(matched)) / float32(best.SourceChunk.TotalChunks)
	}

	for i, m := range group {
		if i >= s.pairsPerSource {
			break
		}
		agg.Matches = append(agg.Matches, core.MatchedChunk{
			SubmissionText: m.Chunk.Text,
			SourceText:     m.SourceChunk.Text,
			Score:          m.Score,
			Timestamp:      m.SourceChunk.Timestamp,
		})
	}

	agg.WeightedScore = s.WeightedScore(&agg)
	agg.RiskLevel = RiskFor(agg.WeightedScore)
	agg.Explanation = explain(&agg, group)
	return agg
}

// WeightedScore computes the 0-100 composite score for an aggregated match.
func (s *Scorer) WeightedScore(agg *core.AggregatedMatch) float64 {
	countTerm := float64(agg.MatchCount) / float64(s.countCap)
	if countTerm > 1 {
		countTerm = 1
	}
	score := (s.weights.MaxScore*float64(agg.MaxScore) +
		s.weights.AvgScore*float64(agg.AvgScore) +
		s.weights.Coverage*float64(agg.Coverage) +
		s.weights.MatchCount*countTerm) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Score runs the full pipeline: filter by sensitivity, aggregate per source,
// and derive the overall verdict from the strongest source.
func (s *Scorer) Score(matches []core.Match, sensitivity core.Sensitivity) ([]core.AggregatedMatch, float64, core.RiskLevel) {
	kept := s.Filter(matches, sensitivity)
	aggregated := s.Aggregate(kept)
	if len(aggregated) == 0 {
		return nil, 0, core.RiskLow
	}

	overall := aggregated[0].WeightedScore
	s.logger.Debug("scored matches",
		"raw", len(matches), "kept", len(kept),
		"sources", len(aggregated), "overall", overall)
	return aggregated, overall, RiskFor(overall)
}

// Summarize produces the one-line report summary.
func Summarize(matches []core.AggregatedMatch, risk core.RiskLevel) string {
	if len(matches) == 0 {
		return "no likely sources identified"
	}
	noun := "sources"
	if len(matches) == 1 {
		noun = "source"
	}
	return fmt.Sprintf("%d likely %s identified, overall risk %s", len(matches), noun, risk)
}

// explain renders a human-readable explanation for an aggregated match.
func explain(agg *core.AggregatedMatch, group []core.Match) string {
	noun := "segments"
	if agg.MatchCount == 1 {
		noun = "segment"
	}
	base := fmt.Sprintf("%d %s matched with up to %.0f%% similarity", agg.MatchCount, noun, float64(agg.MaxScore)*100)

	if agg.SourceType != core.SourceTypeYouTube {
		return base
	}
	first, last := timestampRange(group)
	if first == "" {
		return base
	}
	if first == last {
		return fmt.Sprintf("%s at %s", base, first)
	}
	return fmt.Sprintf("%s between %s and %s", base, first, last)
}

// timestampRange returns the earliest and latest MM:SS offsets in the group.
// Zero-padded offsets sort lexicographically.
func timestampRange(group []core.Match) (string, string) {
	var first, last string
	for _, m := range group {
		ts := m.SourceChunk.Timestamp
		if ts == "" {
			continue
		}
		if first == "" || len(ts) < len(first) || (len(ts) == len(first) && ts < first) {
			first = ts
		}
		if last == "" || len(ts) > len(last) || (len(ts) == len(last) && ts > last) {
			last = ts
		}
	}
	return first, last
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
