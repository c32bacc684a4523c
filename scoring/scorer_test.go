package scoring

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/simcheck/core"
)

func match(sourceID core.ID, chunkIndex int, score float32) core.Match {
	return core.Match{
		Chunk: core.Chunk{Index: chunkIndex, Text: "submission chunk"},
		SourceChunk: core.SourceChunk{
			Id:          core.ID(uint64(sourceID)*1000 + uint64(chunkIndex)),
			SourceId:    sourceID,
			SourceType:  core.SourceTypeArticle,
			Index:       chunkIndex,
			Text:        "source chunk",
			Title:       "Some Source",
			Identifier:  "https://example.com/s",
			TotalChunks: 25,
		},
		Score: score,
	}
}

func TestThresholdsFor(t *testing.T) {
	th := DefaultThresholds()

	// Low sensitivity demands high confidence.
	assert.Equal(t, float32(0.85), th.For(core.SensitivityLow))
	assert.Equal(t, float32(0.75), th.For(core.SensitivityMedium))
	assert.Equal(t, float32(0.65), th.For(core.SensitivityHigh))

	t.Run("unset sensitivity uses medium", func(t *testing.T) {
		assert.Equal(t, float32(0.75), th.For(core.Sensitivity(0)))
	})

	t.Run("validate rejects misordered bands", func(t *testing.T) {
		bad := Thresholds{Low: 0.9, Medium: 0.75, High: 0.85}
		assert.ErrorIs(t, bad.Validate(), ErrInvalidThresholds)
		assert.ErrorIs(t, Thresholds{}.Validate(), ErrInvalidThresholds)
		assert.NoError(t, DefaultThresholds().Validate())
	})
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.ErrorIs(t, Weights{MaxScore: 0.9}.Validate(), ErrInvalidWeights)
	assert.ErrorIs(t, Weights{MaxScore: 1.5, AvgScore: -0.5}.Validate(), ErrInvalidWeights)
}

func TestFilter(t *testing.T) {
	scorer, err := NewScorer()
	require.NoError(t, err)

	matches := []core.Match{
		match(1, 0, 0.90),
		match(1, 1, 0.70),
		match(1, 2, 0.60),
	}

	t.Run("high sensitivity keeps low-confidence matches", func(t *testing.T) {
		kept := scorer.Filter(matches, core.SensitivityHigh)
		assert.Len(t, kept, 2)
	})

	t.Run("low sensitivity keeps only high-confidence matches", func(t *testing.T) {
		kept := scorer.Filter(matches, core.SensitivityLow)
		require.Len(t, kept, 1)
		assert.Equal(t, float32(0.90), kept[0].Score)
	})
}

func TestWeightedScore(t *testing.T) {
	scorer, err := NewScorer()
	require.NoError(t, err)

	// max 0.9, avg 0.7, coverage 5/25 = 0.2, count 5 of cap 10:
	// (0.4*0.9 + 0.3*0.7 + 0.2*0.2 + 0.1*0.5) * 100 = 66
	matches := []core.Match{
		match(1, 0, 0.90),
		match(1, 1, 0.75),
		match(1, 2, 0.70),
		match(1, 3, 0.65),
		match(1, 4, 0.50),
	}

	aggregated := scorer.Aggregate(matches)
	require.Len(t, aggregated, 1)
	agg := aggregated[0]

	assert.Equal(t, float32(0.90), agg.MaxScore)
	assert.InDelta(t, 0.70, agg.AvgScore, 1e-6)
	assert.InDelta(t, 0.20, agg.Coverage, 1e-6)
	assert.Equal(t, 5, agg.MatchCount)
	assert.InDelta(t, 66.0, agg.WeightedScore, 1e-3)
	assert.Equal(t, core.RiskMedium, agg.RiskLevel)
}

func TestRiskFor(t *testing.T) {
	assert.Equal(t, core.RiskLow, RiskFor(0))
	assert.Equal(t, core.RiskLow, RiskFor(64.99))
	assert.Equal(t, core.RiskMedium, RiskFor(65))
	assert.Equal(t, core.RiskMedium, RiskFor(74.99))
	assert.Equal(t, core.RiskHigh, RiskFor(75))
	assert.Equal(t, core.RiskHigh, RiskFor(100))
}

func TestAggregate(t *testing.T) {
	scorer, err := NewScorer()
	require.NoError(t, err)

	t.Run("groups by source and orders strongest first", func(t *testing.T) {
		matches := []core.Match{
			match(2, 0, 0.70),
			match(1, 0, 0.95),
			match(2, 1, 0.72),
			match(1, 1, 0.80),
		}
		aggregated := scorer.Aggregate(matches)
		require.Len(t, aggregated, 2)
		assert.Equal(t, core.ID(1), aggregated[0].SourceId)
		assert.Equal(t, core.ID(2), aggregated[1].SourceId)
	})

	t.Run("score ties break by match count then id", func(t *testing.T) {
		matches := []core.Match{
			match(5, 0, 0.80),
			match(3, 0, 0.80),
			match(3, 1, 0.70),
		}
		aggregated := scorer.Aggregate(matches)
		require.Len(t, aggregated, 2)
		assert.Equal(t, core.ID(3), aggregated[0].SourceId)
		assert.Equal(t, core.ID(5), aggregated[1].SourceId)
	})

	t.Run("truncates to max sources", func(t *testing.T) {
		scorer, err := NewScorer(WithMaxSources(2))
		require.NoError(t, err)
		matches := []core.Match{
			match(1, 0, 0.9),
			match(2, 0, 0.8),
			match(3, 0, 0.7),
		}
		assert.Len(t, scorer.Aggregate(matches), 2)
	})

	t.Run("retains top pairs only", func(t *testing.T) {
		var matches []core.Match
		for i := 0; i < 8; i++ {
			matches = append(matches, match(1, i, 0.9-float32(i)*0.01))
		}
		aggregated := scorer.Aggregate(matches)
		require.Len(t, aggregated, 1)
		assert.Len(t, aggregated[0].Matches, DefaultPairsPerSource)
		assert.Equal(t, float32(0.9), aggregated[0].Matches[0].Score)
	})

	t.Run("snippet is capped", func(t *testing.T) {
		m := match(1, 0, 0.9)
		m.SourceChunk.Text = strings.Repeat("x", 500)
		aggregated := scorer.Aggregate([]core.Match{m})
		require.Len(t, aggregated, 1)
		assert.Len(t, []rune(aggregated[0].Snippet), DefaultSnippetLimit)
	})

	t.Run("video explanation carries timestamp range", func(t *testing.T) {
		a := match(1, 0, 0.9)
		a.SourceChunk.SourceType = core.SourceTypeYouTube
		a.SourceChunk.Timestamp = "01:10"
		b := match(1, 1, 0.8)
		b.SourceChunk.SourceType = core.SourceTypeYouTube
		b.SourceChunk.Timestamp = "03:45"

		aggregated := scorer.Aggregate([]core.Match{b, a})
		require.Len(t, aggregated, 1)
		assert.Contains(t, aggregated[0].Explanation, "between 01:10 and 03:45")
	})

	t.Run("article explanation has no timestamps", func(t *testing.T) {
		aggregated := scorer.Aggregate([]core.Match{match(1, 0, 0.9)})
		require.Len(t, aggregated, 1)
		assert.Contains(t, aggregated[0].Explanation, "1 segment matched")
		assert.NotContains(t, aggregated[0].Explanation, "between")
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, scorer.Aggregate(nil))
	})
}

func TestScore(t *testing.T) {
	scorer, err := NewScorer()
	require.NoError(t, err)

	t.Run("no matches is low risk", func(t *testing.T) {
		aggregated, overall, risk := scorer.Score(nil, core.SensitivityMedium)
		assert.Empty(t, aggregated)
		assert.Zero(t, overall)
		assert.Equal(t, core.RiskLow, risk)
	})

	t.Run("overall verdict comes from the strongest source", func(t *testing.T) {
		matches := []core.Match{
			match(1, 0, 0.95),
			match(1, 1, 0.90),
			match(2, 0, 0.76),
		}
		aggregated, overall, risk := scorer.Score(matches, core.SensitivityMedium)
		require.Len(t, aggregated, 2)
		assert.Equal(t, aggregated[0].WeightedScore, overall)
		assert.Equal(t, RiskFor(overall), risk)
	})

	t.Run("input order does not change the outcome", func(t *testing.T) {
		matches := []core.Match{
			match(1, 0, 0.95),
			match(1, 1, 0.80),
			match(2, 0, 0.88),
			match(2, 1, 0.76),
			match(3, 0, 0.79),
		}
		wantAgg, wantOverall, wantRisk := scorer.Score(matches, core.SensitivityMedium)

		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 10; i++ {
			shuffled := make([]core.Match, len(matches))
			copy(shuffled, matches)
			rng.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})

			gotAgg, gotOverall, gotRisk := scorer.Score(shuffled, core.SensitivityMedium)
			assert.Equal(t, wantAgg, gotAgg)
			assert.Equal(t, wantOverall, gotOverall)
			assert.Equal(t, wantRisk, gotRisk)
		}
	})
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "no likely sources identified", Summarize(nil, core.RiskLow))
	assert.Equal(t, "1 likely source identified, overall risk high",
		Summarize([]core.AggregatedMatch{{}}, core.RiskHigh))
	assert.Equal(t, "2 likely sources identified, overall risk medium",
		Summarize([]core.AggregatedMatch{{}, {}}, core.RiskMedium))
}
