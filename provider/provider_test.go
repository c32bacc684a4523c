package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/index"
)

func buildIndex(t *testing.T, kind core.SourceType, vectors map[core.ID][]float32) *index.Index {
	t.Helper()
	ix := index.New(kind)
	for id, vec := range vectors {
		ix.Add(core.SourceChunk{
			Id:          id,
			SourceId:    id / 10,
			SourceType:  kind,
			Text:        "source text",
			TotalChunks: 4,
			Vector:      vec,
		})
	}
	return ix
}

func TestIndexedProviderSearch(t *testing.T) {
	ix := buildIndex(t, core.SourceTypeArticle, map[core.ID][]float32{
		10: {1, 0, 0},
		11: {0.8, 0.6, 0},
		20: {0, 1, 0},
	})
	p := NewIndexedProvider(ix)
	assert.Equal(t, core.SourceTypeArticle, p.Kind())

	query := &Query{
		Chunks:     []core.Chunk{{Index: 0, Text: "chunk"}},
		Embeddings: [][]float32{{1, 0, 0}},
	}

	matches, err := p.Search(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, core.ID(10), matches[0].SourceChunk.Id)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	assert.Equal(t, core.ID(11), matches[1].SourceChunk.Id)

	t.Run("mismatched query rejected", func(t *testing.T) {
		bad := &Query{Chunks: []core.Chunk{{}, {}}, Embeddings: [][]float32{{1}}}
		_, err := p.Search(context.Background(), bad)
		assert.ErrorIs(t, err, ErrQueryMismatch)
	})

	t.Run("candidate cap applies across chunks", func(t *testing.T) {
		query := &Query{
			Chunks:        []core.Chunk{{Index: 0}, {Index: 1}},
			Embeddings:    [][]float32{{1, 0, 0}, {0, 1, 0}},
			MaxCandidates: 2,
		}
		matches, err := p.Search(context.Background(), query)
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("cancelled context stops the search", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Search(ctx, query)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type failingProvider struct {
	kind core.SourceType
}

func (p *failingProvider) Kind() core.SourceType { return p.kind }

func (p *failingProvider) Search(ctx context.Context, query *Query) ([]core.Match, error) {
	return nil, errors.New("backend unavailable")
}

type fixedProvider struct {
	kind    core.SourceType
	matches []core.Match
}

func (p *fixedProvider) Kind() core.SourceType { return p.kind }

func (p *fixedProvider) Search(ctx context.Context, query *Query) ([]core.Match, error) {
	return p.matches, nil
}

func TestDispatcherSearchAll(t *testing.T) {
	articles := NewIndexedProvider(buildIndex(t, core.SourceTypeArticle, map[core.ID][]float32{
		10: {1, 0, 0},
	}))
	videos := NewIndexedProvider(buildIndex(t, core.SourceTypeYouTube, map[core.ID][]float32{
		20: {0.9, 0.4359, 0},
	}))

	query := &Query{
		Chunks:     []core.Chunk{{Index: 0, Text: "chunk"}},
		Embeddings: [][]float32{{1, 0, 0}},
	}

	t.Run("merges all providers", func(t *testing.T) {
		dp, err := NewDispatcher([]Provider{articles, videos})
		require.NoError(t, err)

		outcome, err := dp.SearchAll(context.Background(), core.SourceTypes, query)
		require.NoError(t, err)
		assert.Equal(t, 2, outcome.SourcesChecked)
		assert.Zero(t, outcome.SourcesSkipped)
		assert.Len(t, outcome.Matches, 2)
	})

	t.Run("selection narrows providers", func(t *testing.T) {
		dp, err := NewDispatcher([]Provider{articles, videos})
		require.NoError(t, err)

		outcome, err := dp.SearchAll(context.Background(), []core.SourceType{core.SourceTypeArticle}, query)
		require.NoError(t, err)
		assert.Equal(t, 1, outcome.SourcesChecked)
		require.Len(t, outcome.Matches, 1)
		assert.Equal(t, core.SourceTypeArticle, outcome.Matches[0].SourceChunk.SourceType)
	})

	t.Run("failing provider is skipped", func(t *testing.T) {
		dp, err := NewDispatcher([]Provider{articles, &failingProvider{kind: core.SourceTypeYouTube}})
		require.NoError(t, err)

		outcome, err := dp.SearchAll(context.Background(), core.SourceTypes, query)
		require.NoError(t, err)
		assert.Equal(t, 1, outcome.SourcesChecked)
		assert.Equal(t, 1, outcome.SourcesSkipped)
		assert.Len(t, outcome.Matches, 1)
	})

	t.Run("unknown kind counts as skipped", func(t *testing.T) {
		dp, err := NewDispatcher([]Provider{articles})
		require.NoError(t, err)

		outcome, err := dp.SearchAll(context.Background(), core.SourceTypes, query)
		require.NoError(t, err)
		assert.Equal(t, 1, outcome.SourcesChecked)
		assert.Equal(t, 1, outcome.SourcesSkipped)
	})

	t.Run("duplicate pairings across providers collapse", func(t *testing.T) {
		shared := core.Match{
			Chunk:       core.Chunk{Index: 0},
			SourceChunk: core.SourceChunk{Id: 10, SourceId: 1},
			Score:       0.9,
		}
		dp, err := NewDispatcher([]Provider{
			&fixedProvider{kind: core.SourceTypeArticle, matches: []core.Match{shared}},
			&fixedProvider{kind: core.SourceTypeYouTube, matches: []core.Match{
				shared,
				{Chunk: core.Chunk{Index: 1}, SourceChunk: core.SourceChunk{Id: 10, SourceId: 1}, Score: 0.8},
			}},
		})
		require.NoError(t, err)

		outcome, err := dp.SearchAll(context.Background(), core.SourceTypes, query)
		require.NoError(t, err)
		assert.Equal(t, 2, outcome.SourcesChecked)
		assert.Len(t, outcome.Matches, 2)
	})

	t.Run("no providers at all", func(t *testing.T) {
		dp, err := NewDispatcher(nil)
		require.NoError(t, err)

		_, err = dp.SearchAll(context.Background(), core.SourceTypes, query)
		assert.ErrorIs(t, err, ErrNoProviders)
	})
}
