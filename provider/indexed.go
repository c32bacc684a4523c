package provider

import (
	"context"
	"sort"

	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/index"
)

// IndexedProvider serves one source category from an in-memory vector index.
type IndexedProvider struct {
	ix            *index.Index
	perChunkLimit int
}

var _ Provider = (*IndexedProvider)(nil)

// NewIndexedProvider creates a provider over the given index.
func NewIndexedProvider(ix *index.Index) *IndexedProvider {
	return &IndexedProvider{
		ix:            ix,
		perChunkLimit: DefaultPerChunkLimit,
	}
}

// Kind returns the source category of the backing index.
func (p *IndexedProvider) Kind() core.SourceType {
	return p.ix.Kind()
}

// Search pulls the nearest source chunks for every submission chunk and
// merges them into one candidate list, strongest first. Duplicate pairings
// cannot occur within one query, but the global cap applies across chunks.
func (p *IndexedProvider) Search(ctx context.Context, query *Query) ([]core.Match, error) {
	if len(query.Chunks) != len(query.Embeddings) {
		return nil, ErrQueryMismatch
	}

	limit := query.MaxCandidates
	if limit <= 0 {
		limit = DefaultMaxCandidates
	}

	var matches []core.Match
	for i, chunk := range query.Chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, hit := range p.ix.Search(query.Embeddings[i], p.perChunkLimit) {
			matches = append(matches, core.Match{
				Chunk:       chunk,
				SourceChunk: hit.Chunk,
				Score:       hit.Score,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
