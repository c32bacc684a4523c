package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/simcheck/core"
)

func chunk(id core.ID, vector []float32) core.SourceChunk {
	return core.SourceChunk{
		Id:         id,
		SourceId:   100,
		SourceType: core.SourceTypeArticle,
		Text:       "some chunk text",
		Vector:     vector,
	}
}

func TestIndexSearch(t *testing.T) {
	ix := New(core.SourceTypeArticle)
	ix.Add(
		chunk(1, []float32{1, 0, 0}),
		chunk(2, []float32{0, 1, 0}),
		chunk(3, []float32{0.6, 0.8, 0}),
	)

	hits := ix.Search([]float32{1, 0, 0}, 10)
	require.Len(t, hits, 3)
	assert.Equal(t, core.ID(1), hits[0].Chunk.Id)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, core.ID(3), hits[1].Chunk.Id)
	assert.InDelta(t, 0.6, hits[1].Score, 1e-6)
	assert.Equal(t, core.ID(2), hits[2].Chunk.Id)

	t.Run("k caps results", func(t *testing.T) {
		hits := ix.Search([]float32{1, 0, 0}, 2)
		assert.Len(t, hits, 2)
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		ix := New(core.SourceTypeArticle)
		ix.Add(
			chunk(7, []float32{0, 1, 0}),
			chunk(8, []float32{0, 1, 0}),
		)
		hits := ix.Search([]float32{0, 1, 0}, 10)
		require.Len(t, hits, 2)
		assert.Equal(t, core.ID(7), hits[0].Chunk.Id)
		assert.Equal(t, core.ID(8), hits[1].Chunk.Id)
	})

	t.Run("empty index yields no hits", func(t *testing.T) {
		ix := New(core.SourceTypeArticle)
		assert.Empty(t, ix.Search([]float32{1, 0, 0}, 10))
	})

	t.Run("empty query yields no hits", func(t *testing.T) {
		assert.Empty(t, ix.Search(nil, 10))
	})

	t.Run("vectorless chunks are skipped", func(t *testing.T) {
		ix := New(core.SourceTypeArticle)
		ix.Add(chunk(9, nil), chunk(10, []float32{1, 0, 0}))
		hits := ix.Search([]float32{1, 0, 0}, 10)
		require.Len(t, hits, 1)
		assert.Equal(t, core.ID(10), hits[0].Chunk.Id)
	})
}

func TestIndexAddIdempotent(t *testing.T) {
	ix := New(core.SourceTypeArticle)

	added := ix.Add(chunk(1, []float32{1, 0, 0}))
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, ix.Count())

	// Same ID replaces in place.
	replacement := chunk(1, []float32{0, 1, 0})
	added = ix.Add(replacement)
	assert.Zero(t, added)
	assert.Equal(t, 1, ix.Count())

	hits := ix.Search([]float32{0, 1, 0}, 1)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestIndexSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "articles.idx")

	ix := New(core.SourceTypeArticle)
	ix.Add(
		chunk(1, []float32{1, 0, 0}),
		chunk(2, []float32{0, 1, 0}),
	)
	require.NoError(t, ix.Persist(path))

	restored := New(core.SourceTypeArticle)
	require.NoError(t, restored.Load(path))
	assert.Equal(t, 2, restored.Count())

	hits := restored.Search([]float32{1, 0, 0}, 1)
	require.Len(t, hits, 1)
	assert.Equal(t, core.ID(1), hits[0].Chunk.Id)

	t.Run("missing snapshot leaves index empty", func(t *testing.T) {
		ix := New(core.SourceTypeArticle)
		require.NoError(t, ix.Load(filepath.Join(dir, "none.idx")))
		assert.Zero(t, ix.Count())
	})

	t.Run("corrupt snapshot is rejected", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.idx")
		require.NoError(t, os.WriteFile(bad, []byte{0xff, 0xff, 0xff}, 0644))
		ix := New(core.SourceTypeArticle)
		assert.ErrorIs(t, ix.Load(bad), ErrSnapshotCorrupt)
	})
}

func TestSet(t *testing.T) {
	set := NewSet(core.SourceTypeArticle, core.SourceTypeYouTube)

	articles, err := set.Get(core.SourceTypeArticle)
	require.NoError(t, err)
	articles.Add(chunk(1, []float32{1, 0}))

	t.Run("unknown kind rejected", func(t *testing.T) {
		_, err := set.Get(core.SourceType(99))
		assert.ErrorIs(t, err, ErrUnknownKind)
	})

	t.Run("snapshot round trip", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, set.PersistAll(dir))

		restored := NewSet(core.SourceTypeArticle, core.SourceTypeYouTube)
		require.NoError(t, restored.LoadAll(dir))
		ix, err := restored.Get(core.SourceTypeArticle)
		require.NoError(t, err)
		assert.Equal(t, 1, ix.Count())
	})
}
