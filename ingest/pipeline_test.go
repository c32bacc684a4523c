package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/simcheck/ai/mock"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/index"
	"github.com/poiesic/simcheck/storage"
	badgerstore "github.com/poiesic/simcheck/storage/badger"
)

func setupPipeline(t *testing.T) (*Pipeline, storage.SourceRepository, *index.Set) {
	t.Helper()

	checkRepo, sourceRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		checkRepo.Close()
		sourceRepo.Close()
		backend.Close()
	})

	indexes := index.NewSet(core.SourceTypes...)
	pipeline, err := NewPipeline(sourceRepo, indexes, mock.NewMockEmbedder())
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, sourceRepo, indexes
}

func makeWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestIngestArticle(t *testing.T) {
	pipeline, sources, indexes := setupPipeline(t)
	ctx := context.Background()

	doc := &Document{
		Type:       core.SourceTypeArticle,
		Title:      "An Article",
		Identifier: "https://example.com/a",
		Text:       makeWords(150),
	}

	record, err := pipeline.Ingest(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 150, record.WordCount)
	assert.Equal(t, 3, record.ChunkCount)

	got, err := sources.GetSource(ctx, record.Id)
	require.NoError(t, err)
	assert.Equal(t, "An Article", got.Title)

	ix, err := indexes.Get(core.SourceTypeArticle)
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Count())

	t.Run("chunks carry vectors and context", func(t *testing.T) {
		hits := ix.Search(mock.DeterministicVector("w0"), 3)
		require.NotEmpty(t, hits)
		chunk := hits[0].Chunk
		assert.Equal(t, record.Id, chunk.SourceId)
		assert.Equal(t, 3, chunk.TotalChunks)
		assert.Empty(t, chunk.Timestamp)
	})

	t.Run("re-ingest is idempotent", func(t *testing.T) {
		again, err := pipeline.Ingest(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, record.Id, again.Id)
		assert.Equal(t, 3, ix.Count())

		count, err := sources.CountSources(ctx, core.SourceTypeArticle)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("too short rejected", func(t *testing.T) {
		short := &Document{
			Type:       core.SourceTypeArticle,
			Identifier: "https://example.com/short",
			Text:       "too short",
		}
		_, err := pipeline.Ingest(ctx, short)
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})
}

func TestIngestTranscript(t *testing.T) {
	pipeline, _, indexes := setupPipeline(t)
	ctx := context.Background()

	// Three cues of 30 words each starting at 0s, 95s, and 200s.
	doc := &Document{
		Type:            core.SourceTypeYouTube,
		Title:           "A Talk",
		Identifier:      "dQw4w9WgXcQ",
		DurationSeconds: 260,
		Cues: []Cue{
			{StartSeconds: 0, Text: makeWords(30)},
			{StartSeconds: 95, Text: makeWords(30)},
			{StartSeconds: 200, Text: makeWords(30)},
		},
	}

	record, err := pipeline.Ingest(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 90, record.WordCount)
	assert.Equal(t, 260, record.DurationSeconds)
	assert.Equal(t, 2, record.ChunkCount)

	ix, err := indexes.Get(core.SourceTypeYouTube)
	require.NoError(t, err)
	require.Equal(t, 2, ix.Count())

	t.Run("chunks carry cue timestamps", func(t *testing.T) {
		// First chunk starts at word 0 (cue at 0s), second at word 50
		// (inside the second cue, 95s).
		hits := ix.Search(mock.DeterministicVector("anything"), 2)
		require.Len(t, hits, 2)
		timestamps := []string{hits[0].Chunk.Timestamp, hits[1].Chunk.Timestamp}
		assert.ElementsMatch(t, []string{"00:00", "01:35"}, timestamps)
	})

	t.Run("video without cues rejected", func(t *testing.T) {
		_, err := pipeline.Ingest(ctx, &Document{Type: core.SourceTypeYouTube, Identifier: "x"})
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})
}

func TestIngestAll(t *testing.T) {
	pipeline, sources, _ := setupPipeline(t)
	ctx := context.Background()

	docs := []*Document{
		{Type: core.SourceTypeArticle, Title: "One", Identifier: "https://example.com/1", Text: makeWords(100)},
		{Type: core.SourceTypeArticle, Title: "Two", Identifier: "https://example.com/2", Text: makeWords(100)},
		{Type: core.SourceTypeArticle, Title: "Broken", Identifier: "https://example.com/3", Text: "too short"},
	}

	ingested, err := pipeline.IngestAll(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 2, ingested)

	count, err := sources.CountSources(ctx, core.SourceTypeArticle)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00", formatTimestamp(0))
	assert.Equal(t, "01:35", formatTimestamp(95))
	assert.Equal(t, "10:00", formatTimestamp(600))
	assert.Equal(t, "00:00", formatTimestamp(-5))
}
