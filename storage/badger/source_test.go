package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/storage"
)

func setupSourceRepo(t *testing.T) storage.SourceRepository {
	t.Helper()
	checkRepo, sourceRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		checkRepo.Close()
		sourceRepo.Close()
		backend.Close()
	})
	return sourceRepo
}

func TestSourceAddAndGet(t *testing.T) {
	repo := setupSourceRepo(t)
	ctx := context.Background()

	article := &core.SourceRecord{
		Id:         core.IDFromContent("https://example.com/a"),
		Type:       core.SourceTypeArticle,
		Title:      "An Article",
		Identifier: "https://example.com/a",
		WordCount:  500,
		ChunkCount: 10,
	}
	video := &core.SourceRecord{
		Id:              core.IDFromContent("dQw4w9WgXcQ"),
		Type:            core.SourceTypeYouTube,
		Title:           "A Talk",
		Identifier:      "dQw4w9WgXcQ",
		DurationSeconds: 212,
		ChunkCount:      4,
	}

	_, err := repo.AddSources(ctx, article, video)
	require.NoError(t, err)
	assert.False(t, article.InsertedAt.IsZero())

	got, err := repo.GetSource(ctx, article.Id)
	require.NoError(t, err)
	assert.Equal(t, article.Title, got.Title)

	t.Run("unknown id not found", func(t *testing.T) {
		_, err := repo.GetSource(ctx, core.IDFromContent("nope"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("list filters by type", func(t *testing.T) {
		articles, err := repo.ListSources(ctx, core.SourceTypeArticle)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, article.Id, articles[0].Id)

		videos, err := repo.ListSources(ctx, core.SourceTypeYouTube)
		require.NoError(t, err)
		require.Len(t, videos, 1)
		assert.Equal(t, video.Id, videos[0].Id)
	})

	t.Run("count by type", func(t *testing.T) {
		count, err := repo.CountSources(ctx, core.SourceTypeArticle)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("re-add is idempotent", func(t *testing.T) {
		article.Title = "An Article, Revised"
		_, err := repo.AddSources(ctx, article)
		require.NoError(t, err)

		count, err := repo.CountSources(ctx, core.SourceTypeArticle)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		got, err := repo.GetSource(ctx, article.Id)
		require.NoError(t, err)
		assert.Equal(t, "An Article, Revised", got.Title)
	})
}
