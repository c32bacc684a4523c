package simcheck

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/simcheck/ai"
	"github.com/poiesic/simcheck/ai/mock"
	"github.com/poiesic/simcheck/config"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/ingest"
	"github.com/poiesic/simcheck/storage"
)

func makeWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func openTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := Open(config.Default(), WithInMemory(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestServiceEndToEnd(t *testing.T) {
	svc := openTestService(t)
	ctx := context.Background()

	// Ingest a reference article, then submit the same text for checking.
	pipeline, err := svc.NewIngestPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	text := makeWords(120)
	record, err := pipeline.Ingest(ctx, &ingest.Document{
		Type:       core.SourceTypeArticle,
		Title:      "The Original",
		Identifier: "https://example.com/original",
		Text:       text,
	})
	require.NoError(t, err)

	count, err := svc.SourceRepository().CountSources(ctx, core.SourceTypeArticle)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	engine := svc.Engine()
	check, err := engine.Submit(ctx, core.Submission{Text: text, Language: "en"})
	require.NoError(t, err)

	require.NoError(t, engine.ProcessNext(ctx))

	report, err := engine.Report(ctx, check.Id)
	require.NoError(t, err)
	assert.Equal(t, core.RiskHigh, report.RiskLevel)
	require.NotEmpty(t, report.Matches)
	assert.Equal(t, record.Id, report.Matches[0].SourceId)
	assert.Equal(t, "The Original", report.Matches[0].Title)
}

func TestServiceUnrelatedSubmission(t *testing.T) {
	svc := openTestService(t)
	ctx := context.Background()

	engine := svc.Engine()
	check, err := engine.Submit(ctx, core.Submission{Text: makeWords(80), Language: "en"})
	require.NoError(t, err)
	require.NoError(t, engine.ProcessNext(ctx))

	report, err := engine.Report(ctx, check.Id)
	require.NoError(t, err)
	assert.Equal(t, core.RiskLow, report.RiskLevel)
	assert.Empty(t, report.Matches)
}

func TestServiceQueueEmpty(t *testing.T) {
	svc := openTestService(t)
	err := svc.Engine().ProcessNext(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConnectEmbedder(t *testing.T) {
	t.Run("external embedder needs no connection", func(t *testing.T) {
		svc := openTestService(t)
		assert.NoError(t, svc.ConnectEmbedder())
	})

	t.Run("misconfigured provider fails at startup", func(t *testing.T) {
		cfg := config.Default()
		cfg.Embedding.Model = ""
		svc, err := Open(cfg, WithInMemory())
		require.NoError(t, err)
		t.Cleanup(func() { svc.Close() })

		assert.ErrorIs(t, svc.ConnectEmbedder(), ai.ErrEmbeddingModelRequired)
	})
}
