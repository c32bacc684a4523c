package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Equal(t, 32, cfg.Embedding.BatchSize)
		assert.Equal(t, 60, cfg.Segment.MaxWords)
		assert.Equal(t, float32(0.75), cfg.Scoring.ThresholdMedium)
		assert.Equal(t, 7*24, cfg.Check.RetentionHours)
		assert.Equal(t, 100, cfg.Check.MaxCandidates)
	})

	t.Run("partial file keeps defaults for the rest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("embedding:\n  model: nomic-embed-text\ncheck:\n  max_attempts: 5\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
		assert.Equal(t, 5, cfg.Check.MaxAttempts)
		assert.Equal(t, "http://localhost:11434/v1", cfg.Embedding.Host)
		assert.Equal(t, 40, cfg.Segment.MinWords)
	})

	t.Run("invalid yaml rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(":\n\t-bad"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad weights rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scoring:\n  weight_max_score: 0.9\n  weight_avg_score: 0.9\n"), 0o644))
		_, err := Load(path)
		assert.ErrorContains(t, err, "sum to 1")
	})

	t.Run("misordered thresholds rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scoring:\n  threshold_low: 0.9\n"), 0o644))
		_, err := Load(path)
		assert.ErrorContains(t, err, "ordered")
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Default()
	want.Embedding.Model = "custom-model"

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
