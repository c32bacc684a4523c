// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EmbeddingConfig configures the OpenAI-compatible embedding service.
type EmbeddingConfig struct {
	Host      string `yaml:"host"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size"`
}

// SegmentConfig configures submission and corpus chunking.
type SegmentConfig struct {
	MinWords     int `yaml:"min_words"`
	MaxWords     int `yaml:"max_words"`
	OverlapWords int `yaml:"overlap_words"`
}

// ScoringConfig configures match filtering and the composite score.
type ScoringConfig struct {
	ThresholdLow    float32 `yaml:"threshold_low"`
	ThresholdMedium float32 `yaml:"threshold_medium"`
	ThresholdHigh   float32 `yaml:"threshold_high"`

	WeightMaxScore   float64 `yaml:"weight_max_score"`
	WeightAvgScore   float64 `yaml:"weight_avg_score"`
	WeightCoverage   float64 `yaml:"weight_coverage"`
	WeightMatchCount float64 `yaml:"weight_match_count"`

	CountCap   int `yaml:"count_cap"`
	MaxSources int `yaml:"max_sources"`
}

// CheckConfig configures the check lifecycle.
type CheckConfig struct {
	MinWords       int `yaml:"min_words"`
	MaxWords       int `yaml:"max_words"`
	RetentionHours int `yaml:"retention_hours"`
	MaxAttempts    int `yaml:"max_attempts"`
	MaxCandidates  int `yaml:"max_candidates"`
	Concurrency    int `yaml:"concurrency"`
}

// StorageConfig configures on-disk state.
type StorageConfig struct {
	DBPath   string `yaml:"db_path"`
	IndexDir string `yaml:"index_dir"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Segment   SegmentConfig   `yaml:"segment"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Check     CheckConfig     `yaml:"check"`
	Storage   StorageConfig   `yaml:"storage"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the standard configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

// Validate checks cross-field constraints the type system cannot express.
func (cfg *AppConfig) Validate() error {
	if cfg.Segment.OverlapWords >= cfg.Segment.MaxWords {
		return fmt.Errorf("segment overlap %d must be below max words %d",
			cfg.Segment.OverlapWords, cfg.Segment.MaxWords)
	}
	if cfg.Segment.MinWords > cfg.Segment.MaxWords {
		return fmt.Errorf("segment min words %d exceeds max words %d",
			cfg.Segment.MinWords, cfg.Segment.MaxWords)
	}
	if cfg.Check.MinWords > cfg.Check.MaxWords {
		return fmt.Errorf("check min words %d exceeds max words %d",
			cfg.Check.MinWords, cfg.Check.MaxWords)
	}

	sum := cfg.Scoring.WeightMaxScore + cfg.Scoring.WeightAvgScore +
		cfg.Scoring.WeightCoverage + cfg.Scoring.WeightMatchCount
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("score weights must sum to 1, got %.3f", sum)
	}
	if cfg.Scoring.ThresholdLow > cfg.Scoring.ThresholdMedium ||
		cfg.Scoring.ThresholdMedium > cfg.Scoring.ThresholdHigh {
		return fmt.Errorf("thresholds must be ordered low <= medium <= high")
	}
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Embedding.Host == "" {
		cfg.Embedding.Host = "http://localhost:11434/v1"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "embeddinggemma"
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}

	if cfg.Segment.MinWords == 0 {
		cfg.Segment.MinWords = 40
	}
	if cfg.Segment.MaxWords == 0 {
		cfg.Segment.MaxWords = 60
	}
	if cfg.Segment.OverlapWords == 0 {
		cfg.Segment.OverlapWords = 10
	}

	if cfg.Scoring.ThresholdLow == 0 {
		cfg.Scoring.ThresholdLow = 0.65
	}
	if cfg.Scoring.ThresholdMedium == 0 {
		cfg.Scoring.ThresholdMedium = 0.75
	}
	if cfg.Scoring.ThresholdHigh == 0 {
		cfg.Scoring.ThresholdHigh = 0.85
	}
	if cfg.Scoring.WeightMaxScore == 0 && cfg.Scoring.WeightAvgScore == 0 &&
		cfg.Scoring.WeightCoverage == 0 && cfg.Scoring.WeightMatchCount == 0 {
		cfg.Scoring.WeightMaxScore = 0.4
		cfg.Scoring.WeightAvgScore = 0.3
		cfg.Scoring.WeightCoverage = 0.2
		cfg.Scoring.WeightMatchCount = 0.1
	}
	if cfg.Scoring.CountCap == 0 {
		cfg.Scoring.CountCap = 10
	}
	if cfg.Scoring.MaxSources == 0 {
		cfg.Scoring.MaxSources = 10
	}

	if cfg.Check.MinWords == 0 {
		cfg.Check.MinWords = 40
	}
	if cfg.Check.MaxWords == 0 {
		cfg.Check.MaxWords = 1500
	}
	if cfg.Check.RetentionHours == 0 {
		cfg.Check.RetentionHours = 7 * 24
	}
	if cfg.Check.MaxAttempts == 0 {
		cfg.Check.MaxAttempts = 3
	}
	if cfg.Check.MaxCandidates == 0 {
		cfg.Check.MaxCandidates = 100
	}

	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = "simcheck.db"
	}
	if cfg.Storage.IndexDir == "" {
		cfg.Storage.IndexDir = "simcheck.idx"
	}
}
