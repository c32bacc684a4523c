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


package simcheck

import (
	"log/slog"
	"time"

	"github.com/poiesic/simcheck/ai"
	"github.com/poiesic/simcheck/ai/openai"
	"github.com/poiesic/simcheck/check"
	"github.com/poiesic/simcheck/config"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/index"
	"github.com/poiesic/simcheck/ingest"
	"github.com/poiesic/simcheck/provider"
	"github.com/poiesic/simcheck/scoring"
	"github.com/poiesic/simcheck/segment"
	"github.com/poiesic/simcheck/storage"
	"github.com/poiesic/simcheck/storage/badger"
)

// Service wires the full similarity check engine: storage, indexes, the
// embedding provider, and the check lifecycle.
type Service struct {
	cfg        *config.AppConfig
	backend    *badger.Backend
	checkRepo  storage.CheckRepository
	sourceRepo storage.SourceRepository
	indexes    *index.Set
	handle     *ai.Handle
	embedder   ai.Embedder
	external   bool
	engine     *check.Engine
	logger     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	inMemory bool
	embedder ai.Embedder
}

// WithInMemory keeps all state in memory. Used by tests.
func WithInMemory() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithEmbedder bypasses the configured embedding provider.
func WithEmbedder(e ai.Embedder) ServiceOption {
	return func(o *serviceOptions) {
		o.embedder = e
	}
}

// Open builds a Service from configuration. Index snapshots are loaded from
// the configured index directory; the embedding provider connects lazily on
// first use.
func Open(cfg *config.AppConfig, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	options := &serviceOptions{}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(cfg.Storage.DBPath, options.inMemory)
	if err != nil {
		return nil, err
	}

	checkRepo, err := badger.NewCheckRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	sourceRepo, err := badger.NewSourceRepository(backend)
	if err != nil {
		checkRepo.Close()
		backend.Close()
		return nil, err
	}

	indexes := index.NewSet(core.SourceTypes...)
	if !options.inMemory {
		if err := indexes.LoadAll(cfg.Storage.IndexDir); err != nil {
			sourceRepo.Close()
			checkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	handle := ai.NewHandle(func() (ai.Provider, error) {
		return openai.NewProvider(ai.NewConfig(
			ai.WithHost(cfg.Embedding.Host),
			ai.WithModel(cfg.Embedding.Model),
			ai.WithBatchSize(cfg.Embedding.BatchSize),
		))
	})

	embedder := options.embedder
	if embedder == nil {
		embedder = handle.LazyEmbedder()
	}

	svc := &Service{
		cfg:        cfg,
		backend:    backend,
		checkRepo:  checkRepo,
		sourceRepo: sourceRepo,
		indexes:    indexes,
		handle:     handle,
		embedder:   embedder,
		external:   options.embedder != nil,
		logger:     slog.Default(),
	}

	engine, err := svc.buildEngine(embedder)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.engine = engine
	return svc, nil
}

func (s *Service) buildEngine(embedder ai.Embedder) (*check.Engine, error) {
	providers := make([]provider.Provider, 0, len(core.SourceTypes))
	for _, kind := range core.SourceTypes {
		ix, err := s.indexes.Get(kind)
		if err != nil {
			return nil, err
		}
		providers = append(providers, provider.NewIndexedProvider(ix))
	}
	dispatcher, err := provider.NewDispatcher(providers)
	if err != nil {
		return nil, err
	}

	scorer, err := scoring.NewScorer(
		scoring.WithThresholds(scoring.Thresholds{
			Low:    s.cfg.Scoring.ThresholdLow,
			Medium: s.cfg.Scoring.ThresholdMedium,
			High:   s.cfg.Scoring.ThresholdHigh,
		}),
		scoring.WithWeights(scoring.Weights{
			MaxScore:   s.cfg.Scoring.WeightMaxScore,
			AvgScore:   s.cfg.Scoring.WeightAvgScore,
			Coverage:   s.cfg.Scoring.WeightCoverage,
			MatchCount: s.cfg.Scoring.WeightMatchCount,
		}),
		scoring.WithCountCap(s.cfg.Scoring.CountCap),
		scoring.WithMaxSources(s.cfg.Scoring.MaxSources),
	)
	if err != nil {
		return nil, err
	}

	return check.NewEngine(s.checkRepo, dispatcher, embedder,
		check.WithSegmenter(s.segmenter()),
		check.WithScorer(scorer),
		check.WithWordBounds(s.cfg.Check.MinWords, s.cfg.Check.MaxWords),
		check.WithRetention(time.Duration(s.cfg.Check.RetentionHours)*time.Hour),
		check.WithMaxAttempts(s.cfg.Check.MaxAttempts),
		check.WithMaxCandidates(s.cfg.Check.MaxCandidates),
	)
}

func (s *Service) segmenter() *segment.Segmenter {
	return segment.New(s.cfg.Segment.MinWords, s.cfg.Segment.MaxWords, s.cfg.Segment.OverlapWords)
}

// ConnectEmbedder eagerly initializes the configured embedding provider so a
// misconfigured or unreachable model service fails at startup instead of
// surfacing as per-check embed failures. No-op when an external embedder was
// supplied.
func (s *Service) ConnectEmbedder() error {
	if s.external {
		return nil
	}
	_, err := s.handle.Embedder()
	return err
}

// Engine returns the check engine.
func (s *Service) Engine() *check.Engine {
	return s.engine
}

// CheckRepository returns the check repository.
func (s *Service) CheckRepository() storage.CheckRepository {
	return s.checkRepo
}

// SourceRepository returns the source repository.
func (s *Service) SourceRepository() storage.SourceRepository {
	return s.sourceRepo
}

// Indexes returns the per-type vector indexes.
func (s *Service) Indexes() *index.Set {
	return s.indexes
}

// NewWorker creates a queue worker over the check engine.
func (s *Service) NewWorker(opts ...check.WorkerOption) (*check.Worker, error) {
	base := []check.WorkerOption{}
	if s.cfg.Check.Concurrency > 0 {
		base = append(base, check.WithConcurrency(s.cfg.Check.Concurrency))
	}
	return check.NewWorker(s.engine, append(base, opts...)...)
}

// NewIngestPipeline creates a corpus ingestion pipeline sharing the
// service's embedder and chunking bounds.
func (s *Service) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	base := []ingest.Option{ingest.WithSegmenter(s.segmenter())}
	return ingest.NewPipeline(s.sourceRepo, s.indexes, s.embedder, append(base, opts...)...)
}

// PersistIndexes snapshots every index to the configured index directory.
func (s *Service) PersistIndexes() error {
	return s.indexes.PersistAll(s.cfg.Storage.IndexDir)
}

// Close releases every resource the service owns.
func (s *Service) Close() error {
	if err := s.handle.Close(); err != nil {
		s.logger.Error("error closing embedding provider", "err", err)
	}

	if err := s.sourceRepo.Close(); err != nil {
		s.logger.Error("error closing source repository", "err", err)
		return err
	}
	if err := s.checkRepo.Close(); err != nil {
		s.logger.Error("error closing check repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
