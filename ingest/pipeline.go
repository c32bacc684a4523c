package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/simcheck/ai"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/index"
	"github.com/poiesic/simcheck/segment"
	"github.com/poiesic/simcheck/storage"
)

// Cue is one timed fragment of a video transcript.
type Cue struct {
	StartSeconds int
	Text         string
}

// Document is one corpus item to ingest. Articles carry Text; videos carry
// Cues and DurationSeconds.
type Document struct {
	Type            core.SourceType
	Title           string
	Identifier      string
	Text            string
	Cues            []Cue
	DurationSeconds int
}

// Pipeline ingests reference sources: it segments, embeds, and indexes each
// document, and registers it in the source repository. Ingestion is
// idempotent; both IDs and index entries derive from content.
type Pipeline struct {
	sources   storage.SourceRepository
	indexes   *index.Set
	embedder  ai.Embedder
	segmenter *segment.Segmenter
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithSegmenter overrides the default segmenter.
func WithSegmenter(s *segment.Segmenter) Option {
	return func(p *Pipeline) error {
		p.segmenter = s
		return nil
	}
}

// WithPoolSize sets the worker pool size for IngestAll.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	sources storage.SourceRepository,
	indexes *index.Set,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if sources == nil {
		return nil, ErrSourceRepositoryRequired
	}
	if indexes == nil {
		return nil, ErrIndexSetRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		sources:   sources,
		indexes:   indexes,
		embedder:  embedder,
		segmenter: segment.New(segment.DefaultMinWords, segment.DefaultMaxWords, segment.DefaultOverlapWords),
		pool:      pool,
		logger:    slog.Default().With("component", "ingest"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			pool.Release()
			return nil, err
		}
	}
	return p, nil
}

// Ingest processes one document synchronously.
func (p *Pipeline) Ingest(ctx context.Context, doc *Document) (*core.SourceRecord, error) {
	switch doc.Type {
	case core.SourceTypeArticle:
		return p.ingestText(ctx, doc, doc.Text, nil)
	case core.SourceTypeYouTube:
		if len(doc.Cues) == 0 {
			return nil, fmt.Errorf("%w: video document has no cues", ErrEmptyDocument)
		}
		text, offsets := flattenCues(doc.Cues)
		return p.ingestText(ctx, doc, text, offsets)
	default:
		return nil, core.ErrInvalidSourceType
	}
}

// IngestAll processes documents on the worker pool. Failures are logged and
// skipped; the returned count is the number of documents ingested.
func (p *Pipeline) IngestAll(ctx context.Context, docs []*Document) (int, error) {
	var (
		mu       sync.Mutex
		ingested int
		wg       sync.WaitGroup
	)

	for _, doc := range docs {
		doc := doc
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if _, err := p.Ingest(ctx, doc); err != nil {
				p.logger.Error("document ingestion failed",
					"title", doc.Title, "identifier", doc.Identifier, "err", err)
				return
			}
			mu.Lock()
			ingested++
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return ingested, err
		}
	}
	wg.Wait()

	p.logger.Info("ingestion finished", "documents", len(docs), "ingested", ingested)
	return ingested, nil
}

// Release frees the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	p.pool.Release()
}

// ingestText segments, embeds, and indexes one flattened document.
// wordOffsets maps normalized word positions to transcript seconds; nil for
// articles.
func (p *Pipeline) ingestText(ctx context.Context, doc *Document, text string, wordOffsets []int) (*core.SourceRecord, error) {
	chunks, err := p.segmenter.Segment(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEmptyDocument, doc.Identifier, err)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	sourceID := core.IDFromContent(fmt.Sprintf("%s:%s", doc.Type, doc.Identifier))
	record := &core.SourceRecord{
		Id:              sourceID,
		Type:            doc.Type,
		Title:           doc.Title,
		Identifier:      doc.Identifier,
		WordCount:       segment.CountWords(text),
		DurationSeconds: doc.DurationSeconds,
		ChunkCount:      len(chunks),
	}

	sourceChunks := make([]core.SourceChunk, len(chunks))
	for i, chunk := range chunks {
		timestamp := ""
		if wordOffsets != nil && chunk.StartWord < len(wordOffsets) {
			timestamp = formatTimestamp(wordOffsets[chunk.StartWord])
		}
		sourceChunks[i] = core.SourceChunk{
			Id:          core.IDFromContent(doc.Identifier + chunk.Text),
			SourceId:    sourceID,
			SourceType:  doc.Type,
			Index:       chunk.Index,
			Text:        chunk.Text,
			Timestamp:   timestamp,
			Title:       doc.Title,
			Identifier:  doc.Identifier,
			TotalChunks: len(chunks),
			Vector:      vectors[i],
		}
	}

	ix, err := p.indexes.Get(doc.Type)
	if err != nil {
		return nil, err
	}
	ix.Add(sourceChunks...)

	if _, err := p.sources.AddSources(ctx, record); err != nil {
		return nil, err
	}

	p.logger.Debug("document ingested",
		"title", doc.Title, "type", doc.Type.String(), "chunks", len(chunks))
	return record, nil
}

// flattenCues joins cue texts into one string and builds a parallel mapping
// from normalized word position to the start second of the cue the word came
// from.
func flattenCues(cues []Cue) (string, []int) {
	var parts []string
	var offsets []int
	for _, cue := range cues {
		words := segment.CountWords(cue.Text)
		if words == 0 {
			continue
		}
		parts = append(parts, cue.Text)
		for i := 0; i < words; i++ {
			offsets = append(offsets, cue.StartSeconds)
		}
	}
	return strings.Join(parts, " "), offsets
}

// formatTimestamp renders seconds as MM:SS.
func formatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
