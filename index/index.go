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


package index

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/poiesic/simcheck/ai"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/storage"
)

// Hit is a single search result: a source chunk and its cosine similarity
// to the query vector.
type Hit struct {
	Chunk core.SourceChunk
	Score float32
}

// Index is a flat in-memory vector index over the source chunks of one
// source type. Reads take a shared lock, so searches run concurrently;
// ingestion takes the exclusive lock.
type Index struct {
	mu     sync.RWMutex
	kind   core.SourceType
	chunks []core.SourceChunk
	byID   map[core.ID]int
	logger *slog.Logger
}

// New creates an empty index for the given source type.
func New(kind core.SourceType) *Index {
	return &Index{
		kind:   kind,
		byID:   make(map[core.ID]int),
		logger: slog.Default().With("component", "index", "kind", kind.String()),
	}
}

// Kind returns the source type this index covers.
func (ix *Index) Kind() core.SourceType {
	return ix.kind
}

// Count returns the number of indexed chunks.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Add indexes the given chunks. A chunk whose ID is already present replaces
// the stored copy, so re-ingesting a source is idempotent. Returns the number
// of newly added chunks.
func (ix *Index) Add(chunks ...core.SourceChunk) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	added := 0
	for _, chunk := range chunks {
		if pos, ok := ix.byID[chunk.Id]; ok {
			ix.chunks[pos] = chunk
			continue
		}
		ix.byID[chunk.Id] = len(ix.chunks)
		ix.chunks = append(ix.chunks, chunk)
		added++
	}
	return added
}

// Search returns the k chunks most similar to the query vector, ordered by
// score descending. Ties keep insertion order. An empty index yields no hits.
func (ix *Index) Search(vector []float32, k int) []Hit {
	if len(vector) == 0 || k <= 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	hits := make([]Hit, 0, len(ix.chunks))
	for i := range ix.chunks {
		chunk := &ix.chunks[i]
		if len(chunk.Vector) == 0 {
			continue
		}
		hits = append(hits, Hit{
			Chunk: *chunk,
			Score: ai.Similarity(vector, chunk.Vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Persist writes an index snapshot to path. The snapshot is written to a
// temporary file first and renamed into place, so a crashed writer never
// leaves a torn snapshot behind.
func (ix *Index) Persist(path string) error {
	ix.mu.RLock()
	data := storage.MarshalSourceChunks(ix.chunks)
	ix.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	ix.logger.Debug("persisted index snapshot", "path", path, "chunks", ix.Count())
	return nil
}

// Load replaces the index contents with the snapshot at path. A missing
// snapshot leaves the index empty and is not an error.
func (ix *Index) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	chunks, err := storage.UnmarshalSourceChunks(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSnapshotCorrupt, path, err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.chunks = chunks
	ix.byID = make(map[core.ID]int, len(chunks))
	for i := range chunks {
		ix.byID[chunks[i].Id] = i
	}

	ix.logger.Debug("loaded index snapshot", "path", path, "chunks", len(chunks))
	return nil
}
