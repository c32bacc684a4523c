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


package provider

import (
	"context"

	"github.com/poiesic/simcheck/core"
)

const (
	// DefaultPerChunkLimit is how many candidates each submission chunk pulls
	// from an index.
	DefaultPerChunkLimit = 5

	// DefaultMaxCandidates caps the total candidates one provider returns.
	DefaultMaxCandidates = 100
)

// Query carries a segmented, embedded submission to a provider. Chunks and
// Embeddings are parallel slices.
type Query struct {
	Chunks        []core.Chunk
	Embeddings    [][]float32
	MaxCandidates int
}

// Provider searches one source category for chunks similar to a submission.
type Provider interface {
	// Kind returns the source category this provider covers.
	Kind() core.SourceType

	// Search returns candidate matches for the query, strongest first,
	// capped at the query's MaxCandidates.
	Search(ctx context.Context, query *Query) ([]core.Match, error)
}
