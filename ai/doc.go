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


// Package ai provides abstractions for the embedding services used by the
// similarity check engine.
//
// The package defines the Embedder and Provider interfaces and the shared
// Handle that manages the embedding model's lifecycle: lazily initialized
// once per process, safe for concurrent reads, with explicit teardown.
// A failure to initialize the model is a fatal startup condition, never a
// per-request degradation.
//
// Two implementation sub-packages exist:
//
//   - ai/openai: production implementation backed by OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles requiring no external services
//
// Production constructors return interface types to enforce abstraction;
// mock constructors return concrete types so tests can inject behavior and
// make assertions.
package ai
