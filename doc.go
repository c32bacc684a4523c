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


// Package simcheck is a similarity check engine for text submissions. A
// submission is segmented into overlapping word windows, embedded, and
// searched against a reference corpus of articles and video transcripts;
// matches are aggregated per source, scored, and bucketed into risk levels.
//
// Checks run asynchronously: Submit validates and enqueues, a Worker drains
// the queue, and the report is available once the check completes. State is
// stored in BadgerDB; vector indexes live in memory with on-disk snapshots.
//
// The Service type in this package wires everything together from a single
// configuration; the subpackages are usable on their own.
package simcheck
