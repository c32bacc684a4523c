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


package check

import "errors"

var (
	// ErrRepositoryRequired indicates NewEngine was called without a repository.
	ErrRepositoryRequired = errors.New("check repository is required")

	// ErrDispatcherRequired indicates NewEngine was called without a dispatcher.
	ErrDispatcherRequired = errors.New("provider dispatcher is required")

	// ErrEmbedderRequired indicates NewEngine was called without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrReportNotReady indicates a report was requested before the check completed.
	ErrReportNotReady = errors.New("check has not completed")

	// ErrWorkerStopped indicates the worker was asked to process after Stop.
	ErrWorkerStopped = errors.New("worker is stopped")
)
