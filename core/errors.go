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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidSubmission indicates a Submission failed validation.
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrEmptyText indicates the submission text is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrTextTooShort indicates the submission is below the word floor.
	ErrTextTooShort = errors.New("text is below the minimum word count")

	// ErrTextTooLong indicates the submission exceeds the word ceiling.
	ErrTextTooLong = errors.New("text exceeds the maximum word count")

	// ErrUnsupportedLanguage indicates a language outside the supported set.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrInvalidSourceType indicates an unrecognized source type value.
	ErrInvalidSourceType = errors.New("invalid source type")

	// ErrNoSources indicates that no source categories were selected.
	ErrNoSources = errors.New("at least one source must be selected")

	// ErrInvalidSensitivity indicates an unrecognized sensitivity value.
	ErrInvalidSensitivity = errors.New("invalid sensitivity")

	// ErrInvalidTransition indicates an illegal check status transition.
	ErrInvalidTransition = errors.New("invalid status transition")
)
