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

import (
	"fmt"
	"strings"
)

// SupportedLanguages is the closed set of languages the engine can analyze.
var SupportedLanguages = map[string]bool{
	"en": true,
}

// ValidateSubmission validates a Submission according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - WordCount must be within [minWords, maxWords]
//   - Language must be a supported two-letter lowercase code
//   - At least one valid source category must be selected
//   - Sensitivity must be a valid level
//
// Validation happens synchronously at submit time; no check job is ever
// created for a submission that fails here.
func ValidateSubmission(sub *Submission, minWords, maxWords int) error {
	if sub == nil {
		return fmt.Errorf("%w: submission is nil", ErrInvalidSubmission)
	}

	if strings.TrimSpace(sub.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, ErrEmptyText)
	}

	if sub.WordCount < minWords {
		return fmt.Errorf("%w: %w (%d < %d)", ErrInvalidSubmission, ErrTextTooShort, sub.WordCount, minWords)
	}

	if maxWords > 0 && sub.WordCount > maxWords {
		return fmt.Errorf("%w: %w (%d > %d)", ErrInvalidSubmission, ErrTextTooLong, sub.WordCount, maxWords)
	}

	if err := ValidateLanguage(sub.Language); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}

	if len(sub.Options.Sources) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, ErrNoSources)
	}
	for _, st := range sub.Options.Sources {
		if err := ValidateSourceType(st); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
		}
	}

	if err := ValidateSensitivity(sub.Sensitivity); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}

	return nil
}

// ValidateLanguage validates a two-letter lowercase ISO 639-1 code against the
// supported set.
func ValidateLanguage(lang string) error {
	if len(lang) != 2 || lang != strings.ToLower(lang) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	if !SupportedLanguages[lang] {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return nil
}

// ValidateSourceType validates that a SourceType has a valid value.
func ValidateSourceType(st SourceType) error {
	if st != SourceTypeArticle && st != SourceTypeYouTube {
		return fmt.Errorf("%w: value %d", ErrInvalidSourceType, st)
	}
	return nil
}

// ValidateSensitivity validates that a Sensitivity has a valid value.
func ValidateSensitivity(s Sensitivity) error {
	if s != SensitivityLow && s != SensitivityMedium && s != SensitivityHigh {
		return fmt.Errorf("%w: value %d", ErrInvalidSensitivity, s)
	}
	return nil
}
