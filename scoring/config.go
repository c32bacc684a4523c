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


package scoring

import (
	"math"

	"github.com/poiesic/simcheck/core"
)

const (
	// DefaultCountCap is the match count at which the count term saturates.
	DefaultCountCap = 10

	// DefaultMaxSources is the number of aggregated matches kept per report.
	DefaultMaxSources = 10

	// DefaultPairsPerSource is the number of chunk pairings retained on each
	// aggregated match for report detail.
	DefaultPairsPerSource = 5

	// DefaultSnippetLimit caps snippet length in runes.
	DefaultSnippetLimit = 300
)

// Thresholds holds the similarity cutoffs for the three confidence bands.
type Thresholds struct {
	Low    float32
	Medium float32
	High   float32
}

// DefaultThresholds returns the standard confidence bands.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 0.65, Medium: 0.75, High: 0.85}
}

// For maps a sensitivity to its acceptance cutoff. The mapping inverts:
// a low-sensitivity check only accepts high-confidence matches.
func (t Thresholds) For(sensitivity core.Sensitivity) float32 {
	switch sensitivity {
	case core.SensitivityLow:
		return t.High
	case core.SensitivityHigh:
		return t.Low
	default:
		return t.Medium
	}
}

// Validate checks the bands are ordered and in range.
func (t Thresholds) Validate() error {
	for _, v := range []float32{t.Low, t.Medium, t.High} {
		if v <= 0 || v > 1 {
			return ErrInvalidThresholds
		}
	}
	if t.Low > t.Medium || t.Medium > t.High {
		return ErrInvalidThresholds
	}
	return nil
}

// Weights holds the term weights of the composite score. They must sum to 1.
type Weights struct {
	MaxScore   float64
	AvgScore   float64
	Coverage   float64
	MatchCount float64
}

// DefaultWeights returns the standard weighting.
func DefaultWeights() Weights {
	return Weights{MaxScore: 0.4, AvgScore: 0.3, Coverage: 0.2, MatchCount: 0.1}
}

// Validate checks the weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	sum := 0.0
	for _, v := range []float64{w.MaxScore, w.AvgScore, w.Coverage, w.MatchCount} {
		if v < 0 {
			return ErrInvalidWeights
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return ErrInvalidWeights
	}
	return nil
}

// RiskFor buckets a 0-100 weighted score into a risk level.
func RiskFor(score float64) core.RiskLevel {
	switch {
	case score >= 75:
		return core.RiskHigh
	case score >= 65:
		return core.RiskMedium
	default:
		return core.RiskLow
	}
}
