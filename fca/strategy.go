// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fca

import (
	"math"

	"github.com/gorse-io/biaknn/dataset"
	"github.com/juju/errors"
)

const DefaultBinarizationThreshold = 1.0

// MiningStrategy produces the biclusters of a ratings matrix.
type MiningStrategy interface {
	Mine(ratings *dataset.Matrix) ([]*Concept, error)
	// BinarizationThreshold is the minimal rating considered relevant.
	BinarizationThreshold() float64
}

// GreConDStrategy binarizes ratings and mines them with GreConD.
type GreConDStrategy struct {
	Threshold float64
	Coverage  float64

	actualCoverage float64
}

func NewGreConDStrategy(threshold, coverage float64) (*GreConDStrategy, error) {
	if math.IsNaN(threshold) {
		return nil, errors.NotValidf("binarization threshold NaN")
	}
	if math.IsNaN(coverage) || coverage <= 0 || coverage > 1 {
		return nil, errors.NotValidf("coverage %v out of range (0, 1]", coverage)
	}
	return &GreConDStrategy{Threshold: threshold, Coverage: coverage}, nil
}

func (s *GreConDStrategy) Mine(ratings *dataset.Matrix) ([]*Concept, error) {
	binary, err := Binarize(ratings, s.Threshold)
	if err != nil {
		return nil, errors.Trace(err)
	}
	concepts, coverage, err := GreConD(binary, s.Coverage)
	if err != nil {
		return nil, errors.Trace(err)
	}
	s.actualCoverage = coverage
	return concepts, nil
}

func (s *GreConDStrategy) BinarizationThreshold() float64 {
	return s.Threshold
}

// ActualCoverage returns the coverage reached by the last Mine call.
func (s *GreConDStrategy) ActualCoverage() float64 {
	return s.actualCoverage
}

// PatternStrategy adapts itemsets found by an external miner.
type PatternStrategy struct {
	Threshold float64
	Patterns  [][]int
	Closed    bool
}

func NewPatternStrategy(threshold float64, patterns [][]int, closed bool) *PatternStrategy {
	return &PatternStrategy{Threshold: threshold, Patterns: patterns, Closed: closed}
}

func (s *PatternStrategy) Mine(ratings *dataset.Matrix) ([]*Concept, error) {
	binary, err := Binarize(ratings, s.Threshold)
	if err != nil {
		return nil, errors.Trace(err)
	}
	concepts, err := ConceptsFromPatterns(binary, s.Patterns, s.Closed)
	return concepts, errors.Trace(err)
}

func (s *PatternStrategy) BinarizationThreshold() float64 {
	return s.Threshold
}
