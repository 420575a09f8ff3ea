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
	"github.com/samber/lo"
)

// Filter keeps the biclusters satisfying a predicate over the ratings matrix. Filters
// preserve order and never modify the concepts.
type Filter func(ratings *dataset.Matrix, concepts []*Concept) ([]*Concept, error)

func checkThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return errors.NotValidf("threshold %v out of range [0, 1]", threshold)
	}
	return nil
}

// SparsityFilter keeps biclusters whose fraction of positive ratings inside their rectangle
// is at least threshold.
func SparsityFilter(threshold float64) Filter {
	return func(ratings *dataset.Matrix, concepts []*Concept) ([]*Concept, error) {
		if err := checkThreshold(threshold); err != nil {
			return nil, errors.Trace(err)
		}
		return lo.Filter(concepts, func(c *Concept, _ int) bool {
			if c.Area() == 0 {
				return false
			}
			return float64(ratings.CountPositiveIn(c.Extent, c.Intent))/float64(c.Area()) >= threshold
		}), nil
	}
}

// CoverageFilter keeps biclusters holding at least threshold of all positive ratings.
func CoverageFilter(threshold float64) Filter {
	return func(ratings *dataset.Matrix, concepts []*Concept) ([]*Concept, error) {
		if err := checkThreshold(threshold); err != nil {
			return nil, errors.Trace(err)
		}
		total := ratings.CountPositive()
		if total == 0 {
			return []*Concept{}, nil
		}
		return lo.Filter(concepts, func(c *Concept, _ int) bool {
			return float64(ratings.CountPositiveIn(c.Extent, c.Intent))/float64(total) >= threshold
		}), nil
	}
}

// RelativeSizeFilter keeps biclusters whose area is at least threshold of the matrix area.
func RelativeSizeFilter(threshold float64) Filter {
	return func(ratings *dataset.Matrix, concepts []*Concept) ([]*Concept, error) {
		if err := checkThreshold(threshold); err != nil {
			return nil, errors.Trace(err)
		}
		rows, cols := ratings.Dims()
		return lo.Filter(concepts, func(c *Concept, _ int) bool {
			return float64(c.Area())/float64(rows*cols) >= threshold
		}), nil
	}
}

// ApplyFilters runs filters in sequence, each on the survivors of the previous one.
func ApplyFilters(ratings *dataset.Matrix, concepts []*Concept, filters ...Filter) ([]*Concept, error) {
	var err error
	for _, filter := range filters {
		if concepts, err = filter(ratings, concepts); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return concepts, nil
}
