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
	"fmt"
	"slices"
	"sort"

	"github.com/juju/errors"
)

// Concept is a bicluster: a set of rows (extent) and a set of columns (intent), both
// stored ascending without duplicates. Concepts are not modified after creation.
type Concept struct {
	Extent []int
	Intent []int
}

// NewConcept sorts and de-duplicates copies of extent and intent.
func NewConcept(extent, intent []int) *Concept {
	return &Concept{
		Extent: normalize(extent),
		Intent: normalize(intent),
	}
}

func normalize(indices []int) []int {
	out := slices.Clone(indices)
	if out == nil {
		out = []int{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Equal compares extents and intents as sets, so concepts built as literals with unsorted
// or repeated indices still match their NewConcept counterparts.
func (c *Concept) Equal(other *Concept) bool {
	return sameSet(c.Extent, other.Extent) && sameSet(c.Intent, other.Intent)
}

func sameSet(a, b []int) bool {
	return slices.Equal(normalize(a), normalize(b))
}

// Area is the number of cells of the extent x intent rectangle.
func (c *Concept) Area() int {
	return len(c.Extent) * len(c.Intent)
}

func (c *Concept) Empty() bool {
	return len(c.Extent) == 0 || len(c.Intent) == 0
}

func (c *Concept) HasRow(row int) bool {
	return contains(c.Extent, row)
}

func (c *Concept) HasColumn(col int) bool {
	return contains(c.Intent, col)
}

func (c *Concept) String() string {
	return fmt.Sprintf("(%v, %v)", c.Extent, c.Intent)
}

func contains(sorted []int, x int) bool {
	i := sort.SearchInts(sorted, x)
	return i < len(sorted) && sorted[i] == x
}

// Merge unions the extents and the intents of the given concepts. Merging no concept is
// an invalid argument.
func Merge(concepts []*Concept) (*Concept, error) {
	if len(concepts) == 0 {
		return nil, errors.NotValidf("merge of zero concepts")
	}
	extent := []int{}
	intent := []int{}
	for _, c := range concepts {
		extent = union(extent, c.Extent)
		intent = union(intent, c.Intent)
	}
	return &Concept{Extent: extent, Intent: intent}, nil
}

// union merges two ascending sets.
func union(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// IntentOverlap counts the columns of an ascending set that belong to the intent.
func (c *Concept) IntentOverlap(cols []int) int {
	a, b := c.Intent, cols
	count, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			count++
			i++
			j++
		}
	}
	return count
}
