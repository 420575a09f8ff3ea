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
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConcept(t *testing.T) {
	c := NewConcept([]int{3, 1, 3, 0}, nil)
	assert.Equal(t, []int{0, 1, 3}, c.Extent)
	assert.Equal(t, []int{}, c.Intent)
	assert.True(t, c.Empty())
	assert.Zero(t, c.Area())
	assert.True(t, c.HasRow(3))
	assert.False(t, c.HasRow(2))
	assert.False(t, c.HasColumn(0))
	assert.True(t, c.Equal(NewConcept([]int{0, 1, 3}, []int{})))
	// literals are compared as sets
	assert.True(t, c.Equal(&Concept{Extent: []int{3, 0, 1, 1}}))
	assert.True(t, (&Concept{Extent: []int{1, 0}, Intent: []int{2}}).Equal(NewConcept([]int{0, 1}, []int{2})))
	assert.False(t, c.Equal(&Concept{Extent: []int{3, 0}}))
	assert.True(t, (&Concept{Extent: []int{0, 0, 1}}).Equal(&Concept{Extent: []int{0, 1, 1}}))
	assert.False(t, c.Equal(&Concept{Extent: []int{0, 1, 3}, Intent: []int{0}}))

	c = NewConcept([]int{1, 2}, []int{4, 2, 7})
	assert.Equal(t, 6, c.Area())
	assert.Equal(t, 2, c.IntentOverlap([]int{0, 2, 3, 7}))
	assert.Equal(t, "([1 2], [2 4 7])", c.String())
}

func TestMerge(t *testing.T) {
	_, err := Merge(nil)
	assert.True(t, errors.Is(err, errors.NotValid))

	a := NewConcept([]int{0, 2}, []int{1, 5})
	b := NewConcept([]int{1, 2, 7}, []int{0, 5})
	c := NewConcept([]int{9}, []int{})

	merged, err := Merge([]*Concept{a, b})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 7}, merged.Extent)
	assert.Equal(t, []int{0, 1, 5}, merged.Intent)

	// commutativity
	swapped, err := Merge([]*Concept{b, a})
	require.NoError(t, err)
	assert.True(t, merged.Equal(swapped))

	// associativity
	ab, err := Merge([]*Concept{a, b})
	require.NoError(t, err)
	left, err := Merge([]*Concept{ab, c})
	require.NoError(t, err)
	bc, err := Merge([]*Concept{b, c})
	require.NoError(t, err)
	right, err := Merge([]*Concept{a, bc})
	require.NoError(t, err)
	assert.True(t, left.Equal(right))
	assert.Equal(t, []int{0, 1, 2, 7, 9}, left.Extent)

	// inputs are untouched
	assert.Equal(t, []int{0, 2}, a.Extent)
}
