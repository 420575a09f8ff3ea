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

package knn

import (
	"math"
	"testing"

	"github.com/gorse-io/biaknn/dataset"
	"github.com/gorse-io/biaknn/fca"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBiclusterSimilarity(t *testing.T) {
	b := fca.NewConcept([]int{1, 2, 3, 4}, []int{1})
	assert.Equal(t, 1.0, UserPatternSimilarity([]int{1}, b))
	assert.Equal(t, 4.0, WeightFrequency([]int{1}, b))
	assert.Equal(t, 4.0, DoubleWeightFrequency([]int{1}, b))
	b = fca.NewConcept([]int{0, 1}, []int{0, 1, 2, 3})
	assert.Equal(t, 0.5, UserPatternSimilarity([]int{1, 3, 5}, b))
	assert.Equal(t, 1.0, WeightFrequency([]int{1, 3, 5}, b))
	assert.Equal(t, 4.0, DoubleWeightFrequency([]int{1, 3, 5}, b))
	// empty intent
	assert.Equal(t, 0.0, UserPatternSimilarity([]int{1}, fca.NewConcept([]int{0}, nil)))

	_, err := BiclusterSimilarityByName("jaccard")
	assert.True(t, errors.Is(err, errors.NotSupported))
	s, err := BiclusterSimilarityByName(DefaultBiclusterSimilarity)
	assert.NoError(t, err)
	assert.Equal(t, 4.0, s([]int{1}, fca.NewConcept([]int{1, 2, 3, 4}, []int{1})))
}

func TestIndicesAboveThreshold(t *testing.T) {
	nan := math.NaN()
	assert.Equal(t, []int{0, 2, 4}, IndicesAboveThreshold([]float64{3, 2, 4, nan, 3}, 3))
	assert.Empty(t, IndicesAboveThreshold([]float64{nan, 1}, 2))
}

func TestTopKBiclusters(t *testing.T) {
	biclusters := []*fca.Concept{
		fca.NewConcept([]int{0}, []int{0, 5}),
		fca.NewConcept([]int{1}, []int{0, 1}),
		fca.NewConcept([]int{2}, []int{1, 6}),
		fca.NewConcept([]int{3}, []int{7}),
	}
	userItems := []int{0, 1}
	// ties keep their order, so the later one ranks higher
	assert.Equal(t, []*fca.Concept{biclusters[2], biclusters[1]},
		TopKBiclusters(biclusters, userItems, 2, UserPatternSimilarity))
	// zero scores are dropped even if k is large
	assert.Equal(t, []*fca.Concept{biclusters[0], biclusters[2], biclusters[1]},
		TopKBiclusters(biclusters, userItems, 10, UserPatternSimilarity))
	assert.Empty(t, TopKBiclusters(biclusters, []int{9}, 2, UserPatternSimilarity))
}

func neighborhoodFixture(t *testing.T) *dataset.Matrix {
	nan := math.NaN()
	ratings, err := dataset.NewMatrixFromRows([][]float64{
		{1, 1, nan, nan},
		{1, 1, 1, nan},
		{nan, nan, 1, 1},
		{nan, nan, nan, nan},
	})
	require.NoError(t, err)
	return ratings
}

func TestNeighborhoodBuilder_Build(t *testing.T) {
	ratings := neighborhoodFixture(t)
	b0 := fca.NewConcept([]int{0, 1}, []int{0, 1})
	b1 := fca.NewConcept([]int{2}, []int{2, 3})
	builder := NeighborhoodBuilder{TopK: 1, Similarity: WeightFrequency, Threshold: 1}
	neighborhoods, stats, err := builder.Build(ratings, []*fca.Concept{b0, b1})
	require.NoError(t, err)
	assert.Equal(t, []*fca.Concept{b0, b0, b1, fca.NewConcept(nil, nil)}, neighborhoods)
	assert.Equal(t, 0.75, stats.UserCoverage)
	assert.Equal(t, 0.375, stats.ItemCoverage)

	// merge both biclusters
	builder.TopK = 2
	neighborhoods, _, err = builder.Build(ratings, []*fca.Concept{b0, b1})
	require.NoError(t, err)
	assert.Equal(t, fca.NewConcept([]int{0, 1, 2}, []int{0, 1, 2, 3}), neighborhoods[1])
	assert.Equal(t, b0, neighborhoods[0])

	// no bicluster at all
	neighborhoods, stats, err = builder.Build(ratings, nil)
	require.NoError(t, err)
	for _, n := range neighborhoods {
		assert.True(t, n.Empty())
	}
	assert.Zero(t, stats.UserCoverage)
	assert.Zero(t, stats.ItemCoverage)
}

func TestNeighborhoodBuilder_ForceInclusion(t *testing.T) {
	ratings := neighborhoodFixture(t)
	biclusters := []*fca.Concept{fca.NewConcept([]int{0}, []int{0, 1})}
	builder := NeighborhoodBuilder{TopK: 1, Similarity: WeightFrequency, Threshold: 1}
	neighborhoods, stats, err := builder.Build(ratings, biclusters)
	require.NoError(t, err)
	assert.False(t, neighborhoods[1].HasRow(1))
	assert.Equal(t, 0.25, stats.UserCoverage)

	builder.ForceInclusion = true
	neighborhoods, stats, err = builder.Build(ratings, biclusters)
	require.NoError(t, err)
	assert.Equal(t, fca.NewConcept([]int{0, 1}, []int{0, 1}), neighborhoods[1])
	// users without any selected bicluster stay out
	assert.True(t, neighborhoods[2].Empty())
	assert.True(t, neighborhoods[3].Empty())
	assert.Equal(t, 0.5, stats.UserCoverage)
}

func TestNeighborhoodBuilder_Invalid(t *testing.T) {
	ratings := neighborhoodFixture(t)
	builder := NeighborhoodBuilder{TopK: 1, Threshold: 1}
	_, _, err := builder.Build(ratings, []*fca.Concept{fca.NewConcept([]int{0}, []int{0})})
	assert.True(t, errors.Is(err, errors.NotValid))

	builder.Similarity = WeightFrequency
	for _, c := range []*fca.Concept{
		fca.NewConcept([]int{0, 4}, []int{0}),
		fca.NewConcept([]int{0}, []int{4}),
		{Extent: []int{-1}, Intent: []int{0}},
	} {
		neighborhoods, _, err := builder.Build(ratings, []*fca.Concept{c})
		assert.True(t, errors.Is(err, errors.NotValid), c.String())
		assert.Nil(t, neighborhoods)
	}
}
