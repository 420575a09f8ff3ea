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
	"sort"

	"github.com/gorse-io/biaknn/dataset"
	"github.com/gorse-io/biaknn/fca"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// BiclusterSimilarity scores a bicluster against the relevant items of a user, given in
// ascending order.
type BiclusterSimilarity func(userItems []int, bicluster *fca.Concept) float64

const (
	UserPatternName           = "user_pattern"
	WeightFrequencyName       = "weight_frequency"
	DoubleWeightFrequencyName = "double_weight_frequency"
)

// BiclusterSimilarityByName returns a built-in bicluster similarity.
func BiclusterSimilarityByName(name string) (BiclusterSimilarity, error) {
	switch name {
	case UserPatternName:
		return UserPatternSimilarity, nil
	case WeightFrequencyName:
		return WeightFrequency, nil
	case DoubleWeightFrequencyName:
		return DoubleWeightFrequency, nil
	}
	return nil, errors.NotSupportedf("bicluster similarity %q", name)
}

// UserPatternSimilarity is the fraction of the bicluster intent relevant to the user, 0 for
// an empty intent.
func UserPatternSimilarity(userItems []int, bicluster *fca.Concept) float64 {
	if len(bicluster.Intent) == 0 {
		return 0
	}
	return float64(bicluster.IntentOverlap(userItems)) / float64(len(bicluster.Intent))
}

// WeightFrequency weights UserPatternSimilarity by the number of users of the bicluster.
func WeightFrequency(userItems []int, bicluster *fca.Concept) float64 {
	return float64(len(bicluster.Extent)) * UserPatternSimilarity(userItems, bicluster)
}

// DoubleWeightFrequency weights UserPatternSimilarity by the area of the bicluster.
func DoubleWeightFrequency(userItems []int, bicluster *fca.Concept) float64 {
	return float64(len(bicluster.Extent)*len(bicluster.Intent)) * UserPatternSimilarity(userItems, bicluster)
}

// IndicesAboveThreshold returns the indices of values greater than or equal to threshold.
// NaN never qualifies.
func IndicesAboveThreshold(values []float64, threshold float64) []int {
	indices := make([]int, 0)
	for i, v := range values {
		if v >= threshold {
			indices = append(indices, i)
		}
	}
	return indices
}

// TopKBiclusters keeps biclusters with a positive score, sorts them by ascending score and
// returns the last k. The sort is stable, so among equal scores later biclusters rank higher.
func TopKBiclusters(biclusters []*fca.Concept, userItems []int, k int, similarity BiclusterSimilarity) []*fca.Concept {
	type scored struct {
		bicluster *fca.Concept
		score     float64
	}
	candidates := make([]scored, 0, len(biclusters))
	for _, b := range biclusters {
		if score := similarity(userItems, b); score > 0 {
			candidates = append(candidates, scored{bicluster: b, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score < candidates[j].score
	})
	if len(candidates) > k {
		candidates = candidates[len(candidates)-k:]
	}
	return lo.Map(candidates, func(c scored, _ int) *fca.Concept { return c.bicluster })
}

// NeighborhoodBuilder merges the most relevant biclusters of every user into a neighborhood.
type NeighborhoodBuilder struct {
	// TopK is the number of biclusters merged per user.
	TopK       int
	Similarity BiclusterSimilarity
	// Threshold is the minimal rating of a relevant item.
	Threshold float64
	// ForceInclusion adds the user to its neighborhood whenever some bicluster was selected.
	ForceInclusion bool
}

// NeighborhoodStats summarizes how well neighborhoods cover the matrix.
type NeighborhoodStats struct {
	// UserCoverage is the fraction of users belonging to their own neighborhood.
	UserCoverage float64
	// ItemCoverage is the mean fraction of items in a neighborhood.
	ItemCoverage float64
}

// Build returns the neighborhood of every row of ratings. A user without any relevant
// bicluster gets an empty neighborhood. Biclusters must index into ratings.
func (b *NeighborhoodBuilder) Build(ratings *dataset.Matrix, biclusters []*fca.Concept) ([]*fca.Concept, NeighborhoodStats, error) {
	if b.Similarity == nil {
		return nil, NeighborhoodStats{}, errors.NotValidf("nil bicluster similarity")
	}
	nUsers, nItems := ratings.Dims()
	for _, c := range biclusters {
		if !inRange(c.Extent, nUsers) || !inRange(c.Intent, nItems) {
			return nil, NeighborhoodStats{}, errors.NotValidf("bicluster %v out of %dx%d ratings", c, nUsers, nItems)
		}
	}
	neighborhoods := make([]*fca.Concept, nUsers)
	covered, items := 0, 0
	for user := 0; user < nUsers; user++ {
		neighborhood := fca.NewConcept(nil, nil)
		if b.TopK > 0 && len(biclusters) > 0 {
			userItems := IndicesAboveThreshold(ratings.Row(user), b.Threshold)
			selected := TopKBiclusters(biclusters, userItems, b.TopK, b.Similarity)
			if len(selected) > 0 {
				if b.ForceInclusion {
					selected = append(selected, fca.NewConcept([]int{user}, nil))
				}
				var err error
				if neighborhood, err = fca.Merge(selected); err != nil {
					return nil, NeighborhoodStats{}, errors.Annotatef(err, "user %d", user)
				}
			}
		}
		if neighborhood.HasRow(user) {
			covered++
		}
		items += len(neighborhood.Intent)
		neighborhoods[user] = neighborhood
	}
	return neighborhoods, NeighborhoodStats{
		UserCoverage: float64(covered) / float64(nUsers),
		ItemCoverage: float64(items) / float64(nUsers) / float64(nItems),
	}, nil
}

func inRange(indices []int, n int) bool {
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return false
		}
	}
	return true
}
