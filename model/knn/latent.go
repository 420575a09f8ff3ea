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
	"sort"
	"time"

	"github.com/gorse-io/biaknn/dataset"
	"github.com/gorse-io/biaknn/fca"
	"github.com/gorse-io/biaknn/model"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const DefaultLatentK = 30

// KNNOverLatentSpace is a user-based KNN estimator comparing users by the concepts they
// belong to instead of their ratings.
type KNNOverLatentSpace struct {
	model.BaseModel
	strategy fca.MiningStrategy
	k        int

	concepts []*fca.Concept
	factors  *dataset.Matrix // users x concepts
	sims     *SimilarityCache
}

func NewKNNOverLatentSpace(strategy fca.MiningStrategy, params model.Params) (*KNNOverLatentSpace, error) {
	if strategy == nil {
		return nil, errors.NotValidf("nil mining strategy")
	}
	l := &KNNOverLatentSpace{strategy: strategy}
	l.k = l.ReadParams(params).GetInt(model.K, DefaultLatentK)
	if l.k <= 0 {
		return nil, errors.NotValidf("k = %d", l.k)
	}
	l.Params = params
	return l, nil
}

// Fit mines concepts and computes the cosine similarity of every pair of users in the
// concept space.
func (l *KNNOverLatentSpace) Fit(trainSet *dataset.TrainSet) error {
	if trainSet == nil || trainSet.Count() == 0 {
		return errors.NotValidf("empty train set")
	}
	start := time.Now()
	l.SetTrainSet(nil)
	ratings := trainSet.ToMatrix()
	concepts, err := l.strategy.Mine(ratings)
	if err != nil {
		return errors.Trace(err)
	}
	if len(concepts) == 0 {
		return errors.Trace(model.ErrNoFactors)
	}
	rows, cols := ratings.Dims()
	a, _, err := fca.FactorMatrices(concepts, rows, cols)
	if err != nil {
		return errors.Trace(err)
	}
	l.concepts = concepts
	l.factors = dataset.NewMatrixFromDense(a)
	l.sims = SimilarityMatrix(l.factors, nil, nil, Cosine)
	l.SetTrainSet(trainSet)
	l.Logger().Info("fit KNNOverLatentSpace complete",
		zap.Int("n_factors", len(concepts)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (l *KNNOverLatentSpace) Strategy() fca.MiningStrategy {
	return l.strategy
}

// Factors returns the concepts spanning the latent space.
func (l *KNNOverLatentSpace) Factors() []*fca.Concept {
	return l.concepts
}

// Estimate averages the ratings of the k most similar users who rated the item, weighted by
// similarity. Users with NaN or zero similarity are skipped.
func (l *KNNOverLatentSpace) Estimate(userIndex, itemIndex int) (float64, model.Details, error) {
	trainSet := l.TrainSet()
	if trainSet == nil {
		return 0, model.Details{}, errors.Trace(model.ErrNotFitted)
	}
	if !trainSet.KnowsUser(userIndex) || !trainSet.KnowsItem(itemIndex) {
		return 0, model.Details{}, errors.Annotatef(model.ErrUnknownEntity, "user %d, item %d", userIndex, itemIndex)
	}
	type neighbor struct {
		user       int
		similarity float64
		rating     float64
	}
	var neighbors []neighbor
	for _, r := range trainSet.ItemRatings(itemIndex) {
		s, _ := l.sims.Get(userIndex, r.Index)
		if math.IsNaN(s) || s == 0 {
			continue
		}
		neighbors = append(neighbors, neighbor{user: r.Index, similarity: s, rating: r.Rating})
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].similarity > neighbors[j].similarity
	})
	if len(neighbors) > l.k {
		neighbors = neighbors[:l.k]
	}
	if len(neighbors) == 0 {
		return 0, model.Details{}, errors.Trace(model.ErrInsufficientNeighbors)
	}
	var sumSimilarity, sumRating float64
	details := model.Details{ActualK: len(neighbors), Neighbors: make([]int, 0, len(neighbors))}
	for _, n := range neighbors {
		sumSimilarity += n.similarity
		sumRating += n.similarity * n.rating
		details.Neighbors = append(details.Neighbors, n.user)
	}
	if sumSimilarity == 0 {
		return 0, model.Details{}, errors.Trace(model.ErrDegenerateSimilaritySum)
	}
	return sumRating / sumSimilarity, details, nil
}
