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
	"sync"
	"time"

	"github.com/gorse-io/biaknn/dataset"
	"github.com/gorse-io/biaknn/fca"
	"github.com/gorse-io/biaknn/model"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Axis selects whether neighbors are users or items.
type Axis string

const (
	UserBased Axis = "user"
	ItemBased Axis = "item"
)

const (
	DefaultK                   = 5
	DefaultBiclusterSimilarity = WeightFrequencyName
)

// BiAKNN is a KNN estimator whose neighbors are restricted, for every user, to the union of
// the biclusters most relevant to that user.
type BiAKNN struct {
	model.BaseModel
	strategy fca.MiningStrategy

	// hyper-parameters
	axis                Axis
	k                   int
	topBiclusters       int
	biclusterSimilarity BiclusterSimilarity
	similarity          Similarity
	forceInclusion      bool
	filters             []fca.Filter

	// fitted state
	ratings       *dataset.Matrix
	ratingsT      *dataset.Matrix
	biclusters    []*fca.Concept
	neighborhoods []*fca.Concept
	userMeans     []float64
	itemMeans     []float64
	stats         NeighborhoodStats

	mu    sync.Mutex
	views map[int]*neighborhoodView
}

// neighborhoodView is the submatrix of a user's neighborhood seen from the main axis,
// with its lazily filled similarity cache.
type neighborhoodView struct {
	main      []int
	secondary []int
	sub       *dataset.Matrix // main x secondary
	rowMeans  []float64       // means of the main entities, aligned with the rows of sub
	colMeans  []float64       // means of the secondary entities, aligned with the columns of sub
	cache     *SimilarityCache
}

// NewBiAKNN creates an estimator mining biclusters with strategy.
func NewBiAKNN(strategy fca.MiningStrategy, params model.Params) (*BiAKNN, error) {
	if strategy == nil {
		return nil, errors.NotValidf("nil mining strategy")
	}
	b := &BiAKNN{strategy: strategy}
	if err := b.SetParams(params); err != nil {
		return nil, errors.Trace(err)
	}
	return b, nil
}

// SetParams validates and applies hyper-parameters. The estimator is left untouched on error.
func (b *BiAKNN) SetParams(params model.Params) error {
	reader := b.ReadParams(params)
	axis := Axis(reader.GetString(model.KNNType, string(ItemBased)))
	if axis != UserBased && axis != ItemBased {
		return errors.NotValidf("knn type %q", axis)
	}
	k := reader.GetInt(model.K, DefaultK)
	if k <= 0 {
		return errors.NotValidf("k = %d", k)
	}
	topBiclusters := reader.GetInt(model.TopBiclusters, 0)
	if topBiclusters < 0 {
		return errors.NotValidf("number of top biclusters %d", topBiclusters)
	}
	biclusterSimilarity, err := BiclusterSimilarityByName(reader.GetString(model.BiclusterSimilarity, DefaultBiclusterSimilarity))
	if err != nil {
		return errors.Trace(err)
	}
	var similarity Similarity
	if name := reader.GetString(model.Similarity, ""); name != "" {
		if similarity, err = SimilarityByName(name); err != nil {
			return errors.Trace(err)
		}
	}
	var filters []fca.Filter
	for _, f := range []struct {
		name   model.ParamName
		filter func(float64) fca.Filter
	}{
		{model.MinSparsity, fca.SparsityFilter},
		{model.MinCoverage, fca.CoverageFilter},
		{model.MinRelativeSize, fca.RelativeSizeFilter},
	} {
		threshold := reader.GetFloat64(f.name, 0)
		if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			return errors.NotValidf("%s = %v", f.name, threshold)
		}
		if threshold > 0 {
			filters = append(filters, f.filter(threshold))
		}
	}

	b.Params = params
	b.axis = axis
	b.k = k
	b.topBiclusters = topBiclusters
	b.biclusterSimilarity = biclusterSimilarity
	b.similarity = similarity
	b.forceInclusion = reader.GetBool(model.ForceInclusion, false)
	b.filters = filters
	return nil
}

// SetSimilarity replaces the neighbor similarity. nil restores the default of the axis.
func (b *BiAKNN) SetSimilarity(similarity Similarity) {
	b.similarity = similarity
}

// SetBiclusterSimilarity replaces the scoring of biclusters against users.
func (b *BiAKNN) SetBiclusterSimilarity(similarity BiclusterSimilarity) {
	b.biclusterSimilarity = similarity
}

// Fit mines biclusters from the train set and builds the neighborhood of every user.
func (b *BiAKNN) Fit(trainSet *dataset.TrainSet) error {
	if trainSet == nil || trainSet.Count() == 0 {
		return errors.NotValidf("empty train set")
	}
	start := time.Now()
	logger := b.Logger()
	b.SetTrainSet(nil)

	ratings := trainSet.ToMatrix()
	biclusters, err := b.strategy.Mine(ratings)
	if err != nil {
		return errors.Trace(err)
	}
	mined := len(biclusters)
	if biclusters, err = fca.ApplyFilters(ratings, biclusters, b.filters...); err != nil {
		return errors.Trace(err)
	}
	logger.Debug("mine biclusters", zap.Int("mined", mined), zap.Int("kept", len(biclusters)))
	if len(biclusters) == 0 {
		return errors.Trace(model.ErrNoBiclusters)
	}

	topBiclusters := b.topBiclusters
	if topBiclusters == 0 {
		topBiclusters = len(biclusters)
	}
	builder := NeighborhoodBuilder{
		TopK:           topBiclusters,
		Similarity:     b.biclusterSimilarity,
		Threshold:      b.strategy.BinarizationThreshold(),
		ForceInclusion: b.forceInclusion,
	}
	neighborhoods, stats, err := builder.Build(ratings, biclusters)
	if err != nil {
		return errors.Trace(err)
	}
	b.neighborhoods, b.stats = neighborhoods, stats
	b.ratings = ratings
	b.ratingsT = ratings.T()
	b.biclusters = biclusters
	b.userMeans = trainSet.UserMeans()
	b.itemMeans = trainSet.ItemMeans()
	b.views = make(map[int]*neighborhoodView)
	b.SetTrainSet(trainSet)

	logger.Info("fit BiAKNN complete",
		zap.String("knn_type", string(b.axis)),
		zap.Int("n_biclusters", len(biclusters)),
		zap.Float64("user_coverage", b.stats.UserCoverage),
		zap.Float64("item_coverage", b.stats.ItemCoverage),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Strategy returns the strategy mining the biclusters.
func (b *BiAKNN) Strategy() fca.MiningStrategy {
	return b.strategy
}

// Biclusters returns the biclusters kept by the last Fit.
func (b *BiAKNN) Biclusters() []*fca.Concept {
	return b.biclusters
}

// UserCoverage is the fraction of users belonging to their own neighborhood.
func (b *BiAKNN) UserCoverage() float64 {
	return b.stats.UserCoverage
}

// ItemCoverage is the mean fraction of items in a neighborhood.
func (b *BiAKNN) ItemCoverage() float64 {
	return b.stats.ItemCoverage
}

// Neighborhood returns the merged bicluster of a user.
func (b *BiAKNN) Neighborhood(userIndex int) *fca.Concept {
	return b.neighborhoods[userIndex]
}

// Estimate predicts the rating of an item by a user from the k most similar neighbors inside
// the user's neighborhood.
func (b *BiAKNN) Estimate(userIndex, itemIndex int) (float64, model.Details, error) {
	trainSet := b.TrainSet()
	if trainSet == nil {
		return 0, model.Details{}, errors.Trace(model.ErrNotFitted)
	}
	if !trainSet.KnowsUser(userIndex) || !trainSet.KnowsItem(itemIndex) {
		return 0, model.Details{}, errors.Annotatef(model.ErrUnknownEntity, "user %d, item %d", userIndex, itemIndex)
	}
	neighborhood := b.neighborhoods[userIndex]
	if neighborhood.Empty() {
		return 0, model.Details{}, errors.Trace(model.ErrInsufficientNeighbors)
	}
	if !neighborhood.HasRow(userIndex) || !neighborhood.HasColumn(itemIndex) {
		return 0, model.Details{}, errors.Trace(model.ErrNotInNeighborhood)
	}

	mainIndex, secondaryIndex, means := userIndex, itemIndex, b.userMeans
	similarity := Similarity(Pearson)
	if b.axis == ItemBased {
		mainIndex, secondaryIndex, means = itemIndex, userIndex, b.itemMeans
		similarity = AdjustedCosine
	}
	if b.similarity != nil {
		similarity = b.similarity
	}
	view := b.view(userIndex)
	mainPos := sort.SearchInts(view.main, mainIndex)
	secondaryPos := sort.SearchInts(view.secondary, secondaryIndex)

	type neighbor struct {
		pos        int
		similarity float64
		rating     float64
	}
	var neighbors []neighbor
	for pos := range view.main {
		rating := view.sub.At(pos, secondaryPos)
		if math.IsNaN(rating) {
			continue
		}
		s := GetSimilarity(mainPos, pos, view.sub, view.rowMeans, view.colMeans, view.cache, similarity)
		if math.IsNaN(s) || s == 0 {
			continue
		}
		neighbors = append(neighbors, neighbor{pos: pos, similarity: s, rating: rating})
	}
	if len(neighbors) == 0 {
		return 0, model.Details{}, errors.Trace(model.ErrNoValidNeighbors)
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].similarity < neighbors[j].similarity
	})
	if len(neighbors) > b.k {
		neighbors = neighbors[len(neighbors)-b.k:]
	}

	var sumSimilarity, sumRating float64
	details := model.Details{ActualK: len(neighbors), Neighbors: make([]int, 0, len(neighbors))}
	for _, n := range neighbors {
		index := view.main[n.pos]
		sumSimilarity += n.similarity
		sumRating += n.similarity * (n.rating - means[index])
		details.Neighbors = append(details.Neighbors, index)
	}
	if sumSimilarity == 0 {
		return 0, model.Details{}, errors.Trace(model.ErrDegenerateSimilaritySum)
	}
	return means[mainIndex] + sumRating/sumSimilarity, details, nil
}

// view returns the neighborhood view of a user, creating it on first use.
func (b *BiAKNN) view(userIndex int) *neighborhoodView {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.views[userIndex]; ok {
		return v
	}
	neighborhood := b.neighborhoods[userIndex]
	v := &neighborhoodView{}
	if b.axis == UserBased {
		v.main, v.secondary = neighborhood.Extent, neighborhood.Intent
		v.sub = b.ratings.Sub(v.main, v.secondary)
		v.rowMeans = pick(b.userMeans, v.main)
		v.colMeans = pick(b.itemMeans, v.secondary)
	} else {
		v.main, v.secondary = neighborhood.Intent, neighborhood.Extent
		v.sub = b.ratingsT.Sub(v.main, v.secondary)
		v.rowMeans = pick(b.itemMeans, v.main)
		v.colMeans = pick(b.userMeans, v.secondary)
	}
	v.cache = NewSimilarityCache(len(v.main))
	b.views[userIndex] = v
	return v
}

func pick(values []float64, indices []int) []float64 {
	picked := make([]float64, len(indices))
	for i, idx := range indices {
		picked[i] = values[idx]
	}
	return picked
}
