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

package evaluation

import (
	"fmt"
	"math"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/biaknn/model"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Scorer is a named metric over the predictions of a test set.
type Scorer struct {
	Name         string
	BetterHigher bool
	Score        func(predictions []model.Prediction) float64
}

// DefaultScorers returns every metric, ranking metrics being computed over the top k
// predictions of each user with the given relevance threshold.
func DefaultScorers(k int, threshold float64) []Scorer {
	return []Scorer{
		{Name: "MAE", Score: MAE},
		{Name: "RMSE", Score: RMSE},
		{Name: fmt.Sprintf("Precision@%d", k), BetterHigher: true, Score: func(p []model.Prediction) float64 {
			return PrecisionAtK(p, k, threshold)
		}},
		{Name: fmt.Sprintf("Recall@%d", k), BetterHigher: true, Score: func(p []model.Prediction) float64 {
			return RecallAtK(p, k, threshold)
		}},
		{Name: fmt.Sprintf("NDCG@%d", k), BetterHigher: true, Score: func(p []model.Prediction) float64 {
			return NDCGAtK(p, k)
		}},
		{Name: "Impossible", Score: func(p []model.Prediction) float64 {
			return float64(CountImpossible(p))
		}},
		{Name: "Coverage", BetterHigher: true, Score: PredictionCoverage},
	}
}

func possible(predictions []model.Prediction) []model.Prediction {
	return lo.Filter(predictions, func(p model.Prediction, _ int) bool {
		return !p.Impossible && !math.IsNaN(p.Rating)
	})
}

// MAE is the mean absolute error of possible predictions, NaN if there are none.
func MAE(predictions []model.Prediction) float64 {
	errs := lo.Map(possible(predictions), func(p model.Prediction, _ int) float64 {
		return math.Abs(p.Estimate - p.Rating)
	})
	if len(errs) == 0 {
		return math.NaN()
	}
	return stat.Mean(errs, nil)
}

// RMSE is the root mean squared error of possible predictions, NaN if there are none.
func RMSE(predictions []model.Prediction) float64 {
	errs := lo.Map(possible(predictions), func(p model.Prediction, _ int) float64 {
		return (p.Estimate - p.Rating) * (p.Estimate - p.Rating)
	})
	if len(errs) == 0 {
		return math.NaN()
	}
	return math.Sqrt(stat.Mean(errs, nil))
}

func CountImpossible(predictions []model.Prediction) int {
	return lo.CountBy(predictions, func(p model.Prediction) bool { return p.Impossible })
}

// PredictionCoverage is the fraction of possible predictions.
func PredictionCoverage(predictions []model.Prediction) float64 {
	if len(predictions) == 0 {
		return math.NaN()
	}
	return 1 - float64(CountImpossible(predictions))/float64(len(predictions))
}

// rankByUser groups possible predictions by user, each group sorted by decreasing estimate.
func rankByUser(predictions []model.Prediction) [][]model.Prediction {
	groups := lo.GroupBy(possible(predictions), func(p model.Prediction) string { return p.UserId })
	users := lo.Keys(groups)
	sort.Strings(users)
	ranked := make([][]model.Prediction, 0, len(users))
	for _, user := range users {
		group := groups[user]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Estimate > group[j].Estimate
		})
		ranked = append(ranked, group)
	}
	return ranked
}

// hits counts, over all users, the relevant items, the recommended items in the top k
// and the relevant ones among them. An item is relevant if its rating reaches threshold
// and recommended if its estimate does.
func hits(predictions []model.Prediction, k int, threshold float64) (relevant, recommended, both int) {
	for _, group := range rankByUser(predictions) {
		relevantItems := mapset.NewThreadUnsafeSet[string]()
		for _, p := range group {
			if p.Rating >= threshold {
				relevantItems.Add(p.ItemId)
			}
		}
		relevant += relevantItems.Cardinality()
		for _, p := range group[:min(k, len(group))] {
			if p.Estimate >= threshold {
				recommended++
				if relevantItems.Contains(p.ItemId) {
					both++
				}
			}
		}
	}
	return
}

// PrecisionAtK is the micro-averaged precision of the top k predictions of every user.
func PrecisionAtK(predictions []model.Prediction, k int, threshold float64) float64 {
	_, recommended, both := hits(predictions, k, threshold)
	if recommended == 0 {
		return 0
	}
	return float64(both) / float64(recommended)
}

// RecallAtK is the micro-averaged recall of the top k predictions of every user.
func RecallAtK(predictions []model.Prediction, k int, threshold float64) float64 {
	relevant, _, both := hits(predictions, k, threshold)
	if relevant == 0 {
		return 0
	}
	return float64(both) / float64(relevant)
}

// NDCGAtK averages over users the normalized discounted cumulative gain of the top k
// predictions, gains being the observed ratings. Users with a zero ideal gain are skipped
// and NaN is returned if no user remains.
func NDCGAtK(predictions []model.Prediction, k int) float64 {
	var scores []float64
	for _, group := range rankByUser(predictions) {
		// DCG = \sum^{k}_{i=1} \frac {rel_i} {\log_2(i+1)}
		dcg := 0.0
		for i, p := range group[:min(k, len(group))] {
			dcg += p.Rating / math.Log2(float64(i)+2)
		}
		ideal := lo.Map(group, func(p model.Prediction, _ int) float64 { return p.Rating })
		sort.Sort(sort.Reverse(sort.Float64Slice(ideal)))
		idcg := 0.0
		for i, r := range ideal[:min(k, len(ideal))] {
			idcg += r / math.Log2(float64(i)+2)
		}
		if idcg == 0 {
			continue
		}
		scores = append(scores, dcg/idcg)
	}
	if len(scores) == 0 {
		return math.NaN()
	}
	return stat.Mean(scores, nil)
}
