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

package dataset

import (
	"math/rand"

	"github.com/juju/errors"
)

// Fold is one train/test partition of a rating history.
type Fold struct {
	Train *TrainSet
	Test  []Rating
}

// KFold shuffles ratings with the given seed and splits them into k folds. The first
// len(ratings)%k folds receive one extra test rating.
func KFold(ratings []Rating, k int, seed int64) ([]Fold, error) {
	if k < 2 {
		return nil, errors.NotValidf("number of folds %d", k)
	}
	if len(ratings) < k {
		return nil, errors.NotValidf("%d ratings for %d folds", len(ratings), k)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(len(ratings))
	folds := make([]Fold, k)
	foldSize := len(ratings) / k
	begin, end := 0, 0
	for i := 0; i < k; i++ {
		end += foldSize
		if i < len(ratings)%k {
			end++
		}
		train := NewTrainSet()
		for _, idx := range perm[:begin] {
			train.Add(ratings[idx].UserId, ratings[idx].ItemId, ratings[idx].Rating)
		}
		for _, idx := range perm[end:] {
			train.Add(ratings[idx].UserId, ratings[idx].ItemId, ratings[idx].Rating)
		}
		test := make([]Rating, 0, end-begin)
		for _, idx := range perm[begin:end] {
			test = append(test, ratings[idx])
		}
		folds[i] = Fold{Train: train, Test: test}
		begin = end
	}
	return folds, nil
}
