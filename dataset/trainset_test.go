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
	"math"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestTrainSet(t *testing.T) {
	trainSet := NewTrainSetFromRatings([]Rating{
		{"u1", "i1", 5},
		{"u1", "i2", 3},
		{"u2", "i2", 4},
		{"u3", "i3", 1},
	})
	assert.Equal(t, 3, trainSet.CountUsers())
	assert.Equal(t, 3, trainSet.CountItems())
	assert.Equal(t, 4, trainSet.Count())
	assert.InDelta(t, 13.0/4, trainSet.GlobalMean(), 1e-12)

	userIndex, ok := trainSet.UserIndex("u2")
	assert.True(t, ok)
	assert.Equal(t, 1, userIndex)
	_, ok = trainSet.UserIndex("u4")
	assert.False(t, ok)
	itemId, ok := trainSet.ItemId(2)
	assert.True(t, ok)
	assert.Equal(t, "i3", itemId)

	assert.True(t, trainSet.KnowsUser(2))
	assert.False(t, trainSet.KnowsUser(3))
	assert.False(t, trainSet.KnowsItem(-1))

	assert.Equal(t, []IndexRating{{0, 5}, {1, 3}}, trainSet.UserRatings(0))
	assert.Equal(t, []IndexRating{{0, 3}, {1, 4}}, trainSet.ItemRatings(1))

	assert.Equal(t, []float64{4, 4, 1}, trainSet.UserMeans())
	assert.Equal(t, []float64{5, 3.5, 1}, trainSet.ItemMeans())

	m := trainSet.ToMatrix()
	assert.Equal(t, 5.0, m.At(0, 0))
	assert.Equal(t, 4.0, m.At(1, 1))
	assert.True(t, math.IsNaN(m.At(1, 0)))
	assert.True(t, math.IsNaN(m.At(2, 1)))
}

func TestTrainSet_Empty(t *testing.T) {
	trainSet := NewTrainSet()
	assert.Zero(t, trainSet.Count())
	assert.True(t, math.IsNaN(trainSet.GlobalMean()))
	assert.Empty(t, trainSet.UserMeans())
}

func TestLoadRatings(t *testing.T) {
	text := "user,item,rating\n1,10,4.5\n2,10,3\n\n2,11,1,874965758\n"
	ratings, err := LoadRatings(strings.NewReader(text), ",", true)
	assert.NoError(t, err)
	assert.Equal(t, []Rating{
		{"1", "10", 4.5},
		{"2", "10", 3},
		{"2", "11", 1},
	}, ratings)

	ratings, err = LoadRatings(strings.NewReader("196\t242\t3\t881250949\n186 302 3\n"), "", false)
	assert.NoError(t, err)
	assert.Len(t, ratings, 2)
	assert.Equal(t, Rating{"186", "302", 3}, ratings[1])

	_, err = LoadRatings(strings.NewReader("1,2\n"), ",", false)
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = LoadRatings(strings.NewReader("1,2,x\n"), ",", false)
	assert.Error(t, err)
}

func TestKFold(t *testing.T) {
	var ratings []Rating
	for i := 0; i < 23; i++ {
		ratings = append(ratings, Rating{
			UserId: string(rune('a' + i%5)),
			ItemId: string(rune('A' + i)),
			Rating: float64(i%5 + 1),
		})
	}
	folds, err := KFold(ratings, 5, 0)
	assert.NoError(t, err)
	assert.Len(t, folds, 5)
	sizes := lo.Map(folds, func(f Fold, _ int) int { return len(f.Test) })
	assert.Equal(t, []int{5, 5, 5, 4, 4}, sizes)
	seen := make(map[string]int)
	for _, fold := range folds {
		assert.Equal(t, len(ratings), fold.Train.Count()+len(fold.Test))
		for _, r := range fold.Test {
			seen[r.ItemId]++
		}
	}
	// every rating is tested exactly once
	assert.Len(t, seen, len(ratings))
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}

	again, err := KFold(ratings, 5, 0)
	assert.NoError(t, err)
	assert.Equal(t, folds[0].Test, again[0].Test)

	_, err = KFold(ratings, 1, 0)
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = KFold(ratings[:3], 5, 0)
	assert.True(t, errors.Is(err, errors.NotValid))
}
