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

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Rating is an explicit rating given by a user to an item.
type Rating struct {
	UserId string
	ItemId string
	Rating float64
}

// IndexRating is a rating addressed by the dense index of the other side.
type IndexRating struct {
	Index  int
	Rating float64
}

// TrainSet is a rating history with users and items remapped to dense indices.
type TrainSet struct {
	userDict    *FreqDict
	itemDict    *FreqDict
	userRatings [][]IndexRating
	itemRatings [][]IndexRating
	count       int
	sum         float64
}

func NewTrainSet() *TrainSet {
	return &TrainSet{
		userDict: NewFreqDict(),
		itemDict: NewFreqDict(),
	}
}

// NewTrainSetFromRatings builds a train set from rating tuples.
func NewTrainSetFromRatings(ratings []Rating) *TrainSet {
	trainSet := NewTrainSet()
	for _, r := range ratings {
		trainSet.Add(r.UserId, r.ItemId, r.Rating)
	}
	return trainSet
}

// Add appends a rating.
func (t *TrainSet) Add(userId, itemId string, rating float64) {
	userIndex := t.userDict.Add(userId)
	itemIndex := t.itemDict.Add(itemId)
	if userIndex == len(t.userRatings) {
		t.userRatings = append(t.userRatings, nil)
	}
	if itemIndex == len(t.itemRatings) {
		t.itemRatings = append(t.itemRatings, nil)
	}
	t.userRatings[userIndex] = append(t.userRatings[userIndex], IndexRating{Index: itemIndex, Rating: rating})
	t.itemRatings[itemIndex] = append(t.itemRatings[itemIndex], IndexRating{Index: userIndex, Rating: rating})
	t.count++
	t.sum += rating
}

func (t *TrainSet) CountUsers() int {
	return t.userDict.Count()
}

func (t *TrainSet) CountItems() int {
	return t.itemDict.Count()
}

func (t *TrainSet) Count() int {
	return t.count
}

// GlobalMean returns the mean of all ratings, or NaN for an empty train set.
func (t *TrainSet) GlobalMean() float64 {
	if t.count == 0 {
		return math.NaN()
	}
	return t.sum / float64(t.count)
}

func (t *TrainSet) KnowsUser(userIndex int) bool {
	return userIndex >= 0 && userIndex < t.CountUsers()
}

func (t *TrainSet) KnowsItem(itemIndex int) bool {
	return itemIndex >= 0 && itemIndex < t.CountItems()
}

// UserIndex returns the dense index of a raw user id.
func (t *TrainSet) UserIndex(userId string) (int, bool) {
	return t.userDict.Index(userId)
}

// ItemIndex returns the dense index of a raw item id.
func (t *TrainSet) ItemIndex(itemId string) (int, bool) {
	return t.itemDict.Index(itemId)
}

func (t *TrainSet) UserId(userIndex int) (string, bool) {
	return t.userDict.Name(userIndex)
}

func (t *TrainSet) ItemId(itemIndex int) (string, bool) {
	return t.itemDict.Name(itemIndex)
}

// UserRatings returns the ratings given by a user, addressed by item index.
func (t *TrainSet) UserRatings(userIndex int) []IndexRating {
	return t.userRatings[userIndex]
}

// ItemRatings returns the ratings received by an item, addressed by user index.
func (t *TrainSet) ItemRatings(itemIndex int) []IndexRating {
	return t.itemRatings[itemIndex]
}

// ToMatrix converts the train set to a dense users x items matrix. Unobserved cells are NaN
// and a repeated (user, item) pair keeps its last rating.
func (t *TrainSet) ToMatrix() *Matrix {
	m := NewMatrix(t.CountUsers(), t.CountItems())
	for userIndex, ratings := range t.userRatings {
		for _, r := range ratings {
			m.Set(userIndex, r.Index, r.Rating)
		}
	}
	return m
}

// UserMeans returns the mean observed rating of every user.
func (t *TrainSet) UserMeans() []float64 {
	return means(t.userRatings)
}

// ItemMeans returns the mean observed rating of every item.
func (t *TrainSet) ItemMeans() []float64 {
	return means(t.itemRatings)
}

func means(ratings [][]IndexRating) []float64 {
	return lo.Map(ratings, func(rs []IndexRating, _ int) float64 {
		if len(rs) == 0 {
			return math.NaN()
		}
		return stat.Mean(lo.Map(rs, func(r IndexRating, _ int) float64 { return r.Rating }), nil)
	})
}
