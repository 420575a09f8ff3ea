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
	"math"
	"testing"

	"github.com/gorse-io/biaknn/model"
	"github.com/stretchr/testify/assert"
)

func testPredictions() []model.Prediction {
	return []model.Prediction{
		{UserId: "a", ItemId: "x", Rating: 5, Estimate: 3},
		{UserId: "a", ItemId: "y", Rating: 1, Estimate: 4},
		{UserId: "b", ItemId: "x", Rating: 4, Estimate: 4.5},
		{UserId: "c", ItemId: "z", Rating: 3, Estimate: 3.5, Impossible: true, Reason: model.ErrUnknownEntity},
	}
}

func TestMAE(t *testing.T) {
	assert.InDelta(t, 5.5/3, MAE(testPredictions()), 1e-12)
	assert.True(t, math.IsNaN(MAE(nil)))
}

func TestRMSE(t *testing.T) {
	assert.InDelta(t, math.Sqrt(13.25/3), RMSE(testPredictions()), 1e-12)
	assert.True(t, math.IsNaN(RMSE(nil)))
}

func TestPredictionCoverage(t *testing.T) {
	assert.Equal(t, 1, CountImpossible(testPredictions()))
	assert.Equal(t, 0.75, PredictionCoverage(testPredictions()))
	assert.True(t, math.IsNaN(PredictionCoverage(nil)))
}

func TestPrecisionAndRecallAtK(t *testing.T) {
	predictions := testPredictions()
	assert.Equal(t, 0.5, PrecisionAtK(predictions, 1, 4))
	assert.Equal(t, 0.5, RecallAtK(predictions, 1, 4))
	assert.Equal(t, 0.5, PrecisionAtK(predictions, 2, 4))
	assert.InDelta(t, 2.0/3, PrecisionAtK(predictions, 2, 3), 1e-12)
	assert.Equal(t, 1.0, RecallAtK(predictions, 2, 3))
	// nothing recommended or relevant
	assert.Zero(t, PrecisionAtK(predictions, 2, 10))
	assert.Zero(t, RecallAtK(predictions, 2, 10))
}

func TestNDCGAtK(t *testing.T) {
	predictions := testPredictions()
	assert.InDelta(t, 0.6, NDCGAtK(predictions, 1), 1e-12)
	ndcgA := (1 + 5/math.Log2(3)) / (5 + 1/math.Log2(3))
	assert.InDelta(t, (ndcgA+1)/2, NDCGAtK(predictions, 2), 1e-12)
	assert.True(t, math.IsNaN(NDCGAtK(nil, 2)))
}

func TestDefaultScorers(t *testing.T) {
	scorers := DefaultScorers(10, 4)
	names := make([]string, len(scorers))
	for i, s := range scorers {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"MAE", "RMSE", "Precision@10", "Recall@10", "NDCG@10", "Impossible", "Coverage"}, names)
	assert.Equal(t, 1.0, scorers[5].Score(testPredictions()))
}
