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
	"context"
	"fmt"
	"testing"

	"github.com/gorse-io/biaknn/dataset"
	"github.com/gorse-io/biaknn/model"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func testFolds(t *testing.T) []dataset.Fold {
	var ratings []dataset.Rating
	for u := 0; u < 4; u++ {
		for i := 0; i < 5; i++ {
			ratings = append(ratings, dataset.Rating{
				UserId: fmt.Sprint(u),
				ItemId: fmt.Sprint(i),
				Rating: float64(1 + (u+i)%5),
			})
		}
	}
	folds, err := dataset.KFold(ratings, 5, 0)
	require.NoError(t, err)
	return folds
}

func TestCrossValidate(t *testing.T) {
	folds := testFolds(t)
	count := atomic.NewInt32(0)
	config := NewCVConfig().
		SetJobs(2).
		SetScorers(Scorer{Name: "Coverage", Score: PredictionCoverage}, Scorer{Name: "Count", Score: func(p []model.Prediction) float64 {
			return float64(len(p))
		}}).
		SetProgress(func() { count.Inc() })
	results, err := CrossValidate(context.Background(), folds, func() (model.Estimator, error) {
		return &constantEstimator{value: 3}, nil
	}, config)
	require.NoError(t, err)
	assert.Equal(t, int32(5), count.Load())
	assert.Len(t, results, 5)
	for i, result := range results {
		assert.Equal(t, i+1, result.Fold)
		assert.Equal(t, float64(len(folds[i].Test)), result.Scores[1])
		assert.Zero(t, result.Train.BiclusterCount)
	}

	summary := Summarize(results, config.Scorers)
	assert.Equal(t, "Count", summary[1].Name)
	assert.Equal(t, []float64{4, 4, 4, 4, 4}, summary[1].TestScore)
	mean, margin := summary[1].MeanAndMargin()
	assert.Equal(t, 4.0, mean)
	assert.Zero(t, margin)
}

func TestCrossValidate_Errors(t *testing.T) {
	folds := testFolds(t)
	_, err := CrossValidate(context.Background(), nil, nil, nil)
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = CrossValidate(context.Background(), folds, func() (model.Estimator, error) {
		return nil, errors.New("no estimator")
	}, NewCVConfig().SetJobs(3))
	assert.ErrorContains(t, err, "no estimator")

	_, err = CrossValidate(context.Background(), folds, func() (model.Estimator, error) {
		return &constantEstimator{fitErr: model.ErrNoBiclusters}, nil
	}, nil)
	assert.True(t, errors.Is(err, model.ErrNoBiclusters))
	assert.ErrorContains(t, err, "fold 1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = CrossValidate(ctx, folds, func() (model.Estimator, error) {
		return &constantEstimator{}, nil
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCrossValidateResult_MeanAndMargin(t *testing.T) {
	out := CrossValidateResult{TestScore: []float64{1, 2, 3, 4, 5}}
	mean, margin := out.MeanAndMargin()
	assert.Equal(t, 3.0, mean)
	assert.Equal(t, 2.0, margin)
}
