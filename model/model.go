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

package model

import (
	"github.com/gorse-io/biaknn/base/log"
	"github.com/gorse-io/biaknn/dataset"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Details carries the diagnostics of a prediction.
type Details struct {
	// ActualK is the number of neighbors used.
	ActualK int
	// Neighbors are the indices of those neighbors: users for user-based estimators,
	// items for item-based ones.
	Neighbors []int
}

// Estimator is the interface of rating predictors. Estimate takes dense indices of the
// train set passed to the last Fit.
type Estimator interface {
	GetParams() Params
	Fit(trainSet *dataset.TrainSet) error
	Estimate(userIndex, itemIndex int) (float64, Details, error)
	TrainSet() *dataset.TrainSet
}

// BaseModel holds the hyper-parameters, the logger and the train set of an estimator.
type BaseModel struct {
	Params   Params
	logger   *zap.Logger
	trainSet *dataset.TrainSet
}

// GetParams returns all hyper-parameters.
func (model *BaseModel) GetParams() Params {
	return model.Params
}

// SetLogger sets the sink of fitting diagnostics. The default logger is used if nil.
func (model *BaseModel) SetLogger(logger *zap.Logger) {
	model.logger = logger
}

func (model *BaseModel) Logger() *zap.Logger {
	return log.OrDefault(model.logger)
}

// ReadParams reads params, reporting type mismatches to the logger of the model.
func (model *BaseModel) ReadParams(params Params) ParamsReader {
	return ParamsReader{Params: params, Logger: model.Logger()}
}

// TrainSet returns the train set of the last Fit, nil before fitting.
func (model *BaseModel) TrainSet() *dataset.TrainSet {
	return model.trainSet
}

func (model *BaseModel) SetTrainSet(trainSet *dataset.TrainSet) {
	model.trainSet = trainSet
}

// Prediction is the outcome of predicting a raw (user, item) pair.
type Prediction struct {
	UserId   string
	ItemId   string
	Rating   float64 // observed rating, NaN if unknown
	Estimate float64
	// Impossible is set when the estimator could not predict, Estimate then falls back to
	// the global mean and Reason holds the cause.
	Impossible bool
	Reason     error
	Details    Details
}

// Predict estimates the rating of raw ids. Prediction-impossible errors are absorbed into
// the returned prediction, any other error is returned.
func Predict(estimator Estimator, userId, itemId string, rating float64) (Prediction, error) {
	trainSet := estimator.TrainSet()
	if trainSet == nil {
		return Prediction{}, errors.Trace(ErrNotFitted)
	}
	prediction := Prediction{UserId: userId, ItemId: itemId, Rating: rating}
	userIndex, ok := trainSet.UserIndex(userId)
	if !ok {
		userIndex = -1
	}
	itemIndex, ok := trainSet.ItemIndex(itemId)
	if !ok {
		itemIndex = -1
	}
	estimate, details, err := estimator.Estimate(userIndex, itemIndex)
	if errors.Is(err, ErrPredictionImpossible) {
		prediction.Estimate = trainSet.GlobalMean()
		prediction.Impossible = true
		prediction.Reason = err
		return prediction, nil
	} else if err != nil {
		return Prediction{}, errors.Trace(err)
	}
	prediction.Estimate = estimate
	prediction.Details = details
	return prediction, nil
}

// PredictAll predicts a list of ratings.
func PredictAll(estimator Estimator, ratings []dataset.Rating) ([]Prediction, error) {
	predictions := make([]Prediction, 0, len(ratings))
	for _, r := range ratings {
		p, err := Predict(estimator, r.UserId, r.ItemId, r.Rating)
		if err != nil {
			return nil, errors.Trace(err)
		}
		predictions = append(predictions, p)
	}
	return predictions, nil
}
