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
	"math"
	"time"

	"github.com/gorse-io/biaknn/base/log"
	"github.com/gorse-io/biaknn/common/parallel"
	"github.com/gorse-io/biaknn/dataset"
	"github.com/gorse-io/biaknn/model"
	"github.com/juju/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// EstimatorFactory creates a fresh estimator for every fold.
type EstimatorFactory func() (model.Estimator, error)

type CVConfig struct {
	Jobs    int
	Scorers []Scorer
	// Progress is called once per completed fold, possibly from several goroutines.
	Progress func()
}

func NewCVConfig() *CVConfig {
	return &CVConfig{
		Jobs:    1,
		Scorers: DefaultScorers(20, 5),
	}
}

func (config *CVConfig) SetJobs(jobs int) *CVConfig {
	config.Jobs = jobs
	return config
}

func (config *CVConfig) SetScorers(scorers ...Scorer) *CVConfig {
	config.Scorers = scorers
	return config
}

func (config *CVConfig) SetProgress(progress func()) *CVConfig {
	config.Progress = progress
	return config
}

// FoldResult is the evaluation of one fold. Scores are aligned with the scorers.
type FoldResult struct {
	Fold     int
	Scores   []float64
	Train    TrainMeasures
	FitTime  time.Duration
	TestTime time.Duration
}

// CrossValidateResult collects the scores of a metric over all folds.
type CrossValidateResult struct {
	Name      string
	TestScore []float64
}

// MeanAndMargin returns the mean score and the largest deviation from it. NaN scores are
// ignored.
func (sv CrossValidateResult) MeanAndMargin() (float64, float64) {
	scores := make([]float64, 0, len(sv.TestScore))
	for _, score := range sv.TestScore {
		if !math.IsNaN(score) {
			scores = append(scores, score)
		}
	}
	if len(scores) == 0 {
		return math.NaN(), math.NaN()
	}
	mean := stat.Mean(scores, nil)
	margin := 0.0
	for _, score := range scores {
		temp := math.Abs(score - mean)
		if temp > margin {
			margin = temp
		}
	}
	return mean, margin
}

// CrossValidate fits a fresh estimator on the train set of every fold and scores its
// predictions on the test set. Folds run concurrently on config.Jobs workers.
func CrossValidate(ctx context.Context, folds []dataset.Fold, factory EstimatorFactory, config *CVConfig) ([]FoldResult, error) {
	if len(folds) == 0 {
		return nil, errors.NotValidf("no fold")
	}
	if config == nil {
		config = NewCVConfig()
	}
	results := make([]FoldResult, len(folds))
	completed := atomic.NewInt32(0)
	err := parallel.Parallel(ctx, len(folds), config.Jobs, func(_, i int) error {
		estimator, err := factory()
		if err != nil {
			return errors.Trace(err)
		}
		start := time.Now()
		if err = estimator.Fit(folds[i].Train); err != nil {
			return errors.Annotatef(err, "fold %d", i+1)
		}
		fitTime := time.Since(start)
		start = time.Now()
		predictions, err := model.PredictAll(estimator, folds[i].Test)
		if err != nil {
			return errors.Annotatef(err, "fold %d", i+1)
		}
		result := FoldResult{
			Fold:     i + 1,
			Scores:   make([]float64, len(config.Scorers)),
			Train:    MeasureTrain(estimator),
			FitTime:  fitTime,
			TestTime: time.Since(start),
		}
		for j, scorer := range config.Scorers {
			result.Scores[j] = scorer.Score(predictions)
		}
		results[i] = result
		log.Logger().Info("complete fold",
			zap.Int("fold", result.Fold),
			zap.Int32("completed", completed.Inc()),
			zap.Int("total", len(folds)),
			zap.Int("impossible", CountImpossible(predictions)),
			zap.Duration("fit_time", result.FitTime),
			zap.Duration("test_time", result.TestTime))
		if config.Progress != nil {
			config.Progress()
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return results, nil
}

// Summarize regroups fold results by scorer.
func Summarize(results []FoldResult, scorers []Scorer) []CrossValidateResult {
	summary := make([]CrossValidateResult, len(scorers))
	for j, scorer := range scorers {
		summary[j] = CrossValidateResult{Name: scorer.Name, TestScore: make([]float64, len(results))}
		for i, result := range results {
			summary[j].TestScore[i] = result.Scores[j]
		}
	}
	return summary
}
