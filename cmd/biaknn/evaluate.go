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

package main

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/gorse-io/biaknn/base/log"
	"github.com/gorse-io/biaknn/config"
	"github.com/gorse-io/biaknn/dataset"
	"github.com/gorse-io/biaknn/evaluation"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var evaluateCommand = &cobra.Command{
	Use:   "evaluate",
	Short: "Cross-validate an estimator.",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			return errors.NotValidf("missing --config")
		}
		runId := uuid.NewString()
		logger := log.Logger().With(zap.String("run_id", runId))
		logger.Info("load config", zap.String("config", configPath))
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			return errors.Trace(err)
		}
		scorers, err := conf.Scorers()
		if err != nil {
			return errors.Trace(err)
		}

		// Load data
		ratings, err := conf.LoadRatings()
		if err != nil {
			return errors.Trace(err)
		}
		folds, err := dataset.KFold(ratings, conf.Evaluation.Folds, conf.Evaluation.Seed)
		if err != nil {
			return errors.Trace(err)
		}
		logger.Info("load ratings", zap.String("path", conf.Dataset.Path), zap.Int("n_ratings", len(ratings)))

		// Cross validation
		bar := progressbar.NewOptions(len(folds),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("evaluate"),
			progressbar.OptionShowCount())
		cvConfig := evaluation.NewCVConfig().
			SetJobs(conf.Evaluation.Jobs).
			SetScorers(scorers...).
			SetProgress(func() { _ = bar.Add(1) })
		start := time.Now()
		results, err := evaluation.CrossValidate(cmd.Context(), folds, conf.NewEstimator, cvConfig)
		if err != nil {
			return errors.Trace(err)
		}
		_ = bar.Finish()
		elapsed := time.Since(start)

		// Render table
		header := make([]any, len(folds)+2)
		header[0] = ""
		for i := range folds {
			header[i+1] = fmt.Sprintf("Fold %d", i+1)
		}
		header[len(folds)+1] = "Mean"
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header(header...)
		for _, v := range evaluation.Summarize(results, scorers) {
			if err = table.Append(scoreRow(v)); err != nil {
				return errors.Trace(err)
			}
		}
		for _, v := range trainRows(results, conf.KNN.Model) {
			if err = table.Append(scoreRow(v)); err != nil {
				return errors.Trace(err)
			}
		}
		if err = table.Render(); err != nil {
			return errors.Trace(err)
		}
		logger.Info("complete cross validation", zap.Duration("duration", elapsed))
		return nil
	},
}

func scoreRow(v evaluation.CrossValidateResult) []string {
	row := make([]string, len(v.TestScore)+2)
	row[0] = v.Name
	for i, value := range v.TestScore {
		row[i+1] = fmt.Sprintf("%f", value)
	}
	mean, margin := v.MeanAndMargin()
	row[len(v.TestScore)+1] = fmt.Sprintf("%f(±%f)", mean, margin)
	return row
}

type trainMeasure struct {
	name  string
	value func(evaluation.FoldResult) float64
}

// trainRows reports the train measures that apply to the evaluated model.
func trainRows(results []evaluation.FoldResult, modelName string) []evaluation.CrossValidateResult {
	measures := []trainMeasure{
		{"Biclusters", func(r evaluation.FoldResult) float64 { return float64(r.Train.BiclusterCount) }},
		{"Mean bicluster size", func(r evaluation.FoldResult) float64 { return r.Train.MeanBiclusterSize }},
		{"Mining coverage", func(r evaluation.FoldResult) float64 { return r.Train.BiclusteringCoverage }},
		{"Fit time (s)", func(r evaluation.FoldResult) float64 { return r.FitTime.Seconds() }},
		{"Test time (s)", func(r evaluation.FoldResult) float64 { return r.TestTime.Seconds() }},
	}
	if modelName == config.BiAKNNModel {
		measures = append(measures,
			trainMeasure{"User coverage", func(r evaluation.FoldResult) float64 { return r.Train.UserCoverage }},
			trainMeasure{"Item coverage", func(r evaluation.FoldResult) float64 { return r.Train.ItemCoverage }},
		)
	}
	rows := make([]evaluation.CrossValidateResult, 0, len(measures))
	for _, m := range measures {
		row := evaluation.CrossValidateResult{Name: m.name, TestScore: make([]float64, len(results))}
		for i, r := range results {
			row.TestScore[i] = m.value(r)
		}
		if allNaN(row.TestScore) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func allNaN(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
