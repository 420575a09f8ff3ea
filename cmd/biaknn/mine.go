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
	"os"
	"strings"
	"time"

	"github.com/gorse-io/biaknn/base/log"
	"github.com/gorse-io/biaknn/dataset"
	"github.com/gorse-io/biaknn/fca"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mineCommand = &cobra.Command{
	Use:   "mine",
	Short: "Mine biclusters from ratings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		sep, _ := cmd.Flags().GetString("sep")
		header, _ := cmd.Flags().GetBool("header")
		coverage, _ := cmd.Flags().GetFloat64("coverage")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		patternsPath, _ := cmd.Flags().GetString("patterns")
		closed, _ := cmd.Flags().GetBool("closed")

		// Load data
		ratings, err := dataset.LoadRatingsFromFile(input, sep, header)
		if err != nil {
			return errors.Trace(err)
		}
		trainSet := dataset.NewTrainSetFromRatings(ratings)
		log.Logger().Info("load ratings",
			zap.String("input", input),
			zap.Int("n_users", trainSet.CountUsers()),
			zap.Int("n_items", trainSet.CountItems()),
			zap.Int("n_ratings", trainSet.Count()))

		// Mine biclusters
		var strategy fca.MiningStrategy
		if patternsPath != "" {
			f, err := os.Open(patternsPath)
			if err != nil {
				return errors.Trace(err)
			}
			patterns, err := fca.LoadPatterns(f)
			_ = f.Close()
			if err != nil {
				return errors.Trace(err)
			}
			strategy = fca.NewPatternStrategy(threshold, patterns, closed)
		} else {
			if strategy, err = fca.NewGreConDStrategy(threshold, coverage); err != nil {
				return errors.Trace(err)
			}
		}
		start := time.Now()
		concepts, err := strategy.Mine(trainSet.ToMatrix())
		if err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("complete mining", zap.Int("n_concepts", len(concepts)), zap.Duration("duration", time.Since(start)))

		// Render table
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("#", "Users", "Items", "Extent", "Intent")
		for i, c := range concepts {
			if err = table.Append([]string{
				fmt.Sprint(i + 1),
				fmt.Sprint(len(c.Extent)),
				fmt.Sprint(len(c.Intent)),
				joinIds(c.Extent, trainSet.UserId),
				joinIds(c.Intent, trainSet.ItemId),
			}); err != nil {
				return errors.Trace(err)
			}
		}
		if err = table.Render(); err != nil {
			return errors.Trace(err)
		}
		if s, ok := strategy.(*fca.GreConDStrategy); ok {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "coverage: %.4f\n", s.ActualCoverage())
		}
		return nil
	},
}

func init() {
	mineCommand.Flags().StringP("input", "i", "", "rating file")
	mineCommand.Flags().String("sep", ",", "field separator, empty for whitespace")
	mineCommand.Flags().Bool("header", false, "skip the first line")
	mineCommand.Flags().Float64("coverage", 1, "coverage of GreConD")
	mineCommand.Flags().Float64("threshold", fca.DefaultBinarizationThreshold, "minimal relevant rating")
	mineCommand.Flags().String("patterns", "", "adapt itemsets from this file instead of running GreConD")
	mineCommand.Flags().Bool("closed", false, "close itemsets into formal concepts")
	_ = mineCommand.MarkFlagRequired("input")
}

func joinIds(indices []int, name func(int) (string, bool)) string {
	return strings.Join(lo.Map(indices, func(i int, _ int) string {
		id, _ := name(i)
		return id
	}), " ")
}
