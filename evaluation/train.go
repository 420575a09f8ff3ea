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

	"github.com/gorse-io/biaknn/fca"
	"github.com/gorse-io/biaknn/model"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// TrainMeasures describes a fitted estimator. Measures that do not apply are NaN.
type TrainMeasures struct {
	BiclusterCount       int
	MeanBiclusterSize    float64
	MeanBiclusterExtent  float64
	MeanBiclusterIntent  float64
	BiclusteringCoverage float64
	UserCoverage         float64
	ItemCoverage         float64
}

type biclusterModel interface {
	Biclusters() []*fca.Concept
	UserCoverage() float64
	ItemCoverage() float64
}

type factorModel interface {
	Factors() []*fca.Concept
}

type strategyModel interface {
	Strategy() fca.MiningStrategy
}

type coverageStrategy interface {
	ActualCoverage() float64
}

// MeasureTrain computes the train measures of a fitted estimator.
func MeasureTrain(estimator model.Estimator) TrainMeasures {
	measures := TrainMeasures{
		MeanBiclusterSize:    math.NaN(),
		MeanBiclusterExtent:  math.NaN(),
		MeanBiclusterIntent:  math.NaN(),
		BiclusteringCoverage: math.NaN(),
		UserCoverage:         math.NaN(),
		ItemCoverage:         math.NaN(),
	}
	var concepts []*fca.Concept
	switch m := estimator.(type) {
	case biclusterModel:
		concepts = m.Biclusters()
		measures.UserCoverage = m.UserCoverage()
		measures.ItemCoverage = m.ItemCoverage()
	case factorModel:
		concepts = m.Factors()
	}
	if m, ok := estimator.(strategyModel); ok {
		if s, ok := m.Strategy().(coverageStrategy); ok {
			measures.BiclusteringCoverage = s.ActualCoverage()
		}
	}
	measures.BiclusterCount = len(concepts)
	if len(concepts) > 0 {
		measures.MeanBiclusterSize = stat.Mean(lo.Map(concepts, func(c *fca.Concept, _ int) float64 {
			return float64(c.Area())
		}), nil)
		measures.MeanBiclusterExtent = stat.Mean(lo.Map(concepts, func(c *fca.Concept, _ int) float64 {
			return float64(len(c.Extent))
		}), nil)
		measures.MeanBiclusterIntent = stat.Mean(lo.Map(concepts, func(c *fca.Concept, _ int) float64 {
			return float64(len(c.Intent))
		}), nil)
	}
	return measures
}
