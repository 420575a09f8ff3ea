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

package fca

import (
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// GreConD greedily mines formal concepts until the fraction of true cells covered by their
// rectangles reaches coverage. It returns the concepts in the order they were found and the
// achieved coverage.
//
// Each concept starts from an empty intent D. While some column j improves it, D is replaced
// by i(t(D ∪ {j})) for the column whose closed rectangle covers the most still-uncovered
// cells. Ties go to the lowest column index.
func GreConD(m *BinaryMatrix, coverage float64) ([]*Concept, float64, error) {
	if math.IsNaN(coverage) || coverage <= 0 || coverage > 1 {
		return nil, 0, errors.NotValidf("coverage %v out of range (0, 1]", coverage)
	}
	nRows, nCols := m.Dims()
	total := m.Count()
	if total == 0 {
		return nil, 0, errors.NotValidf("binary matrix without true cells")
	}

	uncovered := make([]*bitset.BitSet, nRows)
	for i, row := range m.rows {
		uncovered[i] = row.Clone()
	}
	remaining := total

	var (
		intent          = bitset.New(uint(nCols))
		extent          = bitset.New(uint(nRows))
		candidateExtent = bitset.New(uint(nRows))
		candidateIntent = bitset.New(uint(nCols))
		bestIntent      = bitset.New(uint(nCols))
		concepts        []*Concept
		achieved        float64
	)
	for achieved < coverage {
		intent.ClearAll()
		m.allRows.Copy(extent)
		value := 0
		for {
			bestValue := 0
			for j := 0; j < nCols; j++ {
				if intent.Test(uint(j)) {
					continue
				}
				extent.Copy(candidateExtent)
				candidateExtent.InPlaceIntersection(m.cols[j])
				m.intentOf(candidateExtent, candidateIntent)
				v := 0
				for r, ok := candidateExtent.NextSet(0); ok; r, ok = candidateExtent.NextSet(r + 1) {
					v += int(uncovered[r].IntersectionCardinality(candidateIntent))
				}
				if v > bestValue {
					bestValue = v
					candidateIntent.Copy(bestIntent)
				}
			}
			if bestValue <= value {
				break
			}
			value = bestValue
			bestIntent.Copy(intent)
			m.extentOf(intent, extent)
		}

		for r, ok := extent.NextSet(0); ok; r, ok = extent.NextSet(r + 1) {
			remaining -= int(uncovered[r].IntersectionCardinality(intent))
			uncovered[r].InPlaceDifference(intent)
		}
		concepts = append(concepts, &Concept{Extent: toIndices(extent), Intent: toIndices(intent)})
		achieved = 1 - float64(remaining)/float64(total)
	}
	return concepts, achieved, nil
}

// FactorMatrices returns the 0/1 factor matrices of a family of concepts: a is rows x k with
// a[r][c] = 1 iff row r belongs to the extent of concept c, b is k x cols with b[c][j] = 1 iff
// column j belongs to its intent.
func FactorMatrices(concepts []*Concept, rows, cols int) (a, b *mat.Dense, err error) {
	if len(concepts) == 0 {
		return nil, nil, errors.NotValidf("factor matrices of zero concepts")
	}
	if rows <= 0 || cols <= 0 {
		return nil, nil, errors.NotValidf("factor matrices of shape %dx%d", rows, cols)
	}
	a = mat.NewDense(rows, len(concepts), nil)
	b = mat.NewDense(len(concepts), cols, nil)
	for k, c := range concepts {
		if err = checkIndices(c.Extent, rows, "row"); err != nil {
			return nil, nil, errors.Trace(err)
		}
		if err = checkIndices(c.Intent, cols, "column"); err != nil {
			return nil, nil, errors.Trace(err)
		}
		for _, r := range c.Extent {
			a.Set(r, k, 1)
		}
		for _, j := range c.Intent {
			b.Set(k, j, 1)
		}
	}
	return a, b, nil
}

// BooleanProduct computes a ∘ b, the matrix whose cell is true iff the real product is
// positive.
func BooleanProduct(a, b *mat.Dense) (*BinaryMatrix, error) {
	_, k1 := a.Dims()
	k2, _ := b.Dims()
	if k1 != k2 {
		return nil, errors.NotValidf("factor shapes do not match: %d != %d", k1, k2)
	}
	var product mat.Dense
	product.Mul(a, b)
	rows, cols := product.Dims()
	m, err := newBinaryMatrix(rows, cols)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i := 0; i < rows; i++ {
		for j, v := range product.RawRowView(i) {
			if v > 0 {
				m.set(i, j)
			}
		}
	}
	return m, nil
}
