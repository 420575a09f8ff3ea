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
	"github.com/bits-and-blooms/bitset"
	"github.com/gorse-io/biaknn/dataset"
	"github.com/juju/errors"
)

// BinaryMatrix is an immutable boolean matrix stored twice: once by rows and once by
// columns, so that both closure operators reduce to bitset intersections.
type BinaryMatrix struct {
	rows    []*bitset.BitSet // rows[i] holds the columns set in row i
	cols    []*bitset.BitSet // cols[j] holds the rows set in column j
	allRows *bitset.BitSet
	allCols *bitset.BitSet
}

func newBinaryMatrix(nRows, nCols int) (*BinaryMatrix, error) {
	if nRows <= 0 || nCols <= 0 {
		return nil, errors.NotValidf("binary matrix of shape %dx%d", nRows, nCols)
	}
	m := &BinaryMatrix{
		rows:    make([]*bitset.BitSet, nRows),
		cols:    make([]*bitset.BitSet, nCols),
		allRows: bitset.New(uint(nRows)).FlipRange(0, uint(nRows)),
		allCols: bitset.New(uint(nCols)).FlipRange(0, uint(nCols)),
	}
	for i := range m.rows {
		m.rows[i] = bitset.New(uint(nCols))
	}
	for j := range m.cols {
		m.cols[j] = bitset.New(uint(nRows))
	}
	return m, nil
}

func (m *BinaryMatrix) set(i, j int) {
	m.rows[i].Set(uint(j))
	m.cols[j].Set(uint(i))
}

// NewBinaryMatrix copies a row-major boolean matrix.
func NewBinaryMatrix(data [][]bool) (*BinaryMatrix, error) {
	if len(data) == 0 {
		return nil, errors.NotValidf("empty binary matrix")
	}
	m, err := newBinaryMatrix(len(data), len(data[0]))
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i, row := range data {
		if len(row) != len(data[0]) {
			return nil, errors.NotValidf("row %d has %d columns, expected %d", i, len(row), len(data[0]))
		}
		for j, v := range row {
			if v {
				m.set(i, j)
			}
		}
	}
	return m, nil
}

// Binarize marks every cell whose rating is greater than or equal to threshold. Missing
// ratings are never marked.
func Binarize(ratings *dataset.Matrix, threshold float64) (*BinaryMatrix, error) {
	nRows, nCols := ratings.Dims()
	m, err := newBinaryMatrix(nRows, nCols)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i := 0; i < nRows; i++ {
		for j, v := range ratings.Row(i) {
			if v >= threshold {
				m.set(i, j)
			}
		}
	}
	return m, nil
}

func (m *BinaryMatrix) Dims() (rows, cols int) {
	return len(m.rows), len(m.cols)
}

func (m *BinaryMatrix) At(i, j int) bool {
	return m.rows[i].Test(uint(j))
}

// Count returns the number of true cells.
func (m *BinaryMatrix) Count() int {
	var count uint
	for _, row := range m.rows {
		count += row.Count()
	}
	return int(count)
}

// Equal reports whether two matrices have the same shape and cells.
func (m *BinaryMatrix) Equal(other *BinaryMatrix) bool {
	if len(m.rows) != len(other.rows) || len(m.cols) != len(other.cols) {
		return false
	}
	for i := range m.rows {
		if !m.rows[i].Equal(other.rows[i]) {
			return false
		}
	}
	return true
}

// Intent is the closure operator i: the columns that are true for every given row. The
// intent of no rows is every column.
func (m *BinaryMatrix) Intent(rows []int) ([]int, error) {
	if err := checkIndices(rows, len(m.rows), "row"); err != nil {
		return nil, errors.Trace(err)
	}
	return toIndices(m.intentOf(indicesToBitSet(rows, len(m.rows)), bitset.New(uint(len(m.cols))))), nil
}

// Extent is the closure operator t: the rows that are true for every given column. The
// extent of no columns is every row.
func (m *BinaryMatrix) Extent(cols []int) ([]int, error) {
	if err := checkIndices(cols, len(m.cols), "column"); err != nil {
		return nil, errors.Trace(err)
	}
	return toIndices(m.extentOf(indicesToBitSet(cols, len(m.cols)), bitset.New(uint(len(m.rows))))), nil
}

// intentOf writes i(rows) into dst and returns it.
func (m *BinaryMatrix) intentOf(rows, dst *bitset.BitSet) *bitset.BitSet {
	m.allCols.Copy(dst)
	for i, ok := rows.NextSet(0); ok; i, ok = rows.NextSet(i + 1) {
		dst.InPlaceIntersection(m.rows[i])
	}
	return dst
}

// extentOf writes t(cols) into dst and returns it.
func (m *BinaryMatrix) extentOf(cols, dst *bitset.BitSet) *bitset.BitSet {
	m.allRows.Copy(dst)
	for j, ok := cols.NextSet(0); ok; j, ok = cols.NextSet(j + 1) {
		dst.InPlaceIntersection(m.cols[j])
	}
	return dst
}

func checkIndices(indices []int, n int, name string) error {
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return errors.NotValidf("%s index %d out of range [0, %d)", name, idx, n)
		}
	}
	return nil
}

func indicesToBitSet(indices []int, n int) *bitset.BitSet {
	b := bitset.New(uint(n))
	for _, idx := range indices {
		b.Set(uint(idx))
	}
	return b
}

func toIndices(b *bitset.BitSet) []int {
	indices := make([]int, 0, b.Count())
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		indices = append(indices, int(i))
	}
	return indices
}
