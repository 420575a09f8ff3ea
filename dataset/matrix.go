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

	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense ratings matrix. Rows are users, columns are items and missing
// ratings are NaN.
type Matrix struct {
	dense *mat.Dense
}

// NewMatrix creates a rows x cols matrix filled with NaN. Both dimensions must be positive.
func NewMatrix(rows, cols int) *Matrix {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = math.NaN()
	}
	return &Matrix{dense: mat.NewDense(rows, cols, data)}
}

// NewMatrixFromRows copies a row-major slice of slices into a matrix.
func NewMatrixFromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.NotValidf("empty matrix")
	}
	m := NewMatrix(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != len(rows[0]) {
			return nil, errors.NotValidf("row %d has %d columns, expected %d", i, len(row), len(rows[0]))
		}
		m.dense.SetRow(i, row)
	}
	return m, nil
}

// NewMatrixFromDense wraps a gonum matrix without copying.
func NewMatrixFromDense(dense *mat.Dense) *Matrix {
	return &Matrix{dense: dense}
}

func (m *Matrix) Dims() (rows, cols int) {
	return m.dense.Dims()
}

func (m *Matrix) At(i, j int) float64 {
	return m.dense.At(i, j)
}

func (m *Matrix) Set(i, j int, v float64) {
	m.dense.Set(i, j, v)
}

// Row returns a view of the i-th row. The returned slice must not be modified.
func (m *Matrix) Row(i int) []float64 {
	return m.dense.RawRowView(i)
}

// Col returns a copy of the j-th column.
func (m *Matrix) Col(j int) []float64 {
	return mat.Col(nil, j, m.dense)
}

// T returns a transposed copy.
func (m *Matrix) T() *Matrix {
	return &Matrix{dense: mat.DenseCopyOf(m.dense.T())}
}

// Sub copies the submatrix selected by the given row and column indices. Both index sets
// must be non-empty.
func (m *Matrix) Sub(rows, cols []int) *Matrix {
	sub := mat.NewDense(len(rows), len(cols), nil)
	for i, r := range rows {
		src := m.dense.RawRowView(r)
		dst := sub.RawRowView(i)
		for j, c := range cols {
			dst[j] = src[c]
		}
	}
	return &Matrix{dense: sub}
}

// CountPositive counts cells holding a rating greater than zero.
func (m *Matrix) CountPositive() int {
	rows, _ := m.Dims()
	count := 0
	for i := 0; i < rows; i++ {
		for _, v := range m.dense.RawRowView(i) {
			if v > 0 {
				count++
			}
		}
	}
	return count
}

// CountPositiveIn counts cells greater than zero inside the rows x cols rectangle.
func (m *Matrix) CountPositiveIn(rows, cols []int) int {
	count := 0
	for _, r := range rows {
		row := m.dense.RawRowView(r)
		for _, c := range cols {
			if row[c] > 0 {
				count++
			}
		}
	}
	return count
}

func (m *Matrix) Dense() *mat.Dense {
	return m.dense
}
