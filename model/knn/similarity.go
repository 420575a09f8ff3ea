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

package knn

import (
	"math"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/gorse-io/biaknn/dataset"
	"github.com/juju/errors"
)

const eps = 1e-8

// Similarity computes the similarity between rows u and v of data. Only coordinates
// observed (non-NaN) in both rows are used, and NaN is returned if there are none.
// rowMeans is aligned with the rows of data and colMeans with its columns; either may be
// nil for similarities that do not center.
type Similarity func(data *dataset.Matrix, u, v int, rowMeans, colMeans []float64) float64

const (
	CosineName         = "cosine"
	PearsonName        = "pearson"
	AdjustedCosineName = "adjusted_cosine"
)

// SimilarityByName returns a built-in similarity.
func SimilarityByName(name string) (Similarity, error) {
	switch name {
	case CosineName:
		return Cosine, nil
	case PearsonName:
		return Pearson, nil
	case AdjustedCosineName:
		return AdjustedCosine, nil
	}
	return nil, errors.NotSupportedf("similarity %q", name)
}

// Cosine similarity between two rows. Means are ignored.
func Cosine(data *dataset.Matrix, u, v int, _, _ []float64) float64 {
	return CosineSimilarity(data.Row(u), data.Row(v))
}

// Pearson similarity between two rows, centered by rowMeans[u] and rowMeans[v].
func Pearson(data *dataset.Matrix, u, v int, rowMeans, _ []float64) float64 {
	return PearsonSimilarity(data.Row(u), data.Row(v), rowMeans[u], rowMeans[v])
}

// AdjustedCosine similarity between two rows, each coordinate k centered by colMeans[k].
func AdjustedCosine(data *dataset.Matrix, u, v int, _, colMeans []float64) float64 {
	return AdjustedCosineSimilarity(data.Row(u), data.Row(v), colMeans)
}

// CosineSimilarity is dot(a, b) / max(|a||b|, eps) over the commonly observed coordinates.
func CosineSimilarity(a, b []float64) float64 {
	var dot, aa, bb float64
	common := 0
	for k := range a {
		if math.IsNaN(a[k]) || math.IsNaN(b[k]) {
			continue
		}
		common++
		dot += a[k] * b[k]
		aa += a[k] * a[k]
		bb += b[k] * b[k]
	}
	return ratio(common, dot, aa, bb)
}

// PearsonSimilarity centers a and b by their unconditional means, not by the means of the
// commonly observed coordinates.
func PearsonSimilarity(a, b []float64, meanA, meanB float64) float64 {
	var dot, aa, bb float64
	common := 0
	for k := range a {
		if math.IsNaN(a[k]) || math.IsNaN(b[k]) {
			continue
		}
		common++
		x, y := a[k]-meanA, b[k]-meanB
		dot += x * y
		aa += x * x
		bb += y * y
	}
	return ratio(common, dot, aa, bb)
}

// AdjustedCosineSimilarity centers coordinate k of both vectors by means[k].
func AdjustedCosineSimilarity(a, b, means []float64) float64 {
	var dot, aa, bb float64
	common := 0
	for k := range a {
		if math.IsNaN(a[k]) || math.IsNaN(b[k]) {
			continue
		}
		common++
		x, y := a[k]-means[k], b[k]-means[k]
		dot += x * y
		aa += x * x
		bb += y * y
	}
	return ratio(common, dot, aa, bb)
}

func ratio(common int, dot, aa, bb float64) float64 {
	if common == 0 {
		return math.NaN()
	}
	return dot / math.Max(math.Sqrt(aa*bb), eps)
}

// SimilarityCache is a symmetric n x n cache of similarities. Entries are only added, and it
// is safe for concurrent use. A cached NaN is a valid value meaning "not computable".
type SimilarityCache struct {
	mu     sync.RWMutex
	n      int
	values []float64
	filled *bitset.BitSet
}

func NewSimilarityCache(n int) *SimilarityCache {
	values := make([]float64, n*n)
	for i := range values {
		values[i] = math.NaN()
	}
	return &SimilarityCache{n: n, values: values, filled: bitset.New(uint(n * n))}
}

func (c *SimilarityCache) Size() int {
	return c.n
}

// Get returns the cached similarity of (i, j).
func (c *SimilarityCache) Get(i, j int) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx := i*c.n + j
	return c.values[idx], c.filled.Test(uint(idx))
}

// Set stores v for both (i, j) and (j, i).
func (c *SimilarityCache) Set(i, j int, v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[i*c.n+j] = v
	c.values[j*c.n+i] = v
	c.filled.Set(uint(i*c.n + j))
	c.filled.Set(uint(j*c.n + i))
}

// Len returns the number of cached entries.
func (c *SimilarityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int(c.filled.Count())
}

// GetSimilarity returns 1 for i == j without touching the cache or calling similarity.
// Otherwise it returns the cached value, computing and storing it symmetrically on a miss.
// The cache may be nil.
func GetSimilarity(i, j int, data *dataset.Matrix, rowMeans, colMeans []float64, cache *SimilarityCache, similarity Similarity) float64 {
	if i == j {
		return 1
	}
	if cache != nil {
		if v, ok := cache.Get(i, j); ok {
			return v
		}
	}
	v := similarity(data, i, j, rowMeans, colMeans)
	if cache != nil {
		cache.Set(i, j, v)
	}
	return v
}

// SimilarityMatrix computes the similarities between all rows of data. Pairs i < j are
// filled through GetSimilarity and the diagonal is 1.
func SimilarityMatrix(data *dataset.Matrix, rowMeans, colMeans []float64, similarity Similarity) *SimilarityCache {
	n, _ := data.Dims()
	cache := NewSimilarityCache(n)
	for i := 0; i < n; i++ {
		cache.Set(i, i, 1)
		for j := i + 1; j < n; j++ {
			GetSimilarity(i, j, data, rowMeans, colMeans, cache, similarity)
		}
	}
	return cache
}
