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
	"bufio"
	"io"
	"slices"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
)

// ConceptsFromPatterns turns itemsets mined elsewhere into concepts. The extent of a
// pattern is t(pattern). When closed is set the pair is closed again as (t(i(t(p))), i(t(p))),
// otherwise the pattern itself is kept as the intent.
func ConceptsFromPatterns(m *BinaryMatrix, patterns [][]int, closed bool) ([]*Concept, error) {
	concepts := make([]*Concept, 0, len(patterns))
	for _, pattern := range patterns {
		tidset, err := m.Extent(pattern)
		if err != nil {
			return nil, errors.Annotatef(err, "pattern %v", pattern)
		}
		itemset := pattern
		if closed {
			if itemset, err = m.Intent(tidset); err != nil {
				return nil, errors.Trace(err)
			}
			if tidset, err = m.Extent(itemset); err != nil {
				return nil, errors.Trace(err)
			}
		}
		concepts = append(concepts, NewConcept(tidset, itemset))
	}
	return concepts, nil
}

// LoadPatterns reads one itemset per line as whitespace separated column indices. Anything
// after a token starting with '#' or '(' is treated as an annotation (e.g. support counts).
func LoadPatterns(r io.Reader) ([][]int, error) {
	var patterns [][]int
	sc := bufio.NewScanner(r)
	lineNumber := 0
	for sc.Scan() {
		lineNumber++
		items := mapset.NewThreadUnsafeSet[int]()
		for _, field := range strings.Fields(sc.Text()) {
			if strings.HasPrefix(field, "#") || strings.HasPrefix(field, "(") {
				break
			}
			item, err := strconv.Atoi(field)
			if err != nil {
				return nil, errors.Annotatef(err, "line %d", lineNumber)
			}
			if item < 0 {
				return nil, errors.NotValidf("line %d: negative item %d", lineNumber, item)
			}
			items.Add(item)
		}
		if items.Cardinality() == 0 {
			continue
		}
		pattern := items.ToSlice()
		slices.Sort(pattern)
		patterns = append(patterns, pattern)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return patterns, nil
}
