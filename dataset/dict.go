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

// FreqDict maps raw identifiers to dense indices in order of first appearance and counts
// how many ratings reference each of them.
type FreqDict struct {
	index map[string]int
	names []string
	freq  []int
}

func NewFreqDict() *FreqDict {
	return &FreqDict{index: make(map[string]int)}
}

// Count returns the number of distinct identifiers.
func (d *FreqDict) Count() int {
	return len(d.names)
}

// Add returns the index of s, registering it if needed, and increases its frequency.
func (d *FreqDict) Add(s string) int {
	id, ok := d.index[s]
	if !ok {
		id = len(d.names)
		d.index[s] = id
		d.names = append(d.names, s)
		d.freq = append(d.freq, 0)
	}
	d.freq[id]++
	return id
}

// Index looks up s without registering it.
func (d *FreqDict) Index(s string) (int, bool) {
	id, ok := d.index[s]
	return id, ok
}

// Name returns the raw identifier of a dense index.
func (d *FreqDict) Name(id int) (string, bool) {
	if id < 0 || id >= len(d.names) {
		return "", false
	}
	return d.names[id], true
}

func (d *FreqDict) Freq(id int) int {
	if id < 0 || id >= len(d.freq) {
		return 0
	}
	return d.freq[id]
}
