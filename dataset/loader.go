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
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// LoadRatings parses lines of "user<sep>item<sep>rating[<sep>...]". Trailing fields such
// as timestamps are ignored. An empty sep splits on whitespace.
func LoadRatings(r io.Reader, sep string, skipHeader bool) ([]Rating, error) {
	var ratings []Rating
	sc := bufio.NewScanner(r)
	lineNumber := 0
	for sc.Scan() {
		lineNumber++
		if skipHeader && lineNumber == 1 {
			continue
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var fields []string
		if sep == "" {
			fields = strings.Fields(line)
		} else {
			fields = strings.Split(line, sep)
		}
		if len(fields) < 3 {
			return nil, errors.NotValidf("line %d: expected at least 3 fields, got %d", lineNumber, len(fields))
		}
		rating, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, errors.Annotatef(err, "line %d", lineNumber)
		}
		ratings = append(ratings, Rating{
			UserId: strings.TrimSpace(fields[0]),
			ItemId: strings.TrimSpace(fields[1]),
			Rating: rating,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return ratings, nil
}

// LoadRatingsFromFile opens a ratings file and parses it with LoadRatings.
func LoadRatingsFromFile(path, sep string, skipHeader bool) ([]Rating, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	return LoadRatings(f, sep, skipHeader)
}
