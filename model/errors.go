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

package model

import "github.com/juju/errors"

// ErrPredictionImpossible matches every error meaning that an estimator cannot predict a
// (user, item) pair.
const ErrPredictionImpossible = errors.ConstError("prediction impossible")

const (
	ErrNoBiclusters = errors.ConstError("no bicluster survived mining and filtering")
	ErrNoFactors    = errors.ConstError("no factor was extracted")
	ErrNotFitted    = errors.ConstError("estimator is not fitted")
)

var (
	ErrUnknownEntity           error = &impossibleError{reason: "user and/or item is unknown", parent: errors.NotFound}
	ErrInsufficientNeighbors   error = &impossibleError{reason: "not enough neighbors"}
	ErrNotInNeighborhood       error = &impossibleError{reason: "user and/or item is not in the neighborhood", parent: ErrInsufficientNeighbors}
	ErrNoValidNeighbors        error = &impossibleError{reason: "no valid neighbors"}
	ErrDegenerateSimilaritySum error = &impossibleError{reason: "sum of similarities is zero"}
)

// impossibleError also matches its parent kind, if any.
type impossibleError struct {
	reason string
	parent error
}

func (e *impossibleError) Error() string {
	return e.reason
}

func (e *impossibleError) Is(target error) bool {
	return target == ErrPredictionImpossible || (e.parent != nil && target == e.parent)
}
