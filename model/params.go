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

import (
	"encoding/json"
	"fmt"

	"github.com/gorse-io/biaknn/base/log"
	"go.uber.org/zap"
)

// ParamName is the type of hyper-parameter names.
type ParamName string

// Predefined hyper-parameter names
const (
	KNNType             ParamName = "KNNType"             // "user" or "item"
	K                   ParamName = "K"                   // number of neighbors
	TopBiclusters       ParamName = "TopBiclusters"       // number of biclusters per user, 0 for all
	BiclusterSimilarity ParamName = "BiclusterSimilarity" // user-bicluster scoring
	Similarity          ParamName = "Similarity"          // forced neighbor similarity
	ForceInclusion      ParamName = "ForceInclusion"      // add the user to its own neighborhood
	MinSparsity         ParamName = "MinSparsity"         // sparsity filter threshold, 0 disables
	MinCoverage         ParamName = "MinCoverage"         // coverage filter threshold, 0 disables
	MinRelativeSize     ParamName = "MinRelativeSize"     // relative size filter threshold, 0 disables
)

// Params stores hyper-parameters for an estimator. For example:
//
//	model.Params{
//		model.KNNType: "item",
//		model.K:       20,
//	}
type Params map[ParamName]interface{}

// Copy hyper-parameters.
func (parameters Params) Copy() Params {
	newParams := make(Params, len(parameters))
	for k, v := range parameters {
		newParams[k] = v
	}
	return newParams
}

// ParamsReader reads hyper-parameters and reports type mismatches to Logger, or to the
// default logger if Logger is nil.
type ParamsReader struct {
	Params Params
	Logger *zap.Logger
}

func (r ParamsReader) mismatch(getter string, name ParamName, expected string, val interface{}) {
	log.OrDefault(r.Logger).Error(fmt.Sprintf("Params.%s: unexpected type", getter),
		zap.String("name", string(name)),
		zap.String("expected", expected),
		zap.String("actual", fmt.Sprintf("%T", val)))
}

// GetInt gets an integer parameter by name. Returns _default if not exists or type doesn't match.
func (r ParamsReader) GetInt(name ParamName, _default int) int {
	if val, exist := r.Params[name]; exist {
		switch val := val.(type) {
		case int:
			return val
		case int64:
			return int(val)
		default:
			r.mismatch("GetInt", name, "int", val)
		}
	}
	return _default
}

// GetBool gets a bool parameter by name. Returns _default if not exists or type doesn't match.
func (r ParamsReader) GetBool(name ParamName, _default bool) bool {
	if val, exist := r.Params[name]; exist {
		switch val := val.(type) {
		case bool:
			return val
		default:
			r.mismatch("GetBool", name, "bool", val)
		}
	}
	return _default
}

// GetFloat64 gets a float parameter by name. Integers are converted.
func (r ParamsReader) GetFloat64(name ParamName, _default float64) float64 {
	if val, exist := r.Params[name]; exist {
		switch val := val.(type) {
		case float64:
			return val
		case float32:
			return float64(val)
		case int:
			return float64(val)
		default:
			r.mismatch("GetFloat64", name, "float64", val)
		}
	}
	return _default
}

// GetString gets a string parameter. Returns _default if not exists or type doesn't match.
func (r ParamsReader) GetString(name ParamName, _default string) string {
	if val, exist := r.Params[name]; exist {
		switch val := val.(type) {
		case string:
			return val
		default:
			r.mismatch("GetString", name, "string", val)
		}
	}
	return _default
}

func (parameters Params) GetInt(name ParamName, _default int) int {
	return ParamsReader{Params: parameters}.GetInt(name, _default)
}

func (parameters Params) GetBool(name ParamName, _default bool) bool {
	return ParamsReader{Params: parameters}.GetBool(name, _default)
}

func (parameters Params) GetFloat64(name ParamName, _default float64) float64 {
	return ParamsReader{Params: parameters}.GetFloat64(name, _default)
}

func (parameters Params) GetString(name ParamName, _default string) string {
	return ParamsReader{Params: parameters}.GetString(name, _default)
}

// Overwrite returns a copy of parameters updated by params.
func (parameters Params) Overwrite(params Params) Params {
	merged := parameters.Copy()
	for k, v := range params {
		merged[k] = v
	}
	return merged
}

func (parameters Params) String() string {
	b, err := json.Marshal(parameters)
	if err != nil {
		return fmt.Sprintf("%v", map[ParamName]interface{}(parameters))
	}
	return string(b)
}
