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

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/biaknn/dataset"
	"github.com/gorse-io/biaknn/evaluation"
	"github.com/gorse-io/biaknn/fca"
	"github.com/gorse-io/biaknn/model"
	"github.com/gorse-io/biaknn/model/knn"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const (
	GreConDStrategy  = "grecond"
	PatternsStrategy = "patterns"

	BiAKNNModel = "biaknn"
	LatentModel = "latent"
)

// Config is the configuration of an evaluation run.
type Config struct {
	Dataset    DatasetConfig    `mapstructure:"dataset"`
	Mining     MiningConfig     `mapstructure:"mining"`
	Filter     FilterConfig     `mapstructure:"filter"`
	KNN        KNNConfig        `mapstructure:"knn"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
}

// DatasetConfig locates the rating history.
type DatasetConfig struct {
	Path       string `mapstructure:"path" validate:"required"`
	Separator  string `mapstructure:"separator"`
	SkipHeader bool   `mapstructure:"skip_header"`
}

// MiningConfig selects how biclusters are mined.
type MiningConfig struct {
	Strategy              string  `mapstructure:"strategy" validate:"oneof=grecond patterns"`
	Coverage              float64 `mapstructure:"coverage" validate:"gt=0,lte=1"`
	BinarizationThreshold float64 `mapstructure:"binarization_threshold"`
	PatternsPath          string  `mapstructure:"patterns_path" validate:"required_if=Strategy patterns"`
	ClosePatterns         bool    `mapstructure:"close_patterns"`
}

// FilterConfig holds bicluster filter thresholds, 0 disables a filter.
type FilterConfig struct {
	MinSparsity     float64 `mapstructure:"min_sparsity" validate:"gte=0,lte=1"`
	MinCoverage     float64 `mapstructure:"min_coverage" validate:"gte=0,lte=1"`
	MinRelativeSize float64 `mapstructure:"min_relative_size" validate:"gte=0,lte=1"`
}

type KNNConfig struct {
	Model               string `mapstructure:"model" validate:"oneof=biaknn latent"`
	Type                string `mapstructure:"type" validate:"oneof=user item"`
	K                   int    `mapstructure:"k" validate:"gt=0"`
	TopBiclusters       int    `mapstructure:"top_biclusters" validate:"gte=0"`
	BiclusterSimilarity string `mapstructure:"bicluster_similarity" validate:"oneof=user_pattern weight_frequency double_weight_frequency"`
	Similarity          string `mapstructure:"similarity" validate:"omitempty,oneof=cosine pearson adjusted_cosine"`
	ForceInclusion      bool   `mapstructure:"force_inclusion"`
}

type EvaluationConfig struct {
	Folds              int     `mapstructure:"folds" validate:"gte=2"`
	Seed               int64   `mapstructure:"seed"`
	Jobs               int     `mapstructure:"jobs" validate:"gt=0"`
	TopK               int     `mapstructure:"top_k" validate:"gt=0"`
	RelevanceThreshold float64 `mapstructure:"relevance_threshold"`
	// Metrics lists the reported metrics by name, without the @k suffix. Empty means all.
	Metrics []string `mapstructure:"metrics"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Separator: ",",
		},
		Mining: MiningConfig{
			Strategy:              GreConDStrategy,
			Coverage:              1,
			BinarizationThreshold: fca.DefaultBinarizationThreshold,
		},
		KNN: KNNConfig{
			Model:               BiAKNNModel,
			Type:                string(knn.ItemBased),
			K:                   knn.DefaultK,
			BiclusterSimilarity: knn.DefaultBiclusterSimilarity,
		},
		Evaluation: EvaluationConfig{
			Folds:              5,
			Jobs:               1,
			TopK:               20,
			RelevanceThreshold: 5,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [dataset]
	v.SetDefault("dataset.path", defaultConfig.Dataset.Path)
	v.SetDefault("dataset.separator", defaultConfig.Dataset.Separator)
	v.SetDefault("dataset.skip_header", defaultConfig.Dataset.SkipHeader)
	// [mining]
	v.SetDefault("mining.strategy", defaultConfig.Mining.Strategy)
	v.SetDefault("mining.coverage", defaultConfig.Mining.Coverage)
	v.SetDefault("mining.binarization_threshold", defaultConfig.Mining.BinarizationThreshold)
	v.SetDefault("mining.patterns_path", defaultConfig.Mining.PatternsPath)
	v.SetDefault("mining.close_patterns", defaultConfig.Mining.ClosePatterns)
	// [filter]
	v.SetDefault("filter.min_sparsity", defaultConfig.Filter.MinSparsity)
	v.SetDefault("filter.min_coverage", defaultConfig.Filter.MinCoverage)
	v.SetDefault("filter.min_relative_size", defaultConfig.Filter.MinRelativeSize)
	// [knn]
	v.SetDefault("knn.model", defaultConfig.KNN.Model)
	v.SetDefault("knn.type", defaultConfig.KNN.Type)
	v.SetDefault("knn.k", defaultConfig.KNN.K)
	v.SetDefault("knn.top_biclusters", defaultConfig.KNN.TopBiclusters)
	v.SetDefault("knn.bicluster_similarity", defaultConfig.KNN.BiclusterSimilarity)
	v.SetDefault("knn.similarity", defaultConfig.KNN.Similarity)
	v.SetDefault("knn.force_inclusion", defaultConfig.KNN.ForceInclusion)
	// [evaluation]
	v.SetDefault("evaluation.folds", defaultConfig.Evaluation.Folds)
	v.SetDefault("evaluation.seed", defaultConfig.Evaluation.Seed)
	v.SetDefault("evaluation.jobs", defaultConfig.Evaluation.Jobs)
	v.SetDefault("evaluation.top_k", defaultConfig.Evaluation.TopK)
	v.SetDefault("evaluation.relevance_threshold", defaultConfig.Evaluation.RelevanceThreshold)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefault(v)
	// BIAKNN_KNN_K overrides knn.k
	v.SetEnvPrefix("BIAKNN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// keys without default are only read from the environment if bound
	_ = v.BindEnv("evaluation.metrics", "BIAKNN_EVALUATION_METRICS")
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	// BIAKNN_EVALUATION_METRICS=MAE,RMSE
	if err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.StringToSliceHookFunc(","))); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}

// LoadConfig reads a configuration file (any format known to viper, picked by extension
// with a trailing ".template" ignored) over the defaults, applies BIAKNN_* environment
// variables and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if ext := filepath.Ext(strings.TrimSuffix(path, ".template")); ext != "" {
		v.SetConfigType(strings.TrimPrefix(ext, "."))
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	config, err := unmarshal(v)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err = config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return config, nil
}

// Validate checks every field against its constraints.
func (config *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid config")
	}
	return nil
}

// KNNParams converts the configuration to the hyper-parameters of an estimator.
func (config *Config) KNNParams() model.Params {
	params := model.Params{
		model.KNNType:             config.KNN.Type,
		model.K:                   config.KNN.K,
		model.TopBiclusters:       config.KNN.TopBiclusters,
		model.BiclusterSimilarity: config.KNN.BiclusterSimilarity,
		model.ForceInclusion:      config.KNN.ForceInclusion,
		model.MinSparsity:         config.Filter.MinSparsity,
		model.MinCoverage:         config.Filter.MinCoverage,
		model.MinRelativeSize:     config.Filter.MinRelativeSize,
	}
	if config.KNN.Similarity != "" {
		params[model.Similarity] = config.KNN.Similarity
	}
	return params
}

// MiningStrategy creates a new mining strategy. Strategies record the outcome of their last
// run, so every estimator needs its own.
func (config *Config) MiningStrategy() (fca.MiningStrategy, error) {
	switch config.Mining.Strategy {
	case GreConDStrategy:
		strategy, err := fca.NewGreConDStrategy(config.Mining.BinarizationThreshold, config.Mining.Coverage)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return strategy, nil
	case PatternsStrategy:
		f, err := os.Open(config.Mining.PatternsPath)
		if err != nil {
			return nil, errors.Trace(err)
		}
		defer f.Close()
		patterns, err := fca.LoadPatterns(f)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return fca.NewPatternStrategy(config.Mining.BinarizationThreshold, patterns, config.Mining.ClosePatterns), nil
	}
	return nil, errors.NotSupportedf("mining strategy %q", config.Mining.Strategy)
}

// NewEstimator creates an unfitted estimator with its own mining strategy.
func (config *Config) NewEstimator() (model.Estimator, error) {
	strategy, err := config.MiningStrategy()
	if err != nil {
		return nil, errors.Trace(err)
	}
	var estimator model.Estimator
	switch config.KNN.Model {
	case BiAKNNModel:
		estimator, err = knn.NewBiAKNN(strategy, config.KNNParams())
	case LatentModel:
		estimator, err = knn.NewKNNOverLatentSpace(strategy, model.Params{model.K: config.KNN.K})
	default:
		return nil, errors.NotSupportedf("model %q", config.KNN.Model)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return estimator, nil
}

// Scorers returns the configured metrics.
func (config *Config) Scorers() ([]evaluation.Scorer, error) {
	scorers := evaluation.DefaultScorers(config.Evaluation.TopK, config.Evaluation.RelevanceThreshold)
	if len(config.Evaluation.Metrics) == 0 {
		return scorers, nil
	}
	byName := lo.KeyBy(scorers, func(s evaluation.Scorer) string {
		name, _, _ := strings.Cut(s.Name, "@")
		return strings.ToLower(name)
	})
	selected := make([]evaluation.Scorer, 0, len(config.Evaluation.Metrics))
	for _, name := range config.Evaluation.Metrics {
		scorer, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, errors.NotSupportedf("metric %q", name)
		}
		selected = append(selected, scorer)
	}
	return selected, nil
}

// LoadRatings reads the configured rating history.
func (config *Config) LoadRatings() ([]dataset.Rating, error) {
	return dataset.LoadRatingsFromFile(config.Dataset.Path, config.Dataset.Separator, config.Dataset.SkipHeader)
}
