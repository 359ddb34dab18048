// Copyright 2024 rff Project Authors
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
	"math"

	"github.com/c-bata/goptuna"
	"github.com/c-bata/goptuna/tpe"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"golang.org/x/exp/maps"
	"gonum.org/v1/gonum/mat"
)

// RegressionCreator builds a fresh regression model for one search trial.
type RegressionCreator func() *BayesianRegression

// SuggestParams samples a hyperparameter trial for the regression.
// Log-uniform ranges, matching the log-space parameterization of the
// variational bound.
func (br *BayesianRegression) SuggestParams(trial goptuna.Trial) Params {
	return Params{
		Gamma: lo.Must(trial.SuggestLogFloat(string(Gamma), 1e-3, 1e3)),
		VarY:  lo.Must(trial.SuggestLogFloat(string(VarY), 1e-4, 1e1)),
	}
}

// ModelSearch searches model variants and their hyperparameters by
// minimizing the variational upper bound. One trial picks a variant,
// samples its hyperparameters, fits it on the training data and scores
// the bound.
type ModelSearch struct {
	creators   map[string]RegressionCreator
	modelTypes []string
	trainX     *mat.Dense
	trainY     *mat.VecDense
	result     SearchResult
}

// SearchResult is the best trial found so far.
type SearchResult struct {
	Type   string
	Params Params
	Bound  float64
}

func NewModelSearch(creators map[string]RegressionCreator, trainX *mat.Dense, trainY *mat.VecDense) *ModelSearch {
	return &ModelSearch{
		creators:   creators,
		modelTypes: maps.Keys(creators),
		trainX:     trainX,
		trainY:     trainY,
		result:     SearchResult{Bound: math.Inf(1)},
	}
}

// Objective is the goptuna objective: lower variational bound is better.
func (ms *ModelSearch) Objective(trial goptuna.Trial) (float64, error) {
	if len(ms.creators) == 0 {
		return 0, errors.New("no model to search")
	}
	modelType, err := trial.SuggestCategorical("Model", ms.modelTypes)
	if err != nil {
		return 0, errors.Trace(err)
	}
	m := ms.creators[modelType]()
	params := m.SuggestParams(trial)
	m.SetParams(m.GetParams().Overwrite(params))
	m.AddData(ms.trainX, ms.trainY)
	bound := m.UpperBound(
		math.Log(params.GetFloat64(Gamma, 1)),
		math.Log(params.GetFloat64(VarY, 1)))
	if bound < ms.result.Bound {
		ms.result = SearchResult{
			Type:   modelType,
			Params: m.GetParams().Copy(),
			Bound:  bound,
		}
	}
	return bound, nil
}

// Result returns the best trial.
func (ms *ModelSearch) Result() SearchResult {
	return ms.result
}

// SearchTPE runs numTrials trials of TPE-sampled search and returns the best
// result.
func SearchTPE(search *ModelSearch, numTrials int) (SearchResult, error) {
	study, err := goptuna.CreateStudy("rff",
		goptuna.StudyOptionDirection(goptuna.StudyDirectionMinimize),
		goptuna.StudyOptionSampler(tpe.NewSampler()))
	if err != nil {
		return SearchResult{}, errors.Trace(err)
	}
	if err := study.Optimize(search.Objective, numTrials); err != nil {
		return SearchResult{}, errors.Trace(err)
	}
	return search.Result(), nil
}
