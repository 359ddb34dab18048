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

	"github.com/rff-io/rff/base/log"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// badTrialPenalty is returned by UpperBound for hyperparameters under which
// the posterior is degenerate or the bound is non-finite. Large but finite,
// so derivative-free optimizers back out of the region instead of crashing.
const badTrialPenalty = 1e10

// UpperBound evaluates the variational upper bound on the negative log
// marginal likelihood at (log gamma, log varY). The bound is the Gaussian
// negative log-likelihood of the residuals y − phi·Mu under varY, summed
// over all n observations, plus the KL divergence between the posterior
// and the standard normal prior; minimizing it approximately maximizes
// evidence. The likelihood term must be summed, not averaged: both terms
// grow with n, and averaging the likelihood lets the O(n) KL term dominate,
// which drives the minimizer to the degenerate gamma → 0 solution.
//
// Hyperparameters are taken in log-space, so any real input decodes to a
// positive value. A degenerate trial yields badTrialPenalty rather than an
// error: failures here are recoverable, the optimizer simply moves on.
func (br *BayesianRegression) UpperBound(logGamma, logVarY float64) float64 {
	gamma := math.Exp(logGamma)
	varY := math.Exp(logVarY)
	posterior, err := br.CalculatePosterior(gamma, varY, br.varW)
	if err != nil {
		log.Logger().Debug("rejected hyperparameter trial",
			zap.Float64("gamma", gamma),
			zap.Float64("var_y", varY),
			zap.Error(err))
		return badTrialPenalty
	}
	var predicted mat.VecDense
	predicted.MulVec(posterior.Phi, posterior.Mu)
	n := predicted.Len()
	var sse float64
	for i := 0; i < n; i++ {
		residual := br.y.AtVec(i) - predicted.AtVec(i)
		sse += residual * residual
	}
	nll := 0.5*float64(n)*math.Log(2*math.Pi*varY) + sse/(2*varY)
	bound := nll + posterior.KL()
	if math.IsNaN(bound) || math.IsInf(bound, 0) {
		return badTrialPenalty
	}
	return bound
}
