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

	"github.com/juju/errors"
	"github.com/rff-io/rff/base/log"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// BayesianRegression is Bayesian linear regression over a random Fourier
// feature approximation of a Gaussian kernel. Hyperparameters (the kernel
// scale gamma and the noise variance varY) are selected by minimizing a
// variational upper bound on the negative log marginal likelihood.
//
// Lifecycle: unfitted → AddData → (CalculatePosterior | Optimize) →
// (Predict | SampleWeights | PostOneStep)*. Calls out of order return
// ErrNotFitted.
type BayesianRegression struct {
	BaseModel
	nFeatures int
	features  *RandomFeatures
	// Training data
	x *mat.Dense
	y *mat.VecDense
	// Fitted hyperparameters and posterior
	gamma     float64
	varY      float64
	varW      float64
	posterior *Posterior
}

// NewBayesianRegression creates a Bayesian regression model from params.
func NewBayesianRegression(params Params) *BayesianRegression {
	br := new(BayesianRegression)
	br.SetParams(params)
	return br
}

// SetParams sets hyper-parameters.
func (br *BayesianRegression) SetParams(params Params) {
	br.BaseModel.SetParams(params)
	br.nFeatures = br.Params.GetInt(NFeatures, 200)
	br.gamma = br.Params.GetFloat64(Gamma, 1)
	br.varY = br.Params.GetFloat64(VarY, 1)
	br.varW = br.Params.GetFloat64(VarW, 1)
}

// Clear removes training data and the posterior and resets hyperparameters
// to the values from Params, dropping anything Optimize found.
func (br *BayesianRegression) Clear() {
	br.x = nil
	br.y = nil
	br.features = nil
	br.posterior = nil
	br.gamma = br.Params.GetFloat64(Gamma, 1)
	br.varY = br.Params.GetFloat64(VarY, 1)
	br.varW = br.Params.GetFloat64(VarW, 1)
}

// Invalid reports whether no posterior has been computed.
func (br *BayesianRegression) Invalid() bool {
	return br == nil || br.posterior == nil
}

// Gamma returns the current kernel scale.
func (br *BayesianRegression) Gamma() float64 {
	return br.gamma
}

// VarY returns the current observation noise variance.
func (br *BayesianRegression) VarY() float64 {
	return br.varY
}

// Posterior returns the current posterior, or nil before it is computed.
func (br *BayesianRegression) Posterior() *Posterior {
	return br.posterior
}

// AddData stores the training inputs x (n×p) and targets y (n) and draws
// the random feature map for x's dimensionality. Any previously computed
// posterior is dropped. Dimension mismatches are not validated here; they
// surface later from the linear algebra layer.
func (br *BayesianRegression) AddData(x *mat.Dense, y *mat.VecDense) {
	br.x = x
	br.y = y
	br.posterior = nil
	br.features = NewRandomFeatures(br.nFeatures)
	br.features.Fit(x, br.rng)
}

// Optimize selects gamma and varY by minimizing the variational upper bound
// with Nelder–Mead, starting from (log gamma, log varY) = (0, 0) and capped
// at maxIter major iterations. The search runs in log-space so positivity
// needs no constraints. After the search the posterior is recomputed at the
// reported optimum, so the stored state always matches the returned values
// rather than the optimizer's last probe.
func (br *BayesianRegression) Optimize(maxIter int, verbose bool) (gamma, varY float64, err error) {
	if br.x == nil {
		return 0, 0, ErrNotFitted
	}
	var bar *progressbar.ProgressBar
	if verbose {
		bar = progressbar.Default(-1, "minimizing upper bound")
	}
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			bound := br.UpperBound(p[0], p[1])
			if verbose {
				_ = bar.Add(1)
				log.Logger().Debug("evaluated upper bound",
					zap.Float64("log_gamma", p[0]),
					zap.Float64("log_var_y", p[1]),
					zap.Float64("upper_bound", bound))
			}
			return bound
		},
	}
	settings := &optimize.Settings{MajorIterations: maxIter}
	result, err := optimize.Minimize(problem, []float64{0, 0}, settings, &optimize.NelderMead{})
	if verbose {
		_ = bar.Finish()
	}
	if err != nil {
		return 0, 0, errors.Trace(err)
	}
	gamma = math.Exp(result.X[0])
	varY = math.Exp(result.X[1])
	if _, err := br.CalculatePosterior(gamma, varY, br.varW); err != nil {
		return 0, 0, errors.Trace(err)
	}
	log.Logger().Info("hyperparameter optimization complete",
		zap.Float64("gamma", gamma),
		zap.Float64("var_y", varY),
		zap.Float64("upper_bound", result.F),
		zap.Int("evaluations", result.FuncEvaluations),
		zap.String("status", result.Status.String()))
	return gamma, varY, nil
}

// SampleWeights draws numSamples i.i.d. weight vectors from the posterior
// N(Mu, Sigma), one per row. Returns ErrNotFitted before a posterior exists.
func (br *BayesianRegression) SampleWeights(numSamples int) (*mat.Dense, error) {
	if br.posterior == nil {
		return nil, ErrNotFitted
	}
	return br.posterior.Sample(numSamples, br.rng)
}

// PostOneStep evaluates sample-based predictions at xs: the design matrix of
// xs against the training inputs (using the fitted gamma) times the supplied
// weight draws. The result has shape (rows(xs), rows(weights)), one column
// per draw. Returns ErrNotFitted before a posterior exists.
func (br *BayesianRegression) PostOneStep(xs *mat.Dense, weights *mat.Dense) (*mat.Dense, error) {
	if br.posterior == nil {
		return nil, ErrNotFitted
	}
	phi, err := br.designMatrix(xs, br.gamma)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var out mat.Dense
	out.Mul(phi, weights.T())
	return &out, nil
}

// Predict returns the closed-form predictive distribution at xs: the mean
// phi·Mu and the standard deviation sqrt(phi·Sigma·phiᵀ + varY) per row.
// The variance combines the epistemic term from the posterior covariance
// with the aleatoric noise term, so it is strictly positive for varY > 0.
// Returns ErrNotFitted before a posterior exists.
func (br *BayesianRegression) Predict(xs *mat.Dense) (mean, std *mat.VecDense, err error) {
	if br.posterior == nil {
		return nil, nil, ErrNotFitted
	}
	phi, err := br.designMatrix(xs, br.gamma)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	rows, m := phi.Dims()
	mean = mat.NewVecDense(rows, nil)
	mean.MulVec(phi, br.posterior.Mu)
	var phiSigma mat.Dense
	phiSigma.Mul(phi, br.posterior.Sigma)
	std = mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		var quad float64
		for j := 0; j < m; j++ {
			quad += phiSigma.At(i, j) * phi.At(i, j)
		}
		std.SetVec(i, math.Sqrt(quad+br.varY))
	}
	return mean, std, nil
}
