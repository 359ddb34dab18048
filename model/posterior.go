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
	"github.com/juju/errors"
	"github.com/rff-io/rff/base"
	"gonum.org/v1/gonum/mat"
)

// Posterior is the closed-form Gaussian posterior N(Mu, Sigma) over the
// regression weights, together with the design matrix and hyperparameters
// it was computed from. It is an explicit value: recomputing it never
// happens behind the caller's back, and it becomes stale only when the
// caller supplies different hyperparameters or data.
type Posterior struct {
	Mu    *mat.VecDense // posterior mean, (m,)
	Sigma *mat.SymDense // posterior covariance, (m, m), SPD
	Phi   *mat.Dense    // design matrix, (n, m)
	Gamma float64
	VarY  float64

	logDet float64 // log|Sigma|, from the precision Cholesky
}

// Dim returns the weight dimensionality m.
func (p *Posterior) Dim() int {
	return p.Mu.Len()
}

// KL returns the KL divergence between N(Mu, Sigma) and the standard normal
// prior N(0, I), reusing the log-determinant saved from the solve.
func (p *Posterior) KL() float64 {
	m := float64(p.Dim())
	return 0.5 * (-p.logDet - m + mat.Trace(p.Sigma) + mat.Dot(p.Mu, p.Mu))
}

// Sample draws num i.i.d. weight vectors from N(Mu, Sigma) via the Cholesky
// factor of Sigma. The result has one draw per row, shape (num, m).
func (p *Posterior) Sample(num int, rng base.RandomGenerator) (*mat.Dense, error) {
	m := p.Dim()
	var chol mat.Cholesky
	if !chol.Factorize(p.Sigma) {
		return nil, ErrNotPositiveDefinite
	}
	var l mat.TriDense
	chol.LTo(&l)
	samples := mat.NewDense(num, m, nil)
	z := mat.NewVecDense(m, nil)
	row := mat.NewVecDense(m, nil)
	for s := 0; s < num; s++ {
		for j := 0; j < m; j++ {
			z.SetVec(j, rng.NormFloat64())
		}
		row.MulVec(&l, z)
		row.AddVec(row, p.Mu)
		for j := 0; j < m; j++ {
			samples.Set(s, j, row.AtVec(j))
		}
	}
	return samples, nil
}

// KLDivergence computes the closed-form KL divergence between N(mu, sigma)
// and the standard normal N(0, I):
//
//	KL = 0.5 · (−log|Σ| − m + tr(Σ) + muᵀ·mu)
//
// Returns ErrNotPositiveDefinite if sigma fails its Cholesky factorization.
// During hyperparameter optimization that failure marks a rejected trial,
// not a fatal error, since the optimizer may probe invalid regions.
func KLDivergence(mu *mat.VecDense, sigma *mat.SymDense) (float64, error) {
	var chol mat.Cholesky
	if !chol.Factorize(sigma) {
		return 0, ErrNotPositiveDefinite
	}
	m := float64(mu.Len())
	return 0.5 * (-chol.LogDet() - m + mat.Trace(sigma) + mat.Dot(mu, mu)), nil
}

// CalculatePosterior computes the Gaussian posterior over regression weights
// for the given hyperparameters:
//
//	phi   = [1 | K(X, X; gamma)]
//	Sigma = (phiᵀ·phi / varY + I/varW)⁻¹
//	Mu    = Sigma · phiᵀ · y / varY
//
// The precision matrix is factorized once with Cholesky; Mu comes from
// triangular solves rather than the explicit inverse. Sigma itself is still
// materialized because prediction and the KL term consume it.
//
// The result is stored as the current posterior of the regression, along
// with gamma and varY. Returns ErrNotFitted before AddData, and
// ErrNotPositiveDefinite when the precision matrix is degenerate.
func (br *BayesianRegression) CalculatePosterior(gamma, varY, varW float64) (*Posterior, error) {
	if br.x == nil {
		return nil, ErrNotFitted
	}
	phi, err := br.designMatrix(nil, gamma)
	if err != nil {
		return nil, errors.Trace(err)
	}
	_, m := phi.Dims()
	var gram mat.Dense
	gram.Mul(phi.T(), phi)
	precision := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			v := gram.At(i, j) / varY
			if i == j {
				v += 1 / varW
			}
			precision.SetSym(i, j, v)
		}
	}
	var chol mat.Cholesky
	if !chol.Factorize(precision) {
		return nil, ErrNotPositiveDefinite
	}
	sigma := mat.NewSymDense(m, nil)
	if err := chol.InverseTo(sigma); err != nil {
		return nil, errors.Trace(err)
	}
	rhs := mat.NewVecDense(m, nil)
	rhs.MulVec(phi.T(), br.y)
	rhs.ScaleVec(1/varY, rhs)
	mu := mat.NewVecDense(m, nil)
	if err := chol.SolveVecTo(mu, rhs); err != nil {
		return nil, errors.Trace(err)
	}
	posterior := &Posterior{
		Mu:     mu,
		Sigma:  sigma,
		Phi:    phi,
		Gamma:  gamma,
		VarY:   varY,
		logDet: -chol.LogDet(), // log|Sigma| = -log|precision|
	}
	br.gamma = gamma
	br.varY = varY
	br.varW = varW
	br.posterior = posterior
	return posterior, nil
}

// designMatrix builds [1 | K(a, X; gamma)]: a bias column followed by the
// kernel-basis block of a against the training inputs. A nil a means the
// training inputs themselves.
func (br *BayesianRegression) designMatrix(a mat.Matrix, gamma float64) (*mat.Dense, error) {
	var k *mat.Dense
	var err error
	if a == nil {
		k, err = br.features.KernelMatrix(br.x, nil, gamma)
	} else {
		k, err = br.features.KernelMatrix(a, br.x, gamma)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	rows, cols := k.Dims()
	phi := mat.NewDense(rows, cols+1, nil)
	for i := 0; i < rows; i++ {
		phi.Set(i, 0, 1)
		for j := 0; j < cols; j++ {
			phi.Set(i, j+1, k.At(i, j))
		}
	}
	return phi, nil
}
