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
	"testing"

	"github.com/rff-io/rff/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// sinusoidData builds n one-dimensional noisy sine observations.
func sinusoidData(n int, rng base.RandomGenerator) (*mat.Dense, *mat.VecDense) {
	x := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	xs := rng.UniformVector64(n, -5, 5)
	for i := 0; i < n; i++ {
		x.Set(i, 0, xs[i])
		y.SetVec(i, math.Sin(xs[i])+rng.NormFloat64()*0.1)
	}
	return x, y
}

func fittedRegression(t *testing.T, n int) *BayesianRegression {
	rng := base.NewRandomGenerator(0)
	x, y := sinusoidData(n, rng)
	br := NewBayesianRegression(Params{NFeatures: 50, RandomState: 1})
	br.AddData(x, y)
	require.NotNil(t, br)
	return br
}

func TestCalculatePosterior_Shapes(t *testing.T) {
	br := fittedRegression(t, 20)
	posterior, err := br.CalculatePosterior(1, 0.1, 1)
	require.NoError(t, err)
	assert.Equal(t, 21, posterior.Dim())
	rows, cols := posterior.Phi.Dims()
	assert.Equal(t, 20, rows)
	assert.Equal(t, 21, cols)
	assert.Equal(t, 1.0, posterior.Gamma)
	assert.Equal(t, 0.1, posterior.VarY)
}

func TestCalculatePosterior_SymmetricPositiveDefinite(t *testing.T) {
	br := fittedRegression(t, 20)
	posterior, err := br.CalculatePosterior(0.5, 0.2, 2)
	require.NoError(t, err)
	var chol mat.Cholesky
	assert.True(t, chol.Factorize(posterior.Sigma))
}

func TestCalculatePosterior_Idempotent(t *testing.T) {
	br := fittedRegression(t, 20)
	first, err := br.CalculatePosterior(1, 0.1, 1)
	require.NoError(t, err)
	second, err := br.CalculatePosterior(1, 0.1, 1)
	require.NoError(t, err)
	assert.True(t, mat.Equal(first.Mu, second.Mu))
	assert.True(t, mat.Equal(first.Sigma, second.Sigma))
	assert.True(t, mat.Equal(first.Phi, second.Phi))
}

func TestCalculatePosterior_NotFitted(t *testing.T) {
	br := NewBayesianRegression(nil)
	_, err := br.CalculatePosterior(1, 1, 1)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestKLDivergence_StandardNormal(t *testing.T) {
	mu := mat.NewVecDense(5, nil)
	sigma := mat.NewSymDense(5, nil)
	for i := 0; i < 5; i++ {
		sigma.SetSym(i, i, 1)
	}
	kl, err := KLDivergence(mu, sigma)
	require.NoError(t, err)
	assert.InDelta(t, 0, kl, 1e-12)
}

func TestKLDivergence_NotPositiveDefinite(t *testing.T) {
	mu := mat.NewVecDense(2, nil)
	sigma := mat.NewSymDense(2, []float64{1, 2, 2, 1})
	_, err := KLDivergence(mu, sigma)
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)
}

func TestKLDivergence_MatchesPosterior(t *testing.T) {
	br := fittedRegression(t, 15)
	posterior, err := br.CalculatePosterior(1, 0.1, 1)
	require.NoError(t, err)
	kl, err := KLDivergence(posterior.Mu, posterior.Sigma)
	require.NoError(t, err)
	assert.InDelta(t, posterior.KL(), kl, 1e-6)
	assert.False(t, math.IsNaN(kl))
}

func TestPosterior_SampleMeanConverges(t *testing.T) {
	br := fittedRegression(t, 20)
	posterior, err := br.CalculatePosterior(1, 0.1, 1)
	require.NoError(t, err)
	rng := base.NewRandomGenerator(7)
	samples, err := posterior.Sample(10000, rng)
	require.NoError(t, err)
	rows, cols := samples.Dims()
	assert.Equal(t, 10000, rows)
	assert.Equal(t, posterior.Dim(), cols)
	for j := 0; j < cols; j++ {
		var sum float64
		for i := 0; i < rows; i++ {
			sum += samples.At(i, j)
		}
		assert.InDelta(t, posterior.Mu.AtVec(j), sum/float64(rows), 0.05)
	}
}
