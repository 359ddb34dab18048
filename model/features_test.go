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
	"gonum.org/v1/gonum/stat"
)

func randomInputs(n, p int, rng base.RandomGenerator) *mat.Dense {
	x := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		x.SetRow(i, rng.NormalVector64(p, 0, 1))
	}
	return x
}

func TestRandomFeatures_NotFitted(t *testing.T) {
	rf := NewRandomFeatures(10)
	assert.False(t, rf.Fitted())
	_, err := rf.Transform(mat.NewDense(2, 2, nil))
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = rf.KernelMatrix(mat.NewDense(2, 2, nil), nil, 1)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestRandomFeatures_TransformShapeAndBounds(t *testing.T) {
	rng := base.NewRandomGenerator(0)
	x := randomInputs(10, 3, rng)
	rf := NewRandomFeatures(50)
	rf.Fit(x, rng)
	assert.True(t, rf.Fitted())
	z, err := rf.Transform(x)
	require.NoError(t, err)
	rows, cols := z.Dims()
	assert.Equal(t, 10, rows)
	assert.Equal(t, 50, cols)
	bound := math.Sqrt(2.0 / 50)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.LessOrEqual(t, math.Abs(z.At(i, j)), bound+1e-12)
		}
	}
}

func TestRandomFeatures_Refit(t *testing.T) {
	rng := base.NewRandomGenerator(0)
	rf := NewRandomFeatures(20)
	rf.Fit(randomInputs(5, 2, rng), rng)
	rf.Fit(randomInputs(5, 4, rng), rng)
	z, err := rf.Transform(randomInputs(5, 4, rng))
	require.NoError(t, err)
	_, cols := z.Dims()
	assert.Equal(t, 20, cols)
}

func TestRandomFeatures_KernelMatrixSymmetric(t *testing.T) {
	rng := base.NewRandomGenerator(0)
	x := randomInputs(8, 2, rng)
	rf := NewRandomFeatures(64)
	rf.Fit(x, rng)
	k, err := rf.KernelMatrix(x, nil, 1.5)
	require.NoError(t, err)
	rows, cols := k.Dims()
	assert.Equal(t, 8, rows)
	assert.Equal(t, 8, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.InDelta(t, k.At(i, j), k.At(j, i), 1e-12)
		}
	}
}

func TestRandomFeatures_KernelMatrixCrossShape(t *testing.T) {
	rng := base.NewRandomGenerator(0)
	x := randomInputs(8, 2, rng)
	y := randomInputs(3, 2, rng)
	rf := NewRandomFeatures(64)
	rf.Fit(x, rng)
	k, err := rf.KernelMatrix(x, y, 1)
	require.NoError(t, err)
	rows, cols := k.Dims()
	assert.Equal(t, 8, rows)
	assert.Equal(t, 3, cols)
}

// The Monte Carlo kernel estimate tightens as the number of random features
// grows: the variance of a fixed kernel entry across independent draws must
// shrink.
func TestRandomFeatures_KernelConverges(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{0, 0.5})
	variance := func(d int) float64 {
		estimates := make([]float64, 20)
		for rep := range estimates {
			rng := base.NewRandomGenerator(int64(rep))
			rf := NewRandomFeatures(d)
			rf.Fit(x, rng)
			k, err := rf.KernelMatrix(x, nil, 1)
			require.NoError(t, err)
			estimates[rep] = k.At(0, 1)
		}
		return stat.Variance(estimates, nil)
	}
	assert.Less(t, variance(2048), variance(64))
}
