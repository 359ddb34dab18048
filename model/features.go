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
	"github.com/rff-io/rff/base"
	"gonum.org/v1/gonum/mat"
)

// RandomFeatures maps raw inputs into a random Fourier feature embedding
// that approximates a Gaussian kernel [RR08]. The map draws d random
// directions and phases once per fit; a larger d trades compute for a
// smaller Monte Carlo approximation error.
//
// [RR08] Rahimi, Ali, and Benjamin Recht. "Random features for large-scale
// kernel machines." NeurIPS 2008.
type RandomFeatures struct {
	d int        // number of random features
	w *mat.Dense // random directions, (d, p)
	b []float64  // random phase offsets, (d,)
}

// NewRandomFeatures creates an unfitted feature map with d random features.
func NewRandomFeatures(d int) *RandomFeatures {
	return &RandomFeatures{d: d}
}

// NumFeatures returns the number of random features d.
func (rf *RandomFeatures) NumFeatures() int {
	return rf.d
}

// Fitted reports whether directions and phases have been drawn.
func (rf *RandomFeatures) Fitted() bool {
	return rf.w != nil
}

// Fit draws random directions w ~ N(0, 1) of shape (d, p) and phases
// b ~ Uniform(0, 2π), where p is the column count of x. Fitting again
// overwrites the previous draw and invalidates any embedding computed
// with it.
func (rf *RandomFeatures) Fit(x mat.Matrix, rng base.RandomGenerator) {
	_, p := x.Dims()
	w := mat.NewDense(rf.d, p, nil)
	for i := 0; i < rf.d; i++ {
		w.SetRow(i, rng.NormalVector64(p, 0, 1))
	}
	rf.w = w
	rf.b = rng.UniformVector64(rf.d, 0, 2*math.Pi)
}

// Transform computes the embedding Z = sqrt(2/d) * cos(X·Wᵀ + b) with shape
// (n, d). Every entry lies in [-sqrt(2/d), sqrt(2/d)]. Returns ErrNotFitted
// before Fit.
func (rf *RandomFeatures) Transform(x mat.Matrix) (*mat.Dense, error) {
	if !rf.Fitted() {
		return nil, ErrNotFitted
	}
	n, _ := x.Dims()
	var proj mat.Dense
	proj.Mul(x, rf.w.T())
	scale := math.Sqrt(2 / float64(rf.d))
	z := mat.NewDense(n, rf.d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < rf.d; j++ {
			z.Set(i, j, scale*math.Cos(proj.At(i, j)+rf.b[j]))
		}
	}
	return z, nil
}

// KernelMatrix approximates the Gram matrix of the target kernel between two
// point sets without forming the kernel in closed form:
//
//	K = Zx · Zyᵀ · sqrt(2·gamma)
//
// A nil y means y = x, in which case K is symmetric. Returns ErrNotFitted
// before Fit.
func (rf *RandomFeatures) KernelMatrix(x, y mat.Matrix, gamma float64) (*mat.Dense, error) {
	if !rf.Fitted() {
		return nil, ErrNotFitted
	}
	zx, err := rf.Transform(x)
	if err != nil {
		return nil, errors.Trace(err)
	}
	zy := zx
	if y != nil {
		if zy, err = rf.Transform(y); err != nil {
			return nil, errors.Trace(err)
		}
	}
	var k mat.Dense
	k.Mul(zx, zy.T())
	k.Scale(math.Sqrt(2*gamma), &k)
	return &k, nil
}
