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

// Package dataset generates and splits regression datasets.
package dataset

import (
	"math"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rff-io/rff/base"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// Sinusoid generates n one-dimensional points with x ~ Uniform(low, high)
// and y = sin(x) + N(0, noiseVar).
func Sinusoid(n int, low, high, noiseVar float64, rng base.RandomGenerator) (*mat.Dense, *mat.VecDense) {
	xs := rng.UniformVector64(n, low, high)
	x := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	noiseStd := math.Sqrt(noiseVar)
	for i := 0; i < n; i++ {
		x.Set(i, 0, xs[i])
		y.SetVec(i, math.Sin(xs[i])+rng.NormFloat64()*noiseStd)
	}
	return x, y
}

// Split randomly holds out a testRatio fraction of the rows.
func Split(x *mat.Dense, y *mat.VecDense, testRatio float64, seed int64) (trainX, testX *mat.Dense, trainY, testY *mat.VecDense) {
	n, p := x.Dims()
	numTest := int(float64(n) * testRatio)
	rng := base.NewRandomGenerator(seed)
	testIndices := rng.Sample(0, n, numTest)
	slices.Sort(testIndices)
	testSet := mapset.NewSet(testIndices...)
	trainX = mat.NewDense(n-numTest, p, nil)
	trainY = mat.NewVecDense(n-numTest, nil)
	testX = mat.NewDense(numTest, p, nil)
	testY = mat.NewVecDense(numTest, nil)
	trainRow, testRow := 0, 0
	for i := 0; i < n; i++ {
		if testSet.Contains(i) {
			testX.SetRow(testRow, x.RawRowView(i))
			testY.SetVec(testRow, y.AtVec(i))
			testRow++
		} else {
			trainX.SetRow(trainRow, x.RawRowView(i))
			trainY.SetVec(trainRow, y.AtVec(i))
			trainRow++
		}
	}
	return
}
