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

package dataset

import (
	"math"
	"testing"

	"github.com/rff-io/rff/base"
	"github.com/stretchr/testify/assert"
)

func TestSinusoid(t *testing.T) {
	rng := base.NewRandomGenerator(0)
	x, y := Sinusoid(100, -5, 5, 0.01, rng)
	rows, cols := x.Dims()
	assert.Equal(t, 100, rows)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 100, y.Len())
	for i := 0; i < rows; i++ {
		assert.GreaterOrEqual(t, x.At(i, 0), -5.0)
		assert.Less(t, x.At(i, 0), 5.0)
		// noise std is 0.1, so 6 sigma covers everything in practice
		assert.InDelta(t, math.Sin(x.At(i, 0)), y.AtVec(i), 0.6)
	}
}

func TestSplit(t *testing.T) {
	rng := base.NewRandomGenerator(0)
	x, y := Sinusoid(100, -5, 5, 0.01, rng)
	trainX, testX, trainY, testY := Split(x, y, 0.2, 0)
	trainRows, _ := trainX.Dims()
	testRows, _ := testX.Dims()
	assert.Equal(t, 80, trainRows)
	assert.Equal(t, 20, testRows)
	assert.Equal(t, 80, trainY.Len())
	assert.Equal(t, 20, testY.Len())
	// every source row appears exactly once
	counts := make(map[float64]int)
	for i := 0; i < 100; i++ {
		counts[x.At(i, 0)]++
	}
	for i := 0; i < trainRows; i++ {
		counts[trainX.At(i, 0)]--
	}
	for i := 0; i < testRows; i++ {
		counts[testX.At(i, 0)]--
	}
	for _, c := range counts {
		assert.Zero(t, c)
	}
}
