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

package main

import (
	"fmt"
	"os"

	"github.com/rff-io/rff/base"
	"github.com/rff-io/rff/base/log"
	"github.com/rff-io/rff/dataset"
	"github.com/rff-io/rff/model"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	flagSet := pflag.NewFlagSet("get_started", pflag.ExitOnError)
	seed := flagSet.Int64("seed", 0, "random seed")
	numFeatures := flagSet.Int("n-features", 200, "number of random Fourier features")
	maxIter := flagSet.Int("max-iter", 100, "maximum optimizer iterations")
	debug := flagSet.Bool("debug", false, "enable debug logging")
	log.AddFlags(flagSet)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		log.Logger().Fatal("failed to parse flags", zap.Error(err))
	}
	log.SetLogger(flagSet, *debug)

	// Generate dataset
	rng := base.NewRandomGenerator(*seed)
	x, y := dataset.Sinusoid(800, -5, 5, 0.01, rng)
	// Split dataset
	trainX, testX, trainY, testY := dataset.Split(x, y, 0.2, *seed)
	// Create model
	regression := model.NewBayesianRegression(model.Params{
		model.NFeatures:   *numFeatures,
		model.RandomState: *seed,
	})
	// Fit model
	regression.AddData(trainX, trainY)
	gamma, varY, err := regression.Optimize(*maxIter, *debug)
	if err != nil {
		log.Logger().Fatal("optimization failed", zap.Error(err))
	}
	fmt.Printf("gamma = %.5f\n", gamma)
	fmt.Printf("var_y = %.5f\n", varY)
	// Evaluate model
	mean, std, err := regression.Predict(testX)
	if err != nil {
		log.Logger().Fatal("prediction failed", zap.Error(err))
	}
	var mse float64
	n := mean.Len()
	for i := 0; i < n; i++ {
		diff := mean.AtVec(i) - testY.AtVec(i)
		mse += diff * diff
	}
	mse /= float64(n)
	fmt.Printf("MSE = %.5f\n", mse)
	fmt.Printf("Predict(%.3f) = %.5f ± %.5f\n", testX.At(0, 0), mean.AtVec(0), std.AtVec(0))
	// Sample predictions from the posterior
	weights, err := regression.SampleWeights(5)
	if err != nil {
		log.Logger().Fatal("sampling failed", zap.Error(err))
	}
	draws, err := regression.PostOneStep(testX, weights)
	if err != nil {
		log.Logger().Fatal("sample prediction failed", zap.Error(err))
	}
	for s := 0; s < 5; s++ {
		fmt.Printf("draw %d: f(%.3f) = %.5f\n", s, testX.At(0, 0), draws.At(0, s))
	}
}
