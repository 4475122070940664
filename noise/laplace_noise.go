//
// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//


package noise

import (
	"fmt"
	"math"

	"github.com/stepcount-dp/healthsteps/checks"
	"github.com/stepcount-dp/healthsteps/rand"
)

type laplace struct {
	src rand.Source
}

// Laplace returns a Mechanism that adds Laplace noise to its input, drawing
// from the process-wide secure randomness source.
func Laplace() Mechanism {
	return laplace{src: rand.Secure()}
}

// LaplaceWithSource returns a Laplace Mechanism drawing from src. A nil src
// falls back to the secure source.
func LaplaceWithSource(src rand.Source) Mechanism {
	if src == nil {
		src = rand.Secure()
	}
	return laplace{src: src}
}

// AddNoiseFloat64 adds Laplace noise of scale sensitivity/ε to x.
//
// A sensitivity of 0 means x cannot vary between neighbouring inputs: x is
// returned unchanged and no randomness is consumed. Otherwise ε must be
// strictly positive. The returned value is neither rounded nor clamped and may
// lie outside the range of possible raw values.
func (l laplace) AddNoiseFloat64(x, sensitivity, epsilon float64) (float64, error) {
	if err := checkArgsLaplace(sensitivity, epsilon); err != nil {
		return 0, err
	}
	if sensitivity == 0 {
		return x, nil
	}
	b, err := LaplaceScale(sensitivity, epsilon)
	if err != nil {
		return 0, err
	}
	return x + l.sample(b), nil
}

// ComputeConfidenceIntervalFloat64 computes a confidence interval that contains the raw value x from which float64
// noisedX is computed with a probability equal to 1 - alpha based on the specified laplace noise parameters.
func (l laplace) ComputeConfidenceIntervalFloat64(noisedX, sensitivity, epsilon, alpha float64) (ConfidenceInterval, error) {
	if err := checks.CheckAlpha(alpha); err != nil {
		return ConfidenceInterval{}, err
	}
	if err := checkArgsLaplace(sensitivity, epsilon); err != nil {
		return ConfidenceInterval{}, err
	}
	if sensitivity == 0 {
		return ConfidenceInterval{LowerBound: noisedX, UpperBound: noisedX}, nil
	}
	b, err := LaplaceScale(sensitivity, epsilon)
	if err != nil {
		return ConfidenceInterval{}, err
	}
	return computeConfidenceIntervalLaplace(noisedX, b, alpha), nil
}

func (laplace) String() string {
	return "Laplace Noise"
}

// LaplaceScale returns the scale b = sensitivity/ε of the Laplace distribution
// that makes a statistic with the given sensitivity ε-differentially private.
// The variance of the noise is 2b².
func LaplaceScale(sensitivity, epsilon float64) (float64, error) {
	if err := checkArgsLaplace(sensitivity, epsilon); err != nil {
		return 0, err
	}
	if sensitivity == 0 {
		return 0, nil
	}
	b := sensitivity / epsilon
	if math.IsInf(b, 0) {
		return 0, fmt.Errorf("noise scale %f/%e overflows, epsilon is too small: %w", sensitivity, epsilon, checks.ErrInvalidParameter)
	}
	return b, nil
}

// checkArgsLaplace rejects negative or non-finite parameters. ε = 0 is only
// accepted together with a sensitivity of 0.
func checkArgsLaplace(sensitivity, epsilon float64) error {
	if err := checks.CheckSensitivity(sensitivity); err != nil {
		return err
	}
	if err := checks.CheckEpsilon(epsilon); err != nil {
		return err
	}
	if sensitivity > 0 {
		return checks.CheckEpsilonStrict(epsilon)
	}
	return nil
}

// sample draws from the Laplace distribution with location 0 and scale b by
// inverting its CDF at a uniform u ∈ (-0.5, 0.5):
//
//	X = -b · sign(u) · ln(1 - 2|u|)
//
// Draws on the boundary of the interval would take the log of zero and are
// discarded.
func (l laplace) sample(b float64) float64 {
	u := l.src.Float64() - 0.5
	for u <= -0.5 || u >= 0.5 {
		u = l.src.Float64() - 0.5
	}
	if u < 0 {
		return b * math.Log1p(2*u)
	}
	return -b * math.Log1p(-2*u)
}

// computeConfidenceIntervalLaplace computes a confidence interval that contains the raw value x from which
// float64 noisedX is computed with a probability equal to 1 - alpha with the given scale.
func computeConfidenceIntervalLaplace(noisedX, b, alpha float64) ConfidenceInterval {
	z := inverseCDFLaplace(b, alpha/2)
	// By symmetry -z is the (1 - alpha/2)-quantile, so [z, -z] holds 1-alpha of
	// the probability mass. alpha/2 is represented more accurately than
	// 1 - alpha/2 when alpha is small.
	return ConfidenceInterval{LowerBound: noisedX + z, UpperBound: noisedX - z}
}

// inverseCDFLaplace computes the quantile z satisfying Pr[Y <= z] = p for a random variable Y
// that is Laplace distributed with the specified scale where mean is zero.
func inverseCDFLaplace(b, p float64) float64 {
	if p < 0.5 {
		return b * math.Log(2*p)
	}
	return -b * math.Log(2*(1-p))
}
