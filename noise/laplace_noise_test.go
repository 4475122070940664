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
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/grd/stat"
	"github.com/stepcount-dp/healthsteps/checks"
	"github.com/stepcount-dp/healthsteps/rand/randtest"
	"github.com/stepcount-dp/healthsteps/stattestutils"
)

var (
	ln2 = math.Log(2)
	ln3 = math.Log(3)

	lap = Laplace()
)

func nearEqual(a, b, maxError float64) bool {
	return math.Abs(a-b) < maxError
}

func TestLaplaceStatistics(t *testing.T) {
	const numberOfSamples = 125000
	for _, tc := range []struct {
		sensitivity, epsilon, mean, variance float64
	}{
		{
			sensitivity: 1.0,
			epsilon:     1.0,
			mean:        0.0,
			variance:    2.0,
		},
		{
			sensitivity: 1.0,
			epsilon:     ln3,
			mean:        0.0,
			variance:    2.0 / (ln3 * ln3),
		},
		{
			sensitivity: 1.0,
			epsilon:     ln3,
			mean:        45941223.02107,
			variance:    2.0 / (ln3 * ln3),
		},
		{
			sensitivity: 100.0,
			epsilon:     0.5,
			mean:        450.0,
			variance:    2.0 * 200.0 * 200.0,
		},
	} {
		noisedSamples := make(stat.Float64Slice, numberOfSamples)
		for i := 0; i < numberOfSamples; i++ {
			got, err := lap.AddNoiseFloat64(tc.mean, tc.sensitivity, tc.epsilon)
			if err != nil {
				t.Fatalf("AddNoiseFloat64(%f, %f, %f): got err %v", tc.mean, tc.sensitivity, tc.epsilon, err)
			}
			noisedSamples[i] = got
		}
		sampleMean, sampleVariance := stat.Mean(noisedSamples), stat.Variance(noisedSamples)
		// The sample mean is approximately Gaussian with standard deviation
		// sqrt(tc.variance / numberOfSamples). The tolerance is its 99.9995% quantile,
		// so the test falsely rejects with a probability of 10⁻⁵.
		meanErrorTolerance := 4.41717 * math.Sqrt(tc.variance/float64(numberOfSamples))
		// The sample variance is approximately Gaussian with mean tc.variance and
		// standard deviation sqrt(5) * tc.variance / sqrt(numberOfSamples).
		varianceErrorTolerance := 4.41717 * math.Sqrt(5.0) * tc.variance / math.Sqrt(float64(numberOfSamples))

		if !nearEqual(sampleMean, tc.mean, meanErrorTolerance) {
			t.Errorf("got mean = %f, want %f (parameters %+v)", sampleMean, tc.mean, tc)
		}
		if !nearEqual(sampleVariance, tc.variance, varianceErrorTolerance) {
			t.Errorf("got variance = %f, want %f (parameters %+v)", sampleVariance, tc.variance, tc)
		}
	}
}

func TestLaplaceDistributionShape(t *testing.T) {
	const numberOfSamples = 20000
	samples := make([]float64, numberOfSamples)
	for i := range samples {
		got, err := lap.AddNoiseFloat64(450, 100, 0.5)
		if err != nil {
			t.Fatalf("AddNoiseFloat64: got err %v", err)
		}
		samples[i] = got
	}
	d := stattestutils.KolmogorovSmirnovLaplace(samples, 450, 200)
	if limit := stattestutils.KolmogorovSmirnovCriticalValue(numberOfSamples, 1e-5); d > limit {
		t.Errorf("Kolmogorov-Smirnov statistic against Laplace(450, 200) is %f, want at most %f", d, limit)
	}
}

func TestLaplaceInverseCDFSampling(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		uniform []float64
		want    float64
		draws   int
	}{
		{"u above zero", []float64{0.75}, 100 + 200*ln2, 1},
		{"u below zero", []float64{0.25}, 100 - 200*ln2, 1},
		{"u is zero", []float64{0.5}, 100, 1},
		{"u on the lower boundary is redrawn", []float64{0, 0.75}, 100 + 200*ln2, 2},
		{"u on the upper boundary is redrawn", []float64{1, 0.25}, 100 - 200*ln2, 2},
	} {
		src := randtest.NewSequence(tc.uniform...)
		got, err := LaplaceWithSource(src).AddNoiseFloat64(100, 100, 0.5)
		if err != nil {
			t.Fatalf("AddNoiseFloat64: when %s got err %v", tc.desc, err)
		}
		if !nearEqual(got, tc.want, 1e-9) {
			t.Errorf("AddNoiseFloat64: when %s got %f, want %f", tc.desc, got, tc.want)
		}
		if src.Draws() != tc.draws {
			t.Errorf("AddNoiseFloat64: when %s drew %d values, want %d", tc.desc, src.Draws(), tc.draws)
		}
	}
}

func TestLaplaceOutputIsNotClamped(t *testing.T) {
	// A draw this close to the upper end of the interval produces noise far
	// larger than the sensitivity; it must be released as is.
	src := randtest.NewSequence(1 - 1e-9)
	got, err := LaplaceWithSource(src).AddNoiseFloat64(450, 100, 0.5)
	if err != nil {
		t.Fatalf("AddNoiseFloat64: got err %v", err)
	}
	want := 450 - 200*math.Log(2e-9)
	if !nearEqual(got, want, 1e-3) {
		t.Errorf("AddNoiseFloat64: got %f, want %f", got, want)
	}
}

func TestLaplaceZeroSensitivity(t *testing.T) {
	for _, epsilon := range []float64{0, 1e-300, 0.5, 10} {
		src := randtest.NewSequence(0.9)
		got, err := LaplaceWithSource(src).AddNoiseFloat64(450, 0, epsilon)
		if err != nil {
			t.Errorf("AddNoiseFloat64(450, 0, %e): got err %v", epsilon, err)
		}
		if got != 450 {
			t.Errorf("AddNoiseFloat64(450, 0, %e): got %f, want 450", epsilon, got)
		}
		if src.Draws() != 0 {
			t.Errorf("AddNoiseFloat64(450, 0, %e): drew %d values, want none", epsilon, src.Draws())
		}
	}
}

func TestLaplaceInvalidParameters(t *testing.T) {
	for _, tc := range []struct {
		desc                 string
		sensitivity, epsilon float64
	}{
		{"zero epsilon, positive sensitivity", 100, 0},
		{"negative epsilon, positive sensitivity", 100, -0.5},
		{"negative epsilon, zero sensitivity", 0, -0.5},
		{"NaN epsilon", 100, math.NaN()},
		{"infinite epsilon", 100, math.Inf(1)},
		{"negative sensitivity", -1, 0.5},
		{"infinite sensitivity", math.Inf(1), 0.5},
		{"scale overflows", math.MaxFloat64, 0.5},
	} {
		src := randtest.NewSequence(0.9)
		_, err := LaplaceWithSource(src).AddNoiseFloat64(450, tc.sensitivity, tc.epsilon)
		if !errors.Is(err, checks.ErrInvalidParameter) {
			t.Errorf("AddNoiseFloat64: when %s got err %v, want ErrInvalidParameter", tc.desc, err)
		}
		if src.Draws() != 0 {
			t.Errorf("AddNoiseFloat64: when %s drew %d values, want none", tc.desc, src.Draws())
		}
	}
}

func TestLaplaceScale(t *testing.T) {
	for _, tc := range []struct {
		sensitivity, epsilon, want float64
	}{
		{100, 0.5, 200},
		{1, ln3, 1 / ln3},
		{0, 0, 0},
		{0, 1, 0},
	} {
		got, err := LaplaceScale(tc.sensitivity, tc.epsilon)
		if err != nil {
			t.Errorf("LaplaceScale(%f, %f): got err %v", tc.sensitivity, tc.epsilon, err)
		}
		if !nearEqual(got, tc.want, 1e-12) {
			t.Errorf("LaplaceScale(%f, %f): got %f, want %f", tc.sensitivity, tc.epsilon, got, tc.want)
		}
	}
}

func TestComputeConfidenceIntervalLaplace(t *testing.T) {
	for _, tc := range []struct {
		desc                          string
		noisedX, sensitivity, epsilon float64
		alpha                         float64
		want                          ConfidenceInterval
	}{
		{
			desc:        "unit scale",
			noisedX:     0,
			sensitivity: 1,
			epsilon:     1,
			alpha:       0.05,
			want:        ConfidenceInterval{LowerBound: math.Log(0.05), UpperBound: -math.Log(0.05)},
		},
		{
			desc:        "step count scale",
			noisedX:     450,
			sensitivity: 100,
			epsilon:     0.5,
			alpha:       0.5,
			want:        ConfidenceInterval{LowerBound: 450 + 200*math.Log(0.5), UpperBound: 450 - 200*math.Log(0.5)},
		},
		{
			desc:        "zero sensitivity",
			noisedX:     0,
			sensitivity: 0,
			epsilon:     1,
			alpha:       0.05,
			want:        ConfidenceInterval{LowerBound: 0, UpperBound: 0},
		},
	} {
		got, err := lap.ComputeConfidenceIntervalFloat64(tc.noisedX, tc.sensitivity, tc.epsilon, tc.alpha)
		if err != nil {
			t.Fatalf("ComputeConfidenceIntervalFloat64: when %s got err %v", tc.desc, err)
		}
		if diff := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("ComputeConfidenceIntervalFloat64: when %s got diff (-want +got):\n%s", tc.desc, diff)
		}
	}
	if _, err := lap.ComputeConfidenceIntervalFloat64(0, 1, 1, 1.5); !errors.Is(err, checks.ErrInvalidParameter) {
		t.Errorf("ComputeConfidenceIntervalFloat64 with alpha 1.5: got err %v, want ErrInvalidParameter", err)
	}
}

func TestKindRoundTrip(t *testing.T) {
	if got := ToKind(Laplace()); got != LaplaceNoise {
		t.Errorf("ToKind(Laplace()): got %v, want %v", got, LaplaceNoise)
	}
	if got := ToKind(LaplaceWithSource(randtest.NewSequence(0.5))); got != LaplaceNoise {
		t.Errorf("ToKind(LaplaceWithSource()): got %v, want %v", got, LaplaceNoise)
	}
	if got := ToKind(nil); got != Unrecognised {
		t.Errorf("ToKind(nil): got %v, want %v", got, Unrecognised)
	}
	if got := LaplaceNoise.String(); got != "Laplace" {
		t.Errorf("LaplaceNoise.String(): got %q, want %q", got, "Laplace")
	}
	if got := ParseKind("Laplace"); got != LaplaceNoise {
		t.Errorf("ParseKind(Laplace): got %v, want %v", got, LaplaceNoise)
	}
	if got := ParseKind("Gaussian"); got != Unrecognised {
		t.Errorf("ParseKind(Gaussian): got %v, want %v", got, Unrecognised)
	}
	if ToMechanism(LaplaceNoise) == nil {
		t.Error("ToMechanism(LaplaceNoise): got nil")
	}
	if ToMechanism(Unrecognised) != nil {
		t.Error("ToMechanism(Unrecognised): got non-nil mechanism")
	}
}

var benchResultFloat64 float64

func BenchmarkLaplaceFloat64(b *testing.B) {
	var r float64
	for i := 0; i < b.N; i++ {
		r, _ = lap.AddNoiseFloat64(450, 100, 0.5)
	}
	benchResultFloat64 = r
}
