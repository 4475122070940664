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


// Package noise contains methods to generate and add noise to data.
package noise

import (
	log "github.com/golang/glog"
)

// Kind is an enum type. Its values are the supported noise distributions types
// for differential privacy operations.
type Kind int

// Noise distributions used to achieve Differential Privacy.
const (
	LaplaceNoise Kind = iota
	Unrecognised
)

// laplaceName is the identifier of the Laplace mechanism in release records.
const laplaceName = "Laplace"

// String returns the identifier under which mechanisms of this kind are
// reported to the aggregator.
func (k Kind) String() string {
	switch k {
	case LaplaceNoise:
		return laplaceName
	default:
		return "Unrecognised"
	}
}

// ParseKind converts a mechanism identifier back into a Kind.
func ParseKind(name string) Kind {
	if name == laplaceName {
		return LaplaceNoise
	}
	return Unrecognised
}

// ToMechanism converts a Kind into a Mechanism drawing from the secure source.
func ToMechanism(k Kind) Mechanism {
	switch k {
	case LaplaceNoise:
		return Laplace()
	case Unrecognised:
		log.Warningf("ToMechanism: Unrecognised noise specified, returning nil")
	default:
		log.Warningf("ToMechanism: unknown kind (%v) specified, returning nil", k)
	}
	return nil
}

// ToKind converts a Mechanism instance into a Kind.
func ToKind(m Mechanism) Kind {
	switch m.(type) {
	case laplace:
		return LaplaceNoise
	case nil:
		log.Warningf("ToKind: nil mechanism specified, returning Unrecognised")
	default:
		log.Warningf("ToKind: unknown mechanism (%v) specified, returning Unrecognised", m)
	}
	return Unrecognised
}

// ConfidenceInterval holds lower and upper bounds as float64 for the confidence interval.
type ConfidenceInterval struct {
	LowerBound, UpperBound float64
}

// Mechanism is an interface for primitives that add noise to a statistic to
// make it differentially private.
type Mechanism interface {
	// AddNoiseFloat64 adds noise to the specified float64 x so that the output
	// is ε-differentially private, given that adding or removing one record
	// changes x by at most sensitivity.
	AddNoiseFloat64(x, sensitivity, epsilon float64) (float64, error)

	// ComputeConfidenceIntervalFloat64 computes a confidence interval that
	// contains the raw value x from which noisedX is computed with a
	// probability equal to 1 - alpha. It only post-processes noisedX and
	// consumes no privacy budget.
	ComputeConfidenceIntervalFloat64(noisedX, sensitivity, epsilon, alpha float64) (ConfidenceInterval, error)
}
