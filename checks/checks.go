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


// Package checks contains checks for differentially private functions.
//
// Every failing check wraps one of the sentinel errors below so that callers
// can tell the kind of failure apart with errors.Is.
package checks

import (
	"errors"
	"fmt"
	"math"

	log "github.com/golang/glog"
)

var (
	// ErrInvalidParameter is returned when a privacy or aggregation parameter is
	// outside of its domain, e.g. a negative ε.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupportedConfiguration is returned when the configuration requests a
	// strategy this library does not implement.
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
)

const (
	epsilonName     = "Epsilon"
	sensitivityName = "Sensitivity"
)

func verifyName(defaultName string, nameSlice []string) (string, error) {
	var name string
	switch len(nameSlice) {
	case 0:
		name = defaultName
	case 1:
		name = nameSlice[0]
	default:
		return "", fmt.Errorf("there should be 0 or 1 'name' parameter, got %d", len(nameSlice))
	}
	return name, nil
}

// CheckEpsilon returns an error if ε is strictly negative, NaN or ±∞.
// An ε of zero passes this check: whether it is usable depends on the
// sensitivity of the statistic it is applied to.
func CheckEpsilon(epsilon float64, name ...string) error {
	epsName, err := verifyName(epsilonName, name)
	if err != nil {
		return err
	}
	if epsilon < 0 || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return fmt.Errorf("%s is %f, must be nonnegative and finite: %w", epsName, epsilon, ErrInvalidParameter)
	}
	return nil
}

// CheckEpsilonStrict returns an error if ε is nonpositive, NaN or ±∞.
func CheckEpsilonStrict(epsilon float64, name ...string) error {
	epsName, err := verifyName(epsilonName, name)
	if err != nil {
		return err
	}
	if epsilon <= 0 || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return fmt.Errorf("%s is %f, must be strictly positive and finite: %w", epsName, epsilon, ErrInvalidParameter)
	}
	return nil
}

// CheckSensitivity returns an error if the sensitivity is negative, NaN or ±∞.
func CheckSensitivity(sensitivity float64, name ...string) error {
	sensName, err := verifyName(sensitivityName, name)
	if err != nil {
		return err
	}
	if sensitivity < 0 || math.IsInf(sensitivity, 0) || math.IsNaN(sensitivity) {
		return fmt.Errorf("%s is %f, must be nonnegative and finite: %w", sensName, sensitivity, ErrInvalidParameter)
	}
	return nil
}

// CheckBoundsInt64 returns an error if lower is larger than upper, or if the
// difference between them does not fit into an int64.
func CheckBoundsInt64(lower, upper int64) error {
	if lower > upper {
		return fmt.Errorf("Upper bound (%d) must be larger than lower bound (%d): %w", upper, lower, ErrInvalidParameter)
	}
	if lower < 0 && upper > math.MaxInt64+lower {
		return fmt.Errorf("Bounds [%d, %d] are too far apart, the sensitivity overflows: %w", lower, upper, ErrInvalidParameter)
	}
	if lower == upper {
		log.Warningf("Lower bound is equal to upper bound: all added elements will be clamped to %d", upper)
	}
	return nil
}

// CheckMeasurementValue returns an error if a measurement value is negative.
func CheckMeasurementValue(value int64) error {
	if value < 0 {
		return fmt.Errorf("Measurement value is %d, must be nonnegative: %w", value, ErrInvalidParameter)
	}
	return nil
}

// CheckAlpha returns an error if the supplied alpha is not between 0 and 1.
func CheckAlpha(alpha float64) error {
	if alpha <= 0 || alpha >= 1 || math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return fmt.Errorf("Alpha is %f, must be within (0, 1) and finite: %w", alpha, ErrInvalidParameter)
	}
	return nil
}
