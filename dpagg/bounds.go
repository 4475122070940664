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


// Package dpagg contains the non-private building blocks of a differentially
// private aggregation: clamping bounds and the bounded statistic.
package dpagg

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/stepcount-dp/healthsteps/checks"
	"github.com/stepcount-dp/healthsteps/measurement"
)

// BoundsStrategy identifies how clamping bounds are determined.
type BoundsStrategy string

// AutoLocal derives the bounds from the participant's own series: the lower
// bound is its minimum and the upper bound its maximum.
//
// These bounds are public and local. They are computed without noise and are
// not charged against ε: they only calibrate the clamping of the same
// participant's release. The released record carries them in the clear, so an
// aggregator learns the participant's true minimum and maximum.
const AutoLocal BoundsStrategy = "auto-local"

// ParseBoundsStrategy returns the strategy named s, or an error wrapping
// checks.ErrUnsupportedConfiguration if s is not a supported strategy.
func ParseBoundsStrategy(s string) (BoundsStrategy, error) {
	switch BoundsStrategy(s) {
	case AutoLocal:
		return AutoLocal, nil
	default:
		return "", fmt.Errorf("bounds strategy %q is not supported, only %q is: %w", s, AutoLocal, checks.ErrUnsupportedConfiguration)
	}
}

// Bounds is a clamping range with Lower <= Upper.
type Bounds struct {
	Lower, Upper int64
}

// Sensitivity returns how much a bounded sum can change when a single
// clamped record is added or removed.
func (b Bounds) Sensitivity() float64 {
	return float64(b.Upper - b.Lower)
}

// IsDegenerate reports whether the range holds a single value, in which case
// the bounded statistic cannot vary and needs no noise.
func (b Bounds) IsDegenerate() bool {
	return b.Lower == b.Upper
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%d, %d]", b.Lower, b.Upper)
}

// EstimateBounds determines the clamping bounds of s with the given strategy.
// With AutoLocal, an empty series yields the degenerate bounds [0, 0].
func EstimateBounds(strategy BoundsStrategy, s *measurement.Series) (Bounds, error) {
	if strategy != AutoLocal {
		_, err := ParseBoundsStrategy(string(strategy))
		return Bounds{}, fmt.Errorf("EstimateBounds: %w", err)
	}
	values := s.Values()
	if len(values) == 0 {
		log.V(1).Infof("EstimateBounds: %s series is empty, using bounds [0, 0]", s.Type())
		return Bounds{}, nil
	}
	b := Bounds{Lower: values[0], Upper: values[0]}
	for _, v := range values[1:] {
		if v < b.Lower {
			b.Lower = v
		}
		if v > b.Upper {
			b.Upper = v
		}
	}
	if err := checks.CheckBoundsInt64(b.Lower, b.Upper); err != nil {
		return Bounds{}, fmt.Errorf("EstimateBounds: %w", err)
	}
	return b, nil
}
