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


package dpagg

import (
	"fmt"
	"math"

	"github.com/stepcount-dp/healthsteps/checks"
	"github.com/stepcount-dp/healthsteps/measurement"
)

// BoundedSum returns the sum of the values of s after clamping each of them
// to b. Adding or removing one measurement changes the result by at most
// b.Sensitivity(). The computation is deterministic.
//
// Note: the sum is not hardened against int64 overflow beyond reporting it as
// an error.
func BoundedSum(s *measurement.Series, b Bounds) (int64, error) {
	if err := checks.CheckBoundsInt64(b.Lower, b.Upper); err != nil {
		return 0, fmt.Errorf("BoundedSum: %w", err)
	}
	var sum int64
	for _, v := range s.Values() {
		clamped, err := ClampInt64(v, b.Lower, b.Upper)
		if err != nil {
			return 0, fmt.Errorf("BoundedSum: couldn't clamp input value %v, err %v", v, err)
		}
		if clamped > 0 && sum > math.MaxInt64-clamped {
			return 0, fmt.Errorf("BoundedSum: sum of %s values overflows int64: %w", s.Type(), checks.ErrInvalidParameter)
		}
		sum += clamped
	}
	return sum, nil
}
