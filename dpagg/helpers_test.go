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
	"testing"
)

func TestClampInt64(t *testing.T) {
	for _, tc := range []struct {
		desc         string
		valueToClamp int64
		lower        int64
		upper        int64
		want         int64
		wantErr      bool
	}{
		{
			desc:         "Equal bounds, value is equal to bound",
			valueToClamp: 1,
			lower:        1,
			upper:        1,
			want:         1,
		},
		{
			desc:         "Equal bounds, value is less than bound",
			valueToClamp: 0,
			lower:        1,
			upper:        1,
			want:         1,
		},
		{
			desc:         "Equal bounds, value is greater than bound",
			valueToClamp: 2,
			lower:        1,
			upper:        1,
			want:         1,
		},
		{
			desc:         "Value is inside bounds",
			valueToClamp: 150,
			lower:        100,
			upper:        200,
			want:         150,
		},
		{
			desc:         "Value is below lower bound",
			valueToClamp: 50,
			lower:        100,
			upper:        200,
			want:         100,
		},
		{
			desc:         "Value is above upper bound",
			valueToClamp: 5000,
			lower:        100,
			upper:        200,
			want:         200,
		},
		{
			desc:         "Lower bound is greater than upper bound",
			valueToClamp: 150,
			lower:        200,
			upper:        100,
			want:         0,
			wantErr:      true,
		},
	} {
		got, err := ClampInt64(tc.valueToClamp, tc.lower, tc.upper)
		if (err != nil) != tc.wantErr {
			t.Errorf("With %s, got=%v error, wantErr=%t", tc.desc, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ClampInt64: when %s got %v, want %v", tc.desc, got, tc.want)
		}
	}
}

func TestClampInt64IsIdempotent(t *testing.T) {
	for _, b := range []Bounds{{0, 0}, {1, 1}, {100, 200}, {0, 10000}} {
		for _, v := range []int64{0, 1, 99, 100, 150, 200, 201, 10000, 20000} {
			once, err := ClampInt64(v, b.Lower, b.Upper)
			if err != nil {
				t.Fatalf("ClampInt64(%d, %v): got err %v", v, b, err)
			}
			twice, err := ClampInt64(once, b.Lower, b.Upper)
			if err != nil {
				t.Fatalf("ClampInt64(%d, %v): got err %v", once, b, err)
			}
			if once != twice {
				t.Errorf("ClampInt64 with bounds %v: clamping %d gave %d, clamping again gave %d", b, v, once, twice)
			}
		}
	}
}
