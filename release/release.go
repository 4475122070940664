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


// Package release assembles the record handed to the delivery step for
// transmission to an aggregator.
package release

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/stepcount-dp/healthsteps/checks"
	"github.com/stepcount-dp/healthsteps/dpagg"
	"github.com/stepcount-dp/healthsteps/noise"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options contains everything a Record is assembled from.
type Options struct {
	Type      string       // Measurement type identifier, e.g. measurement.StepCount.
	Value     float64      // Noisy statistic.
	Bounds    dpagg.Bounds // Clamping bounds used to compute the statistic.
	Epsilon   float64      // Privacy parameter ε used by the mechanism.
	Mechanism noise.Kind   // Mechanism that produced Value.
	Period    string       // Optional calendar day the statistic covers.
}

// Record is a released differentially private statistic together with the
// parameters it was produced with. A Record cannot be changed once assembled.
type Record struct {
	typ       string
	value     float64
	bounds    dpagg.Bounds
	epsilon   float64
	mechanism noise.Kind
	period    string
}

// Assemble returns the Record described by opt.
func Assemble(opt Options) Record {
	return Record{
		typ:       opt.Type,
		value:     opt.Value,
		bounds:    opt.Bounds,
		epsilon:   opt.Epsilon,
		mechanism: opt.Mechanism,
		period:    opt.Period,
	}
}

// Type returns the measurement type identifier.
func (r Record) Type() string { return r.typ }

// Value returns the noisy statistic.
func (r Record) Value() float64 { return r.value }

// Bounds returns the clamping bounds.
func (r Record) Bounds() dpagg.Bounds { return r.bounds }

// Epsilon returns ε.
func (r Record) Epsilon() float64 { return r.epsilon }

// Mechanism returns the kind of noise added to the statistic.
func (r Record) Mechanism() noise.Kind { return r.mechanism }

// Period returns the calendar day covered by the record, or "" if the record
// covers the whole series.
func (r Record) Period() string { return r.period }

func (r Record) String() string {
	if r.period != "" {
		return fmt.Sprintf("%s[%s] = %f (bounds %v, ε = %g, %v)", r.typ, r.period, r.value, r.bounds, r.epsilon, r.mechanism)
	}
	return fmt.Sprintf("%s = %f (bounds %v, ε = %g, %v)", r.typ, r.value, r.bounds, r.epsilon, r.mechanism)
}

type encodableBounds struct {
	Lower int64 `json:"lower"`
	Upper int64 `json:"upper"`
}

// encodableRecord is the wire format of a Record.
type encodableRecord struct {
	Type      string          `json:"type"`
	Period    string          `json:"period,omitempty"`
	Value     float64         `json:"value"`
	Bounds    encodableBounds `json:"bounds"`
	Epsilon   float64         `json:"epsilon"`
	Mechanism string          `json:"mechanism"`
}

// MarshalJSON encodes the Record.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodableRecord{
		Type:      r.typ,
		Period:    r.period,
		Value:     r.value,
		Bounds:    encodableBounds{Lower: r.bounds.Lower, Upper: r.bounds.Upper},
		Epsilon:   r.epsilon,
		Mechanism: r.mechanism.String(),
	})
}

// UnmarshalJSON decodes a Record encoded by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var enc encodableRecord
	if err := json.Unmarshal(data, &enc); err != nil {
		return fmt.Errorf("couldn't decode Record from bytes: %v", err)
	}
	kind := noise.ParseKind(enc.Mechanism)
	if kind == noise.Unrecognised {
		return fmt.Errorf("couldn't decode Record: mechanism %q: %w", enc.Mechanism, checks.ErrUnsupportedConfiguration)
	}
	if err := checks.CheckBoundsInt64(enc.Bounds.Lower, enc.Bounds.Upper); err != nil {
		return fmt.Errorf("couldn't decode Record: %w", err)
	}
	*r = Record{
		typ:       enc.Type,
		value:     enc.Value,
		bounds:    dpagg.Bounds{Lower: enc.Bounds.Lower, Upper: enc.Bounds.Upper},
		epsilon:   enc.Epsilon,
		mechanism: kind,
		period:    enc.Period,
	}
	return nil
}
