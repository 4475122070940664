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


// Package aggregate runs the differentially private release of a measurement
// series: bounds estimation, bounded statistic, noise and record assembly.
//
// Every run is independent. There is no privacy budget ledger: releasing the
// same series twice spends ε twice, and deciding whether to do so is up to
// the caller.
package aggregate

import (
	"fmt"
	"time"

	log "github.com/golang/glog"
	"github.com/stepcount-dp/healthsteps/checks"
	"github.com/stepcount-dp/healthsteps/dpagg"
	"github.com/stepcount-dp/healthsteps/measurement"
	"github.com/stepcount-dp/healthsteps/noise"
	"github.com/stepcount-dp/healthsteps/release"
)

// Params contains the parameters of a release.
type Params struct {
	Type           string          // Expected measurement type of the series. Required.
	Epsilon        float64         // Privacy parameter ε. Required, must be nonnegative.
	BoundsStrategy string          // Only "auto-local" is supported.
	Mechanism      noise.Mechanism // Defaults to Laplace noise from the secure source.
}

// Summary is the non-private counterpart of a release. It must stay with the
// participant and is never part of a release.Record.
type Summary struct {
	Period  string
	TrueSum int64
	Entries int
	Bounds  dpagg.Bounds
}

// Result is the outcome of a successful run.
type Result struct {
	Record  release.Record
	Summary Summary
}

type validParams struct {
	typ       string
	epsilon   float64
	strategy  dpagg.BoundsStrategy
	mechanism noise.Mechanism
	kind      noise.Kind
}

// validate checks p without looking at any measurement.
func (p Params) validate() (validParams, error) {
	strategy, err := dpagg.ParseBoundsStrategy(p.BoundsStrategy)
	if err != nil {
		return validParams{}, err
	}
	if p.Type == "" {
		return validParams{}, fmt.Errorf("measurement type must be set: %w", checks.ErrInvalidParameter)
	}
	if err := checks.CheckEpsilon(p.Epsilon); err != nil {
		return validParams{}, err
	}
	mech := p.Mechanism
	if mech == nil {
		mech = noise.Laplace()
	}
	kind := noise.ToKind(mech)
	if kind == noise.Unrecognised {
		return validParams{}, fmt.Errorf("noise mechanism %v: %w", mech, checks.ErrUnsupportedConfiguration)
	}
	return validParams{typ: p.Type, epsilon: p.Epsilon, strategy: strategy, mechanism: mech, kind: kind}, nil
}

// Run releases the bounded sum of s under ε-differential privacy.
//
// The stages run strictly in order and the first failure ends the run:
// parameter validation (before s is read), bounds estimation, bounded sum,
// noise, assembly. On failure no Result is returned. Errors wrap
// checks.ErrUnsupportedConfiguration or checks.ErrInvalidParameter.
//
// An empty series is not an error: it is released as exactly 0 with bounds
// [0, 0].
func Run(s *measurement.Series, p Params) (*Result, error) {
	vp, err := p.validate()
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	res, err := run(s, vp, "")
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	return res, nil
}

// RunDaily releases one bounded sum per calendar day (in loc) of s. Days hold
// disjoint measurements, so each day is released with the full ε and its own
// auto-local bounds. If any day fails, no result is returned.
func RunDaily(s *measurement.Series, p Params, loc *time.Location) ([]Result, error) {
	vp, err := p.validate()
	if err != nil {
		return nil, fmt.Errorf("RunDaily: %w", err)
	}
	if err := checkType(s, vp.typ); err != nil {
		return nil, fmt.Errorf("RunDaily: %w", err)
	}
	days := s.SplitByDay(loc)
	results := make([]Result, 0, len(days))
	for _, day := range days {
		res, err := run(day.Series, vp, day.Date)
		if err != nil {
			return nil, fmt.Errorf("RunDaily: day %s: %w", day.Date, err)
		}
		results = append(results, *res)
	}
	log.Infof("Released %d daily %s statistics", len(results), vp.typ)
	return results, nil
}

func checkType(s *measurement.Series, typ string) error {
	if s.Type() != typ {
		return fmt.Errorf("series holds %q measurements, want %q: %w", s.Type(), typ, checks.ErrInvalidParameter)
	}
	return nil
}

func run(s *measurement.Series, vp validParams, period string) (*Result, error) {
	if err := checkType(s, vp.typ); err != nil {
		return nil, err
	}
	bounds, err := dpagg.EstimateBounds(vp.strategy, s)
	if err != nil {
		return nil, err
	}
	log.V(1).Infof("%s %s: %d measurements, %s bounds %v", vp.typ, period, s.Len(), vp.strategy, bounds)

	sum, err := dpagg.BoundedSum(s, bounds)
	if err != nil {
		return nil, err
	}

	noised, err := vp.mechanism.AddNoiseFloat64(float64(sum), bounds.Sensitivity(), vp.epsilon)
	if err != nil {
		return nil, err
	}

	rec := release.Assemble(release.Options{
		Type:      vp.typ,
		Value:     noised,
		Bounds:    bounds,
		Epsilon:   vp.epsilon,
		Mechanism: vp.kind,
		Period:    period,
	})
	log.V(1).Infof("Assembled release %v", rec)
	return &Result{
		Record: rec,
		Summary: Summary{
			Period:  period,
			TrueSum: sum,
			Entries: s.Len(),
			Bounds:  bounds,
		},
	}, nil
}
