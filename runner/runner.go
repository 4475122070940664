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


// Package runner drives one release from a configuration: it reads the health
// export, releases the configured statistic and writes the results.
package runner

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/stepcount-dp/healthsteps/aggregate"
	"github.com/stepcount-dp/healthsteps/config"
	"github.com/stepcount-dp/healthsteps/healthexport"
	"github.com/stepcount-dp/healthsteps/noise"
	"github.com/stepcount-dp/healthsteps/publish"
	"github.com/stepcount-dp/healthsteps/runstate"
)

// Options tune a run beyond what the configuration file holds.
type Options struct {
	// Force releases even if the export has not changed since the last run.
	Force bool
	// Mechanism overrides the default Laplace mechanism, e.g. to inject a
	// deterministic randomness source.
	Mechanism noise.Mechanism
}

// Run performs the release described by cfg. It returns (false, nil) if the
// export is unchanged since the last release and opt.Force is not set.
func Run(cfg *config.Config, opt Options) (bool, error) {
	store := runstate.NewStore(cfg.HashesDir, cfg.APIName)
	if !opt.Force {
		should, err := store.ShouldRun(cfg.FilePath)
		if err != nil {
			return false, err
		}
		if !should {
			log.Infof("Health export %q is unchanged since the last release, nothing to do", cfg.FilePath)
			return false, nil
		}
	}

	log.Infof("Loading %s records from %q", cfg.Type, cfg.FilePath)
	s, stats, err := healthexport.ReadFile(cfg.FilePath, cfg.Type)
	if err != nil {
		return false, err
	}
	log.Infof("Loaded %d %s records (%d skipped)", s.Len(), cfg.Type, stats.Skipped)

	mech := opt.Mechanism
	if mech == nil {
		mech = noise.Laplace()
	}
	p := aggregate.Params{
		Type:           cfg.Type,
		Epsilon:        cfg.Epsilon,
		BoundsStrategy: string(cfg.BoundsStrategy),
		Mechanism:      mech,
	}
	var results []aggregate.Result
	if cfg.Daily {
		results, err = aggregate.RunDaily(s, p, cfg.Location)
		if err != nil {
			return false, err
		}
	} else {
		res, err := aggregate.Run(s, p)
		if err != nil {
			return false, err
		}
		results = []aggregate.Result{*res}
	}
	logConfidenceIntervals(mech, results, cfg.Alpha)

	if err := publish.Write(cfg.OutputDir, cfg.APIName, results); err != nil {
		return false, err
	}
	if err := store.Record(cfg.FilePath); err != nil {
		return false, fmt.Errorf("release written but run state not updated: %w", err)
	}
	return true, nil
}

// logConfidenceIntervals reports how far each released value may be from the
// true one. The intervals are derived from released data only.
func logConfidenceIntervals(mech noise.Mechanism, results []aggregate.Result, alpha float64) {
	if !log.V(1) {
		return
	}
	for _, res := range results {
		r := res.Record
		ci, err := mech.ComputeConfidenceIntervalFloat64(r.Value(), r.Bounds().Sensitivity(), r.Epsilon(), alpha)
		if err != nil {
			log.Warningf("Couldn't compute confidence interval of %v: %v", r, err)
			continue
		}
		log.Infof("%v: %g%% confidence interval [%f, %f]", r, 100*(1-alpha), ci.LowerBound, ci.UpperBound)
	}
}
