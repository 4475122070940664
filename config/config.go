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


// Package config loads the release configuration from a YAML file.
//
// A configuration file looks like:
//
//	api_name: health_steps_counter
//	aggregator_datasite: aggregator@openmined.org
//	filepath: ./apple_health_export/export.xml
//	output_dir: ./output
//	parameters:
//	  type: HKQuantityTypeIdentifierStepCount
//	  epsilon: 0.5
//	  bounds: auto-local
package config

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/stepcount-dp/healthsteps/checks"
	"github.com/stepcount-dp/healthsteps/dpagg"
)

// Keys of the configuration file.
const (
	KeyAPIName            = "api_name"
	KeyAggregatorDatasite = "aggregator_datasite"
	KeyFilePath           = "filepath"
	KeyOutputDir          = "output_dir"
	KeyHashesDir          = "hashes_dir"
	KeyType               = "parameters.type"
	KeyEpsilon            = "parameters.epsilon"
	KeyBounds             = "parameters.bounds"
	KeyDaily              = "parameters.daily"
	KeyAlpha              = "parameters.alpha"
	KeyTimezone           = "parameters.timezone"
)

var requiredKeys = []string{KeyFilePath, KeyType, KeyEpsilon, KeyBounds}

// Config is a validated release configuration.
type Config struct {
	APIName            string
	AggregatorDatasite string
	FilePath           string
	OutputDir          string
	HashesDir          string

	Type           string
	Epsilon        float64
	BoundsStrategy dpagg.BoundsStrategy
	Daily          bool           // Release one statistic per calendar day.
	Alpha          float64        // Confidence level 1-Alpha of the logged intervals.
	Location       *time.Location // Time zone the calendar days are taken in.
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIName, "health_steps_counter")
	v.SetDefault(KeyOutputDir, "output")
	v.SetDefault(KeyHashesDir, "hashes")
	v.SetDefault(KeyDaily, true)
	v.SetDefault(KeyAlpha, 0.05)
	v.SetDefault(KeyTimezone, "Local")
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("couldn't read config file %q, err = %v", path, err)
	}
	return FromViper(v)
}

// FromViper validates the configuration held by v. The bounds strategy and ε
// are checked here, before any measurement is read.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	var missing []string
	for _, k := range requiredKeys {
		if !v.IsSet(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required config keys %v: %w", missing, checks.ErrInvalidParameter)
	}

	strategy, err := dpagg.ParseBoundsStrategy(v.GetString(KeyBounds))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyBounds, err)
	}
	epsilon, err := cast.ToFloat64E(v.Get(KeyEpsilon))
	if err != nil {
		return nil, fmt.Errorf("%s is not a number: %v: %w", KeyEpsilon, err, checks.ErrInvalidParameter)
	}
	if err := checks.CheckEpsilon(epsilon, KeyEpsilon); err != nil {
		return nil, err
	}
	alpha, err := cast.ToFloat64E(v.Get(KeyAlpha))
	if err != nil {
		return nil, fmt.Errorf("%s is not a number: %v: %w", KeyAlpha, err, checks.ErrInvalidParameter)
	}
	if err := checks.CheckAlpha(alpha); err != nil {
		return nil, fmt.Errorf("%s: %w", KeyAlpha, err)
	}
	loc, err := time.LoadLocation(v.GetString(KeyTimezone))
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", KeyTimezone, err, checks.ErrInvalidParameter)
	}
	typ := v.GetString(KeyType)
	if typ == "" {
		return nil, fmt.Errorf("%s must not be empty: %w", KeyType, checks.ErrInvalidParameter)
	}

	return &Config{
		APIName:            v.GetString(KeyAPIName),
		AggregatorDatasite: v.GetString(KeyAggregatorDatasite),
		FilePath:           v.GetString(KeyFilePath),
		OutputDir:          v.GetString(KeyOutputDir),
		HashesDir:          v.GetString(KeyHashesDir),
		Type:               typ,
		Epsilon:            epsilon,
		BoundsStrategy:     strategy,
		Daily:              v.GetBool(KeyDaily),
		Alpha:              alpha,
		Location:           loc,
	}, nil
}
