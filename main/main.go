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


// This is a command line utility that releases a differentially private
// summary of the step counts in an Apple Health export.
// Usage example:
// go run ./main --config=config.yaml
// go run ./main --config=config.yaml --force --v=1
package main

import (
	"flag"

	log "github.com/golang/glog"
	"github.com/stepcount-dp/healthsteps/config"
	"github.com/stepcount-dp/healthsteps/runner"
)

var (
	configFile = flag.String("config", "config.yaml", "YAML configuration file.")
	force      = flag.Bool("force", false, "Release even if the health export has not changed since the last release.")
)

func main() {
	flag.Parse()
	defer log.Flush()

	log.Infof("Started health steps counter with arguments: config = %q, force = %t", *configFile, *force)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Exitf("Couldn't load configuration, err = %v", err)
	}

	released, err := runner.Run(cfg, runner.Options{Force: *force})
	if err != nil {
		log.Exitf("Couldn't release %s statistics, err = %v", cfg.Type, err)
	}
	if released {
		log.Infof("Successfully released %s statistics for %q", cfg.Type, cfg.AggregatorDatasite)
	}
}
