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


// Package publish writes the outcome of a release to disk: the release records
// into a public directory readable by the aggregator, the true summaries into
// a private directory that never leaves the participant. How the public
// directory reaches the aggregator is not handled here.
package publish

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/golang/glog"
	jsoniter "github.com/json-iterator/go"
	"github.com/stepcount-dp/healthsteps/aggregate"
	"github.com/stepcount-dp/healthsteps/release"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Directory names under the output directory.
const (
	PublicDir  = "public"
	PrivateDir = "private"
)

type encodableSummary struct {
	Period  string `json:"period,omitempty"`
	TrueSum int64  `json:"true_sum"`
	Entries int    `json:"entries"`
	Lower   int64  `json:"lower"`
	Upper   int64  `json:"upper"`
}

// Paths returns the public and private file names of the application name
// under outputDir.
func Paths(outputDir, name string) (public, private string) {
	file := name + ".json"
	return filepath.Join(outputDir, PublicDir, file), filepath.Join(outputDir, PrivateDir, file)
}

// Write stores results under outputDir. The private file is written first, so
// that a failure never leaves a public release without its private
// counterpart.
func Write(outputDir, name string, results []aggregate.Result) error {
	publicPath, privatePath := Paths(outputDir, name)
	records := make([]release.Record, len(results))
	summaries := make([]encodableSummary, len(results))
	for i, res := range results {
		records[i] = res.Record
		summaries[i] = encodableSummary{
			Period:  res.Summary.Period,
			TrueSum: res.Summary.TrueSum,
			Entries: res.Summary.Entries,
			Lower:   res.Summary.Bounds.Lower,
			Upper:   res.Summary.Bounds.Upper,
		}
	}
	if err := writeJSON(privatePath, summaries, 0o600); err != nil {
		return err
	}
	if err := writeJSON(publicPath, records, 0o644); err != nil {
		return err
	}
	log.Infof("Wrote %d release records to %q", len(records), publicPath)
	return nil
}

// ReadRecords reads back the release records written by Write.
func ReadRecords(outputDir, name string) ([]release.Record, error) {
	publicPath, _ := Paths(outputDir, name)
	data, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("couldn't read %q, err = %v", publicPath, err)
	}
	var records []release.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("couldn't decode %q, err = %w", publicPath, err)
	}
	return records, nil
}

func writeJSON(path string, v interface{}, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("couldn't create directory for %q, err = %v", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("couldn't encode %q, err = %v", path, err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("couldn't write %q, err = %v", path, err)
	}
	return nil
}
