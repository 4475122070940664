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


// Package runstate remembers which health export was released last, so that
// an unchanged export is not released (and does not spend ε) again.
package runstate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/golang/glog"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// State is the persisted record of the last released export.
type State struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
}

// Store keeps the State of one application under a directory.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore returns a Store persisting to <dir>/<apiName>_last_run.
func NewStore(dir, apiName string) *Store {
	return &Store{path: filepath.Join(dir, apiName+"_last_run"), now: time.Now}
}

// FileHash returns the hex encoded SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("couldn't open %q for hashing, err = %v", path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("couldn't hash %q, err = %v", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ShouldRun reports whether the export at exportPath differs from the last
// recorded one. A missing or unreadable state always allows a run.
func (s *Store) ShouldRun(exportPath string) (bool, error) {
	current, err := FileHash(exportPath)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		log.Warningf("Couldn't read run state %q, running anyway: %v", s.path, err)
		return true, nil
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil || st.Hash == "" {
		log.Warningf("Run state %q is malformed, running anyway: %v", s.path, err)
		return true, nil
	}
	return st.Hash != current, nil
}

// Record stores the hash of the export at exportPath as the last released one.
func (s *Store) Record(exportPath string) error {
	hash, err := FileHash(exportPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("couldn't create run state directory, err = %v", err)
	}
	data, err := json.MarshalIndent(State{Hash: hash, Timestamp: s.now()}, "", "  ")
	if err != nil {
		return fmt.Errorf("couldn't encode run state, err = %v", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("couldn't write run state %q, err = %v", s.path, err)
	}
	return nil
}
