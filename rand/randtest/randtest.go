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


// Package randtest provides deterministic randomness sources for tests.
package randtest

import (
	"sync"

	"github.com/stepcount-dp/healthsteps/rand"
)

// Sequence is a rand.Source that replays a fixed list of values, starting over
// once the list is exhausted. It must not be used outside of tests.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
	draws  int
}

var _ rand.Source = (*Sequence)(nil)

// NewSequence returns a Sequence replaying values. At least one value is required.
func NewSequence(values ...float64) *Sequence {
	if len(values) == 0 {
		panic("randtest: NewSequence needs at least one value")
	}
	return &Sequence{values: values}
}

// Float64 returns the next value of the sequence.
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	s.draws++
	return v
}

// Draws returns how many values have been drawn so far.
func (s *Sequence) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}
