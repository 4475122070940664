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


// Package rand provides the randomness source used to draw differentially
// private noise.
//
// Noise is only as private as it is unpredictable, so the process-wide source
// is backed by crypto/rand and cannot be seeded. Tests that need reproducible
// draws inject their own Source (see package randtest).
package rand

import (
	"bufio"
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"sync"

	log "github.com/golang/glog"
)

var (
	randBufLock sync.Mutex
	randBuf     io.Reader = bufio.NewReaderSize(cryptorand.Reader, 65536)
)

// Source is a capability that produces uniformly distributed random numbers.
// Implementations must be safe for concurrent use.
type Source interface {
	// Float64 returns a float64 drawn uniformly from [0, 1).
	Float64() float64
}

type secureSource struct{}

// Secure returns the cryptographically secure Source shared by the process.
// Draws made through it are independent of each other, also across goroutines.
func Secure() Source {
	return secureSource{}
}

// Float64 returns one of the 2⁵³ evenly spaced float64 values in [0, 1).
func (secureSource) Float64() float64 {
	return float64(U64()>>11) / (1 << 53)
}

func (secureSource) String() string {
	return "crypto/rand"
}

func readRandBuf(b []byte) (int, error) {
	randBufLock.Lock()
	defer randBufLock.Unlock()
	return io.ReadFull(randBuf, b)
}

// U64 returns a uniformly random uint64.
func U64() uint64 {
	var r [8]uint8
	if _, err := readRandBuf(r[:]); err != nil {
		log.Fatalf("out of randomness, should never happen: %v", err)
	}
	return binary.LittleEndian.Uint64(r[:])
}
