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


// Package measurement contains the data model of a single health measurement
// stream, e.g. the step counts of one participant.
package measurement

import (
	"fmt"
	"sort"
	"time"

	"github.com/stepcount-dp/healthsteps/checks"
)

// StepCount is the type identifier of step count records in a health export.
const StepCount = "HKQuantityTypeIdentifierStepCount"

// DateLayout is the layout of the calendar days returned by SplitByDay.
const DateLayout = "2006-01-02"

// Measurement is a single non-negative count taken at a point in time. The
// time is only used to bucket measurements by day.
type Measurement struct {
	Time  time.Time
	Value int64
}

// Series is an ordered sequence of measurements of exactly one type. A Series
// may be empty.
type Series struct {
	typ          string
	measurements []Measurement
}

// NewSeries returns a Series of the given type holding a copy of ms. It fails
// if the type is empty or any value is negative.
func NewSeries(typ string, ms []Measurement) (*Series, error) {
	if typ == "" {
		return nil, fmt.Errorf("NewSeries: measurement type must be set: %w", checks.ErrInvalidParameter)
	}
	for i, m := range ms {
		if err := checks.CheckMeasurementValue(m.Value); err != nil {
			return nil, fmt.Errorf("NewSeries: measurement %d: %w", i, err)
		}
	}
	return &Series{typ: typ, measurements: append([]Measurement(nil), ms...)}, nil
}

// Type returns the type identifier shared by all measurements of the series.
func (s *Series) Type() string { return s.typ }

// Len returns the number of measurements.
func (s *Series) Len() int { return len(s.measurements) }

// Values returns the measurement values in series order.
func (s *Series) Values() []int64 {
	values := make([]int64, len(s.measurements))
	for i, m := range s.measurements {
		values[i] = m.Value
	}
	return values
}

// Measurements returns a copy of the measurements in series order.
func (s *Series) Measurements() []Measurement {
	return append([]Measurement(nil), s.measurements...)
}

// Day is the part of a Series that falls on one calendar day.
type Day struct {
	Date   string // Formatted with DateLayout.
	Series *Series
}

// SplitByDay partitions the series by the calendar day of each measurement in
// loc. Days are returned in chronological order; every measurement belongs to
// exactly one day.
func (s *Series) SplitByDay(loc *time.Location) []Day {
	if loc == nil {
		loc = time.UTC
	}
	byDate := make(map[string][]Measurement)
	for _, m := range s.measurements {
		date := m.Time.In(loc).Format(DateLayout)
		byDate[date] = append(byDate[date], m)
	}
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	days := make([]Day, len(dates))
	for i, date := range dates {
		days[i] = Day{Date: date, Series: &Series{typ: s.typ, measurements: byDate[date]}}
	}
	return days
}
