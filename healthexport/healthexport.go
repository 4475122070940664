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


// Package healthexport reads measurement series out of an Apple Health export,
// either the export.xml file itself or the zip archive it is shipped in.
package healthexport

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	log "github.com/golang/glog"
	"github.com/stepcount-dp/healthsteps/measurement"
)

// TimeLayout is the layout of the date attributes of export records.
const TimeLayout = "2006-01-02 15:04:05 -0700"

// exportFileName is the name of the export inside the zip archive.
const exportFileName = "export.xml"

// record mirrors the attributes of a <Record> element.
type record struct {
	Type          string `xml:"type,attr"`
	SourceName    string `xml:"sourceName,attr"`
	SourceVersion string `xml:"sourceVersion,attr"`
	Unit          string `xml:"unit,attr"`
	Value         string `xml:"value,attr"`
	CreationDate  string `xml:"creationDate,attr"`
	StartDate     string `xml:"startDate,attr"`
	EndDate       string `xml:"endDate,attr"`
}

// Stats describes what a read kept and dropped.
type Stats struct {
	Matched int // Records of the requested type.
	Skipped int // Matched records dropped for a malformed value or date.
}

// Read streams the records of export.xml content from r and returns the
// measurements of type typ in document order.
//
// Values are rounded to the nearest integer. Records whose value is not a
// non-negative finite number, or whose end and start dates are both
// unparsable, are skipped with a warning.
func Read(r io.Reader, typ string) (*measurement.Series, Stats, error) {
	var stats Stats
	var ms []measurement.Measurement
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("couldn't read health export, err = %v", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Record" || attr(start, "type") != typ {
			continue
		}
		var rec record
		if err := dec.DecodeElement(&rec, &start); err != nil {
			return nil, stats, fmt.Errorf("couldn't decode %s record, err = %v", typ, err)
		}
		stats.Matched++
		m, err := toMeasurement(rec)
		if err != nil {
			log.Warningf("Skipping %s record from %q: %v", typ, rec.SourceName, err)
			stats.Skipped++
			continue
		}
		ms = append(ms, m)
	}
	s, err := measurement.NewSeries(typ, ms)
	if err != nil {
		return nil, stats, err
	}
	return s, stats, nil
}

// ReadFile reads the measurements of type typ from the export at path. Paths
// ending in ".zip" are opened as the export archive.
func ReadFile(filePath, typ string) (*measurement.Series, Stats, error) {
	if strings.EqualFold(path.Ext(filePath), ".zip") {
		return readArchive(filePath, typ)
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("couldn't open the health export = %q, err = %v", filePath, err)
	}
	defer f.Close()
	return Read(f, typ)
}

func readArchive(filePath, typ string) (*measurement.Series, Stats, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("couldn't open the health export archive = %q, err = %v", filePath, err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if path.Base(f.Name) != exportFileName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, Stats{}, fmt.Errorf("couldn't open %q in %q, err = %v", f.Name, filePath, err)
		}
		defer rc.Close()
		return Read(rc, typ)
	}
	return nil, Stats{}, fmt.Errorf("the health export archive = %q contains no %s", filePath, exportFileName)
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func toMeasurement(rec record) (measurement.Measurement, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(rec.Value), 64)
	if err != nil {
		return measurement.Measurement{}, fmt.Errorf("value %q is not a number", rec.Value)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v >= math.MaxInt64 {
		return measurement.Measurement{}, fmt.Errorf("value %q is not a non-negative count", rec.Value)
	}
	// The end of the interval decides which day a measurement belongs to.
	ts, err := time.Parse(TimeLayout, rec.EndDate)
	if err != nil {
		ts, err = time.Parse(TimeLayout, rec.StartDate)
		if err != nil {
			return measurement.Measurement{}, fmt.Errorf("neither endDate %q nor startDate %q is a valid date", rec.EndDate, rec.StartDate)
		}
	}
	return measurement.Measurement{Time: ts, Value: int64(math.Round(v))}, nil
}
