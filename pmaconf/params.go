// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pmaconf holds the run configuration: the table of tunable
// parameters and the per-series scale factors, both read from a
// configuration file of "name value" lines.
package pmaconf

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ncruces/go-strftime"
)

// A ParamID identifies one tunable parameter. The zero-based IDs
// index the parameter table.
type ParamID int

const (
	// FullScale is the common ceiling every active series is
	// normalized onto.
	FullScale ParamID = iota

	// TimeZone names the IANA location timestamps are rendered in.
	// Empty means the process's local time.
	TimeZone

	// Separator joins metric and device names into series names.
	Separator

	// TableDateFormat and TableDelimiter control the wide
	// single-table output.
	TableDateFormat
	TableDelimiter

	// SeriesDateFormat, SeriesDelimiter and SeriesHeaderFormat
	// control the narrow per-series output files.
	SeriesDateFormat
	SeriesDelimiter
	SeriesHeaderFormat

	// ClockticksName is the file name of the derived time-axis
	// marker series, and ClockticksLevel0 through ClockticksLevel7
	// its nested tick granularities in seconds. Levels are read in
	// order up to the first non-positive value, and each must
	// evenly divide its predecessor.
	ClockticksName
	ClockticksLevel0
	ClockticksLevel1
	ClockticksLevel2
	ClockticksLevel3
	ClockticksLevel4
	ClockticksLevel5
	ClockticksLevel6
	ClockticksLevel7

	numParams
)

// NumClockticksLevels is the number of clockticks level parameters.
const NumClockticksLevels = 8

type kind int

const (
	kindString kind = iota
	kindInt
	kindFloat
	kindDelim // single character
)

// A value is a tagged variant holding one parameter value. Which
// field is meaningful is determined by the owning spec's kind.
type value struct {
	s string
	i int64
	f float64
	d byte
}

type spec struct {
	id   ParamID
	name string
	kind kind
	def  value
}

// The parameter table. Entries must appear in ParamID order; NewParams
// verifies this.
var specs = [numParams]spec{
	{FullScale, "fullscale", kindFloat, value{f: 100.0}},
	{TimeZone, "TZ", kindString, value{}},
	{Separator, "metricdeviceseparator", kindString, value{s: "_"}},
	{TableDateFormat, "singlefiledateformat", kindString, value{s: "%x %X"}},
	{TableDelimiter, "singlefiledelimiter", kindDelim, value{d: ','}},
	{SeriesDateFormat, "multifiledateformat", kindString, value{s: "%s"}},
	{SeriesDelimiter, "multifiledelimiter", kindDelim, value{d: ' '}},
	{SeriesHeaderFormat, "multifileheaderformat", kindString, value{s: `"%s|%.1f"`}},
	{ClockticksName, "clockticksfilename", kindString, value{s: "clockticks"}},
	{ClockticksLevel0, "clockticks_level_0", kindInt, value{i: 24 * 60 * 60}},
	{ClockticksLevel1, "clockticks_level_1", kindInt, value{i: 12 * 60 * 60}},
	{ClockticksLevel2, "clockticks_level_2", kindInt, value{i: 6 * 60 * 60}},
	{ClockticksLevel3, "clockticks_level_3", kindInt, value{i: 60 * 60}},
	{ClockticksLevel4, "clockticks_level_4", kindInt, value{i: 30 * 60}},
	{ClockticksLevel5, "clockticks_level_5", kindInt, value{i: 15 * 60}},
	{ClockticksLevel6, "clockticks_level_6", kindInt, value{i: 5 * 60}},
	{ClockticksLevel7, "clockticks_level_7", kindInt, value{i: 0}},
}

// Params holds the resolved value of every tunable parameter.
type Params struct {
	vals [numParams]value
	loc  *time.Location
}

// NewParams returns a Params holding every parameter's default value.
// It fails if the parameter table's declared ordering is inconsistent,
// which is a programming error no run can recover from.
func NewParams() (*Params, error) {
	p := &Params{loc: time.Local}
	for i, sp := range specs {
		if sp.id != ParamID(i) {
			return nil, fmt.Errorf("parameter %q: index is %d, but must be %d", sp.name, sp.id, i)
		}
		p.vals[i] = sp.def
	}
	return p, nil
}

// Float returns the value of a float-valued parameter.
func (p *Params) Float(id ParamID) float64 { return p.vals[id].f }

// Int returns the value of an integer-valued parameter.
func (p *Params) Int(id ParamID) int64 { return p.vals[id].i }

// String returns the value of a string-valued parameter.
func (p *Params) String(id ParamID) string { return p.vals[id].s }

// Delim returns the value of a delimiter (single character)
// parameter.
func (p *Params) Delim(id ParamID) byte { return p.vals[id].d }

// Location returns the location timestamps are rendered in.
func (p *Params) Location() *time.Location { return p.loc }

// set installs raw as the value of the parameter called name,
// converting it to the parameter's kind. It reports whether name
// matched a parameter. Conversion follows the configuration file
// boundary rules: a delimiter takes the first character of raw, and
// unparsable numbers become zero.
func (p *Params) set(name, raw string) bool {
	for i := range specs {
		sp := &specs[i]
		if sp.name != name {
			continue
		}
		switch sp.kind {
		case kindString:
			p.vals[i].s = raw
		case kindDelim:
			if len(raw) > 0 {
				p.vals[i].d = raw[0]
			}
		case kindFloat:
			p.vals[i].f, _ = strconv.ParseFloat(raw, 64)
		case kindInt:
			p.vals[i].i, _ = strconv.ParseInt(raw, 10, 64)
		}
		return true
	}
	return false
}

// FormatTime renders t using the strftime format held by the
// parameter id, in the configured location. The format "%s" renders
// Unix epoch seconds.
func (p *Params) FormatTime(id ParamID, t time.Time) string {
	layout := p.vals[id].s
	if layout == "%s" {
		return strconv.FormatInt(t.Unix(), 10)
	}
	return strftime.Format(layout, t.In(p.loc))
}

// WriteTable writes the resolved parameter table, one row per
// parameter with its active and default values.
func (p *Params) WriteTable(w io.Writer) {
	fmt.Fprintf(w, "# %-25s %-25s %-25s\n", "Parameter", "Active Value", "Default Value")
	fmt.Fprintf(w, "# ------------------------- ------------------------- -------------------------\n")
	for i, sp := range specs {
		fmt.Fprintf(w, "# %-25s %-25s # %-25s\n", sp.name, quote(sp.kind, p.vals[i]), quote(sp.kind, sp.def))
	}
}

func quote(k kind, v value) string {
	switch k {
	case kindDelim:
		return fmt.Sprintf("'%c'", v.d)
	case kindFloat:
		return fmt.Sprintf("'%.1f'", v.f)
	case kindInt:
		return fmt.Sprintf("'%d'", v.i)
	}
	return fmt.Sprintf("'%s'", v.s)
}
