// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmaseries

import (
	"bufio"
	"fmt"
	"time"

	"github.com/pmatools/pma/pmaconf"
)

// WriteClockticks writes the derived time-axis marker series, called
// once after the last input file. lastTS is the timestamp of the
// run's last data cycle.
//
// The configured levels are read in order up to the first non-positive
// value; each must evenly divide its predecessor, and a violation (or
// no valid levels at all) leaves the clockticks file without a body.
// For every instant between the run's first and last timestamp that
// is aligned to a level boundary within its day, two points are
// emitted, a zero baseline and a level-indexed negative height, so
// charting tools without a native time axis can render grid lines.
func (sw *SeriesWriter) WriteClockticks(lastTS int64) error {
	levels := clockticksLevels(sw.params, sw.warnf)
	if levels == nil {
		return nil
	}

	w := bufio.NewWriter(sw.ticks)
	fmt.Fprintf(w, sw.params.String(pmaconf.SeriesHeaderFormat)+"\n",
		sw.params.String(pmaconf.ClockticksName), sw.params.Float(pmaconf.FullScale))

	// Start the ticks a bit before the first data and end them a
	// bit after the last.
	finest := levels[len(levels)-1]
	beg := sw.s.FirstTime / finest * finest
	end := ((lastTS+int64(sw.s.Count)*int64(sw.s.Interval))/finest + 1) * finest

	loc := sw.params.Location()
	for ts := beg; ts <= end; ts += finest {
		t := time.Unix(ts, 0).In(loc)
		daySecs := int64(t.Hour()*3600 + t.Minute()*60 + t.Second())
		for i, lev := range levels {
			if daySecs%lev == 0 {
				stamp := sw.params.FormatTime(pmaconf.SeriesDateFormat, t)
				fmt.Fprintf(w, "%s 0\n", stamp)
				fmt.Fprintf(w, "%s %d\n", stamp, 2*(i-len(levels)))
				break
			}
		}
	}
	return w.Flush()
}

// clockticksLevels returns the configured tick levels, or nil if they
// are missing or not properly nested.
func clockticksLevels(params *pmaconf.Params, warnf func(string, ...interface{})) []int64 {
	var levels []int64
	for id := pmaconf.ClockticksLevel0; id <= pmaconf.ClockticksLevel7; id++ {
		v := params.Int(id)
		if v <= 0 {
			break
		}
		if n := len(levels); n > 0 && levels[n-1]%v != 0 {
			warnf("clockticks level %d (%d) is not a multiple of level %d (%d)", n-1, levels[n-1], n, v)
			return nil
		}
		levels = append(levels, v)
	}
	if len(levels) == 0 {
		warnf("no valid clockticks levels specified")
		return nil
	}
	return levels
}
