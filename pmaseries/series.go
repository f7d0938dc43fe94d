// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmaseries

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pmatools/pma/pmaconf"
	"github.com/pmatools/pma/pmafmt"
)

// A SeriesWriter writes one narrow output file per active series into
// a directory, each line a formatted timestamp and one normalized
// value, plus the derived clockticks file. Files are created
// truncating and written incrementally across every processed input
// file.
type SeriesWriter struct {
	s      *pmafmt.Schema
	params *pmaconf.Params

	files []seriesFile
	ticks *os.File

	// Warnf, if non-nil, receives non-fatal diagnostics. If nil,
	// they are written to standard error.
	Warnf func(format string, args ...interface{})
}

type seriesFile struct {
	class  *pmafmt.Class
	device *pmafmt.Device
	w      *bufio.Writer
	f      *os.File
}

// CreateSeriesDir creates dir if it does not exist, then creates one
// truncating output file per active series plus the clockticks file.
// Each series file's first line names the series and its scale,
// rendered with the configured header format.
func CreateSeriesDir(dir string, s *pmafmt.Schema, params *pmaconf.Params) (*SeriesWriter, error) {
	st, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.Mkdir(dir, 0755); err != nil {
			return nil, fmt.Errorf("multi file directory: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("multi file directory: %w", err)
	case !st.IsDir():
		return nil, fmt.Errorf("multi file directory: %s is not a directory", dir)
	}

	sw := &SeriesWriter{s: s, params: params}
	headerFmt := params.String(pmaconf.SeriesHeaderFormat)
	var createErr error
	eachActive(s, params, func(c *pmafmt.Class, m *pmafmt.Metric, d *pmafmt.Device, name string) {
		if createErr != nil {
			return
		}
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			createErr = err
			return
		}
		w := bufio.NewWriter(f)
		fmt.Fprintf(w, headerFmt+"\n", name, d.Scale)
		sw.files = append(sw.files, seriesFile{c, d, w, f})
	})
	if createErr == nil {
		sw.ticks, createErr = os.Create(filepath.Join(dir, params.String(pmaconf.ClockticksName)))
	}
	if createErr != nil {
		sw.Close()
		return nil, fmt.Errorf("multi file directory: %w", createErr)
	}
	return sw, nil
}

// WriteCycle appends the rows of the cycle that began at the Unix
// timestamp ts to every series file, restricted to sample indexes at
// or after the owning class's start row.
func (sw *SeriesWriter) WriteCycle(ts int64) error {
	delim := sw.params.Delim(pmaconf.SeriesDelimiter)
	full := sw.params.Float(pmaconf.FullScale)
	for _, sf := range sw.files {
		for row := sf.class.StartRow; row < sw.s.Count; row++ {
			rowTime := time.Unix(ts+int64(row+1)*int64(sw.s.Interval), 0)
			stamp := sw.params.FormatTime(pmaconf.SeriesDateFormat, rowTime)
			fmt.Fprintf(sf.w, "%s%c%.1f\n", stamp, delim, full/sf.device.Scale*sf.device.Values[row])
		}
		if err := sf.w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes every series file and the clockticks file.
func (sw *SeriesWriter) Close() error {
	var first error
	for _, sf := range sw.files {
		if err := sf.w.Flush(); err != nil && first == nil {
			first = err
		}
		if err := sf.f.Close(); err != nil && first == nil {
			first = err
		}
	}
	if sw.ticks != nil {
		if err := sw.ticks.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (sw *SeriesWriter) warnf(format string, args ...interface{}) {
	if sw.Warnf != nil {
		sw.Warnf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
