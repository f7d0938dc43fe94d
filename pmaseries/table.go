// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmaseries

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pmatools/pma/pmaconf"
	"github.com/pmatools/pma/pmafmt"
)

// A TableWriter writes every active series into one wide delimited
// table: a header row naming the series, then one row per sample
// index and cycle with a formatted timestamp and each series'
// normalized value. Sample indexes before a series' start row emit an
// empty field.
type TableWriter struct {
	w      *bufio.Writer
	c      io.Closer
	s      *pmafmt.Schema
	params *pmaconf.Params
}

// CreateTable creates or truncates the table file at path and writes
// its header row.
func CreateTable(path string, s *pmafmt.Schema, params *pmaconf.Params) (*TableWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("single output file: %w", err)
	}
	t := &TableWriter{w: bufio.NewWriter(f), c: f, s: s, params: params}
	t.writeHeader()
	if err := t.w.Flush(); err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

func (t *TableWriter) writeHeader() {
	delim := t.params.Delim(pmaconf.TableDelimiter)
	t.w.WriteString("Time")
	eachActive(t.s, t.params, func(c *pmafmt.Class, m *pmafmt.Metric, d *pmafmt.Device, name string) {
		t.w.WriteByte(delim)
		t.w.WriteString(name)
	})
	t.w.WriteByte('\n')
}

// WriteCycle writes one row per sample index for the cycle that began
// at the Unix timestamp ts. Row timestamps advance from ts by the
// schema interval, the first row landing one interval after ts.
func (t *TableWriter) WriteCycle(ts int64) error {
	delim := t.params.Delim(pmaconf.TableDelimiter)
	full := t.params.Float(pmaconf.FullScale)
	for row := 0; row < t.s.Count; row++ {
		rowTime := time.Unix(ts+int64(row+1)*int64(t.s.Interval), 0)
		t.w.WriteString(t.params.FormatTime(pmaconf.TableDateFormat, rowTime))
		eachActive(t.s, t.params, func(c *pmafmt.Class, m *pmafmt.Metric, d *pmafmt.Device, name string) {
			t.w.WriteByte(delim)
			if row >= c.StartRow {
				fmt.Fprintf(t.w, "%.1f", full/d.Scale*d.Values[row])
			}
		})
		t.w.WriteByte('\n')
	}
	return t.w.Flush()
}

// Close flushes and closes the table file.
func (t *TableWriter) Close() error {
	if err := t.w.Flush(); err != nil {
		t.c.Close()
		return err
	}
	return t.c.Close()
}
