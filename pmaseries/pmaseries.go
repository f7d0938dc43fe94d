// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pmaseries emits the populated sample model as time series:
// a wide delimited table, narrow per-series files with a derived
// clockticks axis, charts, and textual summaries.
//
// A series is one (metric, device) pair. Only active series, those
// with a non-zero user-supplied scale, are emitted, and every
// emitted value is normalized onto the common full-scale axis as
// fullscale/scale*value.
package pmaseries

import (
	"github.com/pmatools/pma/pmaconf"
	"github.com/pmatools/pma/pmafmt"
)

// seriesName returns the output name of one series: the bare metric
// name for vector classes, metric-separator-device for array classes.
func seriesName(c *pmafmt.Class, m *pmafmt.Metric, d *pmafmt.Device, sep string) string {
	if c.Kind == pmafmt.Vector {
		return m.Name
	}
	return m.Name + sep + d.Name
}

// eachActive calls fn for every active series of s in model order:
// classes in declaration order, metrics in declaration order, devices
// in first-appearance order.
func eachActive(s *pmafmt.Schema, params *pmaconf.Params, fn func(c *pmafmt.Class, m *pmafmt.Metric, d *pmafmt.Device, name string)) {
	sep := params.String(pmaconf.Separator)
	for _, c := range s.Classes {
		for _, m := range c.Metrics {
			for _, d := range m.Devices {
				if d.Scale != 0 {
					fn(c, m, d, seriesName(c, m, d, sep))
				}
			}
		}
	}
}
