// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmaseries

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/pmatools/pma/pmaconf"
	"github.com/pmatools/pma/pmafmt"
)

// A ChartDir renders one PNG line chart per active series into a
// directory. Because device buffers only hold the current file's
// values, points are accumulated per cycle and the charts are
// rendered once at the end of the run.
type ChartDir struct {
	dir    string
	s      *pmafmt.Schema
	params *pmaconf.Params
	series []*chartSeries
}

type chartSeries struct {
	class  *pmafmt.Class
	device *pmafmt.Device
	name   string
	pts    plotter.XYs
}

// CreateChartDir prepares a chart directory for every active series,
// creating dir if needed.
func CreateChartDir(dir string, s *pmafmt.Schema, params *pmaconf.Params) (*ChartDir, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("chart directory: %w", err)
	}
	cd := &ChartDir{dir: dir, s: s, params: params}
	eachActive(s, params, func(c *pmafmt.Class, m *pmafmt.Metric, d *pmafmt.Device, name string) {
		cd.series = append(cd.series, &chartSeries{class: c, device: d, name: name})
	})
	return cd, nil
}

// AddCycle accumulates the normalized points of the cycle that began
// at the Unix timestamp ts, restricted to sample indexes at or after
// each series' class start row.
func (cd *ChartDir) AddCycle(ts int64) {
	full := cd.params.Float(pmaconf.FullScale)
	for _, cs := range cd.series {
		for row := cs.class.StartRow; row < cd.s.Count; row++ {
			rowTS := ts + int64(row+1)*int64(cd.s.Interval)
			cs.pts = append(cs.pts, plotter.XY{
				X: float64(rowTS),
				Y: full / cs.device.Scale * cs.device.Values[row],
			})
		}
	}
}

// Render writes one PNG per series into the chart directory.
func (cd *ChartDir) Render() error {
	for _, cs := range cd.series {
		p := plot.New()
		p.Title.Text = cs.name
		p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04", Time: plot.UnixTimeIn(cd.params.Location())}
		p.Y.Label.Text = fmt.Sprintf("full scale %.1f", cd.params.Float(pmaconf.FullScale))
		p.Add(plotter.NewGrid())

		line, err := plotter.NewLine(cs.pts)
		if err != nil {
			return fmt.Errorf("chart %s: %w", cs.name, err)
		}
		p.Add(line)

		path := filepath.Join(cd.dir, cs.name+".png")
		if err := p.Save(24*vg.Centimeter, 8*vg.Centimeter, path); err != nil {
			return fmt.Errorf("chart %s: %w", cs.name, err)
		}
	}
	return nil
}
