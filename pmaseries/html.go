// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmaseries

import (
	"fmt"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pmatools/pma/pmaconf"
	"github.com/pmatools/pma/pmafmt"
)

// An HTMLReport renders every active series as an interactive line
// chart on one HTML page. Like ChartDir it accumulates points per
// cycle and renders once at the end of the run.
type HTMLReport struct {
	path   string
	s      *pmafmt.Schema
	params *pmaconf.Params
	series []*htmlSeries
}

type htmlSeries struct {
	class  *pmafmt.Class
	device *pmafmt.Device
	name   string
	labels []string
	data   []opts.LineData
}

// CreateHTMLReport prepares an HTML report writing to path.
func CreateHTMLReport(path string, s *pmafmt.Schema, params *pmaconf.Params) *HTMLReport {
	h := &HTMLReport{path: path, s: s, params: params}
	eachActive(s, params, func(c *pmafmt.Class, m *pmafmt.Metric, d *pmafmt.Device, name string) {
		h.series = append(h.series, &htmlSeries{class: c, device: d, name: name})
	})
	return h
}

// AddCycle accumulates the normalized points of the cycle that began
// at the Unix timestamp ts.
func (h *HTMLReport) AddCycle(ts int64) {
	full := h.params.Float(pmaconf.FullScale)
	for _, hs := range h.series {
		for row := hs.class.StartRow; row < h.s.Count; row++ {
			rowTime := time.Unix(ts+int64(row+1)*int64(h.s.Interval), 0).In(h.params.Location())
			hs.labels = append(hs.labels, rowTime.Format("01-02 15:04:05"))
			hs.data = append(hs.data, opts.LineData{Value: full / hs.device.Scale * hs.device.Values[row]})
		}
	}
}

// Render writes the report page.
func (h *HTMLReport) Render() error {
	page := components.NewPage()
	page.PageTitle = "pma report"
	for _, hs := range h.series {
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: hs.name}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
			charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
			charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
			charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
			charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "300px"}),
		)
		line.SetXAxis(hs.labels).AddSeries(hs.name, hs.data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)
		page.AddCharts(line)
	}

	f, err := os.Create(h.path)
	if err != nil {
		return fmt.Errorf("html report: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("html report: %w", err)
	}
	return nil
}
