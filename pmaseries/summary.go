// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmaseries

import (
	"fmt"
	"io"

	"github.com/pmatools/pma/pmaconf"
	"github.com/pmatools/pma/pmafmt"
)

// WriteSummary writes the whole-run maximum, mean and sample count
// for every metric, and for every device of array class metrics,
// whether or not the series is active.
func WriteSummary(w io.Writer, s *pmafmt.Schema, params *pmaconf.Params) {
	sep := params.String(pmaconf.Separator)
	fmt.Fprintln(w, "### Summary Data ################### Max ################# Avg ######### Num")
	for _, c := range s.Classes {
		for _, m := range c.Metrics {
			fmt.Fprintf(w, "# %-18s  %18.1f #  %18.1f %13d\n", m.Name, m.Stats.Max, m.Stats.Mean(), m.Stats.N)
			if c.Kind != pmafmt.Array {
				continue
			}
			for _, d := range m.Devices {
				fmt.Fprintf(w, "## %-18s %18.1f ## %18.1f %13d\n", m.Name+sep+d.Name, d.Stats.Max, d.Stats.Mean(), d.Stats.N)
			}
		}
	}
}
