// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmaconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pmatools/pma/pmafmt"
)

// testSchema returns a model with one vector class (metric cpu_us)
// and one array class (metric tps with devices sda and sdb).
func testSchema() *pmafmt.Schema {
	return &pmafmt.Schema{
		Count:    3,
		Interval: 10,
		Classes: []*pmafmt.Class{
			{
				Name: "CPU", Kind: pmafmt.Vector,
				Metrics: []*pmafmt.Metric{
					{Name: "cpu_us", Devices: []*pmafmt.Device{{Name: pmafmt.NoDevice, Values: make([]float64, 3)}}},
				},
			},
			{
				Name: "IO", Kind: pmafmt.Array, StartRow: 1,
				Metrics: []*pmafmt.Metric{
					{Name: "tps", Devices: []*pmafmt.Device{
						{Name: "sda", Values: make([]float64, 3)},
						{Name: "sdb", Values: make([]float64, 3)},
					}},
				},
			},
		},
	}
}

// loadString writes data to a temporary configuration file and loads
// it, returning the collected warnings.
func loadString(t *testing.T, data string, params *Params, schema *pmafmt.Schema) []string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pma.conf")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	var warnings []string
	warnf := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	if err := Load(path, params, schema, warnf); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return warnings
}

func TestParamDefaults(t *testing.T) {
	p, err := NewParams()
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Float(FullScale); got != 100.0 {
		t.Errorf("fullscale = %v, want 100", got)
	}
	if got := p.Delim(TableDelimiter); got != ',' {
		t.Errorf("singlefiledelimiter = %q, want ','", got)
	}
	if got := p.String(Separator); got != "_" {
		t.Errorf("metricdeviceseparator = %q, want _", got)
	}
	if got := p.Int(ClockticksLevel0); got != 86400 {
		t.Errorf("clockticks_level_0 = %d, want 86400", got)
	}
}

func TestLoadParams(t *testing.T) {
	p, _ := NewParams()
	warnings := loadString(t, `
# a comment
fullscale 50
singlefiledelimiter '|'
clockticks_level_0 3600
TZ UTC
`, p, testSchema())

	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if got := p.Float(FullScale); got != 50 {
		t.Errorf("fullscale = %v, want 50", got)
	}
	if got := p.Delim(TableDelimiter); got != '|' {
		t.Errorf("singlefiledelimiter = %q, want '|'", got)
	}
	if got := p.Int(ClockticksLevel0); got != 3600 {
		t.Errorf("clockticks_level_0 = %d, want 3600", got)
	}
	if got := p.Location(); got != time.UTC {
		t.Errorf("Location = %v, want UTC", got)
	}
}

func TestLoadScales(t *testing.T) {
	schema := testSchema()
	p, _ := NewParams()
	warnings := loadString(t, `
cpu_us 100
tps 10
tps_sda 20
`, p, schema)

	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if got := schema.Classes[0].Metrics[0].Devices[0].Scale; got != 100 {
		t.Errorf("cpu_us scale = %v, want 100", got)
	}
	tps := schema.Classes[1].Metrics[0]
	if got := tps.Devices[0].Scale; got != 20 {
		t.Errorf("tps_sda scale = %v, want 20 (device override after metric)", got)
	}
	if got := tps.Devices[1].Scale; got != 10 {
		t.Errorf("tps_sdb scale = %v, want 10 (metric-wide)", got)
	}
}

// Scale entries apply strictly in file order: a metric-wide entry
// after a device entry overwrites it.
func TestLoadScalesLastWriteWins(t *testing.T) {
	schema := testSchema()
	p, _ := NewParams()
	loadString(t, "tps_sda 20\ntps 10\n", p, schema)

	tps := schema.Classes[1].Metrics[0]
	if got := tps.Devices[0].Scale; got != 10 {
		t.Errorf("tps_sda scale = %v, want 10 (metric entry wins by order)", got)
	}
}

// A separator change affects the compound names matched below it.
func TestLoadSeparatorOrdering(t *testing.T) {
	schema := testSchema()
	p, _ := NewParams()
	warnings := loadString(t, `
metricdeviceseparator .
tps.sda 20
`, p, schema)

	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if got := schema.Classes[1].Metrics[0].Devices[0].Scale; got != 20 {
		t.Errorf("tps.sda scale = %v, want 20", got)
	}
}

func TestLoadWarnings(t *testing.T) {
	p, _ := NewParams()
	warnings := loadString(t, `
nosuchthing 5
justonefield
TZ No/Such/Zone
`, p, testSchema())

	wantSubstrings := []string{
		`unknown configuration parameter "nosuchthing"`,
		`bad configuration line starting "justonefield"`,
		`unknown timezone "No/Such/Zone"`,
	}
	for _, want := range wantSubstrings {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("warnings %v missing %q", warnings, want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	p, _ := NewParams()
	loadString(t, "TZ UTC\nmultifiledateformat '%H:%M:%S'\n", p, testSchema())

	at := time.Unix(3600*5+90, 0)
	if got := p.FormatTime(SeriesDateFormat, at); got != "05:01:30" {
		t.Errorf("FormatTime(%%H:%%M:%%S) = %q, want 05:01:30", got)
	}
	if got := p.FormatTime(TableDateFormat, at); got == "" {
		t.Errorf("FormatTime(default) is empty")
	}

	// The %s format is Unix epoch seconds.
	loadString(t, "multifiledateformat %s\n", p, testSchema())
	if got := p.FormatTime(SeriesDateFormat, at); got != "18090" {
		t.Errorf("FormatTime(%%s) = %q, want 18090", got)
	}
}
