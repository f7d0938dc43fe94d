// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmafmt

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sampleFile is a complete input: 3 samples at 10 second intervals,
// one vector class starting at row 1 (so every row is real) and one
// array class with two devices starting at row 2 (so sample row 0 is
// a placeholder).
const sampleFile = `
TIME_VALUES:
3 10

METADATA:
CPU V 1 cpu_us cpu_sy
IO A 2 tps kbps

DATE:
1000

CPU:
1 2
3 4
5 6

IO:
sda 1 10
sdb 2 20
sda 3 30
sdb 4 40
sda 5 50
sdb 6 60
`

// bootstrap parses sampleFile's header and discovers its devices,
// returning the schema and a fresh scanner positioned at the start,
// as the aggregation pass sees after the rewind.
func bootstrap(t *testing.T, data string, warnings *[]string) (*Schema, *Scanner) {
	t.Helper()
	sc := newTestScanner(data, warnings)
	s, err := ParseHeader(sc)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if err := DiscoverDevices(sc, s); err != nil {
		t.Fatalf("DiscoverDevices: %v", err)
	}
	return s, newTestScanner(data, warnings)
}

func TestDiscoverDevices(t *testing.T) {
	var warnings []string
	s, _ := bootstrap(t, sampleFile, &warnings)

	if s.FirstTime != 1000 {
		t.Errorf("FirstTime = %d, want 1000", s.FirstTime)
	}
	for _, m := range s.Classes[0].Metrics {
		var names []string
		for _, d := range m.Devices {
			names = append(names, d.Name)
		}
		if diff := cmp.Diff([]string{NoDevice}, names); diff != "" {
			t.Errorf("vector metric %s devices (-want +got):\n%s", m.Name, diff)
		}
	}
	for _, m := range s.Classes[1].Metrics {
		var names []string
		for _, d := range m.Devices {
			names = append(names, d.Name)
			if len(d.Values) != s.Count {
				t.Errorf("device %s buffer length %d, want %d", d.Name, len(d.Values), s.Count)
			}
		}
		if diff := cmp.Diff([]string{"sda", "sdb"}, names); diff != "" {
			t.Errorf("array metric %s devices (-want +got):\n%s", m.Name, diff)
		}
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestDiscoverDevicesErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			"missingDate",
			"TIME_VALUES:\n3 10\n\nMETADATA:\nCPU V 1 cpu_us\n\n",
			`stanza "DATE:" not found`,
		},
		{
			"twoTimestamps",
			"TIME_VALUES:\n3 10\n\nMETADATA:\nCPU V 1 cpu_us\n\nDATE:\n1000\n2000\n\nCPU:\n1\n",
			"first timestamp was set 2 times",
		},
		{
			"missingClassStanza",
			"TIME_VALUES:\n3 10\n\nMETADATA:\nCPU V 1 cpu_us\n\nDATE:\n1000\n\n",
			`stanza "CPU:" not found`,
		},
		{
			"vectorFieldCount",
			"TIME_VALUES:\n3 10\n\nMETADATA:\nCPU V 1 cpu_us cpu_sy\n\nDATE:\n1000\n\nCPU:\n1 2 3\n",
			"2 vector metrics required, found 3",
		},
		{
			"truncatedVector",
			"TIME_VALUES:\n3 10\n\nMETADATA:\nCPU V 1 cpu_us\n\nDATE:\n1000\n\nCPU:\n",
			"missing vector data line",
		},
		{
			"arrayFieldCount",
			"TIME_VALUES:\n3 10\n\nMETADATA:\nIO A 1 tps\n\nDATE:\n1000\n\nIO:\nsda 1 2\n",
			"1 array metrics required, found 2",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var warnings []string
			sc := newTestScanner(test.data, &warnings)
			s, err := ParseHeader(sc)
			if err != nil {
				t.Fatalf("ParseHeader: %v", err)
			}
			err = DiscoverDevices(sc, s)
			if err == nil {
				t.Fatalf("DiscoverDevices succeeded, want error containing %q", test.want)
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q does not contain %q", err, test.want)
			}
		})
	}
}

// A vector class whose metrics never got a device registered must be
// skipped by the cycle reader, like an array class with no devices.
func TestCycleReaderVectorNoDevices(t *testing.T) {
	s := &Schema{
		Count:    3,
		Interval: 10,
		Classes: []*Class{
			{Name: "CPU", Kind: Vector, Metrics: []*Metric{
				{Name: "cpu_us"}, {Name: "cpu_sy"},
			}},
		},
	}
	var warnings []string
	cr := NewCycleReader(newTestScanner("DATE:\n1000\n\nCPU:\n1 2\n3 4\n5 6\n", &warnings), s)
	if !cr.Scan() {
		t.Fatalf("Scan found no cycle: %v", cr.Err())
	}
	if st := s.Classes[0].Metrics[0].Stats; st.N != 0 {
		t.Errorf("cpu_us N = %d, want 0", st.N)
	}
}

func TestCycleReader(t *testing.T) {
	var warnings []string
	s, sc := bootstrap(t, sampleFile, &warnings)

	cr := NewCycleReader(sc, s)
	if !cr.Scan() {
		t.Fatalf("Scan found no cycle: %v", cr.Err())
	}
	if cr.Timestamp() != 1000 {
		t.Errorf("Timestamp = %d, want 1000", cr.Timestamp())
	}

	// Vector class: every row is stored at its line index.
	cpuUS := s.Classes[0].Metrics[0]
	if diff := cmp.Diff([]float64{1, 3, 5}, cpuUS.Devices[0].Values); diff != "" {
		t.Errorf("cpu_us values (-want +got):\n%s", diff)
	}
	if st := cpuUS.Stats; st.N != 3 || st.Max != 5 || st.Sum != 9 {
		t.Errorf("cpu_us stats = %+v, want N 3 Max 5 Sum 9", st)
	}

	// Array class: physical row r maps to sample r/2, device r%2,
	// and sample rows before the start row stay zero.
	tps := s.Classes[1].Metrics[0]
	if diff := cmp.Diff([]float64{0, 3, 5}, tps.Devices[0].Values); diff != "" {
		t.Errorf("tps sda values (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0, 4, 6}, tps.Devices[1].Values); diff != "" {
		t.Errorf("tps sdb values (-want +got):\n%s", diff)
	}
	if st := tps.Stats; st.N != 4 || st.Max != 6 || st.Sum != 18 {
		t.Errorf("tps stats = %+v, want N 4 Max 6 Sum 18", st)
	}

	if cr.Scan() {
		t.Error("Scan found a second cycle")
	}
	if err := cr.Err(); err != nil {
		t.Errorf("Err = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

// Metric aggregates must be consistent with the aggregates of their
// devices, for any number of processed cycles.
func TestAggregateConsistency(t *testing.T) {
	var warnings []string
	s, sc := bootstrap(t, sampleFile, &warnings)

	cr := NewCycleReader(sc, s)
	for cr.Scan() {
	}
	// Process the same input again: aggregates accumulate, buffers
	// are overwritten.
	cr = NewCycleReader(newTestScanner(sampleFile, &warnings), s)
	for cr.Scan() {
	}

	for _, c := range s.Classes {
		for _, m := range c.Metrics {
			var n int
			var max, sum float64
			for _, d := range m.Devices {
				n += d.Stats.N
				sum += d.Stats.Sum
				if d.Stats.Max > max {
					max = d.Stats.Max
				}
			}
			if m.Stats.N != n || m.Stats.Sum != sum || m.Stats.Max != max {
				t.Errorf("metric %s stats %+v inconsistent with devices (N %d Sum %v Max %v)",
					m.Name, m.Stats, n, sum, max)
			}
		}
	}
	if got := s.Classes[0].Metrics[0].Stats.N; got != 6 {
		t.Errorf("cpu_us N after two passes = %d, want 6", got)
	}
}

func TestCycleReaderTruncatedStanza(t *testing.T) {
	truncated := strings.Replace(sampleFile, "sdb 6 60\n", "", 1)
	var warnings []string
	s, _ := bootstrap(t, sampleFile, &warnings)

	warnings = warnings[:0]
	cr := NewCycleReader(newTestScanner(truncated, &warnings), s)
	if !cr.Scan() {
		t.Fatalf("Scan found no cycle: %v", cr.Err())
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "expected 6 rows, not 5") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a row count mismatch for the truncated stanza", warnings)
	}
}

// A malformed row mid-stanza is logged, still consumes its row index,
// and does not update any aggregate.
func TestCycleReaderBadRow(t *testing.T) {
	bad := strings.Replace(sampleFile, "3 4\n", "3 4 extra\n", 1)
	var warnings []string
	s, _ := bootstrap(t, sampleFile, &warnings)

	warnings = warnings[:0]
	cr := NewCycleReader(newTestScanner(bad, &warnings), s)
	if !cr.Scan() {
		t.Fatalf("Scan found no cycle: %v", cr.Err())
	}
	cpuUS := s.Classes[0].Metrics[0]
	if diff := cmp.Diff([]float64{1, 0, 5}, cpuUS.Devices[0].Values); diff != "" {
		t.Errorf("cpu_us values (-want +got):\n%s", diff)
	}
	if st := cpuUS.Stats; st.N != 2 {
		t.Errorf("cpu_us N = %d, want 2", st.N)
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "bad data") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a bad data diagnostic", warnings)
	}
}
