// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pmafmt reads the stanza-based text format produced by
// performance sample collectors.
//
// A sample file is self-describing: a TIME_VALUES stanza fixes the
// number of sample rows per data stanza and the interval between
// them, a METADATA stanza declares the classes of metrics and their
// row layout, and the remainder of the file is a sequence of data
// cycles, each introduced by a DATE stanza and followed by one data
// stanza per class. The schema of a run, from the metric population
// to where real data begins, is discovered from the first input file
// rather than declared to the program.
//
// The package is split into three phases that mirror that structure:
// ParseHeader builds the Schema, DiscoverDevices fixes the device
// population from the first file's data stanzas, and a CycleReader
// reshapes and aggregates the data cycles of each input.
package pmafmt

// MaxMetrics is the maximum number of metrics one class may declare.
const MaxMetrics = 32

// NoDevice is the synthetic device name used for the single implicit
// device of every vector class metric.
const NoDevice = "None"

// A Kind describes the row layout of a class's data stanza.
type Kind int

const (
	// Vector classes hold one row per sample, one field per metric,
	// and exactly one implicit device per metric.
	Vector Kind = iota

	// Array classes hold one row per device per sample, each row
	// naming its device in the first field.
	Array
)

func (k Kind) String() string {
	switch k {
	case Vector:
		return "vector"
	case Array:
		return "array"
	}
	return "unknown"
}

// Stats holds running aggregates over every sample processed in a
// run. Aggregates accumulate across input files and are never reset.
type Stats struct {
	N   int     // number of samples
	Max float64 // largest sample
	Sum float64 // sum of all samples
}

func (st *Stats) add(v float64) {
	st.N++
	if v > st.Max {
		st.Max = v
	}
	st.Sum += v
}

// Mean returns the mean of all processed samples, or 0 if there were
// none.
func (st Stats) Mean() float64 {
	if st.N == 0 {
		return 0
	}
	return st.Sum / float64(st.N)
}

// A Device is one concrete instance a metric is measured on: a disk,
// a network interface, or the synthetic NoDevice instance of a vector
// metric. Device names are unique only within their owning metric.
type Device struct {
	Name  string
	Stats Stats

	// Scale is the user-supplied full-scale value for this series.
	// Zero, the default, means the series is inactive and is not
	// emitted.
	Scale float64

	// Values holds the per-sample values of the current input
	// file, indexed by sample row. Its length is always the
	// schema's Count. Each input file overwrites it in place.
	Values []float64
}

// A Metric is a named quantity tracked within a class. Metric names
// are unique across all classes of a schema.
type Metric struct {
	Name    string
	Stats   Stats
	Devices []*Device // first-appearance order
}

// addDevice registers a device by name and returns it. Registration
// is idempotent: a name already present is returned unchanged.
func (m *Metric) addDevice(name string, count int) *Device {
	for _, d := range m.Devices {
		if d.Name == name {
			return d
		}
	}
	d := &Device{Name: name, Values: make([]float64, count)}
	m.Devices = append(m.Devices, d)
	return d
}

// A Class is a named group of metrics sharing one row layout.
type Class struct {
	Name string
	Kind Kind

	// StartRow is the 0-based sample row at which real data
	// begins. Rows before it are placeholders and are neither
	// aggregated nor emitted.
	StartRow int

	Metrics []*Metric // declaration order
}

// Stanza returns the marker line introducing this class's data
// stanza.
func (c *Class) Stanza() string {
	return c.Name + ":"
}

// A Schema is the in-memory model of a run, built once from the first
// input file and then populated in place by every input.
type Schema struct {
	Count    int // sample rows per data stanza
	Interval int // seconds between sample rows

	// FirstTime is the Unix timestamp of the run's first data
	// cycle, used as the clockticks origin.
	FirstTime int64

	Classes []*Class // declaration order
}
