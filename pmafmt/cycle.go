// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmafmt

// A CycleReader reads the data cycles of one input file, reshaping
// each class stanza's rows into the schema's device buffers and
// updating the running aggregates.
//
// Its API is modeled on bufio.Scanner: each call to Scan consumes one
// complete DATE cycle (the timestamp plus one data stanza per class)
// and reports whether one was found. The device Values buffers hold
// the just-read cycle until the next call to Scan.
//
// Per-line anomalies such as a malformed row mid-stanza or a row
// count mismatch at stanza end are reported through the Scanner's
// Warn hook and do not stop the reader. The ordering of device rows within
// an array stanza is assumed to match discovery order and is not
// re-validated per row.
type CycleReader struct {
	sc *Scanner
	s  *Schema
	ts int64
}

// NewCycleReader returns a CycleReader reading cycles from sc into
// the model s. The schema must already have its devices discovered.
func NewCycleReader(sc *Scanner, s *Schema) *CycleReader {
	return &CycleReader{sc: sc, s: s}
}

// Scan consumes the next data cycle and reports whether one was
// found. When it returns false the caller should use Err to
// distinguish end of input from an I/O error.
func (r *CycleReader) Scan() bool {
	found, err := r.sc.SeekStanza(dateMarker)
	if err != nil || !found {
		return false
	}
	if !r.sc.Scan() {
		return false
	}
	if f := Fields(r.sc.Bytes(), 1); len(f) == 1 {
		ts, err := atoi(f[0])
		if err != nil {
			r.sc.warnf("bad timestamp %q", f[0])
		}
		r.ts = int64(ts)
	} else {
		// Keep the previous timestamp; the cycle is still read.
		r.sc.warnf("missing timestamp after %q", dateMarker)
	}

	for _, c := range r.s.Classes {
		// The class stanza is optional here: if the input is
		// truncated the stanza readers see end of input and the
		// row count mismatch diagnostic reports it.
		if _, err := r.sc.SeekStanza(c.Stanza()); err != nil {
			return false
		}
		if c.Kind == Vector {
			r.readVectorStanza(c)
		} else {
			r.readArrayStanza(c)
		}
	}
	return true
}

// Timestamp returns the Unix timestamp of the cycle just read by
// Scan.
func (r *CycleReader) Timestamp() int64 {
	return r.ts
}

// Err returns the first I/O error encountered by the reader.
func (r *CycleReader) Err() error {
	return r.sc.Err()
}

// readVectorStanza reads a vector stanza: one row per sample, one
// field per metric. The physical row index is the sample row index.
func (r *CycleReader) readVectorStanza(c *Class) {
	if len(c.Metrics) == 0 || len(c.Metrics[0].Devices) == 0 {
		return
	}
	row := 0
	for r.sc.Scan() {
		f := Fields(r.sc.Bytes(), MaxMetrics)
		switch {
		case len(f) == 0:
			goto done
		case len(f) != len(c.Metrics):
			// A bad row still consumes its row index.
			r.sc.warnf("vector class %q: bad data starting %q", c.Name, f[0])
		case row >= c.StartRow && row < r.s.Count:
			for i, m := range c.Metrics {
				v, _ := atof(f[i])
				m.Stats.add(v)
				d := m.Devices[0]
				d.Stats.add(v)
				d.Values[row] = v
			}
		}
		row++
	}
done:
	if row != r.s.Count {
		r.sc.warnf("vector class %q: expected %d rows, not %d", c.Name, r.s.Count, row)
	}
}

// readArrayStanza reads an array stanza: one row per device per
// sample. The physical row index r maps to sample row r/numDevices
// and device slot r%numDevices, using each metric's own discovered
// device count. Device rows for one sample must therefore appear
// contiguously and in discovery order.
func (r *CycleReader) readArrayStanza(c *Class) {
	if len(c.Metrics) == 0 || len(c.Metrics[0].Devices) == 0 {
		return
	}
	row := 0
	for r.sc.Scan() {
		f := Fields(r.sc.Bytes(), MaxMetrics+1)
		switch {
		case len(f) == 0:
			goto done
		case len(f) != len(c.Metrics)+1:
			r.sc.warnf("array class %q: bad data starting %q", c.Name, f[0])
		default:
			for i, m := range c.Metrics {
				sample := row / len(m.Devices)
				if sample < c.StartRow || sample >= r.s.Count {
					// Once one metric's row quota is exhausted the
					// rest of the row is abandoned.
					break
				}
				v, _ := atof(f[i+1])
				m.Stats.add(v)
				d := m.Devices[row%len(m.Devices)]
				d.Stats.add(v)
				d.Values[sample] = v
			}
		}
		row++
	}
done:
	if want := r.s.Count * len(c.Metrics[0].Devices); row != want {
		r.sc.warnf("array class %q: expected %d rows, not %d", c.Name, want, row)
	}
}
