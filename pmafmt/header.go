// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmafmt

import "fmt"

// Stanza markers. Markers are matched case-sensitively against whole
// lines.
const (
	timeValuesMarker = "TIME_VALUES:"
	metadataMarker   = "METADATA:"
	dateMarker       = "DATE:"
)

// Field layout of a METADATA class line: name, type flag, start row,
// then 1..MaxMetrics metric names.
const numMetaItems = 3

// ParseHeader reads the TIME_VALUES and METADATA stanzas from sc and
// returns the resulting Schema. Both stanzas are mandatory, and a
// malformed time values line, an unknown class type flag, an
// out-of-range start row, or a duplicate metric name is fatal.
func ParseHeader(sc *Scanner) (*Schema, error) {
	s := new(Schema)
	if err := parseTimeValues(sc, s); err != nil {
		return nil, err
	}
	if err := parseMetadata(sc, s); err != nil {
		return nil, err
	}
	if err := checkMetricNames(s); err != nil {
		return nil, err
	}
	return s, nil
}

func parseTimeValues(sc *Scanner, s *Schema) error {
	if found, err := sc.SeekStanza(timeValuesMarker); err != nil {
		return err
	} else if !found {
		return fmt.Errorf("%s: stanza %q not found", sc.fileName, timeValuesMarker)
	}

	for sc.Scan() {
		f := Fields(sc.Bytes(), 2)
		if len(f) == 0 {
			break
		}
		if len(f) != 2 {
			return sc.syntaxErrorf("bad time values starting %q", f[0])
		}
		count, err := atoi(f[0])
		if err != nil {
			return sc.syntaxErrorf("bad sample count %q", f[0])
		}
		interval, err := atoi(f[1])
		if err != nil {
			return sc.syntaxErrorf("bad sample interval %q", f[1])
		}
		s.Count, s.Interval = count, interval
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if s.Count < 1 {
		return sc.syntaxErrorf("sample count must be positive, not %d", s.Count)
	}
	return nil
}

func parseMetadata(sc *Scanner, s *Schema) error {
	if found, err := sc.SeekStanza(metadataMarker); err != nil {
		return err
	} else if !found {
		return fmt.Errorf("%s: stanza %q not found", sc.fileName, metadataMarker)
	}

	for sc.Scan() {
		f := Fields(sc.Bytes(), numMetaItems+MaxMetrics)
		if len(f) == 0 {
			break
		}
		if len(f) < numMetaItems+1 {
			// Not enough fields to describe a class. The line is
			// skipped and the rest of the block still parses.
			sc.warnf("bad class metadata starting %q", f[0])
			continue
		}

		name := string(f[0])
		var kind Kind
		switch string(f[1]) {
		case "V":
			kind = Vector
		case "A":
			kind = Array
		default:
			return sc.syntaxErrorf("class %q: bad type %q: must be \"V\" or \"A\"", name, f[1])
		}

		// Start rows are 1-based in the file.
		startRow, err := atoi(f[2])
		if err != nil || startRow < 1 || startRow > s.Count {
			return sc.syntaxErrorf("class %q: bad start row %q: must be 1 to %d", name, f[2], s.Count)
		}

		c := &Class{Name: name, Kind: kind, StartRow: startRow - 1}
		for _, mf := range f[numMetaItems:] {
			c.Metrics = append(c.Metrics, &Metric{Name: string(mf)})
		}
		s.Classes = append(s.Classes, c)
	}
	return sc.Err()
}

// checkMetricNames rejects schemas with duplicate metric names, even
// across classes, before any data stanza is read.
func checkMetricNames(s *Schema) error {
	seen := make(map[string]string)
	for _, c := range s.Classes {
		for _, m := range c.Metrics {
			if prev, ok := seen[m.Name]; ok {
				return fmt.Errorf("duplicate metric %q in classes %q and %q", m.Name, prev, c.Name)
			}
			seen[m.Name] = c.Name
		}
	}
	return nil
}
