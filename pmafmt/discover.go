// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmafmt

import "fmt"

// DiscoverDevices fixes the device population of s from the first data
// cycle read from sc. It reads the mandatory first DATE stanza, whose
// single timestamp line becomes s.FirstTime, then walks every class's
// data stanza in declaration order registering devices: vector classes
// get the one synthetic NoDevice per metric, array classes one device
// per distinct name in the first stanza field. Discovery consumes the
// first data cycle; callers with a seekable input should rewind it
// before aggregating so the cycle is not lost.
//
// Structural problems are fatal here, unlike during aggregation: once
// the shape of the data is wrong there is nothing sound to discover.
func DiscoverDevices(sc *Scanner, s *Schema) error {
	if err := readFirstTimestamp(sc, s); err != nil {
		return err
	}
	for _, c := range s.Classes {
		if found, err := sc.SeekStanza(c.Stanza()); err != nil {
			return err
		} else if !found {
			return fmt.Errorf("%s: stanza %q not found", sc.fileName, c.Stanza())
		}
		var err error
		if c.Kind == Vector {
			err = discoverVector(sc, s, c)
		} else {
			err = discoverArray(sc, s, c)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func readFirstTimestamp(sc *Scanner, s *Schema) error {
	if found, err := sc.SeekStanza(dateMarker); err != nil {
		return err
	} else if !found {
		return fmt.Errorf("%s: stanza %q not found", sc.fileName, dateMarker)
	}

	set := 0
	for sc.Scan() {
		f := Fields(sc.Bytes(), 1)
		if len(f) == 0 {
			break
		}
		ts, err := atoi(f[0])
		if err != nil {
			sc.warnf("bad timestamp %q", f[0])
		}
		s.FirstTime = int64(ts)
		set++
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if set != 1 {
		return sc.syntaxErrorf("first timestamp was set %d times; must be 1", set)
	}
	return nil
}

// discoverVector reads the single data line of a vector stanza and
// registers the NoDevice device for each metric.
func discoverVector(sc *Scanner, s *Schema, c *Class) error {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return err
		}
		return sc.syntaxErrorf("class %q: missing vector data line", c.Name)
	}
	f := Fields(sc.Bytes(), MaxMetrics)
	if len(f) != len(c.Metrics) {
		return sc.syntaxErrorf("class %q: %d vector metrics required, found %d", c.Name, len(c.Metrics), len(f))
	}
	for _, m := range c.Metrics {
		m.addDevice(NoDevice, s.Count)
	}
	return nil
}

// discoverArray reads the device rows of an array stanza, registering
// each row's device name for every metric of the class. First-seen
// wins, so rows repeating per sample register each device once and
// establish the canonical device order later files must follow.
func discoverArray(sc *Scanner, s *Schema, c *Class) error {
	for sc.Scan() {
		f := Fields(sc.Bytes(), MaxMetrics+1)
		if len(f) == 0 {
			break
		}
		if len(f) != len(c.Metrics)+1 {
			return sc.syntaxErrorf("class %q: %d array metrics required, found %d", c.Name, len(c.Metrics), len(f)-1)
		}
		name := string(f[0])
		for _, m := range c.Metrics {
			m.addDevice(name, s.Count)
		}
	}
	return sc.Err()
}
