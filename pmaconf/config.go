// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmaconf

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pmatools/pma/pmafmt"
)

// Load reads the configuration file at path into params and the
// schema's device scales.
//
// Each line holds a name and a value. A name matching a metric sets
// the scale of every device of that metric; a name matching
// metric-separator-device sets that one device; a name matching a
// parameter sets it. Lines apply strictly in file order, so later
// lines overwrite earlier ones, and a separator change affects the
// compound names matched below it. Unknown names warn and are
// ignored.
//
// warnf receives non-fatal diagnostics; if nil they go to standard
// error. Only a file that cannot be opened is a fatal error.
func Load(path string, params *Params, schema *pmafmt.Schema, warnf func(format string, args ...interface{})) error {
	if warnf == nil {
		warnf = func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("configuration file: %w", err)
	}
	defer f.Close()
	if err := load(f, path, params, schema, warnf); err != nil {
		return err
	}

	// Resolve the timezone once the whole file has applied.
	if tz := params.String(TimeZone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			warnf("ignoring unknown timezone %q", tz)
		} else {
			params.loc = loc
		}
	}
	return nil
}

func load(r io.Reader, path string, params *Params, schema *pmafmt.Schema, warnf func(string, ...interface{})) error {
	sc := pmafmt.NewScanner(r, path)
	for sc.Scan() {
		f := pmafmt.Fields(sc.Bytes(), 2)
		switch len(f) {
		case 0:
			continue
		case 2:
			name, raw := string(f[0]), string(f[1])
			known := setScale(schema, params, name, raw)
			if params.set(name, raw) {
				known = true
			}
			if !known {
				warnf("ignoring unknown configuration parameter %q", name)
			}
		default:
			warnf("bad configuration line starting %q", f[0])
		}
	}
	return sc.Err()
}

// setScale applies a scale entry to every device the name selects,
// using the separator in force at this point in the file. It reports
// whether the name matched anything.
func setScale(schema *pmafmt.Schema, params *Params, name, raw string) bool {
	if schema == nil {
		return false
	}
	sep := params.String(Separator)
	scale, _ := strconv.ParseFloat(raw, 64)
	matched := false
	for _, c := range schema.Classes {
		for _, m := range c.Metrics {
			if name == m.Name {
				// Metric-wide: every device of the metric. For a
				// vector class that is its single device.
				for _, d := range m.Devices {
					d.Scale = scale
				}
				matched = true
				continue
			}
			if c.Kind != pmafmt.Array {
				continue
			}
			for _, d := range m.Devices {
				if name == m.Name+sep+d.Name {
					d.Scale = scale
					matched = true
					break
				}
			}
		}
	}
	return matched
}
