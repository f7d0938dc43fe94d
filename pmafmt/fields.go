// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmafmt

import (
	"math"
	"strconv"
)

// Characters with special meaning in sample files and configuration
// files.
const (
	quoteChar   = '\''
	commentChar = '#'
)

// Fields splits line into at most max fields.
//
// Fields are separated by runs of spaces and tabs. A field may be
// single-quoted to include embedded whitespace; the quote characters
// are not part of the field value and an unterminated quote runs to
// the end of the line. A comment character outside quotes terminates
// the line. If line holds more than max fields, the extras are
// silently discarded.
//
// An empty result means the line is blank or comment-only, which
// callers use as the end-of-stanza sentinel.
func Fields(line []byte, max int) [][]byte {
	var fields [][]byte
	i := 0
	for i < len(line) && len(fields) < max {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i >= len(line) || line[i] == commentChar {
			break
		}
		if line[i] == quoteChar {
			i++
			start := i
			for i < len(line) && line[i] != quoteChar {
				i++
			}
			fields = append(fields, line[start:i])
			if i < len(line) {
				i++ // closing quote
			}
			continue
		}
		start := i
		for i < len(line) && !isSpace(line[i]) && line[i] != commentChar {
			i++
		}
		fields = append(fields, line[start:i])
		if i < len(line) && line[i] == commentChar {
			break
		}
	}
	return fields
}

const spaceSet uint64 = 1<<'\t' | 1<<'\n' | 1<<'\v' | 1<<'\f' | 1<<'\r' | 1<<' '

func isSpace(c byte) bool {
	return c < 64 && spaceSet>>c&1 != 0
}

// atof parses x as a float64, optimizing for values that are usually
// small integers.
func atof(x []byte) (float64, error) {
	var val int64
	for _, ch := range x {
		digit := ch - '0'
		if digit >= 10 {
			goto fail
		}
		if val > (math.MaxInt64-10)/10 {
			goto fail // avoid int64 overflow
		}
		val = (val * 10) + int64(digit)
	}
	if len(x) == 0 {
		goto fail
	}
	return float64(val), nil

fail:
	return strconv.ParseFloat(string(x), 64)
}

// atoi parses x as an int.
func atoi(x []byte) (int, error) {
	v, err := strconv.Atoi(string(x))
	return v, err
}
