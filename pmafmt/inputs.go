// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmafmt

import (
	"io"
	"os"
)

// An Input is one opened input file in a run. The path "-" denotes
// standard input, which is never closed and cannot be rewound.
type Input struct {
	Name  string
	file  *os.File
	stdin bool
}

// OpenInput opens the input at path, treating "-" as standard input.
func OpenInput(path string) (*Input, error) {
	if path == "-" {
		return &Input{Name: "-", file: os.Stdin, stdin: true}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Input{Name: path, file: f}, nil
}

// Reader returns the underlying reader.
func (in *Input) Reader() io.Reader {
	return in.file
}

// Stdin reports whether this input is standard input.
func (in *Input) Stdin() bool {
	return in.stdin
}

// Rewind seeks the input back to its beginning and reports whether it
// could. Standard input is forward-only, so the first input of a run,
// whose data is read once for device discovery and again for
// aggregation, loses its first data cycle when read from stdin.
func (in *Input) Rewind() bool {
	if in.stdin {
		return false
	}
	_, err := in.file.Seek(0, io.SeekStart)
	return err == nil
}

// Close closes the input. Closing standard input is a no-op.
func (in *Input) Close() error {
	if in.stdin {
		return nil
	}
	return in.file.Close()
}
