// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmafmt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// A Scanner reads a sample file line by line, tracking the current
// position for diagnostics.
//
// Its API is modeled on bufio.Scanner. The Scanner retains ownership
// of the line buffer; a caller should copy anything it needs to
// retain across calls to Scan.
type Scanner struct {
	s        *bufio.Scanner
	fileName string
	line     int
	err      error

	// Warn, if non-nil, receives recoverable per-line anomalies.
	// If nil, they are written to standard error.
	Warn func(*SyntaxError)
}

// NewScanner returns a Scanner reading from r. fileName is used in
// diagnostics; it is purely informational.
func NewScanner(r io.Reader, fileName string) *Scanner {
	if fileName == "" {
		fileName = "<unknown>"
	}
	return &Scanner{s: bufio.NewScanner(r), fileName: fileName}
}

// Scan advances to the next input line and reports whether one was
// read. At end of input or on an I/O error it returns false; the
// caller should use Err to distinguish the two.
func (sc *Scanner) Scan() bool {
	if sc.err != nil {
		return false
	}
	if !sc.s.Scan() {
		if err := sc.s.Err(); err != nil {
			sc.err = fmt.Errorf("%s:%d: %w", sc.fileName, sc.line, err)
		}
		return false
	}
	sc.line++
	return true
}

// Bytes returns the current line. The returned slice is only valid
// until the next call to Scan.
func (sc *Scanner) Bytes() []byte {
	return sc.s.Bytes()
}

// Err returns the first I/O error encountered by the Scanner.
func (sc *Scanner) Err() error {
	return sc.err
}

// Pos returns the Scanner's file name and current 1-based line number.
func (sc *Scanner) Pos() (fileName string, line int) {
	return sc.fileName, sc.line
}

// SeekStanza reads and discards lines until one exactly equal to
// marker is found. It reports whether the marker was found; reaching
// end of input without finding it is not an error here, so callers
// for whom the stanza is mandatory must treat !found as fatal
// themselves.
func (sc *Scanner) SeekStanza(marker string) (found bool, err error) {
	for sc.Scan() {
		if bytes.Equal(sc.Bytes(), []byte(marker)) {
			return true, nil
		}
	}
	return false, sc.Err()
}

// syntaxErrorf returns a *SyntaxError at the Scanner's current
// position.
func (sc *Scanner) syntaxErrorf(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{sc.fileName, sc.line, fmt.Sprintf(format, args...)}
}

// warnf reports a recoverable anomaly at the current position.
func (sc *Scanner) warnf(format string, args ...interface{}) {
	err := sc.syntaxErrorf(format, args...)
	if sc.Warn != nil {
		sc.Warn(err)
		return
	}
	fmt.Fprintf(os.Stderr, "%v\n", err)
}

// A SyntaxError represents a structural or per-line error at a
// particular position in a sample or configuration file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}
