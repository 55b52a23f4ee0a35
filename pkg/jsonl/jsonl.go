// Package jsonl decodes JSON Lines streams: one JSON record per line,
// as produced by the provider's batch results endpoint.
//
// Unlike SSE — where an event without its terminating blank line is
// considered incomplete and dropped — JSONL has no end-of-record marker
// beyond the newline, so a final line without one is still a complete
// record and IS decoded.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/papercomputeco/splice/pkg/utils"
)

// LineError reports a single line that could not be decoded. It carries
// the offending line; the reader continues with the next one.
type LineError struct {
	Line string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("decode line %q: %v", utils.Truncate(e.Line, 48), e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Reader decodes records of type T from a JSON Lines stream.
type Reader[T any] struct {
	scanner *bufio.Scanner

	// err is the sticky terminal error, io.EOF included.
	err error
}

// NewReader returns a Reader decoding records from r.
func NewReader[T any](r io.Reader) *Reader[T] {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &Reader[T]{scanner: scanner}
}

// Next returns the next decoded record. It returns io.EOF once the stream
// is exhausted. A line that fails to decode returns a *LineError for that
// line alone; the next call moves on to the following line.
func (r *Reader[T]) Next() (T, error) {
	var zero T

	if r.err != nil {
		return zero, r.err
	}

	for r.scanner.Scan() {
		// The scanner strips "\n" and "\r\n"; a final unterminated line
		// can still carry a bare trailing CR.
		line := strings.TrimSuffix(r.scanner.Text(), "\r")
		if line == "" {
			continue
		}

		var rec T
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return zero, &LineError{Line: line, Err: err}
		}
		return rec, nil
	}

	if err := r.scanner.Err(); err != nil {
		r.err = err
		return zero, err
	}

	r.err = io.EOF
	return zero, io.EOF
}
