package sse

import (
	"errors"
	"io"
)

// Reader pulls parsed SSE events out of an io.Reader. It is a thin adapter
// over Decoder for callers that have the whole stream in hand — a capture
// file, an HTTP response body — rather than bytes arriving piecemeal.
type Reader struct {
	src io.Reader
	dec *Decoder
	buf []byte

	// err is the sticky terminal error, io.EOF included, returned once the
	// decoder's queue has been drained.
	err error
}

// NewReader returns a Reader that parses SSE events from src.
func NewReader(src io.Reader) *Reader {
	return &Reader{
		src: src,
		dec: NewDecoder(),
		buf: make([]byte, 32*1024),
	}
}

// Next returns the next parsed SSE event. It returns io.EOF once the source
// is exhausted and every complete event has been yielded. An event left
// unterminated when the source ends is discarded, not yielded; Truncated
// reports whether that happened.
func (r *Reader) Next() (*Event, error) {
	for {
		if ev, ok := r.dec.Next(); ok {
			return &ev, nil
		}

		if r.err != nil {
			return nil, r.err
		}

		n, readErr := r.src.Read(r.buf)
		if n > 0 {
			// Decoder writes never fail.
			_, _ = r.dec.Write(r.buf[:n])
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				_ = r.dec.Close()
			}
			r.err = readErr
			// Loop once more to drain events the final chunk completed.
		}
	}
}

// Truncated reports whether the source ended mid-event, discarding a
// partially accumulated frame.
func (r *Reader) Truncated() bool {
	return r.dec.Truncated()
}
