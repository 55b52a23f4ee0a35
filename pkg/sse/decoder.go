package sse

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

// Decoder is an incremental push-based SSE decoder. Callers feed raw bytes
// with Write in arbitrary chunk sizes and drain completed events with Next.
// The decoder buffers at most one partial line plus the fields of the event
// being accumulated, so chunk boundaries — including boundaries mid-line or
// mid-rune — never change which events are produced.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	// buf holds the trailing partial line carried over between writes.
	buf []byte

	// events queues dispatched events until the caller drains them.
	events []Event

	// current event accumulation state.
	eventType string
	id        string
	data      []string
	retry     time.Duration
	sawField  bool

	closed    bool
	truncated bool
}

// NewDecoder returns a Decoder ready to accept bytes.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Write feeds a chunk of the stream into the decoder. It never fails and
// always reports the full chunk as consumed, satisfying io.Writer so the
// decoder can sit behind io.Copy. Writes after Close are discarded.
func (d *Decoder) Write(p []byte) (int, error) {
	if d.closed {
		return len(p), nil
	}

	d.buf = append(d.buf, p...)

	// Consume every complete line; the remainder stays buffered until the
	// terminating newline arrives in a later chunk.
	start := 0
	for {
		i := bytes.IndexByte(d.buf[start:], '\n')
		if i < 0 {
			break
		}

		line := d.buf[start : start+i]
		// Tolerate CRLF line endings by stripping a single trailing CR.
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}

		d.processLine(string(line))
		start += i + 1
	}

	if start > 0 {
		d.buf = append(d.buf[:0], d.buf[start:]...)
	}

	return len(p), nil
}

// Next returns the next completed event, if any. It never blocks: ok is
// false when every event dispatched so far has been drained. Events that
// completed before Close remain drainable after it.
func (d *Decoder) Next() (Event, bool) {
	if len(d.events) == 0 {
		return Event{}, false
	}

	ev := d.events[0]
	d.events = d.events[1:]
	return ev, true
}

// Close marks the end of the stream. Any partially accumulated event — one
// whose terminating blank line never arrived — is discarded rather than
// dispatched, and Truncated reports whether that happened. Close is
// idempotent and always returns nil; the error return satisfies io.Closer.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	if len(d.buf) > 0 || d.sawField {
		d.truncated = true
	}

	d.buf = nil
	d.reset()
	return nil
}

// Truncated reports whether Close discarded a partially accumulated event.
func (d *Decoder) Truncated() bool {
	return d.truncated
}

// processLine handles a single complete line from the stream: blank lines
// dispatch the accumulated event, comments are skipped, and field lines
// accumulate onto the current event.
func (d *Decoder) processLine(line string) {
	// A blank line signals the end of the current event. Blank lines with
	// no accumulated fields are skipped (e.g. leading blank lines or
	// keep-alive newlines).
	if line == "" {
		if d.sawField {
			d.dispatch()
		}
		return
	}

	// Lines starting with ':' are comments. Keep-alives arrive this way;
	// they must not disturb the event being accumulated.
	if strings.HasPrefix(line, ":") {
		return
	}

	// Per the SSE spec, a line has the form "field:value" where the first
	// space after the colon is optional and stripped if present. A line
	// with no colon is a field name with an empty value.
	field, value, found := strings.Cut(line, ":")
	if found {
		value = strings.TrimPrefix(value, " ")
	}

	switch field {
	case "data":
		d.data = append(d.data, value)
		d.sawField = true
	case "event":
		d.eventType = value
		d.sawField = true
	case "id":
		d.id = value
		d.sawField = true
	case "retry":
		// Integer milliseconds. Malformed values are ignored per the SSE
		// spec, and retry alone never completes an event.
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			d.retry = time.Duration(ms) * time.Millisecond
		}
	default:
		// Unknown fields are ignored per the SSE spec.
	}
}

// dispatch moves the accumulated fields into the event queue and resets
// for the next event.
func (d *Decoder) dispatch() {
	d.events = append(d.events, Event{
		Type:  d.eventType,
		Data:  strings.Join(d.data, "\n"),
		ID:    d.id,
		Retry: d.retry,
	})
	d.reset()
}

// reset clears the accumulated event state for the next event.
func (d *Decoder) reset() {
	d.eventType = ""
	d.id = ""
	d.data = nil
	d.retry = 0
	d.sawField = false
}
