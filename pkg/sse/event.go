// Package sse provides an incremental decoder for SSE (Server-Sent Events)
// streams as emitted by LLM provider APIs. Bytes are fed to a Decoder in
// whatever chunks the transport happens to deliver, and complete events
// become available as soon as they are terminated on the wire. A Reader
// wraps the Decoder with a pull interface over an io.Reader for decoding
// whole captures.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "time"

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" (per the SSE spec, multiple data fields are joined
	// with a single newline).
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string

	// Retry is the reconnection delay from a "retry:" field seen since the
	// previous dispatched event, or zero. A retry field accumulates onto the
	// next event but never terminates one on its own.
	Retry time.Duration
}
