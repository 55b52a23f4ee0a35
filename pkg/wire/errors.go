package wire

import (
	"encoding/json"
	"fmt"

	"github.com/papercomputeco/splice/pkg/sse"
)

// DecodeError reports a single event whose payload could not be decoded as
// the wire protocol. It carries the raw SSE event so the caller can log or
// skip it; the stream itself stays decodable and later events are
// unaffected.
type DecodeError struct {
	Event sse.Event
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Event.Type != "" {
		return fmt.Sprintf("decode %s event: %v", e.Event.Type, e.Err)
	}
	return fmt.Sprintf("decode event: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// APIError is the provider's error object, delivered in-band as an error
// event or as the errored result of a batch request.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`

	// Raw preserves the full payload the error object arrived in.
	Raw json.RawMessage `json:"-"`
}

// Error prefers the provider's message, falling back to the raw payload
// when the message field is missing.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Raw) > 0 {
		return string(e.Raw)
	}
	return "unknown error"
}

// ErrorResponse is the provider's error envelope: the error object itself
// plus the ID of the request that produced it.
type ErrorResponse struct {
	Type      string    `json:"type"`
	Error     *APIError `json:"error"`
	RequestID *string   `json:"request_id,omitempty"`
}
