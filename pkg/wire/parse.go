package wire

import (
	"encoding/json"

	"github.com/papercomputeco/splice/pkg/sse"
)

// DecodeFunc decodes the raw JSON payload of one wire event type.
type DecodeFunc func(data []byte) (Event, error)

// decoders maps the "type" discriminator to its decoder. Types absent from
// the table decode to Unknown.
var decoders = map[string]DecodeFunc{
	TypeMessageStart:      decodeInto[MessageStart],
	TypeMessageDelta:      decodeInto[MessageDelta],
	TypeMessageStop:       decodeInto[MessageStop],
	TypeContentBlockStart: decodeInto[ContentBlockStart],
	TypeContentBlockDelta: decodeInto[ContentBlockDelta],
	TypeContentBlockStop:  decodeInto[ContentBlockStop],
	TypePing:              decodeInto[Ping],
	TypeError:             decodeStreamError,
}

// Register installs a decoder for a wire event type, replacing any existing
// entry. It exists for forward compatibility with provider event types this
// package does not model. Register is not safe to call concurrently with
// Parse.
func Register(eventType string, decode DecodeFunc) {
	decoders[eventType] = decode
}

// Parse decodes one framed SSE event into its typed wire event. The JSON
// payload's "type" field — not the SSE event name — selects the decoder,
// and unrecognized types return Unknown rather than an error.
//
// A payload that cannot be decoded yields a *DecodeError carrying the raw
// event. The error covers that event alone: the caller can skip it and
// keep parsing the rest of the stream.
func Parse(ev sse.Event) (Event, error) {
	data := []byte(ev.Data)

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, &DecodeError{Event: ev, Err: err}
	}

	decode, ok := decoders[head.Type]
	if !ok {
		return Unknown{Type: head.Type, Raw: json.RawMessage(ev.Data)}, nil
	}

	wev, err := decode(data)
	if err != nil {
		return nil, &DecodeError{Event: ev, Err: err}
	}
	return wev, nil
}

// decodeInto decodes data into a concrete event struct.
func decodeInto[T Event](data []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// decodeStreamError decodes an error event, keeping the raw payload on the
// APIError so nothing the provider said is lost.
func decodeStreamError(data []byte) (Event, error) {
	var ev StreamError
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.Err == nil {
		ev.Err = &APIError{}
	}
	ev.Err.Raw = json.RawMessage(data)
	return ev, nil
}
