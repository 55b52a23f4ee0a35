// Package wire decodes the typed event stream an LLM provider emits over
// SSE. The first stage (pkg/sse) frames raw bytes into events; this package
// parses each event's data payload — JSON tagged with a "type" field — into
// a concrete Go type. Event types this package has never heard of decode to
// Unknown rather than failing, so new provider events never break a stream.
package wire

import "encoding/json"

// Wire event type discriminators, as they appear in the "type" field of
// each event's JSON payload.
const (
	TypeMessageStart      = "message_start"
	TypeMessageDelta      = "message_delta"
	TypeMessageStop       = "message_stop"
	TypeContentBlockStart = "content_block_start"
	TypeContentBlockDelta = "content_block_delta"
	TypeContentBlockStop  = "content_block_stop"
	TypePing              = "ping"
	TypeError             = "error"
)

// Content block delta discriminators, from the "type" field of a
// content_block_delta event's inner delta object.
const (
	DeltaText      = "text_delta"
	DeltaThinking  = "thinking_delta"
	DeltaSignature = "signature_delta"
	DeltaInputJSON = "input_json_delta"
	DeltaCitations = "citations_delta"
)

// Event is the closed set of decoded wire events. The concrete types are
// the structs below; the unexported marker keeps the set sealed so a switch
// over Event can be read as exhaustive.
type Event interface {
	isWireEvent()
}

// MessageStart opens a stream and carries the initial message snapshot,
// usually with empty content and the input-side usage totals.
type MessageStart struct {
	Message Message `json:"message"`
}

// MessageDelta carries top-level changes to the in-flight message along
// with updated usage totals.
type MessageDelta struct {
	Delta DeltaBody  `json:"delta"`
	Usage DeltaUsage `json:"usage"`
}

// MessageStop closes the stream; the message is complete.
type MessageStop struct{}

// ContentBlockStart opens the content block at Index.
type ContentBlockStart struct {
	Index        int            `json:"index"`
	ContentBlock map[string]any `json:"content_block"`
}

// ContentBlockDelta extends the content block at Index.
type ContentBlockDelta struct {
	Index int        `json:"index"`
	Delta BlockDelta `json:"delta"`
}

// ContentBlockStop closes the content block at Index.
type ContentBlockStop struct {
	Index int `json:"index"`
}

// Ping is a keep-alive. It carries nothing and changes nothing.
type Ping struct{}

// StreamError is an in-band error event from the provider.
type StreamError struct {
	Err *APIError `json:"error"`
}

// Unknown preserves an event whose type this package does not recognize.
// Raw holds the full undecoded payload.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

// DeltaBody carries the message fields a message_delta may change.
type DeltaBody struct {
	StopReason   string  `json:"stop_reason,omitempty"`
	StopSequence *string `json:"stop_sequence,omitempty"`
	Container    any     `json:"container,omitempty"`
}

// DeltaUsage carries usage totals as reported by a message_delta event.
// Pointer fields are absent from most events; OutputTokens is always
// present and cumulative.
type DeltaUsage struct {
	CacheCreationInputTokens *int64 `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     *int64 `json:"cache_read_input_tokens,omitempty"`
	InputTokens              *int64 `json:"input_tokens,omitempty"`
	OutputTokens             int64  `json:"output_tokens"`
	ServerToolUse            any    `json:"server_tool_use,omitempty"`
}

// BlockDelta is the inner delta of a content_block_delta event,
// discriminated by Type. Exactly one of the value fields is populated for
// the known delta types; unknown types leave them all zero.
type BlockDelta struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	Thinking    string `json:"thinking,omitempty"`
	Signature   string `json:"signature,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	Citation    any    `json:"citation,omitempty"`
}

func (MessageStart) isWireEvent()      {}
func (MessageDelta) isWireEvent()      {}
func (MessageStop) isWireEvent()       {}
func (ContentBlockStart) isWireEvent() {}
func (ContentBlockDelta) isWireEvent() {}
func (ContentBlockStop) isWireEvent()  {}
func (Ping) isWireEvent()              {}
func (StreamError) isWireEvent()       {}
func (Unknown) isWireEvent()           {}

var (
	_ Event = MessageStart{}
	_ Event = MessageDelta{}
	_ Event = MessageStop{}
	_ Event = ContentBlockStart{}
	_ Event = ContentBlockDelta{}
	_ Event = ContentBlockStop{}
	_ Event = Ping{}
	_ Event = StreamError{}
	_ Event = Unknown{}
)
