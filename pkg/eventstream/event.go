package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeStreamDecoded is emitted after a capture stream is fully decoded.
	EventTypeStreamDecoded = "splice.stream.decoded"
)

// StreamDecodedEvent is a transport-neutral summary of one decoded stream.
type StreamDecodedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Decode        DecodeMeta  `json:"decode"`
	Message       MessageMeta `json:"message"`
}

// EventSource identifies the capture the stream was decoded from.
type EventSource struct {
	Capture string `json:"capture,omitempty"`
	Stdin   bool   `json:"stdin,omitempty"`
}

// DecodeMeta captures decode lifecycle counters for the event.
type DecodeMeta struct {
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	DurationMs   int64     `json:"duration_ms"`
	Events       int64     `json:"events"`
	TextDeltas   int64     `json:"text_deltas"`
	DecodeErrors int64     `json:"decode_errors"`
}

// MessageMeta summarizes the accumulated message, when one was assembled.
type MessageMeta struct {
	ID         string         `json:"id,omitempty"`
	Model      string         `json:"model,omitempty"`
	Role       string         `json:"role,omitempty"`
	StopReason string         `json:"stop_reason,omitempty"`
	Blocks     int            `json:"blocks"`
	Usage      map[string]any `json:"usage,omitempty"`
}

// NewStreamDecodedEvent returns a StreamDecodedEvent with the schema fields,
// a fresh event id, and the emit timestamp populated.
func NewStreamDecodedEvent(source EventSource, decode DecodeMeta, message MessageMeta) *StreamDecodedEvent {
	return &StreamDecodedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeStreamDecoded,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Decode:        decode,
		Message:       message,
	}
}
