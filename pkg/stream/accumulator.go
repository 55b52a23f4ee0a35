// Package stream assembles a decoded wire event sequence back into the
// message it describes. An Accumulator folds events into a running
// snapshot; Stream combines the SSE framing, wire parsing, and
// accumulation stages into one pull-based sequence over an io.Reader.
package stream

import (
	"fmt"

	"github.com/papercomputeco/splice/pkg/wire"
)

// partialJSONKey is where accumulated input_json_delta fragments are kept
// on a tool use block until the input is complete.
const partialJSONKey = "_partial_json"

// ProtocolError reports an event sequence that violates the streaming
// protocol, such as a delta arriving before message_start. The event that
// triggered it is dropped; the stream itself remains decodable.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return e.Reason
}

// Accumulator folds wire events into a running message snapshot. The
// snapshot starts with message_start, grows block by block, and is frozen
// into the final message by message_stop.
//
// An Accumulator is not safe for concurrent use.
type Accumulator struct {
	snapshot *wire.Message
	final    *wire.Message
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Snapshot returns the message as accumulated so far, or nil before
// message_start. The returned message is live: applying further events
// mutates it.
func (a *Accumulator) Snapshot() *wire.Message {
	return a.snapshot
}

// FinalMessage returns the completed message, or nil until message_stop
// has been applied.
func (a *Accumulator) FinalMessage() *wire.Message {
	return a.final
}

// Apply folds one event into the snapshot. Events that carry no message
// state — pings, errors, unknown types — are no-ops. A ProtocolError means
// the event could not be applied; the snapshot is left as it was.
func (a *Accumulator) Apply(ev wire.Event) error {
	switch ev := ev.(type) {
	case wire.MessageStart:
		// Clone so mutating the snapshot never reaches back into the event.
		msg := cloneMessage(ev.Message)
		a.snapshot = &msg
		a.final = nil

	case wire.ContentBlockStart:
		snap, err := a.mutableSnapshot()
		if err != nil {
			return err
		}
		switch {
		case ev.Index < 0 || ev.Index > len(snap.Content):
			return &ProtocolError{Reason: fmt.Sprintf("content_block_start index out of bounds: %d", ev.Index)}
		case ev.Index == len(snap.Content):
			snap.Content = append(snap.Content, cloneMap(ev.ContentBlock))
		default:
			snap.Content[ev.Index] = cloneMap(ev.ContentBlock)
		}

	case wire.ContentBlockDelta:
		snap, err := a.mutableSnapshot()
		if err != nil {
			return err
		}
		if ev.Index < 0 || ev.Index >= len(snap.Content) {
			return &ProtocolError{Reason: fmt.Sprintf("content block index out of bounds: %d", ev.Index)}
		}
		return applyBlockDelta(snap.Content[ev.Index], ev.Delta)

	case wire.ContentBlockStop:
		// The block is already complete in the snapshot.

	case wire.MessageDelta:
		snap, err := a.mutableSnapshot()
		if err != nil {
			return err
		}
		if ev.Delta.StopReason != "" {
			snap.StopReason = ev.Delta.StopReason
		}
		if ev.Delta.StopSequence != nil {
			s := *ev.Delta.StopSequence
			snap.StopSequence = &s
		}
		// Container stays untyped in Extra; the type surface here is
		// deliberately small.
		if snap.Extra == nil {
			snap.Extra = map[string]any{}
		}
		snap.Extra["container"] = ev.Delta.Container
		mergeUsage(snap, ev.Usage)

	case wire.MessageStop:
		if a.snapshot != nil {
			msg := cloneMessage(*a.snapshot)
			a.final = &msg
		}

	case wire.Ping, wire.StreamError, wire.Unknown:
		// No message state to fold in.
	}

	return nil
}

func (a *Accumulator) mutableSnapshot() (*wire.Message, error) {
	if a.snapshot == nil {
		return nil, &ProtocolError{Reason: "expected message_start before other events"}
	}
	return a.snapshot, nil
}

// applyBlockDelta extends one content block with a typed delta. Unknown
// delta types change nothing.
func applyBlockDelta(block map[string]any, delta wire.BlockDelta) error {
	switch delta.Type {
	case wire.DeltaText:
		return appendStringField(block, "text", delta.Text)
	case wire.DeltaThinking:
		return appendStringField(block, "thinking", delta.Thinking)
	case wire.DeltaSignature:
		return appendStringField(block, "signature", delta.Signature)
	case wire.DeltaInputJSON:
		return appendStringField(block, partialJSONKey, delta.PartialJSON)
	case wire.DeltaCitations:
		return appendCitation(block, delta.Citation)
	default:
		return nil
	}
}

// appendStringField appends delta to the named string field, creating it
// if absent.
func appendStringField(block map[string]any, key, delta string) error {
	existing, ok := block[key]
	if !ok {
		block[key] = delta
		return nil
	}

	s, ok := existing.(string)
	if !ok {
		return &ProtocolError{Reason: fmt.Sprintf("expected %q to be a string", key)}
	}
	block[key] = s + delta
	return nil
}

// appendCitation pushes a citation onto the block's citations array,
// creating the array if it is absent or null.
func appendCitation(block map[string]any, citation any) error {
	existing, ok := block["citations"]
	if !ok || existing == nil {
		block["citations"] = []any{citation}
		return nil
	}

	arr, ok := existing.([]any)
	if !ok {
		return &ProtocolError{Reason: `expected "citations" to be null or array`}
	}
	block["citations"] = append(arr, citation)
	return nil
}

// mergeUsage folds delta usage totals into the snapshot's usage map.
// OutputTokens is cumulative and always present; the other fields only
// overwrite when the event carried them.
func mergeUsage(snap *wire.Message, usage wire.DeltaUsage) {
	if snap.Usage == nil {
		snap.Usage = map[string]any{}
	}

	snap.Usage["output_tokens"] = usage.OutputTokens
	if usage.InputTokens != nil {
		snap.Usage["input_tokens"] = *usage.InputTokens
	}
	if usage.CacheCreationInputTokens != nil {
		snap.Usage["cache_creation_input_tokens"] = *usage.CacheCreationInputTokens
	}
	if usage.CacheReadInputTokens != nil {
		snap.Usage["cache_read_input_tokens"] = *usage.CacheReadInputTokens
	}
	if usage.ServerToolUse != nil {
		snap.Usage["server_tool_use"] = usage.ServerToolUse
	}
}
