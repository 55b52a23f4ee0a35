package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/splice/pkg/eventstream"
)

// RecordingPublisher is a test publisher that records every published event.
type RecordingPublisher struct {
	mu sync.Mutex

	// Published accumulates all events passed to PublishDecode.
	Published []*eventstream.StreamDecodedEvent

	// FailWith causes PublishDecode to return this error.
	FailWith error

	// Closed reports whether Close was called.
	Closed bool
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (r *RecordingPublisher) PublishDecode(_ context.Context, event *eventstream.StreamDecodedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event == nil {
		return eventstream.ErrNilDecodeEvent
	}
	if r.FailWith != nil {
		return r.FailWith
	}

	r.Published = append(r.Published, event)
	return nil
}

func (r *RecordingPublisher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Closed = true
	return nil
}

// Events returns a snapshot of the published events.
func (r *RecordingPublisher) Events() []*eventstream.StreamDecodedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*eventstream.StreamDecodedEvent, len(r.Published))
	copy(out, r.Published)
	return out
}
