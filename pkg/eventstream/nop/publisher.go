package nop

import (
	"context"

	"github.com/papercomputeco/splice/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishDecode validates input and otherwise does nothing.
func (p *Publisher) PublishDecode(_ context.Context, event *eventstream.StreamDecodedEvent) error {
	if event == nil {
		return eventstream.ErrNilDecodeEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
