package eventstream

import "context"

// Publisher publishes decode events to an event stream backend.
type Publisher interface {
	PublishDecode(ctx context.Context, event *StreamDecodedEvent) error
	Close() error
}
