package eventstream

import "errors"

// ErrNilDecodeEvent indicates a nil decode event payload was provided to a publisher.
var ErrNilDecodeEvent = errors.New("nil decode event")
