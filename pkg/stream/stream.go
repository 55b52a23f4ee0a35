package stream

import (
	"errors"
	"io"

	"github.com/papercomputeco/splice/pkg/sse"
	"github.com/papercomputeco/splice/pkg/wire"
)

// doneSentinel ends OpenAI-style streams that close with a literal
// "[DONE]" data frame instead of a typed stop event.
const doneSentinel = "[DONE]"

// Stream is a pull-based sequence of typed wire events read from one SSE
// byte stream, accumulating the message as it goes. Everything runs
// synchronously inside the caller's Next loop; there are no goroutines and
// no internal buffering beyond the decoder's partial frame.
type Stream struct {
	src  io.Reader
	r    *sse.Reader
	acc  *Accumulator
	done bool
}

// New returns a Stream decoding from src. If src is an io.Closer — an
// HTTP response body, a capture file — Close closes it.
func New(src io.Reader) *Stream {
	return &Stream{
		src: src,
		r:   sse.NewReader(src),
		acc: NewAccumulator(),
	}
}

// Next returns the next typed event, folding it into the running message
// snapshot first. It returns io.EOF once the stream ends.
//
// Two error cases do not end the stream: a *wire.DecodeError (one event's
// payload was undecodable) and a *ProtocolError (one event arrived out of
// order). Both refer to a single dropped event, and the following Next
// call carries on with the rest of the stream. An in-band provider error
// event returns its *wire.APIError and ends the stream.
func (s *Stream) Next() (wire.Event, error) {
	if s.done {
		return nil, io.EOF
	}

	raw, err := s.r.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.done = true
		}
		return nil, err
	}

	if raw.Data == doneSentinel {
		s.done = true
		return nil, io.EOF
	}

	ev, err := wire.Parse(*raw)
	if err != nil {
		return nil, err
	}

	if se, ok := ev.(wire.StreamError); ok {
		s.done = true
		return nil, se.Err
	}

	if err := s.acc.Apply(ev); err != nil {
		return nil, err
	}

	return ev, nil
}

// Snapshot returns the message as accumulated so far, or nil before
// message_start.
func (s *Stream) Snapshot() *wire.Message {
	return s.acc.Snapshot()
}

// FinalMessage returns the completed message, or nil until a message_stop
// event has been consumed.
func (s *Stream) FinalMessage() *wire.Message {
	return s.acc.FinalMessage()
}

// Truncated reports whether the source ended mid-event, leaving an
// unterminated frame that was discarded.
func (s *Stream) Truncated() bool {
	return s.r.Truncated()
}

// Close stops the stream and closes the underlying source when it is a
// Closer.
func (s *Stream) Close() error {
	s.done = true
	if c, ok := s.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
