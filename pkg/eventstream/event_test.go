package eventstream_test

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/splice/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals StreamDecodedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.StreamDecodedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeStreamDecoded,
			EventID:       "evt_123",
			EmittedAt:     now,
			Source: eventstream.EventSource{
				Capture: "session.sse.gz",
			},
			Decode: eventstream.DecodeMeta{
				StartedAt:   now.Add(-2 * time.Second),
				CompletedAt: now,
				DurationMs:  2000,
				Events:      42,
				TextDeltas:  17,
			},
			Message: eventstream.MessageMeta{
				ID:         "msg_013Zva2CMHLNnXjNJJKqJ2EF",
				Model:      "claude-sonnet-4-5",
				Role:       "assistant",
				StopReason: "end_turn",
				Blocks:     1,
				Usage:      map[string]any{"output_tokens": 9},
			},
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("decode"))
		Expect(got).To(HaveKey("message"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeStreamDecoded).To(Equal("splice.stream.decoded"))
	})

	It("provides ErrNilDecodeEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilDecodeEvent).NotTo(BeNil())
		Expect(eventstream.ErrNilDecodeEvent).To(MatchError("nil decode event"))
	})
})

var _ = Describe("NewStreamDecodedEvent", func() {
	It("populates schema fields, a uuid event id, and the emit timestamp", func() {
		event := eventstream.NewStreamDecodedEvent(
			eventstream.EventSource{Stdin: true},
			eventstream.DecodeMeta{Events: 3},
			eventstream.MessageMeta{},
		)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeStreamDecoded))
		_, err := uuid.Parse(event.EventID)
		Expect(err).NotTo(HaveOccurred())
		Expect(event.EmittedAt).To(BeTemporally("~", time.Now(), 5*time.Second))
		Expect(event.Source.Stdin).To(BeTrue())
		Expect(event.Decode.Events).To(Equal(int64(3)))
	})

	It("generates distinct event ids", func() {
		a := eventstream.NewStreamDecodedEvent(eventstream.EventSource{}, eventstream.DecodeMeta{}, eventstream.MessageMeta{})
		b := eventstream.NewStreamDecodedEvent(eventstream.EventSource{}, eventstream.DecodeMeta{}, eventstream.MessageMeta{})
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})
})
