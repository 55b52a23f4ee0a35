package wire

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/splice/pkg/sse"
)

// parseData runs Parse over a bare data payload, the way most provider
// events arrive.
func parseData(data string) (Event, error) {
	return Parse(sse.Event{Type: "", Data: data})
}

var _ = Describe("Parse", func() {
	Context("with message lifecycle events", func() {
		It("parses message_start", func() {
			data := `{"type":"message_start","message":{"id":"msg_013Zva2CMHLNnXjNJJKqJ2EF",` +
				`"type":"message","role":"assistant","model":"claude-sonnet-4-5","content":[],` +
				`"stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":25,"output_tokens":1}}}`

			ev, err := parseData(data)
			Expect(err).NotTo(HaveOccurred())

			start, ok := ev.(MessageStart)
			Expect(ok).To(BeTrue())
			Expect(start.Message.ID).To(Equal("msg_013Zva2CMHLNnXjNJJKqJ2EF"))
			Expect(start.Message.Role).To(Equal("assistant"))
			Expect(start.Message.Model).To(Equal("claude-sonnet-4-5"))
			Expect(start.Message.Content).To(BeEmpty())
			Expect(start.Message.Usage).To(HaveKeyWithValue("input_tokens", float64(25)))
		})

		It("parses message_delta", func() {
			data := `{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},` +
				`"usage":{"output_tokens":42}}`

			ev, err := parseData(data)
			Expect(err).NotTo(HaveOccurred())

			delta, ok := ev.(MessageDelta)
			Expect(ok).To(BeTrue())
			Expect(delta.Delta.StopReason).To(Equal("end_turn"))
			Expect(delta.Delta.StopSequence).To(BeNil())
			Expect(delta.Usage.OutputTokens).To(Equal(int64(42)))
			Expect(delta.Usage.InputTokens).To(BeNil())
		})

		It("parses message_stop", func() {
			ev, err := parseData(`{"type":"message_stop"}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).To(Equal(MessageStop{}))
		})
	})

	Context("with content block events", func() {
		It("parses content_block_start", func() {
			data := `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`

			ev, err := parseData(data)
			Expect(err).NotTo(HaveOccurred())

			start, ok := ev.(ContentBlockStart)
			Expect(ok).To(BeTrue())
			Expect(start.Index).To(Equal(0))
			Expect(start.ContentBlock).To(HaveKeyWithValue("type", "text"))
		})

		It("parses a text delta", func() {
			data := `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`

			ev, err := parseData(data)
			Expect(err).NotTo(HaveOccurred())

			delta, ok := ev.(ContentBlockDelta)
			Expect(ok).To(BeTrue())
			Expect(delta.Delta.Type).To(Equal(DeltaText))
			Expect(delta.Delta.Text).To(Equal("Hello"))
		})

		It("parses a thinking delta", func() {
			data := `{"type":"content_block_delta","index":1,"delta":{"type":"thinking_delta","thinking":"hmm"}}`

			ev, err := parseData(data)
			Expect(err).NotTo(HaveOccurred())

			delta := ev.(ContentBlockDelta)
			Expect(delta.Index).To(Equal(1))
			Expect(delta.Delta.Type).To(Equal(DeltaThinking))
			Expect(delta.Delta.Thinking).To(Equal("hmm"))
		})

		It("parses an input JSON delta", func() {
			data := `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"city\":"}}`

			ev, err := parseData(data)
			Expect(err).NotTo(HaveOccurred())

			delta := ev.(ContentBlockDelta)
			Expect(delta.Delta.Type).To(Equal(DeltaInputJSON))
			Expect(delta.Delta.PartialJSON).To(Equal(`{"city":`))
		})

		It("keeps an unrecognized delta type without error", func() {
			data := `{"type":"content_block_delta","index":0,"delta":{"type":"sparkle_delta","sparkle":"✨"}}`

			ev, err := parseData(data)
			Expect(err).NotTo(HaveOccurred())

			delta := ev.(ContentBlockDelta)
			Expect(delta.Delta.Type).To(Equal("sparkle_delta"))
			Expect(delta.Delta.Text).To(BeEmpty())
		})

		It("parses content_block_stop", func() {
			ev, err := parseData(`{"type":"content_block_stop","index":2}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).To(Equal(ContentBlockStop{Index: 2}))
		})
	})

	Context("with protocol housekeeping events", func() {
		It("parses ping", func() {
			ev, err := parseData(`{"type": "ping"}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).To(Equal(Ping{}))
		})

		It("parses an error event into a StreamError", func() {
			data := `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`

			ev, err := parseData(data)
			Expect(err).NotTo(HaveOccurred())

			se, ok := ev.(StreamError)
			Expect(ok).To(BeTrue())
			Expect(se.Err).NotTo(BeNil())
			Expect(se.Err.Type).To(Equal("overloaded_error"))
			Expect(se.Err.Message).To(Equal("Overloaded"))
			Expect(se.Err.Error()).To(Equal("Overloaded"))
		})

		It("falls back to the raw payload when the error object is missing", func() {
			data := `{"type":"error"}`

			ev, err := parseData(data)
			Expect(err).NotTo(HaveOccurred())

			se := ev.(StreamError)
			Expect(se.Err).NotTo(BeNil())
			Expect(se.Err.Error()).To(Equal(data))
		})
	})

	Context("with unknown event types", func() {
		It("returns Unknown with the raw payload preserved", func() {
			data := `{"type":"banana_start","peel":true}`

			ev, err := parseData(data)
			Expect(err).NotTo(HaveOccurred())

			unk, ok := ev.(Unknown)
			Expect(ok).To(BeTrue())
			Expect(unk.Type).To(Equal("banana_start"))
			Expect(string(unk.Raw)).To(Equal(data))
		})

		It("treats a payload without a type field as Unknown", func() {
			ev, err := parseData(`{"hello":"world"}`)
			Expect(err).NotTo(HaveOccurred())

			unk := ev.(Unknown)
			Expect(unk.Type).To(BeEmpty())
		})
	})

	Context("with undecodable payloads", func() {
		It("returns a DecodeError carrying the raw event", func() {
			raw := sse.Event{Type: "content_block_delta", Data: `{"type":"content_block_delta", oops`}

			ev, err := Parse(raw)
			Expect(ev).To(BeNil())

			var decErr *DecodeError
			Expect(errors.As(err, &decErr)).To(BeTrue())
			Expect(decErr.Event).To(Equal(raw))
			Expect(decErr.Error()).To(ContainSubstring("content_block_delta"))
		})

		It("returns a DecodeError for empty data", func() {
			_, err := Parse(sse.Event{Data: ""})

			var decErr *DecodeError
			Expect(errors.As(err, &decErr)).To(BeTrue())
		})

		It("does not poison later parses", func() {
			_, err := parseData(`not json at all`)
			Expect(err).To(HaveOccurred())

			ev, err := parseData(`{"type":"ping"}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).To(Equal(Ping{}))
		})
	})

	Context("with a registered custom type", func() {
		It("dispatches through the added entry", func() {
			Register("lab_event", func(data []byte) (Event, error) {
				return Unknown{Type: "lab_event", Raw: data}, nil
			})
			defer delete(decoders, "lab_event")

			ev, err := parseData(`{"type":"lab_event"}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.(Unknown).Type).To(Equal("lab_event"))
		})
	})
})
