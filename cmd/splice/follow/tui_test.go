package followcmder

import (
	"errors"

	bubbletea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/splice/pkg/wire"
)

var errTest = errors.New("tail broke")

func newTestModel() followModel {
	return newFollowModel("capture.sse", make(chan bubbletea.Msg))
}

func sizedTestModel() followModel {
	m := newTestModel()
	updated, _ := m.Update(bubbletea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(followModel)
}

var _ = Describe("followModel", func() {
	It("becomes ready on the first window size message", func() {
		m := newTestModel()
		Expect(m.ready).To(BeFalse())

		updated, _ := m.Update(bubbletea.WindowSizeMsg{Width: 80, Height: 24})
		model := updated.(followModel)

		Expect(model.ready).To(BeTrue())
		Expect(model.viewport.Width).To(Equal(80))
		Expect(model.viewport.Height).To(Equal(24 - followChromeLines))
	})

	It("folds a batch of events into counters and text", func() {
		m := sizedTestModel()

		updated, cmd := m.Update(tailEventsMsg{
			events: []wire.Event{
				wire.MessageStart{Message: wire.Message{ID: "msg_123", Model: "claude-sonnet-4-5"}},
				wire.ContentBlockStart{Index: 0, ContentBlock: map[string]any{"type": "text"}},
				wire.ContentBlockDelta{Index: 0, Delta: wire.BlockDelta{Type: wire.DeltaText, Text: "Hello "}},
				wire.ContentBlockDelta{Index: 0, Delta: wire.BlockDelta{Type: wire.DeltaText, Text: "world"}},
			},
			decodeErrors: 1,
		})
		model := updated.(followModel)

		Expect(model.events).To(Equal(int64(4)))
		Expect(model.textDeltas).To(Equal(int64(2)))
		Expect(model.decodeErrors).To(Equal(int64(1)))
		Expect(model.messageID).To(Equal("msg_123"))
		Expect(model.modelName).To(Equal("claude-sonnet-4-5"))
		Expect(model.text).To(Equal("Hello world"))
		Expect(model.done).To(BeFalse())

		// The next batch should already be awaited.
		Expect(cmd).NotTo(BeNil())
	})

	It("marks the stream done on message_stop", func() {
		m := sizedTestModel()

		updated, _ := m.Update(tailEventsMsg{events: []wire.Event{
			wire.MessageDelta{
				Delta: wire.DeltaBody{StopReason: "end_turn"},
				Usage: wire.DeltaUsage{OutputTokens: 9},
			},
			wire.MessageStop{},
		}})
		model := updated.(followModel)

		Expect(model.done).To(BeTrue())
		Expect(model.stopReason).To(Equal("end_turn"))
		Expect(model.outputTokens).To(Equal(int64(9)))
	})

	It("records an in-band stream error", func() {
		m := sizedTestModel()

		updated, _ := m.Update(tailEventsMsg{events: []wire.Event{
			wire.StreamError{Err: &wire.APIError{Type: "overloaded_error", Message: "Overloaded"}},
		}})
		model := updated.(followModel)

		Expect(model.done).To(BeTrue())
		Expect(model.streamErr).NotTo(BeNil())
		Expect(model.streamErr.Message).To(Equal("Overloaded"))
	})

	It("stores a tail error and quits", func() {
		m := sizedTestModel()

		updated, cmd := m.Update(tailErrMsg{err: errTest})
		model := updated.(followModel)

		Expect(model.tailErr).To(MatchError("tail broke"))
		Expect(cmd).NotTo(BeNil())
		Expect(cmd()).To(Equal(bubbletea.QuitMsg{}))
	})

	It("quits on q", func() {
		m := sizedTestModel()

		_, cmd := m.Update(bubbletea.KeyMsg{Type: bubbletea.KeyRunes, Runes: []rune{'q'}})
		Expect(cmd).NotTo(BeNil())
		Expect(cmd()).To(Equal(bubbletea.QuitMsg{}))
	})

	It("keeps waiting after the tail channel closes", func() {
		m := sizedTestModel()

		updated, cmd := m.Update(tailClosedMsg{})
		Expect(cmd).To(BeNil())
		Expect(updated.(followModel).done).To(BeFalse())
	})

	It("renders the header, counters, and accumulated text", func() {
		m := sizedTestModel()
		updated, _ := m.Update(tailEventsMsg{events: []wire.Event{
			wire.MessageStart{Message: wire.Message{ID: "msg_123", Model: "claude-sonnet-4-5"}},
			wire.ContentBlockDelta{Index: 0, Delta: wire.BlockDelta{Type: wire.DeltaText, Text: "Hello"}},
		}})
		model := updated.(followModel)

		view := model.View()
		Expect(view).To(ContainSubstring("splice follow"))
		Expect(view).To(ContainSubstring("capture.sse"))
		Expect(view).To(ContainSubstring("following"))
		Expect(view).To(ContainSubstring("events"))
		Expect(view).To(ContainSubstring("msg_123"))
		Expect(view).To(ContainSubstring("Hello"))
	})

	It("renders the stop state once the stream completes", func() {
		m := sizedTestModel()
		updated, _ := m.Update(tailEventsMsg{events: []wire.Event{
			wire.MessageDelta{Delta: wire.DeltaBody{StopReason: "end_turn"}},
			wire.MessageStop{},
		}})
		model := updated.(followModel)

		Expect(model.View()).To(ContainSubstring("stream complete"))
		Expect(model.statusLine()).To(ContainSubstring("end_turn"))
	})

	It("renders a placeholder before the first window size message", func() {
		Expect(newTestModel().View()).To(ContainSubstring("starting"))
	})
})
