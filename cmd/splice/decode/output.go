package decodecmder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/splice/pkg/cliui"
	"github.com/papercomputeco/splice/pkg/wire"
)

// previewWidth caps per-event payload previews at one comfortable line.
const previewWidth = 60

// eventLine renders one decoded event as a single pretty line: a colored
// type tag, then the payload that matters for that type.
func eventLine(ev wire.Event) string {
	switch e := ev.(type) {
	case wire.MessageStart:
		return fmt.Sprintf("%s %s %s",
			tag(cliui.MessageTagStyle, wire.TypeMessageStart),
			cliui.ValueStyle.Render(e.Message.ID),
			cliui.DimStyle.Render(e.Message.Model))
	case wire.MessageDelta:
		parts := []string{fmt.Sprintf("output_tokens=%d", e.Usage.OutputTokens)}
		if e.Delta.StopReason != "" {
			parts = append([]string{"stop_reason=" + e.Delta.StopReason}, parts...)
		}
		return fmt.Sprintf("%s %s",
			tag(cliui.MessageTagStyle, wire.TypeMessageDelta),
			cliui.DimStyle.Render(strings.Join(parts, " ")))
	case wire.MessageStop:
		return tag(cliui.MessageTagStyle, wire.TypeMessageStop)
	case wire.ContentBlockStart:
		blockType, _ := e.ContentBlock["type"].(string)
		return fmt.Sprintf("%s #%d %s",
			tag(cliui.BlockTagStyle, wire.TypeContentBlockStart),
			e.Index,
			cliui.DimStyle.Render(blockType))
	case wire.ContentBlockDelta:
		return fmt.Sprintf("%s #%d %s",
			tag(cliui.BlockTagStyle, wire.TypeContentBlockDelta),
			e.Index,
			cliui.ValueStyle.Render(cliui.Preview(deltaPayload(e.Delta), previewWidth)))
	case wire.ContentBlockStop:
		return fmt.Sprintf("%s #%d",
			tag(cliui.BlockTagStyle, wire.TypeContentBlockStop),
			e.Index)
	case wire.Ping:
		return tag(cliui.PingTagStyle, wire.TypePing)
	case wire.Unknown:
		return fmt.Sprintf("%s %s",
			tag(cliui.WarnStyle, e.Type),
			cliui.DimStyle.Render(cliui.Preview(string(e.Raw), previewWidth)))
	default:
		return cliui.DimStyle.Render(fmt.Sprintf("%T", ev))
	}
}

// tag pads event names to the widest one so payloads line up in a column.
func tag(style lipgloss.Style, name string) string {
	return style.Render(fmt.Sprintf("%-19s", name))
}

// deltaPayload returns the delta's content for preview, whichever field the
// delta type fills.
func deltaPayload(d wire.BlockDelta) string {
	switch d.Type {
	case wire.DeltaText:
		return d.Text
	case wire.DeltaThinking:
		return d.Thinking
	case wire.DeltaSignature:
		return d.Signature
	case wire.DeltaInputJSON:
		return d.PartialJSON
	default:
		return d.Type
	}
}

// messageText concatenates the text blocks of an accumulated message.
func messageText(m *wire.Message) string {
	if m == nil {
		return ""
	}

	var b strings.Builder
	for _, block := range m.Content {
		if t, _ := block["type"].(string); t != "text" {
			continue
		}
		if text, ok := block["text"].(string); ok {
			b.WriteString(text)
		}
	}
	return b.String()
}

// batchLine renders one batch result as a single line: outcome mark, the
// caller's custom id, then a text preview or the error.
func batchLine(rec wire.BatchResponse) string {
	switch rec.Result.Type {
	case wire.BatchSucceeded:
		return fmt.Sprintf("  %s %s  %s",
			cliui.SuccessMark,
			cliui.NameStyle.Render(rec.CustomID),
			cliui.ValueStyle.Render(cliui.Preview(messageText(rec.Result.Message), previewWidth)))
	case wire.BatchErrored:
		reason := "unknown error"
		if rec.Result.Error != nil && rec.Result.Error.Error != nil {
			reason = rec.Result.Error.Error.Error()
		}
		return fmt.Sprintf("  %s %s  %s",
			cliui.FailMark,
			cliui.NameStyle.Render(rec.CustomID),
			cliui.ErrorStyle.Render(cliui.Preview(reason, previewWidth)))
	default:
		return fmt.Sprintf("  %s %s  %s",
			cliui.DimStyle.Render("●"),
			cliui.NameStyle.Render(rec.CustomID),
			cliui.DimStyle.Render(rec.Result.Type))
	}
}

// usageLine formats a usage map as sorted key=value pairs.
func usageLine(usage map[string]any) string {
	keys := make([]string, 0, len(usage))
	for k := range usage {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, usage[k]))
	}
	return strings.Join(parts, " ")
}
