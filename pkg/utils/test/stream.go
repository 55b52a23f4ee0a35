package testutils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SSEEvent formats one SSE frame with an event name and a data payload.
func SSEEvent(name, data string) string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", name, data)
}

// TextStream builds a complete SSE transcript for a single assistant text
// turn, emitting one content_block_delta per chunk. The transcript is
// protocol-faithful: message_start, block start/deltas/stop, message_delta
// with a stop reason, message_stop.
func TextStream(chunks ...string) string {
	var b strings.Builder

	b.WriteString(SSEEvent("message_start",
		`{"type":"message_start","message":{"id":"msg_fixture","type":"message",`+
			`"role":"assistant","model":"claude-sonnet-4-5","content":[],`+
			`"stop_reason":null,"stop_sequence":null,`+
			`"usage":{"input_tokens":12,"output_tokens":1}}}`))
	b.WriteString(SSEEvent("content_block_start",
		`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`))

	for _, chunk := range chunks {
		text, _ := json.Marshal(chunk)
		b.WriteString(SSEEvent("content_block_delta",
			fmt.Sprintf(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":%s}}`, text)))
	}

	b.WriteString(SSEEvent("content_block_stop",
		`{"type":"content_block_stop","index":0}`))
	b.WriteString(SSEEvent("message_delta",
		`{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":9}}`))
	b.WriteString(SSEEvent("message_stop", `{"type":"message_stop"}`))

	return b.String()
}
