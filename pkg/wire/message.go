package wire

import "encoding/json"

// Message is the provider's message shape. Content blocks are kept
// schemaless (maps rather than per-block structs) so every block type the
// provider ships — text, thinking, tool use, and whatever comes next —
// survives a decode/encode round trip untouched.
//
// Top-level keys this struct does not model are preserved in Extra and
// flattened back to the top level when the message is marshaled.
type Message struct {
	ID           string           `json:"id"`
	Type         string           `json:"type"`
	Role         string           `json:"role"`
	Model        string           `json:"model"`
	Content      []map[string]any `json:"content"`
	StopReason   string           `json:"stop_reason,omitempty"`
	StopSequence *string          `json:"stop_sequence,omitempty"`
	Usage        map[string]any   `json:"usage,omitempty"`

	// Extra holds unrecognized top-level keys.
	Extra map[string]any `json:"-"`
}

// messageKeys are the top-level keys modeled by Message's own fields.
// Anything else lands in Extra.
var messageKeys = []string{
	"id", "type", "role", "model", "content",
	"stop_reason", "stop_sequence", "usage",
}

// UnmarshalJSON decodes the modeled fields and diverts every other
// top-level key into Extra.
func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range messageKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		a.Extra = raw
	}

	*m = Message(a)
	return nil
}

// MarshalJSON flattens Extra back into the top-level object. Modeled
// fields win over Extra keys of the same name.
func (m Message) MarshalJSON() ([]byte, error) {
	type alias Message
	base, err := json.Marshal(alias(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return base, nil
	}

	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range m.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
