package stream

import "github.com/papercomputeco/splice/pkg/wire"

// cloneMessage deep-copies a message so the accumulator can mutate its
// snapshot without reaching into values the caller still holds.
func cloneMessage(m wire.Message) wire.Message {
	out := m

	if m.Content != nil {
		out.Content = make([]map[string]any, len(m.Content))
		for i, block := range m.Content {
			out.Content[i] = cloneMap(block)
		}
	}
	out.Usage = cloneMap(m.Usage)
	out.Extra = cloneMap(m.Extra)
	if m.StopSequence != nil {
		s := *m.StopSequence
		out.StopSequence = &s
	}

	return out
}

// cloneMap deep-copies a decoded JSON object.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies a decoded JSON value: objects and arrays are
// copied recursively, scalars are returned as is.
func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
