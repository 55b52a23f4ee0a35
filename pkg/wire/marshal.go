package wire

import "encoding/json"

// MarshalEvent encodes a typed event back to its wire JSON, restoring the
// "type" discriminator Parse consumed. Unknown events return their raw
// payload unchanged, so a parse-then-marshal round trip never loses
// provider data this package does not model.
func MarshalEvent(ev Event) ([]byte, error) {
	if u, ok := ev.(Unknown); ok {
		return u.Raw, nil
	}

	var typ string
	switch ev.(type) {
	case MessageStart:
		typ = TypeMessageStart
	case MessageDelta:
		typ = TypeMessageDelta
	case MessageStop:
		typ = TypeMessageStop
	case ContentBlockStart:
		typ = TypeContentBlockStart
	case ContentBlockDelta:
		typ = TypeContentBlockDelta
	case ContentBlockStop:
		typ = TypeContentBlockStop
	case Ping:
		typ = TypePing
	case StreamError:
		typ = TypeError
	}

	base, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}

	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	merged["type"] = typ

	return json.Marshal(merged)
}
