package wire

// Batch result discriminators, from the "type" field of a BatchResult.
const (
	BatchSucceeded = "succeeded"
	BatchErrored   = "errored"
	BatchCanceled  = "canceled"
	BatchExpired   = "expired"
)

// BatchResponse is one record of a message batch results file: the
// caller's custom_id and the outcome of that request. Results files are
// JSONL, one response per line, decoded with pkg/jsonl.
type BatchResponse struct {
	CustomID string      `json:"custom_id"`
	Result   BatchResult `json:"result"`
}

// BatchResult is the outcome of a single batch request. Message is set
// for succeeded results and Error for errored ones; canceled and expired
// results carry only their type.
type BatchResult struct {
	Type    string         `json:"type"`
	Message *Message       `json:"message,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}
