package replay

import "time"

// Config is the replay server configuration
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8787")
	ListenAddr string

	// Dir is the directory scanned for capture files
	Dir string

	// Delay is the pause inserted after each replayed event. Zero replays
	// the capture as fast as the client reads it.
	Delay time.Duration
}
