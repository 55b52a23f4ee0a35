package config

// Recognized decode.format values.
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

const (
	defaultDecodeFormat = FormatPretty

	defaultServeListen = ":8787"
	defaultServeDir    = "."

	defaultEventStreamBrokers = "localhost:9092"
	defaultEventStreamTopic   = "splice.decodes"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Decode: DecodeConfig{
			Format: defaultDecodeFormat,
		},
		Serve: ServeConfig{
			Listen: defaultServeListen,
			Dir:    defaultServeDir,
		},
		EventStream: EventStreamConfig{
			Enabled: false,
			Brokers: defaultEventStreamBrokers,
			Topic:   defaultEventStreamTopic,
		},
	}
}
