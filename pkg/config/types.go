package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent splice configuration stored as config.toml
// in the .splice/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Decode      DecodeConfig      `toml:"decode"`
	Serve       ServeConfig       `toml:"serve"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Log         LogConfig         `toml:"log"`
}

// DecodeConfig holds decode command settings.
type DecodeConfig struct {
	// Format selects the event output format: "pretty" or "json".
	Format string `toml:"format,omitempty"`
}

// ServeConfig holds fixture server settings.
type ServeConfig struct {
	Listen string `toml:"listen,omitempty"`

	// Dir is the directory the server looks in for capture files.
	Dir string `toml:"dir,omitempty"`

	// DelayMS is the per-event replay delay in milliseconds. Zero replays
	// as fast as the client reads.
	DelayMS uint `toml:"delay_ms,omitempty"`
}

// EventStreamConfig holds decode telemetry publisher settings.
type EventStreamConfig struct {
	Enabled bool   `toml:"enabled,omitempty"`
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// LogConfig holds log output settings. When File is set, commands write a
// JSON copy of their logs there in addition to the terminal.
type LogConfig struct {
	File string `toml:"file,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"decode.format": {
		get: func(c *Config) string { return c.Decode.Format },
		set: func(c *Config, v string) error { c.Decode.Format = v; return nil },
	},
	"serve.listen": {
		get: func(c *Config) string { return c.Serve.Listen },
		set: func(c *Config, v string) error { c.Serve.Listen = v; return nil },
	},
	"serve.dir": {
		get: func(c *Config) string { return c.Serve.Dir },
		set: func(c *Config, v string) error { c.Serve.Dir = v; return nil },
	},
	"serve.delay_ms": {
		get: func(c *Config) string {
			if c.Serve.DelayMS == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Serve.DelayMS), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for serve.delay_ms: %w", err)
			}
			c.Serve.DelayMS = uint(n)
			return nil
		},
	},
	"eventstream.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.EventStream.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for eventstream.enabled: %w", err)
			}
			c.EventStream.Enabled = b
			return nil
		},
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return c.EventStream.Brokers },
		set: func(c *Config, v string) error { c.EventStream.Brokers = v; return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"log.file": {
		get: func(c *Config) string { return c.Log.File },
		set: func(c *Config, v string) error { c.Log.File = v; return nil },
	},
}
