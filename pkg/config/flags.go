package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --format
// on both "splice decode" and "splice follow").
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "serve.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagFormat      = "format"
	FlagServeListen = "serve-listen"
	FlagServeDir    = "serve-dir"
	FlagServeDelay  = "serve-delay"
	FlagBrokers     = "brokers"
	FlagTopic       = "topic"
	FlagLogFile     = "log-file"
)

// DefaultFlagSet returns the canonical flag definitions for splice commands.
// Commands register the subset they carry by registry key.
func DefaultFlagSet() FlagSet {
	return FlagSet{
		FlagFormat: {
			Name:        "format",
			Shorthand:   "f",
			ViperKey:    "decode.format",
			Description: "Output format: pretty or json",
		},
		FlagServeListen: {
			Name:        "listen",
			Shorthand:   "l",
			ViperKey:    "serve.listen",
			Description: "Address for the replay server to listen on",
		},
		FlagServeDir: {
			Name:        "dir",
			ViperKey:    "serve.dir",
			Description: "Directory scanned for capture files",
		},
		FlagServeDelay: {
			Name:        "delay",
			ViperKey:    "serve.delay_ms",
			Description: "Per-event replay delay in milliseconds",
		},
		FlagBrokers: {
			Name:        "brokers",
			ViperKey:    "eventstream.brokers",
			Description: "Comma-separated Kafka broker addresses for decode telemetry",
		},
		FlagTopic: {
			Name:        "topic",
			ViperKey:    "eventstream.topic",
			Description: "Kafka topic for decode telemetry",
		},
		FlagLogFile: {
			Name:        "log-file",
			ViperKey:    "log.file",
			Description: "Write a JSON copy of logs to this file",
		},
	}
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
