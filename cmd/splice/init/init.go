// Package initcmder provides the init command for initializing a local .splice
// directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/splice/pkg/config"
)

const (
	dirName = ".splice"
)

const initLongDesc string = `Initialize a new .splice/ directory in the current working directory.

Creates a local .splice/ directory that takes precedence over the default
~/.splice/ directory for configuration, and seeds it with a config.toml.

This is useful for keeping separate splice settings per capture workspace
or per project.

A preset can seed the config: a named preset ships with the CLI, or a URL
fetches a shared config.toml from somewhere else. Re-running init with a
preset overwrites the existing config.toml; re-running without one leaves
it alone.

Examples:
  splice init
  splice init --preset kafka
  splice init --preset https://configs.internal/splice/config.toml`

const initShortDesc string = "Initialize a local .splice/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Seed config.toml from a named preset (plain, kafka) or a URL")

	return cmd
}

func runInit(preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	exists := err == nil && info.IsDir()

	if !exists {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .splice directory: %w", err)
		}
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, statErr := os.Stat(cfger.GetTarget())
	haveConfig := statErr == nil

	// An explicit preset always wins; otherwise only seed a missing config.
	if preset != "" || !haveConfig {
		cfg, err := resolvePreset(preset)
		if err != nil {
			return err
		}
		if err := cfger.SaveConfig(cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	if exists {
		fmt.Printf("Already initialized: %s\n", dir)
		return nil
	}

	fmt.Printf("Initialized .splice directory: %s\n", dir)
	return nil
}

// resolvePreset builds the config to seed: the defaults when no preset is
// given, a named preset, or a config.toml fetched from a URL.
func resolvePreset(preset string) (*config.Config, error) {
	switch {
	case preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(preset, "http://"), strings.HasPrefix(preset, "https://"):
		return fetchRemoteConfig(preset)
	default:
		return config.PresetConfig(preset)
	}
}

func fetchRemoteConfig(url string) (*config.Config, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
