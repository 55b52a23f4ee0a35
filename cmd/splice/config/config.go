// Package configcmder provides the config command for managing persistent
// splice configuration stored in the .splice/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent splice configuration.

Configuration is stored as config.toml in the .splice/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  decode.format,
  serve.listen, serve.dir, serve.delay_ms,
  eventstream.enabled, eventstream.brokers, eventstream.topic,
  log.file

Use subcommands to get, set, or list configuration values:
  splice config set <key> <value>    Set a configuration value
  splice config get <key>            Get a configuration value
  splice config list                 List all configuration values

Examples:
  splice config set decode.format json
  splice config set serve.delay_ms 25
  splice config get serve.listen
  splice config list`

const configShortDesc string = "Manage persistent splice configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
