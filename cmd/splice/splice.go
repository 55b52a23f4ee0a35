// Package splicecmder
package splicecmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/splice/cmd/splice/config"
	decodecmder "github.com/papercomputeco/splice/cmd/splice/decode"
	followcmder "github.com/papercomputeco/splice/cmd/splice/follow"
	initcmder "github.com/papercomputeco/splice/cmd/splice/init"
	servecmder "github.com/papercomputeco/splice/cmd/splice/serve"
	versioncmder "github.com/papercomputeco/splice/cmd/version"
)

const spliceLongDesc string = `Splice decodes the server-sent event streams LLM providers speak.

Point it at a capture file, or pipe a live response in:
  splice decode session.sse      Decode a capture into typed events
  splice follow session.sse      Decode a capture as it is written
  splice serve                   Replay captures over HTTP for SSE clients`

const spliceShortDesc string = "Splice - SSE stream decoder"

func NewSpliceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "splice",
		Short: spliceShortDesc,
		Long:  spliceLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .splice config directory")

	// Add subcommands
	cmd.AddCommand(decodecmder.NewDecodeCmd())
	cmd.AddCommand(followcmder.NewFollowCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
