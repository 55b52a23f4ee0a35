// Package servecmder provides the serve command for running the capture
// replay server.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/splice/pkg/config"
	"github.com/papercomputeco/splice/pkg/logger"
	"github.com/papercomputeco/splice/replay"
)

type ServeCommander struct {
	listen  string
	dir     string
	delayMS uint
	debug   bool

	logger *slog.Logger
}

const serveLongDesc string = `Run the splice replay server.

The server lists capture files and replays them over HTTP as
text/event-stream responses, so SSE clients can be exercised against
recorded provider traffic:

  GET /v1/streams          List capture files
  GET /v1/streams/<name>   Replay one capture as an event stream

Settings resolve from flags, SPLICE_* environment variables, and
config.toml, in that order.

Examples:
  splice serve
  splice serve --listen :9000 --dir ./captures --delay 25`

const serveShortDesc string = "Run the splice replay server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, fs, []string{
				config.FlagServeListen,
				config.FlagServeDir,
				config.FlagServeDelay,
			})

			cmder.listen = v.GetString("serve.listen")
			cmder.dir = v.GetString("serve.dir")
			cmder.delayMS = v.GetUint("serve.delay_ms")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, fs, config.FlagServeListen, &cmder.listen)
	config.AddStringFlag(cmd, fs, config.FlagServeDir, &cmder.dir)
	config.AddUintFlag(cmd, fs, config.FlagServeDelay, &cmder.delayMS)

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	server := replay.NewServer(replay.Config{
		ListenAddr: c.listen,
		Dir:        c.dir,
		Delay:      time.Duration(c.delayMS) * time.Millisecond,
	}, c.logger)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("replay server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
		return server.Shutdown()
	}
}
