// Package followcmder provides the follow command for tailing a capture
// file that is still being written, decoding events as they land.
package followcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/splice/pkg/cliui"
	"github.com/papercomputeco/splice/pkg/config"
	"github.com/papercomputeco/splice/pkg/logger"
	"github.com/papercomputeco/splice/pkg/wire"
)

type followCommander struct {
	format string
	tui    bool
	debug  bool

	// out defaults to stdout; tests swap it for a buffer.
	out io.Writer

	logger *slog.Logger
}

const followLongDesc string = `Follow a capture file as it grows.

Watches the file and decodes events incrementally as bytes are appended,
like tail -f for an event stream. Plain mode prints one timestamped line
per event; --tui renders a live view with counters and the accumulating
message text.

Only uncompressed captures can be followed. A gzip or zstd capture is not
readable until it is complete; decode it with "splice decode" instead.

Examples:
  splice follow capture.sse
  splice follow --tui capture.sse
  splice follow --format json capture.sse | jq .`

const followShortDesc string = "Follow a growing capture file, decoding as it lands"

func NewFollowCmd() *cobra.Command {
	cmder := &followCommander{}
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "follow <file>",
		Short: followShortDesc,
		Long:  followLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, fs, []string{
				config.FlagFormat,
			})

			cmder.format = v.GetString("decode.format")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(args[0])
		},
	}

	config.AddStringFlag(cmd, fs, config.FlagFormat, &cmder.format)

	cmd.Flags().BoolVar(&cmder.tui, "tui", false, "Render a live TUI instead of plain lines")

	return cmd
}

func (c *followCommander) run(path string) error {
	if c.format != config.FormatPretty && c.format != config.FormatJSON {
		return fmt.Errorf("unknown format %q (expected %s or %s)", c.format, config.FormatPretty, config.FormatJSON)
	}

	if c.out == nil {
		c.out = os.Stdout
	}
	if c.logger == nil {
		c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true), logger.WithWriter(os.Stderr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.tui {
		return c.followTUI(ctx, path)
	}
	return c.followPlain(ctx, path)
}

func (c *followCommander) followPlain(ctx context.Context, path string) error {
	td := newTailDecoder()

	err := tailCapture(ctx, path, td, func(evs []wire.Event) {
		for _, ev := range evs {
			if c.format == config.FormatJSON {
				line, err := wire.MarshalEvent(ev)
				if err != nil {
					c.logger.Debug("encoding event", slog.Any("error", err))
					continue
				}
				fmt.Fprintf(c.out, "%s\n", line)
				continue
			}
			fmt.Fprintln(c.out, followLine(ev))
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if c.format == config.FormatJSON {
		return nil
	}

	fmt.Fprintf(c.out, "\n  %s %s\n",
		cliui.KeyStyle.Render("Events:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d (%d text deltas)", td.events, td.textDeltas)))
	if td.decodeErrors > 0 {
		fmt.Fprintf(c.out, "  %s %s\n",
			cliui.KeyStyle.Render("Skipped:"),
			cliui.WarnStyle.Render(fmt.Sprintf("%d undecodable", td.decodeErrors)))
	}

	return nil
}

// followLine renders one decoded event as a compact timestamped tail line.
func followLine(ev wire.Event) string {
	ts := cliui.DimStyle.Render(time.Now().Format("15:04:05"))

	switch e := ev.(type) {
	case wire.MessageStart:
		return fmt.Sprintf("%s %s %s %s", ts,
			followTag(cliui.MessageTagStyle, wire.TypeMessageStart),
			cliui.ValueStyle.Render(e.Message.ID),
			cliui.DimStyle.Render(e.Message.Model))
	case wire.MessageDelta:
		detail := fmt.Sprintf("output_tokens=%d", e.Usage.OutputTokens)
		if e.Delta.StopReason != "" {
			detail = "stop_reason=" + e.Delta.StopReason + " " + detail
		}
		return fmt.Sprintf("%s %s %s", ts,
			followTag(cliui.MessageTagStyle, wire.TypeMessageDelta),
			cliui.DimStyle.Render(detail))
	case wire.MessageStop:
		return fmt.Sprintf("%s %s", ts, followTag(cliui.MessageTagStyle, wire.TypeMessageStop))
	case wire.ContentBlockStart:
		blockType, _ := e.ContentBlock["type"].(string)
		return fmt.Sprintf("%s %s #%d %s", ts,
			followTag(cliui.BlockTagStyle, wire.TypeContentBlockStart),
			e.Index,
			cliui.DimStyle.Render(blockType))
	case wire.ContentBlockDelta:
		return fmt.Sprintf("%s %s #%d %s", ts,
			followTag(cliui.BlockTagStyle, wire.TypeContentBlockDelta),
			e.Index,
			cliui.ValueStyle.Render(cliui.Preview(e.Delta.Text+e.Delta.Thinking+e.Delta.PartialJSON, 48)))
	case wire.ContentBlockStop:
		return fmt.Sprintf("%s %s #%d", ts,
			followTag(cliui.BlockTagStyle, wire.TypeContentBlockStop),
			e.Index)
	case wire.Ping:
		return fmt.Sprintf("%s %s", ts, followTag(cliui.PingTagStyle, wire.TypePing))
	case wire.StreamError:
		return fmt.Sprintf("%s %s %s", ts,
			followTag(cliui.ErrorStyle, wire.TypeError),
			cliui.ErrorStyle.Render(e.Err.Error()))
	case wire.Unknown:
		return fmt.Sprintf("%s %s %s", ts,
			followTag(cliui.WarnStyle, e.Type),
			cliui.DimStyle.Render(cliui.Preview(string(e.Raw), 48)))
	default:
		return fmt.Sprintf("%s %T", ts, ev)
	}
}

// followTag pads event names to the widest one so payloads line up in a column.
func followTag(style lipgloss.Style, name string) string {
	return style.Render(fmt.Sprintf("%-19s", name))
}
