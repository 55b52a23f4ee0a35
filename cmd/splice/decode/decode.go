// Package decodecmder provides the decode command for turning event-stream
// captures into typed events, streamed text, or the accumulated message.
package decodecmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/splice/pkg/capture"
	"github.com/papercomputeco/splice/pkg/cliui"
	"github.com/papercomputeco/splice/pkg/config"
	"github.com/papercomputeco/splice/pkg/eventstream"
	"github.com/papercomputeco/splice/pkg/eventstream/kafka"
	"github.com/papercomputeco/splice/pkg/eventstream/nop"
	"github.com/papercomputeco/splice/pkg/jsonl"
	"github.com/papercomputeco/splice/pkg/logger"
	"github.com/papercomputeco/splice/pkg/stream"
	"github.com/papercomputeco/splice/pkg/wire"
)

type decodeCommander struct {
	format  string
	text    bool
	final   bool
	render  bool
	jsonl   bool
	brokers string
	topic   string
	logFile string
	publish bool
	debug   bool

	// in and out default to stdin and stdout; tests swap them for buffers.
	in  io.Reader
	out io.Writer

	logger    *slog.Logger
	publisher eventstream.Publisher
}

const decodeLongDesc string = `Decode a capture of a provider event stream.

Reads server-sent events from a capture file (stdin when no file is given),
parses each event into its typed form, and accumulates the streamed message.
Gzip and zstd captures decompress transparently.

Output modes:
  (default)      One line per event, then a summary of the decoded message
  --format json  One JSON object per event, machine readable
  --text         Only the streamed text, as it arrived
  --final        The fully accumulated message as JSON
  --render       The streamed text rendered as markdown
  --jsonl        Decode a batch results file (JSON Lines) instead of SSE

Settings resolve from flags, SPLICE_* environment variables, and
config.toml, in that order.

Examples:
  splice decode capture.sse
  splice decode --format json capture.sse.gz
  cat capture.sse | splice decode --text
  splice decode --jsonl results.jsonl`

const decodeShortDesc string = "Decode a provider event-stream capture"

func NewDecodeCmd() *cobra.Command {
	cmder := &decodeCommander{}
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: decodeShortDesc,
		Long:  decodeLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, fs, []string{
				config.FlagFormat,
				config.FlagBrokers,
				config.FlagTopic,
				config.FlagLogFile,
			})

			cmder.format = v.GetString("decode.format")
			cmder.brokers = v.GetString("eventstream.brokers")
			cmder.topic = v.GetString("eventstream.topic")
			cmder.logFile = v.GetString("log.file")
			cmder.publish = v.GetBool("eventstream.enabled")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(args)
		},
	}

	config.AddStringFlag(cmd, fs, config.FlagFormat, &cmder.format)
	config.AddStringFlag(cmd, fs, config.FlagBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, fs, config.FlagTopic, &cmder.topic)
	config.AddStringFlag(cmd, fs, config.FlagLogFile, &cmder.logFile)

	cmd.Flags().BoolVar(&cmder.text, "text", false, "Print only the streamed text deltas")
	cmd.Flags().BoolVar(&cmder.final, "final", false, "Print the accumulated message as JSON")
	cmd.Flags().BoolVar(&cmder.render, "render", false, "Render the streamed text as markdown")
	cmd.Flags().BoolVar(&cmder.jsonl, "jsonl", false, "Decode batch results (JSON Lines) instead of SSE")

	return cmd
}

func (c *decodeCommander) run(args []string) error {
	modes := 0
	for _, on := range []bool{c.text, c.final, c.render} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return errors.New("--text, --final, and --render are mutually exclusive")
	}
	if c.jsonl && modes > 0 {
		return errors.New("--jsonl cannot be combined with --text, --final, or --render")
	}
	if c.format != config.FormatPretty && c.format != config.FormatJSON {
		return fmt.Errorf("unknown format %q (expected %s or %s)", c.format, config.FormatPretty, config.FormatJSON)
	}

	if c.out == nil {
		c.out = os.Stdout
	}

	log, closeLog, err := c.buildLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	c.logger = log

	rc, source, err := c.resolveInput(args)
	if err != nil {
		return err
	}

	if c.jsonl {
		return c.runBatch(rc)
	}
	return c.runStream(rc, source)
}

// buildLogger returns the command logger. Logs go to stderr so decoded
// output on stdout stays pipeable; with log.file set, a JSON copy of every
// record also lands in the file.
func (c *decodeCommander) buildLogger() (*slog.Logger, func(), error) {
	if c.logger != nil {
		return c.logger, func() {}, nil
	}

	term := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true), logger.WithWriter(os.Stderr))

	if c.logFile == "" {
		return term, func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(logger.WithDebug(c.debug), logger.WithJSON(true), logger.WithWriter(f))
	return logger.Multi(term, file), func() { _ = f.Close() }, nil
}

func (c *decodeCommander) resolveInput(args []string) (io.ReadCloser, eventstream.EventSource, error) {
	if len(args) == 1 {
		rc, err := capture.Open(args[0])
		if err != nil {
			return nil, eventstream.EventSource{}, fmt.Errorf("opening capture: %w", err)
		}
		return rc, eventstream.EventSource{Capture: args[0]}, nil
	}

	in := c.in
	if in == nil {
		in = os.Stdin
	}
	rc, err := capture.NewReader(in)
	if err != nil {
		return nil, eventstream.EventSource{}, fmt.Errorf("reading stdin: %w", err)
	}
	return rc, eventstream.EventSource{Stdin: true}, nil
}

func (c *decodeCommander) runStream(rc io.ReadCloser, source eventstream.EventSource) error {
	s := stream.New(rc)
	defer s.Close()

	started := time.Now()
	var events, textDeltas, decodeErrors int64

	for {
		ev, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			// One bad event does not end the stream; count it and move on.
			var decodeErr *wire.DecodeError
			var protoErr *stream.ProtocolError
			if errors.As(err, &decodeErr) || errors.As(err, &protoErr) {
				decodeErrors++
				c.logger.Debug("skipping undecodable event", slog.Any("error", err))
				continue
			}
			return err
		}

		events++
		delta, isDelta := ev.(wire.ContentBlockDelta)
		if isDelta && delta.Delta.Type == wire.DeltaText {
			textDeltas++
		}

		switch {
		case c.text:
			if isDelta && delta.Delta.Type == wire.DeltaText {
				fmt.Fprint(c.out, delta.Delta.Text)
			}
		case c.final || c.render:
			// Nothing per-event; the accumulated message prints after the loop.
		case c.format == config.FormatJSON:
			line, err := wire.MarshalEvent(ev)
			if err != nil {
				return fmt.Errorf("encoding event: %w", err)
			}
			fmt.Fprintf(c.out, "%s\n", line)
		default:
			fmt.Fprintln(c.out, eventLine(ev))
		}
	}

	if s.Truncated() {
		c.logger.Warn("capture ended mid-event; partial frame discarded")
	}

	msg := s.FinalMessage()
	if msg == nil && s.Snapshot() != nil {
		c.logger.Warn("stream ended before message_stop; message is incomplete")
		msg = s.Snapshot()
	}

	elapsed := time.Since(started)

	switch {
	case c.text:
		if textDeltas > 0 {
			fmt.Fprintln(c.out)
		}
	case c.final:
		if msg == nil {
			return errors.New("stream carried no message")
		}
		out, err := json.MarshalIndent(msg, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding message: %w", err)
		}
		fmt.Fprintf(c.out, "%s\n", out)
	case c.render:
		if msg == nil {
			return errors.New("stream carried no message")
		}
		rendered, err := cliui.RenderMarkdown(messageText(msg))
		if err != nil {
			return fmt.Errorf("rendering markdown: %w", err)
		}
		fmt.Fprint(c.out, rendered)
	case c.format == config.FormatJSON:
		// JSON mode stays machine readable; no summary panel.
	default:
		c.printSummary(msg, events, textDeltas, decodeErrors, elapsed)
	}

	completed := started.Add(elapsed)
	if err := c.publishDecode(source, eventstream.DecodeMeta{
		StartedAt:    started.UTC(),
		CompletedAt:  completed.UTC(),
		DurationMs:   elapsed.Milliseconds(),
		Events:       events,
		TextDeltas:   textDeltas,
		DecodeErrors: decodeErrors,
	}, messageMeta(msg)); err != nil {
		c.logger.Warn("publishing decode event", slog.Any("error", err))
	}

	return nil
}

func (c *decodeCommander) runBatch(rc io.ReadCloser) error {
	defer rc.Close()

	r := jsonl.NewReader[wire.BatchResponse](rc)

	var records, succeeded, errored, lineErrors int64
	for {
		rec, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			// One bad line does not end the file; count it and move on.
			var lineErr *jsonl.LineError
			if errors.As(err, &lineErr) {
				lineErrors++
				c.logger.Debug("skipping undecodable line", slog.Any("error", err))
				continue
			}
			return err
		}

		records++
		switch rec.Result.Type {
		case wire.BatchSucceeded:
			succeeded++
		case wire.BatchErrored:
			errored++
		}

		if c.format == config.FormatJSON {
			line, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Fprintf(c.out, "%s\n", line)
			continue
		}
		fmt.Fprintln(c.out, batchLine(rec))
	}

	if c.format == config.FormatJSON {
		return nil
	}

	fmt.Fprintf(c.out, "\n  %s %s\n",
		cliui.KeyStyle.Render("Results:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d (%d succeeded, %d errored)", records, succeeded, errored)))
	if lineErrors > 0 {
		fmt.Fprintf(c.out, "  %s %s\n",
			cliui.KeyStyle.Render("Skipped:"),
			cliui.WarnStyle.Render(fmt.Sprintf("%d undecodable lines", lineErrors)))
	}

	return nil
}

func (c *decodeCommander) printSummary(msg *wire.Message, events, textDeltas, decodeErrors int64, elapsed time.Duration) {
	fmt.Fprintf(c.out, "\n  %s %s\n",
		cliui.KeyStyle.Render("Events:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d (%d text deltas)", events, textDeltas)))

	if decodeErrors > 0 {
		fmt.Fprintf(c.out, "  %s %s\n",
			cliui.KeyStyle.Render("Skipped:"),
			cliui.WarnStyle.Render(fmt.Sprintf("%d undecodable", decodeErrors)))
	}

	if msg != nil {
		fmt.Fprintf(c.out, "  %s %s %s\n",
			cliui.KeyStyle.Render("Message:"),
			cliui.ValueStyle.Render(msg.ID),
			cliui.DimStyle.Render(msg.Model))
		if msg.StopReason != "" {
			fmt.Fprintf(c.out, "  %s %s\n",
				cliui.KeyStyle.Render("Stop:"),
				cliui.ValueStyle.Render(msg.StopReason))
		}
		if len(msg.Usage) > 0 {
			fmt.Fprintf(c.out, "  %s %s\n",
				cliui.KeyStyle.Render("Usage:"),
				cliui.DimStyle.Render(usageLine(msg.Usage)))
		}
	}

	fmt.Fprintf(c.out, "  %s %s\n",
		cliui.KeyStyle.Render("Elapsed:"),
		cliui.DimStyle.Render(cliui.FormatDuration(elapsed)))
}

// publishDecode emits the decode summary through the configured publisher.
// Publishing is telemetry; failures are reported by the caller, never fatal.
func (c *decodeCommander) publishDecode(source eventstream.EventSource, decode eventstream.DecodeMeta, message eventstream.MessageMeta) error {
	pub := c.publisher
	if pub == nil {
		var err error
		pub, err = c.newPublisher()
		if err != nil {
			return err
		}
		defer func() { _ = pub.Close() }()
	}

	event := eventstream.NewStreamDecodedEvent(source, decode, message)
	return pub.PublishDecode(context.Background(), event)
}

// newPublisher selects the telemetry backend: Kafka when eventstream
// publishing is enabled, a no-op publisher otherwise.
func (c *decodeCommander) newPublisher() (eventstream.Publisher, error) {
	if !c.publish {
		return nop.NewPublisher(), nil
	}
	return kafka.NewPublisher(splitBrokers(c.brokers), c.topic)
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func messageMeta(m *wire.Message) eventstream.MessageMeta {
	if m == nil {
		return eventstream.MessageMeta{}
	}
	return eventstream.MessageMeta{
		ID:         m.ID,
		Model:      m.Model,
		Role:       m.Role,
		StopReason: m.StopReason,
		Blocks:     len(m.Content),
		Usage:      m.Usage,
	}
}
