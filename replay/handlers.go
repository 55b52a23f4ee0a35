package replay

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/splice/pkg/capture"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StreamInfo describes one capture file available for replay.
type StreamInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListStreams returns the capture files available for replay.
func (s *Server) handleListStreams(c *fiber.Ctx) error {
	entries, err := os.ReadDir(s.config.Dir)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list captures"})
	}

	streams := make([]StreamInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		streams = append(streams, StreamInfo{
			Name: entry.Name(),
			Size: info.Size(),
		})
	}

	return c.JSON(map[string]any{
		"count":   len(streams),
		"streams": streams,
	})
}

// handleStream replays a single capture as a text/event-stream response,
// pausing for the configured delay after each event.
func (s *Server) handleStream(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" || name != filepath.Base(name) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid stream name"})
	}

	rc, err := capture.Open(filepath.Join(s.config.Dir, name))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "stream not found"})
	}

	session := uuid.NewString()
	s.logger.Info("replaying stream",
		slog.String("stream", name),
		slog.String("session", session),
	)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("Connection", "keep-alive")

	// io.Pipe + SetBodyStream rather than SetBodyStreamWriter: the stream
	// writer's Flush only pushes into an internal pipe, not to the socket,
	// so a paced replay would pile up in memory. With io.Pipe, pw.Write
	// blocks until fasthttp's chunked writer has flushed the event to TCP,
	// which makes each delay a real gap on the wire.
	pr, pw := io.Pipe()
	go s.replayToPipe(rc, pw, name, session)

	// Unknown size (-1) triggers chunked transfer encoding in fasthttp.
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// replayToPipe writes the capture to the pipe one SSE event at a time.
// Events are split on blank lines and re-emitted with their comments,
// retry fields, and unknown event types intact; line endings normalize
// to \n.
func (s *Server) replayToPipe(rc io.ReadCloser, pw *io.PipeWriter, name, session string) {
	defer rc.Close()
	defer pw.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var frame strings.Builder
	events := 0

	for scanner.Scan() {
		line := scanner.Text()
		frame.WriteString(line)
		frame.WriteString("\n")
		if line != "" {
			continue
		}

		if _, err := pw.Write([]byte(frame.String())); err != nil {
			// Client went away
			return
		}
		frame.Reset()
		events++

		if s.config.Delay > 0 {
			time.Sleep(s.config.Delay)
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Error("error reading capture",
			slog.String("stream", name),
			slog.String("session", session),
			slog.Any("error", err),
		)
		return
	}

	// A trailing frame without its blank-line terminator is forwarded
	// as-is, mirroring what a mid-stream disconnect looks like.
	if frame.Len() > 0 {
		_, _ = pw.Write([]byte(frame.String()))
	}

	s.logger.Debug("replay complete",
		slog.String("stream", name),
		slog.String("session", session),
		slog.Int("events", events),
	)
}
