// Package replay provides an HTTP fixture server that serves recorded
// capture files back as live text/event-stream responses. SSE clients can
// be pointed at it and exercised against real provider traffic without a
// provider in the loop.
package replay

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Server is the replay server for listing and streaming captures
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new replay server.
// Captures are read from config.Dir on every request, so files dropped
// into the directory while the server runs are picked up immediately.
func NewServer(config Config, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/streams", s.handleListStreams)
	app.Get("/v1/streams/:name", s.handleStream)

	return s
}

// Run starts the replay server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting replay server",
		slog.String("listen", s.config.ListenAddr),
		slog.String("dir", s.config.Dir),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the replay server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
